// Command emu86rv runs a guest program through either the RISC-V
// (rv32i) or the x86/x86_64 pipeline.
package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/urfave/cli.v2"

	"github.com/emu86rv/emu86rv/pkg/bus"
	"github.com/emu86rv/emu86rv/pkg/debug"
	"github.com/emu86rv/emu86rv/pkg/loader"
	"github.com/emu86rv/emu86rv/pkg/memio"
	"github.com/emu86rv/emu86rv/pkg/riscv"
	"github.com/emu86rv/emu86rv/pkg/sifive"
	"github.com/emu86rv/emu86rv/pkg/uart"
	"github.com/emu86rv/emu86rv/pkg/vga"
	"github.com/emu86rv/emu86rv/pkg/x86"
)

func main() {
	app := &cli.App{
		Name:    "emu86rv",
		Usage:   "run an rv32i or x86/x86_64 guest program",
		Version: "v0.1.0",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "load and run a guest program",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "arch", Aliases: []string{"a"}, Usage: "x86 or rv32", Value: "x86"},
					&cli.StringFlag{Name: "bin", Aliases: []string{"b"}, Usage: "path to the guest binary"},
					&cli.BoolFlag{Name: "elf", Usage: "treat --bin as an ELF32 image (rv32 only)"},
					&cli.Uint64Flag{Name: "load-addr", Usage: "load address for a raw binary", Value: 0},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "dump CPU state every cycle"},
					&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "single-step interactively"},
					&cli.StringFlag{Name: "uart", Usage: "stdout, file:<path>, loopback, or net", Value: "stdout"},
				},
				Action: runCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "emu86rv:", err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	binPath := c.String("bin")
	if binPath == "" {
		return cli.Exit("emu86rv: --bin is required", 1)
	}

	u, err := buildUART(c.String("uart"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
	}

	hook := buildHook(c.Bool("verbose"), c.Bool("interactive"))

	switch c.String("arch") {
	case "rv32":
		return runRiscv(binPath, c.Bool("elf"), uint32(c.Uint64("load-addr")), u, hook)
	case "x86":
		return runX86(binPath, uint64(c.Uint64("load-addr")), u, hook)
	default:
		return cli.Exit("emu86rv: --arch must be x86 or rv32", 1)
	}
}

func buildUART(target string) (*uart.UART16550, error) {
	switch {
	case target == "stdout":
		return uart.NewStdout(os.Stdout), nil
	case target == "loopback":
		return uart.NewLoopback(), nil
	case target == "net":
		return uart.NewNet()
	case strings.HasPrefix(target, "file:"):
		return uart.NewFile(strings.TrimPrefix(target, "file:"))
	default:
		return nil, fmt.Errorf("unknown --uart target %q", target)
	}
}

func buildHook(verbose, interactive bool) debug.Hook {
	switch {
	case interactive:
		return debug.NewInteractiveHook()
	case verbose:
		return debug.NewDumpHook(os.Stdout)
	default:
		return debug.NoneHook{}
	}
}

func runRiscv(binPath string, isELF bool, loadAddr uint32, u *uart.UART16550, hook debug.Hook) error {
	sv := sifive.New(func(c byte) { fmt.Fprintf(os.Stdout, "%c", c) })
	ram := memio.NewRam(int(bus.RiscvRamEnd - bus.RiscvRamStart))
	rom := memio.NewRam(int(bus.RiscvRomEnd - bus.RiscvRomStart))

	var entry uint32
	if isELF {
		var segments []loader.Segment
		var err error
		entry, segments, err = loader.LoadELF32(binPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
		}
		for _, seg := range segments {
			dest := ram
			off := int(seg.VAddr) - bus.RiscvRamStart
			if seg.VAddr < bus.RiscvRamStart || off < 0 {
				dest, off = rom, int(seg.VAddr)-bus.RiscvRomStart
			}
			if err := dest.FillAt(seg.Data, off); err != nil {
				return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
			}
		}
	} else {
		data, err := loader.LoadRaw(binPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
		}
		if err := ram.FillAt(data, int(loadAddr)); err != nil {
			return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
		}
		entry = bus.RiscvRamStart + loadAddr
	}

	b := bus.NewRiscvBus(rom, ram, sv)
	cpu := riscv.New(b, entry)
	if err := cpu.Run(hook); err != nil {
		return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
	}
	fmt.Println(cpu.String())
	return nil
}

func runX86(binPath string, loadAddr uint64, u *uart.UART16550, hook debug.Hook) error {
	data, err := loader.LoadRaw(binPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
	}
	ram := memio.NewRam(bus.X86MemorySize)
	if err := ram.FillAt(data, int(loadAddr)); err != nil {
		return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
	}
	display := vga.New()
	b := bus.NewX86Bus(ram, display, u)
	cpu := x86.New(b, loadAddr)
	if err := cpu.Run(hook); err != nil {
		return cli.Exit(fmt.Sprintf("emu86rv: %s", err), 1)
	}
	fmt.Println(cpu.String())
	return nil
}
