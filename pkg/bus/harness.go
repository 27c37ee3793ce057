package bus

import (
	"github.com/emu86rv/emu86rv/pkg/memio"
	"github.com/emu86rv/emu86rv/pkg/sifive"
	"github.com/emu86rv/emu86rv/pkg/uart"
	"github.com/emu86rv/emu86rv/pkg/vga"
)

// x86_64 harness constants (spec.md section 4.3).
const (
	X86MemorySize = 0x10000
	x86VgaBase    = 0xB8000
	x86VgaEnd     = 0xB8FA0
	x86VgaMask    = 0xFFF // known quirk: larger than the buffer's true 4000-byte size
	x86SerialBase = 0x10000000
)

// NewX86Bus wires the hard-coded x86_64 test-harness route table: RAM
// at [0, MemorySize), the VGA text buffer at [0xB8000, 0xB8FA0) with
// addresses masked to 0xFFF, and a 16550 UART at 0x10000000.
//
// The VGA mask is carried over unchanged from the original harness. The
// mapped range (0xFA0 bytes) equals the buffer's backing size (4000
// bytes = 25*80*2 = 0xFA0), while the 0xFFF mask spans a 4096-byte
// window; every in-range offset is below 0xFA0, so the mask never
// changes an offset. It is kept because the original route table
// defines it this way.
func NewX86Bus(ram *memio.Ram, display *vga.Buffer, serial *uart.UART16550) *Bus {
	b := New()
	b.Add(0, X86MemorySize, ram, 0)
	b.Add(x86VgaBase, x86VgaEnd, display, x86VgaMask)
	b.Add(x86SerialBase, x86SerialBase+8, serial, 0)
	return b
}

// RISC-V harness constants (spec.md section 4.3).
const (
	RiscvClintStart = 0x02000000
	RiscvClintEnd   = 0x0200FFFF + 1
	RiscvPlicStart  = 0x0C000000
	RiscvPlicEnd    = 0x0C300000
	RiscvGpioStart  = 0x10012000
	RiscvGpioEnd    = 0x10012FFF + 1
	RiscvUartStart  = 0x10013000
	RiscvUartEnd    = 0x10013FFF + 1
	RiscvRomStart   = 0x20400000
	RiscvRomEnd     = 0x20FFFFFF + 1
	RiscvRamStart   = 0x80000000
	RiscvRamEnd     = 0x80003FFF + 1
)

// NewRiscvBus wires the hard-coded RISC-V test-harness route table:
// CLINT, PLIC and GPIO as plain RAM-backed stub regions (no timer or
// interrupt-controller semantics are modeled, per spec.md's
// non-goals), a SiFive UART, a ROM region and the executable RAM
// region.
func NewRiscvBus(rom, ram *memio.Ram, u *sifive.UART) *Bus {
	const stubSize = 1 << 16 // CLINT/PLIC/GPIO are unimplemented stub regions; only their low bytes are ever backed
	b := New()
	b.Add(RiscvClintStart, RiscvClintEnd, memio.NewRam(stubSize), 0)
	b.Add(RiscvPlicStart, RiscvPlicEnd, memio.NewRam(stubSize), 0)
	b.Add(RiscvGpioStart, RiscvGpioEnd, memio.NewRam(stubSize), 0)
	b.Add(RiscvUartStart, RiscvUartEnd, u, 0)
	b.Add(RiscvRomStart, RiscvRomEnd, rom, 0)
	b.Add(RiscvRamStart, RiscvRamEnd, ram, 0)
	return b
}
