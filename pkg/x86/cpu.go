package x86

import (
	"fmt"

	"github.com/emu86rv/emu86rv/pkg/bus"
	"github.com/emu86rv/emu86rv/pkg/cpustate"
	"github.com/emu86rv/emu86rv/pkg/debug"
	"github.com/emu86rv/emu86rv/pkg/uop"
)

var gprNames = [NumGpr]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}

// CPU is the x86/x86_64 pipeline driver: fetch a window, decode it
// into micro-operations, advance PC past the instruction, execute each
// micro-operation and apply its write-back, repeat until halted.
type CPU struct {
	Regs RegisterFile
	PC   uint64

	state    cpustate.State
	bus      *bus.Bus
	executed uint64
}

// New returns a CPU wired to bus, starting execution at pc.
func New(b *bus.Bus, pc uint64) *CPU {
	return &CPU{bus: b, PC: pc, state: cpustate.Running}
}

// State reports whether the CPU is still running.
func (c *CPU) State() cpustate.State { return c.state }

// Run drives the pipeline until the CPU halts or an error aborts it.
// hook, if non-nil, observes a read-only Snapshot after every
// instruction.
func (c *CPU) Run(hook debug.Hook) error {
	for c.state == cpustate.Running {
		window, err := c.bus.FetchWindow(c.PC)
		if err != nil {
			return fmt.Errorf("x86: fetch window at pc=0x%x: %w", c.PC, err)
		}
		fi, err := Fetch(window[:])
		if err != nil {
			return fmt.Errorf("x86: fetch at pc=0x%x: %w", c.PC, err)
		}
		nextPC := c.PC + uint64(fi.Length)
		ops, err := Decode(fi, &c.Regs, nextPC)
		if err != nil {
			return fmt.Errorf("x86: decode at pc=0x%x: %w", c.PC, err)
		}
		c.PC = nextPC
		for _, op := range ops {
			wb, err := uop.Execute(op)
			if err != nil {
				return fmt.Errorf("x86: execute at pc=0x%x: %w", c.PC, err)
			}
			if err := c.writeBack(wb); err != nil {
				return fmt.Errorf("x86: write-back at pc=0x%x: %w", c.PC, err)
			}
		}
		c.executed++
		if hook != nil {
			hook.OnCycleEnd(c.snapshot())
		}
	}
	return nil
}

func (c *CPU) writeBack(wb uop.WriteBack) error {
	switch wb.Kind {
	case uop.WBGpr:
		c.Regs.Write(Reg64(wb.Reg), wb.Value)
	case uop.WBSegment:
		c.Regs.WriteSeg(SegReg(wb.Reg), wb.Value)
	case uop.WBFlag:
		if wb.Value == 0 {
			c.Regs.Flags &^= DirectionFlag
		} else {
			c.Regs.Flags |= DirectionFlag
		}
	case uop.WBPC:
		c.PC = wb.Value
	case uop.WBReturn:
		target, err := c.bus.ReadU64(wb.Addr)
		if err != nil {
			return err
		}
		c.PC = target
	case uop.WBMemLoad:
		v, err := readWidth(c.bus, wb.Addr, wb.Width)
		if err != nil {
			return err
		}
		c.Regs.Write(Reg64(wb.Reg), v)
	case uop.WBMemStore:
		return writeWidth(c.bus, wb.Addr, wb.Value, wb.Width)
	case uop.WBState:
		if wb.Halt {
			c.state = cpustate.Halted
		}
	default:
		return fmt.Errorf("x86: unexpected write-back kind %d", wb.Kind)
	}
	return nil
}

func readWidth(b *bus.Bus, addr uint64, w uop.Width) (uint64, error) {
	switch w {
	case uop.Byte:
		v, err := b.ReadU8(addr)
		return uint64(v), err
	case uop.Word:
		v, err := b.ReadU16(addr)
		return uint64(v), err
	case uop.DWord:
		v, err := b.ReadU32(addr)
		return uint64(v), err
	default:
		return b.ReadU64(addr)
	}
}

func writeWidth(b *bus.Bus, addr uint64, v uint64, w uop.Width) error {
	switch w {
	case uop.Byte:
		return b.WriteU8(addr, uint8(v))
	case uop.Word:
		return b.WriteU16(addr, uint16(v))
	case uop.DWord:
		return b.WriteU32(addr, uint32(v))
	default:
		return b.WriteU64(addr, v)
	}
}

func (c *CPU) snapshot() debug.Snapshot {
	gpr := make([]uint64, NumGpr)
	names := make([]string, NumGpr)
	for i := range gpr {
		gpr[i] = c.Regs.Gpr[i]
		names[i] = gprNames[i]
	}
	return debug.Snapshot{
		Executed: c.executed,
		PC:       c.PC,
		Gpr:      gpr,
		Names:    names,
	}
}

// String renders a human readable dump of the CPU state.
func (c *CPU) String() string {
	s := fmt.Sprintf("=== x86 CPU (%d instructions executed) ===\nRIP: 0x%x\n", c.executed, c.PC)
	for i, name := range gprNames {
		s += fmt.Sprintf("%s=0x%x ", name, c.Regs.Gpr[i])
	}
	return s
}
