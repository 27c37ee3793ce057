package riscv

import (
	"fmt"

	"github.com/emu86rv/emu86rv/pkg/bus"
	"github.com/emu86rv/emu86rv/pkg/cpustate"
	"github.com/emu86rv/emu86rv/pkg/debug"
	"github.com/emu86rv/emu86rv/pkg/uop"
)

// CPU is the rv32i pipeline driver: fetch, decode, execute each UOp,
// apply the resulting write-backs, repeat until halted.
type CPU struct {
	Gpr   Gpr
	Csr   Csr
	PC    uint32
	state cpustate.State

	bus      *bus.Bus
	executed uint64
}

// New returns a CPU wired to bus at the reset vector pc.
func New(b *bus.Bus, pc uint32) *CPU {
	return &CPU{bus: b, PC: pc, state: cpustate.Running}
}

// State reports whether the CPU is still running.
func (c *CPU) State() cpustate.State { return c.state }

// Run drives the pipeline until the CPU halts or an error aborts it.
// hook, if non-nil, observes a read-only Snapshot after every
// instruction.
func (c *CPU) Run(hook debug.Hook) error {
	for c.state == cpustate.Running {
		instr, err := Fetch(c.bus, c.PC)
		if err != nil {
			return fmt.Errorf("riscv: fetch at pc=0x%x: %w", c.PC, err)
		}
		ops, err := Decode(instr, &c.Gpr)
		if err != nil {
			return fmt.Errorf("riscv: decode at pc=0x%x: %w", c.PC, err)
		}
		pc := c.PC
		c.PC = pc + 4
		for _, op := range ops {
			wb, err := uop.Execute(op)
			if err != nil {
				return fmt.Errorf("riscv: execute at pc=0x%x: %w", pc, err)
			}
			if err := c.writeBack(wb); err != nil {
				return fmt.Errorf("riscv: write-back at pc=0x%x: %w", pc, err)
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
		c.Gpr.Write(wb.Reg, uint32(wb.Value))
	case uop.WBPC:
		c.PC = uint32(wb.Value)
	case uop.WBMemLoad:
		v, err := c.bus.ReadU32(wb.Addr)
		if err != nil {
			return err
		}
		c.Gpr.Write(wb.Reg, v)
	case uop.WBMemStore:
		return c.bus.WriteU32(wb.Addr, uint32(wb.Value))
	case uop.WBState:
		if wb.Halt {
			c.state = cpustate.Halted
		}
	default:
		return fmt.Errorf("riscv: unexpected write-back kind %d", wb.Kind)
	}
	return nil
}

func (c *CPU) snapshot() debug.Snapshot {
	gpr := make([]uint64, NumGpr)
	for i := range gpr {
		gpr[i] = uint64(c.Gpr.Read(uint8(i)))
	}
	return debug.Snapshot{
		Executed: c.executed,
		PC:       uint64(c.PC),
		Gpr:      gpr,
	}
}

// String renders a human readable dump of the CPU state.
func (c *CPU) String() string {
	return fmt.Sprintf("=== riscv CPU (%d instructions executed) ===\nPC: 0x%x\n%s", c.executed, c.PC, c.Gpr.String())
}
