// Package debug implements the cycle-end observability hooks shared
// by both guest pipelines: a no-op hook, a per-cycle structure dump,
// and an interactive single-step TUI.
//
// A Hook only ever observes a Snapshot after a cycle has completed; it
// has no path back into CPU or device state, matching the "read-only
// at cycle end" rule the pipelines are built around.
package debug

// Snapshot is a read-only view of CPU state taken right after a
// completed instruction, architecture neutral so both the RISC-V and
// the x86/x86_64 CPU can produce one.
type Snapshot struct {
	Executed uint64
	PC       uint64
	Gpr      []uint64
	Names    []string // optional register names, parallel to Gpr
	Flags    string   // optional flags rendering
	Disasm   string   // optional disassembly of the instruction just retired
}

// Hook observes CPU state at the end of every cycle.
type Hook interface {
	OnCycleEnd(s Snapshot)
}

// NoneHook performs no observation at all, the default for a normal
// (non-debug) run.
type NoneHook struct{}

// OnCycleEnd implements Hook.
func (NoneHook) OnCycleEnd(Snapshot) {}
