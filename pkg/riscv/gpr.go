package riscv

import "fmt"

// NumGpr is the number of general purpose registers rv32i defines.
const NumGpr = 32

// Gpr is the rv32i general purpose register file. Register 0 is
// hardwired to zero: writes to it are silently discarded and reads
// always return zero.
type Gpr struct {
	ram [NumGpr]uint32
}

// Read returns the value of register r.
func (g *Gpr) Read(r uint8) uint32 {
	if r == 0 {
		return 0
	}
	return g.ram[r]
}

// Write sets register r to v, except register 0 which never changes.
func (g *Gpr) Write(r uint8, v uint32) {
	if r == 0 {
		return
	}
	g.ram[r] = v
}

// abiNames are the conventional ABI names for each GPR index, used by
// String for a readable dump.
var abiNames = [NumGpr]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// String renders the register file using its ABI names, grounded on
// the Display implementation of the original Gpr.
func (g *Gpr) String() string {
	s := ""
	for i, name := range abiNames {
		s += fmt.Sprintf("%s=%d ", name, g.Read(uint8(i)))
	}
	return s
}
