// Package x86 implements a unified x86/x86_64 fetch, decode and
// write-back pipeline for the small instruction subset this emulator
// supports. REX.W selects a 64-bit operand size; without it the
// operand size is 32 bits (16 with a 0x66 prefix). Both share the same
// 64-bit register file. The operand size sets the width of memory
// loads and stores only: register results are computed and written
// back as full 64-bit values, with no truncation or zero-extension of
// 32-bit results.
package x86

// Reg64 identifies one of the eight general purpose registers
// addressable without a REX prefix.
type Reg64 uint8

// The eight general purpose registers.
const (
	Rax Reg64 = iota
	Rcx
	Rdx
	Rbx
	Rsp
	Rbp
	Rsi
	Rdi
)

// NumGpr is the number of general purpose registers in this subset
// (the REX.B/R/X extension to r8-r15 is not implemented).
const NumGpr = 8

// SegReg identifies one of the six segment registers.
type SegReg uint8

// The six segment registers, in the conventional ES/CS/SS/DS/FS/GS
// order.
const (
	Es SegReg = iota
	Cs
	Ss
	Ds
	Fs
	Gs
)

// NumSegRegs is the number of segment registers.
const NumSegRegs = 6

// Flags is the subset of EFLAGS this emulator models.
type Flags uint64

// DirectionFlag controls string-instruction auto-increment direction;
// it is the only flag this emulator's instruction subset manipulates
// (via CLD).
const DirectionFlag Flags = 1 << 10

// RegisterFile holds the GPR, segment register and flags state a
// decoder reads from and a write-back stage mutates.
type RegisterFile struct {
	Gpr   [NumGpr]uint64
	Seg   [NumSegRegs]uint64
	Flags Flags
}

// Read returns the current value of r.
func (rf *RegisterFile) Read(r Reg64) uint64 { return rf.Gpr[r] }

// Write sets r to v.
func (rf *RegisterFile) Write(r Reg64, v uint64) { rf.Gpr[r] = v }

// ReadSeg returns the current value of s.
func (rf *RegisterFile) ReadSeg(s SegReg) uint64 { return rf.Seg[s] }

// WriteSeg sets s to v.
func (rf *RegisterFile) WriteSeg(s SegReg, v uint64) { rf.Seg[s] = v }
