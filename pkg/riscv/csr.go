package riscv

// NumCsr is the number of addressable control and status registers.
const NumCsr = 4096

// Csr map indices used by the trap-handling instructions this
// emulator does not yet implement; kept so callers can address them
// consistently if and when trap delivery is added.
const (
	CsrMtvec = 0x305
	CsrMepc  = 0x341
)

// Csr is the control/status register file: a flat, index-addressed
// bank of 32-bit registers. No access control or WARL semantics are
// modeled; any index in range reads and writes freely.
type Csr struct {
	ram [NumCsr]uint32
}

// Read returns the value of CSR index idx.
func (c *Csr) Read(idx uint16) uint32 {
	return c.ram[idx]
}

// Write sets CSR index idx to v.
func (c *Csr) Write(idx uint16, v uint32) {
	c.ram[idx] = v
}
