package memio

// Ram is a fixed-size block of byte-addressable storage. It is the
// simplest possible MemoryAccess implementation and backs both the
// x86 flat memory and the RISC-V RAM region.
type Ram struct {
	bytes []byte
}

// NewRam allocates a Ram of the given size, zero filled.
func NewRam(size int) *Ram {
	return &Ram{bytes: make([]byte, size)}
}

// FillAt bulk-initializes the Ram with data starting at offset start,
// used by the loaders to place a program image before boot.
func (r *Ram) FillAt(data []byte, start int) error {
	if start < 0 || start+len(data) > len(r.bytes) {
		return ErrDeviceNotMapped{Addr: uint64(start)}
	}
	copy(r.bytes[start:], data)
	return nil
}

// Len returns the size of the backing storage in bytes.
func (r *Ram) Len() int {
	return len(r.bytes)
}

// ReadU8 implements MemoryAccess.
func (r *Ram) ReadU8(addr uint64) (uint8, error) {
	if addr >= uint64(len(r.bytes)) {
		return 0, ErrDeviceNotMapped{Addr: addr}
	}
	return r.bytes[addr], nil
}

// WriteU8 implements MemoryAccess.
func (r *Ram) WriteU8(addr uint64, b uint8) error {
	if addr >= uint64(len(r.bytes)) {
		return ErrDeviceNotMapped{Addr: addr}
	}
	r.bytes[addr] = b
	return nil
}
