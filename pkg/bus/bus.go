// Package bus implements the memory-mapped interconnect: a router
// that dispatches byte/word/dword/qword accesses to the device
// covering a given address range. Ranges are half-open [Start, End)
// and are searched linearly, which is fast enough for the handful of
// devices a guest program ever maps.
package bus

import (
	"github.com/emu86rv/emu86rv/pkg/memio"
)

// Region is one entry in the bus's route table.
type Region struct {
	Start, End uint64 // half-open [Start, End)
	Device     memio.MemoryAccess
	// Mask, if non-zero, is applied to the address (after subtracting
	// Start) before it reaches Device. The VGA route uses it: its mask
	// 0xFFF spans 4096 bytes while the mapped range and the buffer are
	// 4000 bytes, so for every address inside the range the mask
	// leaves the offset unchanged.
	Mask uint64
}

// Bus is the interconnect. It implements memio.MemoryAccess itself,
// so it can be passed anywhere a single device is expected.
type Bus struct {
	regions []Region
}

// New returns an empty Bus; use Add to map devices into it.
func New() *Bus {
	return &Bus{}
}

// Add maps device into [start, end) with an optional address mask (0
// disables masking).
func (b *Bus) Add(start, end uint64, device memio.MemoryAccess, mask uint64) {
	b.regions = append(b.regions, Region{Start: start, End: end, Device: device, Mask: mask})
}

func (b *Bus) find(addr uint64) (memio.MemoryAccess, uint64, error) {
	for _, r := range b.regions {
		if addr >= r.Start && addr < r.End {
			off := addr - r.Start
			if r.Mask != 0 {
				off &= r.Mask
			}
			return r.Device, off, nil
		}
	}
	return nil, 0, memio.ErrDeviceNotMapped{Addr: addr}
}

// ReadU8 implements memio.MemoryAccess.
func (b *Bus) ReadU8(addr uint64) (uint8, error) {
	dev, off, err := b.find(addr)
	if err != nil {
		return 0, err
	}
	return dev.ReadU8(off)
}

// WriteU8 implements memio.MemoryAccess.
func (b *Bus) WriteU8(addr uint64, v uint8) error {
	dev, off, err := b.find(addr)
	if err != nil {
		return err
	}
	return dev.WriteU8(off, v)
}

// ReadU16 implements memio.WordAccess by routing to the covering
// device and letting memio's default composition (or the device's own
// WordAccess) handle the width.
func (b *Bus) ReadU16(addr uint64) (uint16, error) {
	dev, off, err := b.find(addr)
	if err != nil {
		return 0, err
	}
	return memio.ReadU16(dev, off)
}

func (b *Bus) WriteU16(addr uint64, v uint16) error {
	dev, off, err := b.find(addr)
	if err != nil {
		return err
	}
	return memio.WriteU16(dev, off, v)
}

func (b *Bus) ReadU32(addr uint64) (uint32, error) {
	dev, off, err := b.find(addr)
	if err != nil {
		return 0, err
	}
	return memio.ReadU32(dev, off)
}

func (b *Bus) WriteU32(addr uint64, v uint32) error {
	dev, off, err := b.find(addr)
	if err != nil {
		return err
	}
	return memio.WriteU32(dev, off, v)
}

func (b *Bus) ReadU64(addr uint64) (uint64, error) {
	dev, off, err := b.find(addr)
	if err != nil {
		return 0, err
	}
	return memio.ReadU64(dev, off)
}

func (b *Bus) WriteU64(addr uint64, v uint64) error {
	dev, off, err := b.find(addr)
	if err != nil {
		return err
	}
	return memio.WriteU64(dev, off, v)
}

// MaxInstructionLength is the widest possible x86 instruction the
// fetcher may need to examine in one go.
const MaxInstructionLength = 15

// FetchWindow reads MaxInstructionLength bytes starting at pc, for the
// x86 fetcher to decode from. Any byte failure aborts the fetch: a
// window straddling an unmapped range fails with the underlying
// memio.ErrDeviceNotMapped rather than silently returning a short
// window.
func (b *Bus) FetchWindow(pc uint64) ([MaxInstructionLength]byte, error) {
	var window [MaxInstructionLength]byte
	for i := 0; i < MaxInstructionLength; i++ {
		v, err := b.ReadU8(pc + uint64(i))
		if err != nil {
			return window, err
		}
		window[i] = v
	}
	return window, nil
}

var _ memio.MemoryAccess = (*Bus)(nil)
var _ memio.WordAccess = (*Bus)(nil)
