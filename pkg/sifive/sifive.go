// Package sifive implements the SiFive FE310-style word-addressed
// UART register block used by the RISC-V interconnect. Unlike the
// generic 16550 device, every register is 32 bits wide and byte
// access is rejected outright.
package sifive

import (
	"fmt"

	"github.com/emu86rv/emu86rv/pkg/memio"
)

// Register offsets within the SiFive UART block.
const (
	offTX     = 0x00
	offRX     = 0x04
	offTXCtrl = 0x08
	offRXCtrl = 0x0c
	offDiv    = 0x18
)

// UART is the SiFive-style UART device.
type UART struct {
	out              func(c byte)
	txctrl, rxctrl   uint32
	baudDiv          uint32
}

// New returns a SiFive UART that writes transmitted characters by
// calling out.
func New(out func(c byte)) *UART {
	return &UART{out: out}
}

// ReadU8 always fails: the device only answers word-aligned accesses.
func (u *UART) ReadU8(addr uint64) (uint8, error) {
	return 0, memio.ErrInvalidAlignment{Alignment: 4}
}

// WriteU8 always fails: the device only answers word-aligned accesses.
func (u *UART) WriteU8(addr uint64, b uint8) error {
	return memio.ErrInvalidAlignment{Alignment: 4}
}

// ReadU16/WriteU16 also reject every half-word access; the device is
// strictly word granularity.
func (u *UART) ReadU16(addr uint64) (uint16, error) {
	return 0, memio.ErrInvalidAlignment{Alignment: 4}
}

func (u *UART) WriteU16(addr uint64, v uint16) error {
	return memio.ErrInvalidAlignment{Alignment: 4}
}

// ReadU32 implements the TX/RX register read semantics: both report
// an empty FIFO (0), any other offset is unmapped.
func (u *UART) ReadU32(addr uint64) (uint32, error) {
	switch addr {
	case offTX, offRX:
		return 0, nil
	default:
		return 0, memio.ErrDeviceNotMapped{Addr: addr}
	}
}

// WriteU32 implements the register write semantics: TX prints the low
// byte as a character, TXCTRL/RXCTRL/DIV just latch their value.
func (u *UART) WriteU32(addr uint64, v uint32) error {
	switch addr {
	case offTX:
		if u.out != nil {
			u.out(byte(v))
		}
		return nil
	case offRX:
		return nil
	case offTXCtrl:
		u.txctrl = v
		return nil
	case offRXCtrl:
		u.rxctrl = v
		return nil
	case offDiv:
		u.baudDiv = v
		return nil
	default:
		return memio.ErrDeviceNotMapped{Addr: addr}
	}
}

// ReadU64/WriteU64 are not supported by this 32-bit register block.
func (u *UART) ReadU64(addr uint64) (uint64, error) {
	return 0, memio.ErrInvalidAlignment{Alignment: 4}
}

func (u *UART) WriteU64(addr uint64, v uint64) error {
	return memio.ErrInvalidAlignment{Alignment: 4}
}

var _ memio.MemoryAccess = (*UART)(nil)
var _ memio.WordAccess = (*UART)(nil)

func (u *UART) String() string {
	return fmt.Sprintf("sifive.UART{txctrl:%#x rxctrl:%#x div:%#x}", u.txctrl, u.rxctrl, u.baudDiv)
}
