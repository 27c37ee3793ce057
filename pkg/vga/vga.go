// Package vga implements a CGA-style text buffer: 25 rows by 80
// columns, two bytes per cell (an ASCII byte and a color byte). The
// buffer is write-only from the guest's point of view; there is no
// hardware path to read back what has been drawn.
package vga

import (
	"strings"

	"github.com/emu86rv/emu86rv/pkg/memio"
)

const (
	// Rows is the number of text rows.
	Rows = 25
	// Cols is the number of text columns.
	Cols = 80
)

// Color is one of the 16 CGA colors.
type Color uint8

// The 16 CGA colors, in hardware index order.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

type cell struct {
	ascii byte
	color byte
}

// Buffer is the VGA text buffer device.
type Buffer struct {
	cells [Rows * Cols]cell
}

// New returns an empty (all-zero) text buffer.
func New() *Buffer {
	return &Buffer{}
}

func addrToCell(addr uint64) (row, col int, isColorByte bool) {
	row = int(addr) / (Cols * 2)
	col = (int(addr) / 2) % Cols
	isColorByte = addr%2 == 1
	return
}

// ReadU8 always fails: the buffer has no read path.
func (b *Buffer) ReadU8(addr uint64) (uint8, error) {
	return 0, memio.ErrNoPermission
}

// WriteU8 implements the even/odd cell-byte semantics: an even
// address sets the ASCII byte, an odd address sets the color byte
// (high nibble background, low nibble foreground).
func (b *Buffer) WriteU8(addr uint64, v uint8) error {
	row, col, isColor := addrToCell(addr)
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return memio.ErrDeviceNotMapped{Addr: addr}
	}
	c := &b.cells[row*Cols+col]
	if isColor {
		c.color = v
	} else {
		c.ascii = v
	}
	return nil
}

// Foreground returns the foreground color of a cell's color byte.
func Foreground(colorByte byte) Color { return Color(colorByte & 0x0f) }

// Background returns the background color of a cell's color byte.
func Background(colorByte byte) Color { return Color((colorByte >> 4) & 0x0f) }

// String renders the buffer as a plain-text grid, replacing the
// original GTK widget with something a headless CLI can print.
func (b *Buffer) String() string {
	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			c := b.cells[row*Cols+col]
			ch := c.ascii
			if ch == 0 {
				ch = ' '
			}
			sb.WriteByte(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var _ memio.MemoryAccess = (*Buffer)(nil)
