package vga

import (
	"testing"

	"github.com/emu86rv/emu86rv/pkg/memio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddrToCell(t *testing.T) {
	row, col, isColor := addrToCell(0)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
	assert.False(t, isColor)

	row, col, isColor = addrToCell(161) // row 1, col 0, color byte
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
	assert.True(t, isColor)
}

func TestWriteAsciiAndColor(t *testing.T) {
	b := New()
	require.NoError(t, b.WriteU8(0, 'H'))
	require.NoError(t, b.WriteU8(1, 0x1F))
	assert.Equal(t, byte('H'), b.cells[0].ascii)
	assert.Equal(t, Blue, Background(b.cells[0].color))
	assert.Equal(t, White, Foreground(b.cells[0].color))
}

func TestReadAlwaysFails(t *testing.T) {
	b := New()
	_, err := b.ReadU8(0)
	assert.ErrorIs(t, err, memio.ErrNoPermission)
}
