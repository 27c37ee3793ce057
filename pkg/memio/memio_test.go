package memio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRamReadWriteU8(t *testing.T) {
	ram := NewRam(16)
	require.NoError(t, ram.WriteU8(4, 0x42))
	b, err := ram.ReadU8(4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), b)
}

func TestRamOutOfRange(t *testing.T) {
	ram := NewRam(4)
	_, err := ram.ReadU8(4)
	assert.ErrorAs(t, err, &ErrDeviceNotMapped{})
	assert.Error(t, ram.WriteU8(100, 1))
}

func TestWideAccessorsLittleEndian(t *testing.T) {
	ram := NewRam(16)
	require.NoError(t, WriteU32(ram, 0, 0x01020304))
	b0, _ := ram.ReadU8(0)
	b3, _ := ram.ReadU8(3)
	assert.Equal(t, uint8(0x04), b0)
	assert.Equal(t, uint8(0x01), b3)

	v, err := ReadU32(ram, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestFillAt(t *testing.T) {
	ram := NewRam(8)
	require.NoError(t, ram.FillAt([]byte{1, 2, 3}, 2))
	b, _ := ram.ReadU8(3)
	assert.Equal(t, uint8(2), b)
	assert.Error(t, ram.FillAt([]byte{1, 2, 3}, 7))
}
