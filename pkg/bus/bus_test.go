package bus

import (
	"testing"

	"github.com/emu86rv/emu86rv/pkg/memio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesToCoveringDevice(t *testing.T) {
	b := New()
	ram0 := memio.NewRam(16)
	ram1 := memio.NewRam(16)
	b.Add(0, 16, ram0, 0)
	b.Add(100, 116, ram1, 0)

	require.NoError(t, b.WriteU8(5, 0xAA))
	require.NoError(t, b.WriteU8(105, 0xBB))

	v0, err := ram0.ReadU8(5)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), v0)

	v1, err := ram1.ReadU8(5)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xBB), v1)
}

func TestUnmappedAddressFails(t *testing.T) {
	b := New()
	b.Add(0, 16, memio.NewRam(16), 0)
	_, err := b.ReadU8(1000)
	assert.Error(t, err)
}

func TestFetchWindowStraddlingUnmappedRangeFails(t *testing.T) {
	b := New()
	ram := memio.NewRam(4)
	b.Add(0, 4, ram, 0)
	_, err := b.FetchWindow(0)
	assert.ErrorAs(t, err, &memio.ErrDeviceNotMapped{})
}

func TestFetchWindowReadsFullWindow(t *testing.T) {
	b := New()
	ram := memio.NewRam(MaxInstructionLength)
	b.Add(0, MaxInstructionLength, ram, 0)
	for i := 0; i < MaxInstructionLength; i++ {
		require.NoError(t, ram.WriteU8(uint64(i), byte(i)))
	}
	window, err := b.FetchWindow(0)
	require.NoError(t, err)
	for i := 0; i < MaxInstructionLength; i++ {
		assert.Equal(t, byte(i), window[i])
	}
}
