package uart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopbackReadsBackWrites(t *testing.T) {
	u := NewLoopback()
	require.NoError(t, u.WriteU8(0, 'A'))
	require.NoError(t, u.WriteU8(0, 'B'))

	b, err := u.ReadU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8('A'), b)

	b, err = u.ReadU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8('B'), b)
}

func TestStdoutWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	u := NewStdout(&buf)
	require.NoError(t, u.WriteU8(0, 'x'))
	assert.Equal(t, "x", buf.String())
}

func TestStdoutRejectsReads(t *testing.T) {
	var buf bytes.Buffer
	u := NewStdout(&buf)
	_, err := u.ReadU8(0)
	assert.Error(t, err)
}
