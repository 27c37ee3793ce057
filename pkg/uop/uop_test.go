package uop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	wb, err := Execute(UOp{Kind: Add, Dest: 1, Src1: 2, Src2: 3})
	require.NoError(t, err)
	assert.Equal(t, WriteBack{Kind: WBGpr, Reg: 1, Value: 5}, wb)
}

func TestInc(t *testing.T) {
	wb, err := Execute(UOp{Kind: Inc, Dest: 0, Src1: 41})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), wb.Value)
}

func TestHalt(t *testing.T) {
	wb, err := Execute(UOp{Kind: Halt})
	require.NoError(t, err)
	assert.True(t, wb.Halt)
	assert.Equal(t, WBState, wb.Kind)
}

func TestUnreachableKind(t *testing.T) {
	_, err := Execute(UOp{Kind: Kind(99)})
	assert.Error(t, err)
}
