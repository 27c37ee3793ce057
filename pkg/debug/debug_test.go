package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoneHookDoesNothing(t *testing.T) {
	var h NoneHook
	h.OnCycleEnd(Snapshot{Executed: 1})
}

func TestDumpHookWritesSnapshot(t *testing.T) {
	var buf bytes.Buffer
	h := NewDumpHook(&buf)
	h.OnCycleEnd(Snapshot{Executed: 3, PC: 0x10})
	assert.Contains(t, buf.String(), "cycle 3")
	assert.Contains(t, buf.String(), "0x10")
}
