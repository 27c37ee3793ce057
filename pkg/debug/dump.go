package debug

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// DumpHook prints a full structure dump of every Snapshot to w, the
// per-cycle debug output mode.
type DumpHook struct {
	w io.Writer
}

// NewDumpHook returns a DumpHook writing to w.
func NewDumpHook(w io.Writer) *DumpHook {
	return &DumpHook{w: w}
}

// OnCycleEnd implements Hook.
func (d *DumpHook) OnCycleEnd(s Snapshot) {
	fmt.Fprintf(d.w, "--- cycle %d: pc=0x%x %s ---\n", s.Executed, s.PC, s.Disasm)
	fmt.Fprint(d.w, spew.Sdump(s))
}
