// Package uop defines the architecture-neutral micro-operations that
// both the RISC-V and the x86/x86_64 decoders emit, the write-back
// packets the micro-op executor produces, and the pure function that
// turns one into the other.
//
// A decoder never mutates register-file or memory state directly. It
// reads whatever values it needs from the current architectural state
// and bakes them into a UOp's Src fields. The UOp executor (Execute)
// is then a pure function: given a UOp it returns a WriteBack, never
// touching any CPU or device state itself. Only the write-back stage,
// owned by the CPU driving the pipeline, applies a WriteBack.
package uop

// Kind identifies the operation a UOp performs.
type Kind int

// The closed set of micro-operation kinds.
const (
	Add Kind = iota
	Inc
	Mov
	Jump
	Return
	Load
	Store
	Halt
)

// Width selects the size of a memory access performed by a Load, Store
// or Return UOp.
type Width int

// The supported access widths.
const (
	Byte Width = iota
	Word
	DWord
	QWord
)

// DestFile selects which register file a GPR-shaped UOp (Add, Inc,
// Mov) writes back into; a Load always writes a general purpose
// register. Most micro-operations target a general
// purpose register; a handful of x86 instructions (MOV to a segment
// register, CLD clearing a flag) target a different file, so the
// decoder tags the UOp with where its result belongs.
type DestFile int

// The register files a UOp's result can be written back into.
const (
	FileGPR DestFile = iota
	FileSegment
	FileFlag
)

// UOp is a single, neutral micro-operation. Not every field is
// meaningful for every Kind; see Execute for the mapping.
type UOp struct {
	Kind Kind

	Dest     uint8 // destination register index, when the result is a register write
	DestFile DestFile
	Src1     uint64
	Src2     uint64

	Addr  uint64 // effective memory address, for Load/Store
	Width Width
}

// WriteBackKind identifies the shape of a WriteBack packet.
type WriteBackKind int

// The closed set of write-back packet kinds.
const (
	WBGpr WriteBackKind = iota
	WBSegment
	WBFlag
	WBPC
	WBReturn // dereference Addr, then jump to the loaded value
	WBMemStore
	WBMemLoad
	WBState
)

// WriteBack is the result of executing one UOp. Exactly one write-back
// stage, owned by the CPU, ever applies a WriteBack; Execute itself
// never touches CPU or device state.
type WriteBack struct {
	Kind WriteBackKind

	Reg   uint8
	Value uint64

	Addr  uint64
	Width Width

	Halt bool // set on WBState when the CPU should stop running
}

// Execute turns a single UOp into the WriteBack it produces. Execute
// is pure: the same UOp always yields the same WriteBack, and no
// global state is read or written.
func Execute(op UOp) (WriteBack, error) {
	switch op.Kind {
	case Add:
		return WriteBack{Kind: destFileToWBKind(op.DestFile), Reg: op.Dest, Value: op.Src1 + op.Src2}, nil
	case Inc:
		return WriteBack{Kind: destFileToWBKind(op.DestFile), Reg: op.Dest, Value: op.Src1 + 1}, nil
	case Mov:
		return WriteBack{Kind: destFileToWBKind(op.DestFile), Reg: op.Dest, Value: op.Src1}, nil
	case Jump:
		return WriteBack{Kind: WBPC, Value: op.Src1}, nil
	case Return:
		return WriteBack{Kind: WBReturn, Addr: op.Addr, Width: op.Width}, nil
	case Load:
		return WriteBack{Kind: WBMemLoad, Reg: op.Dest, Addr: op.Addr, Width: op.Width}, nil
	case Store:
		return WriteBack{Kind: WBMemStore, Addr: op.Addr, Value: op.Src1, Width: op.Width}, nil
	case Halt:
		return WriteBack{Kind: WBState, Halt: true}, nil
	default:
		return WriteBack{}, ErrUnreachable{Kind: op.Kind}
	}
}

func destFileToWBKind(f DestFile) WriteBackKind {
	switch f {
	case FileSegment:
		return WBSegment
	case FileFlag:
		return WBFlag
	default:
		return WBGpr
	}
}

// ErrUnreachable marks an internal inconsistency: a UOp.Kind the
// executor does not know about. This indicates a decoder bug, never a
// guest-triggered fault.
type ErrUnreachable struct{ Kind Kind }

func (e ErrUnreachable) Error() string {
	return "uop: unreachable micro-operation kind"
}
