package x86

import (
	"fmt"

	"github.com/emu86rv/emu86rv/pkg/uop"
)

// ErrUndefinedInstruction indicates a decoded opcode/ModR/M combination
// this emulator does not implement.
type ErrUndefinedInstruction struct{ Opcode byte }

func (e ErrUndefinedInstruction) Error() string {
	return fmt.Sprintf("x86: undefined instruction, opcode=0x%02x", e.Opcode)
}

func widthToUop(w Width) uop.Width {
	switch w {
	case WByte:
		return uop.Byte
	case WWord:
		return uop.Word
	case WQWord:
		return uop.QWord
	default:
		return uop.DWord
	}
}

// effectiveAddr computes the memory operand address for a non-direct
// ModR/M. When a SIB byte is present the address is the sign-extended
// displacement alone (the SIB's scale, index and base fields are not
// used, which matches the disp32-only-base encoding); otherwise it is
// the register named by rm plus any displacement.
func effectiveAddr(fi FetchedInst, rf *RegisterFile) uint64 {
	if fi.HasSIB {
		return uint64(int64(fi.Disp))
	}
	base := rf.Read(Reg64(fi.ModRM.RM))
	return uint64(int64(base) + int64(fi.Disp))
}

// Decode turns a FetchedInst, together with the current register
// file, into the ordered micro-operation sequence that implements it.
// nextPC is the address immediately following this instruction,
// needed by relative jumps/calls and by CALL's pushed return address.
func Decode(fi FetchedInst, rf *RegisterFile, nextPC uint64) ([]uop.UOp, error) {
	switch fi.Opcode {
	case opAddMR:
		if !fi.HasModRM {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		if fi.ModRM.isDirect() {
			dest := Reg64(fi.ModRM.RM)
			src := rf.Read(Reg64(fi.ModRM.Reg))
			return []uop.UOp{{Kind: uop.Add, Dest: uint8(dest), Src1: rf.Read(dest), Src2: src}}, nil
		}
		return nil, ErrUndefinedInstruction{Opcode: fi.Opcode} // memory-operand ADD not in this subset

	case opXorMR:
		if !fi.HasModRM || !fi.ModRM.isDirect() {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		dest := Reg64(fi.ModRM.RM)
		src := rf.Read(Reg64(fi.ModRM.Reg))
		return []uop.UOp{{Kind: uop.Mov, Dest: uint8(dest), Src1: rf.Read(dest) ^ src}}, nil

	case opGroupFF: // INC r/m (reg field must select INC)
		if !fi.HasModRM || fi.ModRM.Reg != 0 || !fi.ModRM.isDirect() {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		dest := Reg64(fi.ModRM.RM)
		return []uop.UOp{{Kind: uop.Inc, Dest: uint8(dest), Src1: rf.Read(dest)}}, nil

	case opGroupC7: // MOV r/m, imm (reg field must select MOV)
		if !fi.HasModRM || fi.ModRM.Reg != 0 || !fi.HasImm {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		if fi.ModRM.isDirect() {
			dest := Reg64(fi.ModRM.RM)
			return []uop.UOp{{Kind: uop.Mov, Dest: uint8(dest), Src1: fi.Imm}}, nil
		}
		addr := effectiveAddr(fi, rf)
		return []uop.UOp{{Kind: uop.Store, Addr: addr, Src1: fi.Imm, Width: widthToUop(fi.OperandSize)}}, nil

	case opMovMR:
		if !fi.HasModRM {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		src := rf.Read(Reg64(fi.ModRM.Reg))
		if fi.ModRM.isDirect() {
			dest := Reg64(fi.ModRM.RM)
			return []uop.UOp{{Kind: uop.Mov, Dest: uint8(dest), Src1: src}}, nil
		}
		addr := effectiveAddr(fi, rf)
		return []uop.UOp{{Kind: uop.Store, Addr: addr, Src1: src, Width: widthToUop(fi.OperandSize)}}, nil

	case opMovRM:
		if !fi.HasModRM {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		dest := Reg64(fi.ModRM.Reg)
		if fi.ModRM.isDirect() {
			src := rf.Read(Reg64(fi.ModRM.RM))
			return []uop.UOp{{Kind: uop.Mov, Dest: uint8(dest), Src1: src}}, nil
		}
		addr := effectiveAddr(fi, rf)
		return []uop.UOp{{Kind: uop.Load, Dest: uint8(dest), Addr: addr, Width: widthToUop(fi.OperandSize)}}, nil

	case opLeaRM:
		if !fi.HasModRM || fi.ModRM.isDirect() {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		dest := Reg64(fi.ModRM.Reg)
		addr := effectiveAddr(fi, rf)
		return []uop.UOp{{Kind: uop.Mov, Dest: uint8(dest), Src1: addr}}, nil

	case opMovRmSreg:
		if !fi.HasModRM || !fi.ModRM.isDirect() {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		src := rf.Read(Reg64(fi.ModRM.RM))
		return []uop.UOp{{Kind: uop.Mov, DestFile: uop.FileSegment, Dest: fi.ModRM.Reg, Src1: src}}, nil

	case opJmpRel8:
		if !fi.HasDisp {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		target := uint64(int64(nextPC) + int64(fi.Disp))
		return []uop.UOp{{Kind: uop.Jump, Src1: target}}, nil

	case opCallRel32:
		if !fi.HasDisp {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		target := uint64(int64(nextPC) + int64(fi.Disp))
		newRSP := rf.Read(Rsp) - 8
		return []uop.UOp{
			{Kind: uop.Mov, Dest: uint8(Rsp), Src1: newRSP},
			{Kind: uop.Store, Addr: newRSP, Src1: nextPC, Width: uop.QWord},
			{Kind: uop.Jump, Src1: target},
		}, nil

	case opRet:
		rsp := rf.Read(Rsp)
		return []uop.UOp{
			{Kind: uop.Return, Addr: rsp, Width: uop.QWord},
			{Kind: uop.Mov, Dest: uint8(Rsp), Src1: rsp + 8},
		}, nil

	case opHlt:
		return []uop.UOp{{Kind: uop.Halt}}, nil

	case opCld:
		return []uop.UOp{{Kind: uop.Mov, DestFile: uop.FileFlag, Src1: 0}}, nil

	case opMovOILo: // normalized +r form, PlusRReg holds the target register
		if !fi.HasImm {
			return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
		}
		return []uop.UOp{{Kind: uop.Mov, Dest: uint8(fi.PlusRReg), Src1: fi.Imm}}, nil

	case 0x50: // PUSH r (normalized +r base)
		newRSP := rf.Read(Rsp) - 8
		val := rf.Read(fi.PlusRReg)
		return []uop.UOp{
			{Kind: uop.Mov, Dest: uint8(Rsp), Src1: newRSP},
			{Kind: uop.Store, Addr: newRSP, Src1: val, Width: uop.QWord},
		}, nil

	case 0x58: // POP r (normalized +r base)
		rsp := rf.Read(Rsp)
		return []uop.UOp{
			{Kind: uop.Load, Dest: uint8(fi.PlusRReg), Addr: rsp, Width: uop.QWord},
			{Kind: uop.Mov, Dest: uint8(Rsp), Src1: rsp + 8},
		}, nil

	default:
		return nil, ErrUndefinedInstruction{Opcode: fi.Opcode}
	}
}
