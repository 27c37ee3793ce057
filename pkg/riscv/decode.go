// Package riscv implements the rv32i fetch/decode stage: fixed-width
// instruction fetch, opcode/funct3 bitfield extraction, and expansion
// into the architecture-neutral micro-operations in package uop.
package riscv

import (
	"fmt"

	"github.com/emu86rv/emu86rv/pkg/bus"
	"github.com/emu86rv/emu86rv/pkg/uop"
)

// Opcode values (low 7 bits of a 32-bit instruction).
const (
	OpImm = 0b0010011
	OpWfi = 0b1110011
)

// OP-IMM funct3 selectors.
const (
	funct3Addi  = 0b000
	funct3Slti  = 0b010
	funct3Sltiu = 0b011
	funct3Xori  = 0b100
	funct3Ori   = 0b110
	funct3Andi  = 0b111
)

// ErrUndefinedInstruction indicates the opcode has no decoding.
type ErrUndefinedInstruction struct{ Opcode uint32 }

func (e ErrUndefinedInstruction) Error() string {
	return fmt.Sprintf("riscv: undefined instruction, opcode=0b%07b", e.Opcode)
}

// Fetch reads one 32-bit little-endian instruction word at pc.
func Fetch(b *bus.Bus, pc uint32) (uint32, error) {
	return b.ReadU32(uint64(pc))
}

func bits(instr uint32, lo, hi uint) uint32 {
	width := hi - lo
	mask := uint32(1)<<width - 1
	return (instr >> lo) & mask
}

func opcode(instr uint32) uint32  { return bits(instr, 0, 7) }
func rd(instr uint32) uint8       { return uint8(bits(instr, 7, 12)) }
func funct3(instr uint32) uint32  { return bits(instr, 12, 15) }
func rs1(instr uint32) uint8      { return uint8(bits(instr, 15, 20)) }
func imm12(instr uint32) int32 {
	raw := bits(instr, 20, 32)
	if raw&0x800 != 0 {
		raw |= 0xFFFFF000
	}
	return int32(raw)
}

// Decode decodes instr into the micro-operation sequence needed to
// execute it. gpr supplies the current source-register values, so the
// emitted UOp carries values rather than register references, keeping
// the executor pure.
func Decode(instr uint32, gpr *Gpr) ([]uop.UOp, error) {
	op := opcode(instr)
	switch op {
	case OpImm:
		f3 := funct3(instr)
		src := uint64(gpr.Read(rs1(instr)))
		imm := uint64(uint32(imm12(instr)))
		dest := rd(instr)
		switch f3 {
		case funct3Addi:
			return []uop.UOp{{Kind: uop.Add, Dest: dest, Src1: src, Src2: imm}}, nil
		case funct3Ori:
			return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: uint64(uint32(src) | uint32(imm))}}, nil
		case funct3Andi:
			return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: uint64(uint32(src) & uint32(imm))}}, nil
		case funct3Xori:
			return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: uint64(uint32(src) ^ uint32(imm))}}, nil
		case funct3Slti:
			if int32(src) < int32(imm) {
				return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: 1}}, nil
			}
			return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: 0}}, nil
		case funct3Sltiu:
			if uint32(src) < uint32(imm) {
				return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: 1}}, nil
			}
			return []uop.UOp{{Kind: uop.Mov, Dest: dest, Src1: 0}}, nil
		default:
			return nil, ErrUndefinedInstruction{Opcode: op}
		}
	case OpWfi:
		return []uop.UOp{{Kind: uop.Halt}}, nil
	default:
		return nil, ErrUndefinedInstruction{Opcode: op}
	}
}
