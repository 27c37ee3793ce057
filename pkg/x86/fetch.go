package x86

import "fmt"

// Opcode bytes this emulator decodes.
const (
	opAddMR     = 0x01
	opXorMR     = 0x31
	opMovRmSreg = 0x8E
	opLeaRM     = 0x8D
	opMovRM     = 0x8B
	opMovMR     = 0x89
	opGroupFF   = 0xFF // INC r/m (reg field == 0)
	opGroupC7   = 0xC7 // MOV r/m, imm (reg field == 0)
	opJmpRel8   = 0xEB
	opCallRel32 = 0xE8
	opRet       = 0xC3
	opHlt       = 0xF4
	opCld       = 0xFC
	opMovOILo   = 0xB8 // MOV r, imm : 0xB8 + r (low 3 bits)
	opMovOIHi   = 0xBF

	opOperandSizeOverride = 0x66
)

func isRex(b byte) bool { return b >= 0x40 && b <= 0x4F }

type rexPrefix struct {
	Present    bool
	W, R, X, B bool
}

func decodeRex(b byte) rexPrefix {
	return rexPrefix{
		Present: true,
		W:       b&0x08 != 0,
		R:       b&0x04 != 0,
		X:       b&0x02 != 0,
		B:       b&0x01 != 0,
	}
}

// needsModRM reports whether opcode is always followed by a ModR/M
// byte.
func needsModRM(opcode byte) bool {
	switch opcode {
	case opAddMR, opXorMR, opMovRmSreg, opLeaRM, opMovRM, opMovMR, opGroupFF, opGroupC7:
		return true
	default:
		return false
	}
}

func isPlusR(opcode byte) (base byte, ok bool) {
	if opcode >= opMovOILo && opcode <= opMovOIHi {
		return opMovOILo, true
	}
	if opcode >= 0x50 && opcode <= 0x57 { // PUSH r
		return 0x50, true
	}
	if opcode >= 0x58 && opcode <= 0x5F { // POP r
		return 0x58, true
	}
	return 0, false
}

// FetchedInst is the result of the fetch stage: the decoded envelope
// of one instruction, still architecture-mechanical (no register
// values have been read yet).
type FetchedInst struct {
	Opcode          byte
	PlusRReg        Reg64 // valid when opcode is a +r form (PUSH/POP/MOV OI)
	HasModRM        bool
	ModRM           modRM
	HasSIB          bool
	SIB             byte
	HasDisp         bool
	Disp            int32
	HasImm          bool
	Imm             uint64
	ImmSize         int
	OperandSize     Width
	Rex             rexPrefix
	MandatoryPrefix bool // 0x66 operand-size override seen
	Length          int  // total bytes consumed
}

// Width mirrors the operand-size granularity of an instruction.
type Width int

// The widths the fetcher can derive.
const (
	WByte Width = iota
	WWord
	WDWord
	WQWord
)

// ErrFetch indicates the window ran out of bytes mid-instruction.
type ErrFetch struct{ Opcode byte }

func (e ErrFetch) Error() string {
	return fmt.Sprintf("x86: fetch ran out of bytes decoding opcode 0x%02x", e.Opcode)
}

// ErrModRmRequired indicates opcode requires a ModR/M byte that the
// window did not contain.
type ErrModRmRequired struct{ Opcode byte }

func (e ErrModRmRequired) Error() string {
	return fmt.Sprintf("x86: opcode 0x%02x requires a ModR/M byte", e.Opcode)
}

// cursor walks the fetch window one byte at a time, tracking how many
// bytes have been consumed.
type cursor struct {
	window []byte
	pos    int
}

func (c *cursor) next() (byte, bool) {
	if c.pos >= len(c.window) {
		return 0, false
	}
	b := c.window[c.pos]
	c.pos++
	return b, true
}

// Fetch decodes one instruction from window, which must start exactly
// at the byte addressed by pc. window is normally bus.MaxInstructionLength
// bytes long; Fetch only consumes what the instruction needs.
func Fetch(window []byte) (FetchedInst, error) {
	c := &cursor{window: window}
	var fi FetchedInst

	// legacy / mandatory prefix
	for {
		b, ok := c.next()
		if !ok {
			return fi, ErrFetch{}
		}
		if b == opOperandSizeOverride {
			fi.MandatoryPrefix = true
			continue
		}
		c.pos-- // not a prefix, push back
		break
	}

	// REX prefix
	if b, ok := c.next(); ok {
		if isRex(b) {
			fi.Rex = decodeRex(b)
		} else {
			c.pos--
		}
	}

	// opcode
	opcode, ok := c.next()
	if !ok {
		return fi, ErrFetch{}
	}
	if base, isPR := isPlusR(opcode); isPR {
		reg := opcode - base
		if fi.Rex.B {
			reg += 8
		}
		fi.PlusRReg = Reg64(reg)
		fi.Opcode = base
	} else {
		fi.Opcode = opcode
	}

	// ModR/M
	if needsModRM(fi.Opcode) {
		b, ok := c.next()
		if !ok {
			return fi, ErrModRmRequired{Opcode: fi.Opcode}
		}
		fi.HasModRM = true
		fi.ModRM = decodeModRM(b)

		if fi.ModRM.needsSIB() {
			sib, ok := c.next()
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.HasSIB = true
			fi.SIB = sib
		}

		switch fi.ModRM.Mod {
		case 0b00:
			// mod==00 carries no displacement except the SIB
			// disp32-only-base encoding (base field == 0b101).
			if fi.HasSIB && sibBase(fi.SIB) == sibBaseNone {
				d, ok := readU32(c)
				if !ok {
					return fi, ErrFetch{Opcode: fi.Opcode}
				}
				fi.HasDisp = true
				fi.Disp = int32(d)
			}
		case 0b01:
			b, ok := c.next()
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.HasDisp = true
			fi.Disp = int32(int8(b))
		case 0b10:
			d, ok := readU32(c)
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.HasDisp = true
			fi.Disp = int32(d)
		}
	}

	// displacement for CALL rel32 / JMP rel8 (no ModR/M, disp carries the target)
	switch fi.Opcode {
	case opJmpRel8:
		b, ok := c.next()
		if !ok {
			return fi, ErrFetch{Opcode: fi.Opcode}
		}
		fi.HasDisp = true
		fi.Disp = int32(int8(b))
	case opCallRel32:
		d, ok := readU32(c)
		if !ok {
			return fi, ErrFetch{Opcode: fi.Opcode}
		}
		fi.HasDisp = true
		fi.Disp = int32(d)
	}

	// immediate
	switch fi.Opcode {
	case opMovOILo:
		fi.HasImm = true
		if fi.Rex.W {
			v, ok := readU64(c)
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.Imm, fi.ImmSize = v, 8
		} else {
			v, ok := readU32(c)
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.Imm, fi.ImmSize = uint64(v), 4
		}
	case opGroupC7:
		fi.HasImm = true
		if fi.MandatoryPrefix {
			v, ok := readU16(c)
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.Imm, fi.ImmSize = uint64(v), 2
		} else {
			v, ok := readU32(c)
			if !ok {
				return fi, ErrFetch{Opcode: fi.Opcode}
			}
			fi.Imm, fi.ImmSize = uint64(v), 4
		}
	}

	// operand size
	switch {
	case fi.Rex.W:
		fi.OperandSize = WQWord
	case fi.MandatoryPrefix:
		fi.OperandSize = WWord
	default:
		fi.OperandSize = WDWord
	}

	fi.Length = c.pos
	return fi, nil
}

func readU16(c *cursor) (uint16, bool) {
	var v uint16
	for i := 0; i < 2; i++ {
		b, ok := c.next()
		if !ok {
			return 0, false
		}
		v |= uint16(b) << (8 * i)
	}
	return v, true
}

func readU32(c *cursor) (uint32, bool) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, ok := c.next()
		if !ok {
			return 0, false
		}
		v |= uint32(b) << (8 * i)
	}
	return v, true
}

func readU64(c *cursor) (uint64, bool) {
	var v uint64
	for i := 0; i < 8; i++ {
		b, ok := c.next()
		if !ok {
			return 0, false
		}
		v |= uint64(b) << (8 * i)
	}
	return v, true
}
