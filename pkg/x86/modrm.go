package x86

// modRM is the decoded ModR/M byte: <mod:2><reg:3><rm:3>.
type modRM struct {
	Mod uint8
	Reg uint8
	RM  uint8
}

func decodeModRM(b byte) modRM {
	return modRM{
		Mod: (b >> 6) & 0b11,
		Reg: (b >> 3) & 0b111,
		RM:  b & 0b111,
	}
}

const modDirect = 0b11

// isDirect reports whether the ModR/M addresses a register directly
// rather than memory.
func (m modRM) isDirect() bool { return m.Mod == modDirect }

// needsSIB reports whether a SIB byte follows, per spec: only when
// rm selects RSP and addressing is not direct-register.
func (m modRM) needsSIB() bool {
	return !m.isDirect() && m.RM == uint8(Rsp)
}

// sibBase extracts the base field <ss:2><index:3><base:3> from a raw
// SIB byte.
func sibBase(b byte) uint8 { return b & 0b111 }

// sibBaseNone is the base-field encoding that means "no base register,
// disp32 follows" when mod == 0b00.
const sibBaseNone = 0b101
