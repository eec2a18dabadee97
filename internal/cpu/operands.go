package cpu

// fields splits an opcode into the classic x/y/z/p/q groups:
//
//	x = bits 7-6, y = bits 5-3, z = bits 2-0, p = bits 5-4, q = bit 3
type fields struct {
	x, y, z, p, q uint8
}

func split(op byte) fields {
	return fields{
		x: op >> 6,
		y: op >> 3 & 7,
		z: op & 7,
		p: op >> 4 & 3,
		q: op >> 3 & 1,
	}
}

// R8 selects an 8-bit operand; R8HL is the byte at (HL).
type R8 uint8

const (
	R8B R8 = iota
	R8C
	R8D
	R8E
	R8H
	R8L
	R8HL
	R8A
)

var r8Regs = [8]Reg8{R8B: B, R8C: C, R8D: D, R8E: E, R8H: H, R8L: L, R8A: A}

// Reg returns the register behind r. ok is false for R8HL.
func (r R8) Reg() (Reg8, bool) {
	if r == R8HL {
		return 0, false
	}
	return r8Regs[r&7], true
}

// DecodeR8 maps a 3-bit field to an 8-bit operand.
func DecodeR8(idx uint8) (R8, error) {
	if idx > 7 {
		return 0, &OperandError{Field: "r8", Value: idx}
	}
	return R8(idx), nil
}

var (
	r16Pairs    = [4]Pair{BC, DE, HL, SP}
	r16StkPairs = [4]Pair{BC, DE, HL, AF}
)

// DecodeR16 maps a 2-bit field to BC, DE, HL or SP.
func DecodeR16(idx uint8) (Pair, error) {
	if idx > 3 {
		return 0, &OperandError{Field: "r16", Value: idx}
	}
	return r16Pairs[idx], nil
}

// DecodeR16Stk maps a 2-bit field to BC, DE, HL or AF for PUSH and POP.
func DecodeR16Stk(idx uint8) (Pair, error) {
	if idx > 3 {
		return 0, &OperandError{Field: "r16stk", Value: idx}
	}
	return r16StkPairs[idx], nil
}

// R16Mem selects the pointer used by the LD (r16),A family.
type R16Mem uint8

const (
	MemBC R16Mem = iota
	MemDE
	MemHLInc
	MemHLDec
)

// DecodeR16Mem maps a 2-bit field to BC, DE, HL+ or HL-.
func DecodeR16Mem(idx uint8) (R16Mem, error) {
	if idx > 3 {
		return 0, &OperandError{Field: "r16mem", Value: idx}
	}
	return R16Mem(idx), nil
}

// Address returns the pointer m selects. For HL+ and HL- it returns HL as it
// was before the post-increment or post-decrement.
func (r *Registers) Address(m R16Mem) uint16 {
	switch m {
	case MemBC:
		return r.Get(BC)
	case MemDE:
		return r.Get(DE)
	case MemHLInc:
		return r.TakeAndIncrement(HL)
	default:
		return r.TakeAndDecrement(HL)
	}
}

// Cond is a branch condition.
type Cond uint8

const (
	CondNZ Cond = iota
	CondZ
	CondNC
	CondC
)

var condNames = [4]string{"NZ", "Z", "NC", "C"}

func (c Cond) String() string { return condNames[c&3] }

// DecodeCond maps a 2-bit field to NZ, Z, NC or C.
func DecodeCond(idx uint8) (Cond, error) {
	if idx > 3 {
		return 0, &OperandError{Field: "cond", Value: idx}
	}
	return Cond(idx), nil
}

// Holds evaluates c against the current flags.
func (c Cond) Holds(r *Registers) bool {
	switch c {
	case CondNZ:
		return !r.Flag(FlagZ)
	case CondZ:
		return r.Flag(FlagZ)
	case CondNC:
		return !r.Flag(FlagC)
	default:
		return r.Flag(FlagC)
	}
}
