package cpu

import "fmt"

// Pair names one of the six 16-bit registers.
type Pair uint8

const (
	AF Pair = iota
	BC
	DE
	HL
	SP
	PC

	numPairs
)

var pairNames = [numPairs]string{"AF", "BC", "DE", "HL", "SP", "PC"}

func (p Pair) String() string {
	if p < numPairs {
		return pairNames[p]
	}
	return fmt.Sprintf("Pair(%d)", uint8(p))
}

// Reg8 names an 8-bit half of AF, BC, DE or HL.
type Reg8 uint8

const (
	A Reg8 = iota
	F
	B
	C
	D
	E
	H
	L
)

// owner maps each 8-bit register to its pair and half.
var owner = [...]struct {
	pair Pair
	high bool
}{
	A: {AF, true}, F: {AF, false},
	B: {BC, true}, C: {BC, false},
	D: {DE, true}, E: {DE, false},
	H: {HL, true}, L: {HL, false},
}

// Flag is the bit position of a flag in F.
type Flag uint8

const (
	FlagZ Flag = 7
	FlagN Flag = 6
	FlagH Flag = 5
	FlagC Flag = 4
)

// F only implements its upper nibble.
const flagMask = 0xF0

// Registers is the SM83 register file: six 16-bit registers with 8-bit
// and flag views over them.
type Registers struct {
	pairs [numPairs]uint16
}

// PowerOn returns the DMG register state after the boot ROM hands over.
func PowerOn() Registers {
	var r Registers
	r.Set(AF, 0x01B0)
	r.Set(BC, 0x0013)
	r.Set(DE, 0x00D8)
	r.Set(HL, 0x014D)
	r.Set(SP, 0xFFFE)
	r.Set(PC, 0x0100)
	return r
}

func (r *Registers) Get(p Pair) uint16 { return r.pairs[p] }

func (r *Registers) Set(p Pair, v uint16) {
	if p == AF {
		v &= 0xFF00 | flagMask
	}
	r.pairs[p] = v
}

func (r *Registers) Get8(x Reg8) byte {
	o := owner[x]
	if o.high {
		return byte(r.pairs[o.pair] >> 8)
	}
	return byte(r.pairs[o.pair])
}

func (r *Registers) Set8(x Reg8, v byte) {
	o := owner[x]
	cur := r.pairs[o.pair]
	if o.high {
		r.Set(o.pair, cur&0x00FF|uint16(v)<<8)
	} else {
		r.Set(o.pair, cur&0xFF00|uint16(v))
	}
}

func (r *Registers) Flag(f Flag) bool {
	return r.pairs[AF]>>f&1 == 1
}

// SetFlag sets or clears f. Bits outside Z, N, H and C are ignored so the
// low nibble of F stays zero.
func (r *Registers) SetFlag(f Flag, on bool) {
	bit := uint16(1) << f & flagMask
	if on {
		r.pairs[AF] |= bit
	} else {
		r.pairs[AF] &^= bit
	}
}

// setZNHC replaces all four flags.
func (r *Registers) setZNHC(z, n, h, cy bool) {
	r.pairs[AF] &^= flagMask
	r.SetFlag(FlagZ, z)
	r.SetFlag(FlagN, n)
	r.SetFlag(FlagH, h)
	r.SetFlag(FlagC, cy)
}

// TakeAndIncrement returns p and then stores p+1, wrapping at 16 bits.
func (r *Registers) TakeAndIncrement(p Pair) uint16 {
	v := r.pairs[p]
	r.Set(p, v+1)
	return v
}

// TakeAndDecrement returns p and then stores p-1, wrapping at 16 bits.
func (r *Registers) TakeAndDecrement(p Pair) uint16 {
	v := r.pairs[p]
	r.Set(p, v-1)
	return v
}

func (r Registers) String() string {
	return fmt.Sprintf("A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X PC=%04X",
		r.Get8(A), r.Get8(F), r.Get8(B), r.Get8(C), r.Get8(D), r.Get8(E), r.Get8(H), r.Get8(L),
		r.pairs[SP], r.pairs[PC])
}
