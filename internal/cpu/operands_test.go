package cpu

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	f := split(0b10_110_011)
	if f != (fields{x: 2, y: 6, z: 3, p: 3, q: 0}) {
		t.Fatalf("split got %+v", f)
	}
	f = split(0x3A) // LD A,(HL-)
	if f.x != 0 || f.z != 2 || f.p != 3 || f.q != 1 {
		t.Fatalf("split(3A) got %+v", f)
	}
}

func TestDecodeR8(t *testing.T) {
	want := []Reg8{B, C, D, E, H, L, 0, A}
	for i := uint8(0); i < 8; i++ {
		r8, err := DecodeR8(i)
		if err != nil {
			t.Fatalf("DecodeR8(%d): %v", i, err)
		}
		reg, ok := r8.Reg()
		if i == 6 {
			if ok || r8 != R8HL {
				t.Fatalf("index 6 should be (HL)")
			}
			continue
		}
		if !ok || reg != want[i] {
			t.Fatalf("DecodeR8(%d) got %d want %d", i, reg, want[i])
		}
	}
}

func TestDecoders_RejectOutOfRange(t *testing.T) {
	checks := []struct {
		name string
		err  error
	}{
		{"r8", func() error { _, err := DecodeR8(8); return err }()},
		{"r16", func() error { _, err := DecodeR16(4); return err }()},
		{"r16stk", func() error { _, err := DecodeR16Stk(4); return err }()},
		{"r16mem", func() error { _, err := DecodeR16Mem(4); return err }()},
		{"cond", func() error { _, err := DecodeCond(4); return err }()},
	}
	for _, c := range checks {
		var oe *OperandError
		if !errors.As(c.err, &oe) || oe.Field != c.name {
			t.Fatalf("%s: got %v want OperandError", c.name, c.err)
		}
	}
}

func TestDecodeR16Tables(t *testing.T) {
	r16 := []Pair{BC, DE, HL, SP}
	stk := []Pair{BC, DE, HL, AF}
	for i := uint8(0); i < 4; i++ {
		if p, _ := DecodeR16(i); p != r16[i] {
			t.Fatalf("DecodeR16(%d) got %s want %s", i, p, r16[i])
		}
		if p, _ := DecodeR16Stk(i); p != stk[i] {
			t.Fatalf("DecodeR16Stk(%d) got %s want %s", i, p, stk[i])
		}
	}
}

func TestAddress_PostIncrementAndDecrement(t *testing.T) {
	var r Registers
	r.Set(BC, 0x1111)
	r.Set(DE, 0x2222)
	r.Set(HL, 0xFFFF)
	if a := r.Address(MemBC); a != 0x1111 {
		t.Fatalf("BC got %04x", a)
	}
	if a := r.Address(MemDE); a != 0x2222 {
		t.Fatalf("DE got %04x", a)
	}
	if a := r.Address(MemHLInc); a != 0xFFFF || r.Get(HL) != 0x0000 {
		t.Fatalf("HL+ got %04x HL=%04x", a, r.Get(HL))
	}
	if a := r.Address(MemHLDec); a != 0x0000 || r.Get(HL) != 0xFFFF {
		t.Fatalf("HL- got %04x HL=%04x", a, r.Get(HL))
	}
}

func TestCond_TruthTable(t *testing.T) {
	for _, z := range []bool{false, true} {
		for _, cy := range []bool{false, true} {
			var r Registers
			r.SetFlag(FlagZ, z)
			r.SetFlag(FlagC, cy)
			want := map[Cond]bool{CondNZ: !z, CondZ: z, CondNC: !cy, CondC: cy}
			for cc, w := range want {
				if cc.Holds(&r) != w {
					t.Fatalf("%s with Z=%v C=%v got %v", cc, z, cy, !w)
				}
			}
		}
	}
}
