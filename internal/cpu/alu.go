package cpu

func add8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z = res == 0
	h = (a&0x0F)+(b&0x0F)+ci > 0x0F
	cy = r > 0xFF
	return
}

func sub8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := int16(a) - int16(b) - int16(ci)
	res = byte(r)
	z = res == 0
	n = true
	h = int16(a&0x0F)-int16(b&0x0F)-int16(ci) < 0
	cy = r < 0
	return
}

// alu applies the block-2 operation y (ADD ADC SUB SBC AND XOR OR CP) to A.
func (r *Registers) alu(y uint8, v byte) {
	a := r.Get8(A)
	carry := r.Flag(FlagC)
	var (
		res        byte
		z, n, h, c bool
	)
	switch y & 7 {
	case 0:
		res, z, n, h, c = add8(a, v, false)
	case 1:
		res, z, n, h, c = add8(a, v, carry)
	case 2:
		res, z, n, h, c = sub8(a, v, false)
	case 3:
		res, z, n, h, c = sub8(a, v, carry)
	case 4:
		res = a & v
		z, h = res == 0, true
	case 5:
		res = a ^ v
		z = res == 0
	case 6:
		res = a | v
		z = res == 0
	case 7: // CP keeps A
		_, z, n, h, c = sub8(a, v, false)
		res = a
	}
	r.Set8(A, res)
	r.setZNHC(z, n, h, c)
}

func inc8(r *Registers, v byte) byte {
	res := v + 1
	r.setZNHC(res == 0, false, v&0x0F == 0x0F, r.Flag(FlagC))
	return res
}

func dec8(r *Registers, v byte) byte {
	res := v - 1
	r.setZNHC(res == 0, true, v&0x0F == 0x00, r.Flag(FlagC))
	return res
}

// rotate applies the CB-block shift y (RLC RRC RL RR SLA SRA SWAP SRL).
func rotate(y uint8, v byte, carryIn bool) (res byte, cy bool) {
	cin := byte(0)
	if carryIn {
		cin = 1
	}
	switch y & 7 {
	case 0: // RLC
		return v<<1 | v>>7, v&0x80 != 0
	case 1: // RRC
		return v>>1 | v<<7, v&1 != 0
	case 2: // RL
		return v<<1 | cin, v&0x80 != 0
	case 3: // RR
		return v>>1 | cin<<7, v&1 != 0
	case 4: // SLA
		return v << 1, v&0x80 != 0
	case 5: // SRA
		return v>>1 | v&0x80, v&1 != 0
	case 6: // SWAP
		return v<<4 | v>>4, false
	default: // SRL
		return v >> 1, v&1 != 0
	}
}

// addHL adds a 16-bit value to HL. Z is preserved.
func (r *Registers) addHL(v uint16) {
	hl := r.Get(HL)
	sum := uint32(hl) + uint32(v)
	r.Set(HL, uint16(sum))
	r.setZNHC(r.Flag(FlagZ), false, hl&0x0FFF+v&0x0FFF > 0x0FFF, sum > 0xFFFF)
}

// spOffset computes SP+e for ADD SP,e and LD HL,SP+e. Flags come from the
// unsigned low-byte addition.
func (r *Registers) spOffset(e byte) uint16 {
	sp := r.Get(SP)
	_, _, _, h, c := add8(byte(sp), e, false)
	r.setZNHC(false, false, h, c)
	return uint16(int32(sp) + int32(int8(e)))
}

func (r *Registers) daa() {
	a := r.Get8(A)
	cf := r.Flag(FlagC)
	sub := r.Flag(FlagN)
	if !sub {
		if cf || a > 0x99 {
			a += 0x60
			cf = true
		}
		if r.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if cf {
			a -= 0x60
		}
		if r.Flag(FlagH) {
			a -= 0x06
		}
	}
	r.Set8(A, a)
	r.setZNHC(a == 0, sub, false, cf)
}
