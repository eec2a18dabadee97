package cpu

// exec decodes op and applies it to the transaction, returning M-cycles.
func (t *txn) exec(op byte) (int, error) {
	f := split(op)
	switch f.x {
	case 0:
		return t.execX0(f)
	case 1:
		if op == 0x76 { // HALT
			t.halted = true
			return 1, nil
		}
		// LD r8,r8
		v, err := t.load(f.z)
		if err != nil {
			return 0, err
		}
		if err := t.store(f.y, v); err != nil {
			return 0, err
		}
		if f.y == 6 || f.z == 6 {
			return 2, nil
		}
		return 1, nil
	case 2:
		// ALU A,r8
		v, err := t.load(f.z)
		if err != nil {
			return 0, err
		}
		t.r.alu(f.y, v)
		if f.z == 6 {
			return 2, nil
		}
		return 1, nil
	default:
		return t.execX3(op, f)
	}
}

func (t *txn) execX0(f fields) (int, error) {
	switch f.z {
	case 0:
		switch f.y {
		case 0: // NOP
			return 1, nil
		case 1: // LD (a16),SP
			addr, err := t.fetch16()
			if err != nil {
				return 0, err
			}
			t.write16(addr, t.r.Get(SP))
			return 5, nil
		case 2: // STOP, with its padding byte
			if _, err := t.fetch8(); err != nil {
				return 0, err
			}
			t.halted = true
			return 1, nil
		case 3: // JR e
			e, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			t.jumpRel(e)
			return 3, nil
		default: // JR cc,e
			cc, err := DecodeCond(f.y - 4)
			if err != nil {
				return 0, err
			}
			e, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			if !cc.Holds(&t.r) {
				return 2, nil
			}
			t.jumpRel(e)
			return 3, nil
		}
	case 1:
		rr, err := DecodeR16(f.p)
		if err != nil {
			return 0, err
		}
		if f.q == 1 { // ADD HL,r16
			t.r.addHL(t.r.Get(rr))
			return 2, nil
		}
		v, err := t.fetch16() // LD r16,d16
		if err != nil {
			return 0, err
		}
		t.r.Set(rr, v)
		return 3, nil
	case 2:
		m, err := DecodeR16Mem(f.p)
		if err != nil {
			return 0, err
		}
		addr := t.r.Address(m)
		if f.q == 1 { // LD A,(r16mem)
			v, err := t.read8(addr)
			if err != nil {
				return 0, err
			}
			t.r.Set8(A, v)
			return 2, nil
		}
		t.write8(addr, t.r.Get8(A)) // LD (r16mem),A
		return 2, nil
	case 3:
		rr, err := DecodeR16(f.p)
		if err != nil {
			return 0, err
		}
		if f.q == 0 {
			t.r.Set(rr, t.r.Get(rr)+1)
		} else {
			t.r.Set(rr, t.r.Get(rr)-1)
		}
		return 2, nil
	case 4, 5: // INC r8, DEC r8
		v, err := t.load(f.y)
		if err != nil {
			return 0, err
		}
		if f.z == 4 {
			v = inc8(&t.r, v)
		} else {
			v = dec8(&t.r, v)
		}
		if err := t.store(f.y, v); err != nil {
			return 0, err
		}
		if f.y == 6 {
			return 3, nil
		}
		return 1, nil
	case 6: // LD r8,d8
		v, err := t.fetch8()
		if err != nil {
			return 0, err
		}
		if err := t.store(f.y, v); err != nil {
			return 0, err
		}
		if f.y == 6 {
			return 3, nil
		}
		return 2, nil
	default:
		t.accumulatorOp(f.y)
		return 1, nil
	}
}

// accumulatorOp covers RLCA RRCA RLA RRA DAA CPL SCF CCF.
func (t *txn) accumulatorOp(y uint8) {
	r := &t.r
	switch y {
	case 0, 1, 2, 3:
		res, cy := rotate(y, r.Get8(A), r.Flag(FlagC))
		r.Set8(A, res)
		r.setZNHC(false, false, false, cy)
	case 4:
		r.daa()
	case 5: // CPL
		r.Set8(A, ^r.Get8(A))
		r.SetFlag(FlagN, true)
		r.SetFlag(FlagH, true)
	case 6: // SCF
		r.setZNHC(r.Flag(FlagZ), false, false, true)
	case 7: // CCF
		r.setZNHC(r.Flag(FlagZ), false, false, !r.Flag(FlagC))
	}
}

func (t *txn) jumpRel(e byte) {
	t.r.Set(PC, uint16(int32(t.r.Get(PC))+int32(int8(e))))
}

func (t *txn) call(addr uint16) {
	t.push16(t.r.Get(PC))
	t.r.Set(PC, addr)
}

func (t *txn) execX3(op byte, f fields) (int, error) {
	switch f.z {
	case 0:
		switch f.y {
		case 4: // LDH (a8),A
			n, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			t.write8(0xFF00+uint16(n), t.r.Get8(A))
			return 3, nil
		case 5: // ADD SP,e
			e, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			t.r.Set(SP, t.r.spOffset(e))
			return 4, nil
		case 6: // LDH A,(a8)
			n, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			v, err := t.read8(0xFF00 + uint16(n))
			if err != nil {
				return 0, err
			}
			t.r.Set8(A, v)
			return 3, nil
		case 7: // LD HL,SP+e
			e, err := t.fetch8()
			if err != nil {
				return 0, err
			}
			t.r.Set(HL, t.r.spOffset(e))
			return 3, nil
		default: // RET cc
			cc, err := DecodeCond(f.y)
			if err != nil {
				return 0, err
			}
			if !cc.Holds(&t.r) {
				return 2, nil
			}
			addr, err := t.pop16()
			if err != nil {
				return 0, err
			}
			t.r.Set(PC, addr)
			return 5, nil
		}
	case 1:
		if f.q == 0 { // POP r16stk
			rr, err := DecodeR16Stk(f.p)
			if err != nil {
				return 0, err
			}
			v, err := t.pop16()
			if err != nil {
				return 0, err
			}
			t.r.Set(rr, v)
			return 3, nil
		}
		switch f.p {
		case 0, 1: // RET, RETI
			addr, err := t.pop16()
			if err != nil {
				return 0, err
			}
			t.r.Set(PC, addr)
			if f.p == 1 {
				t.ime = true
			}
			return 4, nil
		case 2: // JP HL
			t.r.Set(PC, t.r.Get(HL))
			return 1, nil
		default: // LD SP,HL
			t.r.Set(SP, t.r.Get(HL))
			return 2, nil
		}
	case 2:
		switch f.y {
		case 4: // LD (C),A
			t.write8(0xFF00+uint16(t.r.Get8(C)), t.r.Get8(A))
			return 2, nil
		case 5: // LD (a16),A
			addr, err := t.fetch16()
			if err != nil {
				return 0, err
			}
			t.write8(addr, t.r.Get8(A))
			return 4, nil
		case 6: // LD A,(C)
			v, err := t.read8(0xFF00 + uint16(t.r.Get8(C)))
			if err != nil {
				return 0, err
			}
			t.r.Set8(A, v)
			return 2, nil
		case 7: // LD A,(a16)
			addr, err := t.fetch16()
			if err != nil {
				return 0, err
			}
			v, err := t.read8(addr)
			if err != nil {
				return 0, err
			}
			t.r.Set8(A, v)
			return 4, nil
		default: // JP cc,a16
			cc, err := DecodeCond(f.y)
			if err != nil {
				return 0, err
			}
			addr, err := t.fetch16()
			if err != nil {
				return 0, err
			}
			if !cc.Holds(&t.r) {
				return 3, nil
			}
			t.r.Set(PC, addr)
			return 4, nil
		}
	case 3:
		switch f.y {
		case 0: // JP a16
			addr, err := t.fetch16()
			if err != nil {
				return 0, err
			}
			t.r.Set(PC, addr)
			return 4, nil
		case 1:
			return t.execCB()
		case 6: // DI
			t.ime = false
			t.ei = false
			t.di = true
			return 1, nil
		case 7: // EI
			t.ei = true
			return 1, nil
		}
		return 0, &IllegalOpcodeError{Opcode: op}
	case 4:
		if f.y > 3 {
			return 0, &IllegalOpcodeError{Opcode: op}
		}
		cc, err := DecodeCond(f.y) // CALL cc,a16
		if err != nil {
			return 0, err
		}
		addr, err := t.fetch16()
		if err != nil {
			return 0, err
		}
		if !cc.Holds(&t.r) {
			return 3, nil
		}
		t.call(addr)
		return 6, nil
	case 5:
		if f.q == 0 { // PUSH r16stk
			rr, err := DecodeR16Stk(f.p)
			if err != nil {
				return 0, err
			}
			t.push16(t.r.Get(rr))
			return 4, nil
		}
		if f.p != 0 {
			return 0, &IllegalOpcodeError{Opcode: op}
		}
		addr, err := t.fetch16() // CALL a16
		if err != nil {
			return 0, err
		}
		t.call(addr)
		return 6, nil
	case 6: // ALU A,d8
		v, err := t.fetch8()
		if err != nil {
			return 0, err
		}
		t.r.alu(f.y, v)
		return 2, nil
	default: // RST
		t.call(uint16(f.y) * 8)
		return 4, nil
	}
}

// execCB runs the instruction after a 0xCB prefix.
func (t *txn) execCB() (int, error) {
	op, err := t.fetch8()
	if err != nil {
		return 0, err
	}
	f := split(op)
	v, err := t.load(f.z)
	if err != nil {
		return 0, err
	}
	indirect := f.z == 6
	switch f.x {
	case 0: // rotate/shift/swap
		res, cy := rotate(f.y, v, t.r.Flag(FlagC))
		t.r.setZNHC(res == 0, false, false, cy)
		v = res
	case 1: // BIT y,r8
		t.r.setZNHC(v>>f.y&1 == 0, false, true, t.r.Flag(FlagC))
		if indirect {
			return 3, nil
		}
		return 2, nil
	case 2: // RES y,r8
		v &^= 1 << f.y
	default: // SET y,r8
		v |= 1 << f.y
	}
	if err := t.store(f.z, v); err != nil {
		return 0, err
	}
	if indirect {
		return 4, nil
	}
	return 2, nil
}
