package cpu

import (
	"github.com/pkg/errors"
)

// Bus is the memory the CPU executes against.
type Bus interface {
	Read(addr uint16) (byte, error)
	Write(addr uint16, v byte) error
	Peek(addr uint16) (byte, error)
}

// IdleCycles is the cost of a Step while the CPU is halted or stopped.
const IdleCycles = 1

// InterruptCycles is the cost of dispatching an interrupt.
const InterruptCycles = 5

// CPU is the SM83 instruction engine. Cycle counts are M-cycles.
type CPU struct {
	regs Registers

	ime bool
	// EI enables IME after the following instruction
	eiPending bool
	// HALT and STOP share one low-power state; only Wake leaves it
	halted bool
}

// New returns a CPU with every register zeroed.
func New() *CPU { return &CPU{} }

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers { return c.regs }

// SetRegisters replaces the register file, e.g. with PowerOn().
func (c *CPU) SetRegisters(r Registers) { c.regs = r }

func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is in HALT or STOP.
func (c *CPU) Halted() bool { return c.halted }

// Wake leaves the low-power state. The machine calls it once an enabled
// interrupt is pending.
func (c *CPU) Wake() { c.halted = false }

// Step executes one instruction and returns the elapsed M-cycles. On error
// no register or memory change of the instruction is applied.
func (c *CPU) Step(b Bus) (int, error) {
	if c.halted {
		return IdleCycles, nil
	}
	t := c.begin(b)
	pc := c.regs.Get(PC)
	op, err := t.fetch8()
	if err != nil {
		return 0, &Error{PC: pc, Err: err}
	}
	cycles, err := t.exec(op)
	if err == nil {
		err = t.commit()
	}
	if err != nil {
		return 0, &Error{PC: pc, Opcode: op, Err: err}
	}
	c.finish(t)
	return cycles, nil
}

// Interrupt dispatches interrupt bit (0 VBlank .. 4 Joypad) if IME is set:
// IME is cleared, PC is pushed and execution continues at 0x40+8*bit.
// It returns 0 cycles when IME is clear.
func (c *CPU) Interrupt(b Bus, bit uint8) (int, error) {
	pc := c.regs.Get(PC)
	if bit > 4 {
		return 0, &Error{PC: pc, Err: &OperandError{Field: "interrupt", Value: bit}}
	}
	if !c.ime {
		return 0, nil
	}
	t := c.begin(b)
	t.push16(pc)
	t.r.Set(PC, 0x40+8*uint16(bit))
	if err := t.commit(); err != nil {
		return 0, &Error{PC: pc, Err: errors.Wrapf(err, "dispatch interrupt %d", bit)}
	}
	c.regs = t.r
	c.ime = false
	c.eiPending = false
	c.halted = false
	return InterruptCycles, nil
}

func (c *CPU) begin(b Bus) *txn {
	return &txn{bus: b, r: c.regs, ime: c.ime}
}

func (c *CPU) finish(t *txn) {
	c.regs = t.r
	c.ime = t.ime
	if c.eiPending && !t.di {
		c.ime = true
	}
	c.eiPending = t.ei
	c.halted = t.halted
}

type pendingWrite struct {
	addr uint16
	v    byte
}

// txn holds the effects of one instruction until commit.
type txn struct {
	bus Bus
	r   Registers

	writes [2]pendingWrite
	n      int

	ime    bool
	ei, di bool
	halted bool
}

func (t *txn) fetch8() (byte, error) {
	pc := t.r.TakeAndIncrement(PC)
	v, err := t.bus.Read(pc)
	if err != nil {
		return 0, errors.Wrapf(err, "fetch %04X", pc)
	}
	return v, nil
}

func (t *txn) fetch16() (uint16, error) {
	lo, err := t.fetch8()
	if err != nil {
		return 0, err
	}
	hi, err := t.fetch8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (t *txn) read8(addr uint16) (byte, error) {
	v, err := t.bus.Read(addr)
	if err != nil {
		return 0, errors.Wrapf(err, "read %04X", addr)
	}
	return v, nil
}

func (t *txn) read16(addr uint16) (uint16, error) {
	lo, err := t.read8(addr)
	if err != nil {
		return 0, err
	}
	hi, err := t.read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// write8 queues a bus write for commit. No SM83 instruction reads back a
// location it wrote, so reads never need to consult the queue.
func (t *txn) write8(addr uint16, v byte) {
	t.writes[t.n] = pendingWrite{addr, v}
	t.n++
}

func (t *txn) write16(addr uint16, v uint16) {
	t.write8(addr, byte(v))
	t.write8(addr+1, byte(v>>8))
}

func (t *txn) push16(v uint16) {
	sp := t.r.Get(SP) - 2
	t.r.Set(SP, sp)
	t.write16(sp, v)
}

func (t *txn) pop16() (uint16, error) {
	sp := t.r.Get(SP)
	v, err := t.read16(sp)
	if err != nil {
		return 0, err
	}
	t.r.Set(SP, sp+2)
	return v, nil
}

// restorer is implemented by buses that can put a byte back without device
// side effects. *bus.Bus does.
type restorer interface {
	Restore(addr uint16, v byte) error
}

// commit applies queued writes in order. Old values are peeked first; if a
// write fails, the writes already applied are put back through Restore when
// the bus offers it, else through Write. Effects a port already produced for
// an applied write (serial output, an interrupt request) are not undone.
func (t *txn) commit() error {
	var old [len(t.writes)]byte
	for i := 0; i < t.n; i++ {
		v, err := t.bus.Peek(t.writes[i].addr)
		if err != nil {
			return errors.Wrapf(err, "write %04X", t.writes[i].addr)
		}
		old[i] = v
	}
	undo := t.bus.Write
	if r, ok := t.bus.(restorer); ok {
		undo = r.Restore
	}
	for i := 0; i < t.n; i++ {
		w := t.writes[i]
		if err := t.bus.Write(w.addr, w.v); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = undo(t.writes[j].addr, old[j])
			}
			return errors.Wrapf(err, "write %04X", w.addr)
		}
	}
	return nil
}

func (t *txn) load(idx uint8) (byte, error) {
	r8, err := DecodeR8(idx)
	if err != nil {
		return 0, err
	}
	if reg, ok := r8.Reg(); ok {
		return t.r.Get8(reg), nil
	}
	return t.read8(t.r.Get(HL))
}

// store writes an r8 operand; (HL) is queued for commit.
func (t *txn) store(idx uint8, v byte) error {
	r8, err := DecodeR8(idx)
	if err != nil {
		return err
	}
	if reg, ok := r8.Reg(); ok {
		t.r.Set8(reg, v)
		return nil
	}
	t.write8(t.r.Get(HL), v)
	return nil
}
