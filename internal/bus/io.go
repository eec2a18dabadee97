package bus

const ioSize = 0x80

// Port is a hardware register with behavior beyond plain storage.
// Peek on the register block never reaches a Port.
type Port interface {
	// ReadPort returns the value the CPU observes; latched is the last
	// byte stored at the offset.
	ReadPort(latched byte) byte
	// WritePort receives a CPU write and returns the byte to latch.
	WritePort(latched, v byte) (byte, error)
}

// PortFuncs adapts plain functions to Port. Nil functions fall back to
// storage semantics.
type PortFuncs struct {
	OnRead  func(latched byte) byte
	OnWrite func(latched, v byte) (byte, error)
}

func (p PortFuncs) ReadPort(latched byte) byte {
	if p.OnRead == nil {
		return latched
	}
	return p.OnRead(latched)
}

func (p PortFuncs) WritePort(latched, v byte) (byte, error) {
	if p.OnWrite == nil {
		return v, nil
	}
	return p.OnWrite(latched, v)
}

// IORegs is the FF00-FF7F register block. Offsets without an attached
// Port behave as RAM.
type IORegs struct {
	regs  [ioSize]byte
	ports [ioSize]Port
}

func NewIORegs() *IORegs { return &IORegs{} }

func (r *IORegs) Kind() Kind { return IORegisters }

// Attach installs p at off, replacing any previous handler.
func (r *IORegs) Attach(off uint16, p Port) {
	r.ports[off] = p
}

// Latched returns the stored byte at off without side effects.
func (r *IORegs) Latched(off uint16) byte { return r.regs[off] }

// Latch stores v at off without invoking the Port. Collaborators use it to
// update register state they own.
func (r *IORegs) Latch(off uint16, v byte) { r.regs[off] = v }

func (r *IORegs) Read(off uint16) (byte, error) {
	if off >= ioSize {
		return 0, outOfWindow(IORegisters, AccessRead, off)
	}
	if p := r.ports[off]; p != nil {
		return p.ReadPort(r.regs[off]), nil
	}
	return r.regs[off], nil
}

func (r *IORegs) Peek(off uint16) (byte, error) {
	if off >= ioSize {
		return 0, outOfWindow(IORegisters, AccessPeek, off)
	}
	return r.regs[off], nil
}

func (r *IORegs) Write(off uint16, v byte) error {
	if off >= ioSize {
		return outOfWindow(IORegisters, AccessWrite, off)
	}
	if p := r.ports[off]; p != nil {
		nv, err := p.WritePort(r.regs[off], v)
		if err != nil {
			if _, ok := err.(*MemoryAccessError); ok {
				return err
			}
			return &MemoryAccessError{Kind: IORegisters, Op: AccessWrite, Offset: off, Reason: "port write", Err: err}
		}
		v = nv
	}
	r.regs[off] = v
	return nil
}

// Restore latches v at off without invoking the Port.
func (r *IORegs) Restore(off uint16, v byte) error {
	if off >= ioSize {
		return outOfWindow(IORegisters, AccessWrite, off)
	}
	r.regs[off] = v
	return nil
}
