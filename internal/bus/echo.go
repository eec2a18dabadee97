package bus

const echoSize = 0x1E00

// Echo aliases C000-DDFF. It holds no storage: offsets below 0x1000 go to
// work RAM bank 0 and the rest to the switchable bank.
type Echo struct {
	low  Device
	high Device
}

// NewEcho mirrors wram0 and wramx.
func NewEcho(wram0, wramx Device) *Echo {
	return &Echo{low: wram0, high: wramx}
}

func (e *Echo) Kind() Kind { return EchoRAM }

func (e *Echo) target(op Access, off uint16) (Device, uint16, error) {
	switch {
	case off < wramBankSize:
		return e.low, off, nil
	case off < echoSize:
		return e.high, off - wramBankSize, nil
	}
	return nil, 0, outOfWindow(EchoRAM, op, off)
}

func (e *Echo) Read(off uint16) (byte, error) {
	d, o, err := e.target(AccessRead, off)
	if err != nil {
		return 0, err
	}
	return d.Read(o)
}

func (e *Echo) Peek(off uint16) (byte, error) {
	d, o, err := e.target(AccessPeek, off)
	if err != nil {
		return 0, err
	}
	return d.Peek(o)
}

func (e *Echo) Write(off uint16, v byte) error {
	d, o, err := e.target(AccessWrite, off)
	if err != nil {
		return err
	}
	return d.Write(o, v)
}

// Void backs the unusable FEA0-FEFF window.
type Void struct{}

func (Void) Kind() Kind { return Unusable }

func (Void) Read(off uint16) (byte, error) { return Sentinel, nil }

func (Void) Peek(off uint16) (byte, error) { return Sentinel, nil }

func (Void) Write(off uint16, v byte) error { return nil }
