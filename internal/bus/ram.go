package bus

// RAM is a flat read/write store.
type RAM struct {
	kind Kind
	mem  []byte
}

// NewRAM allocates size bytes for kind. A zero-sized RAM models an absent
// store (cartridges without external RAM): reads return Sentinel and
// writes are dropped.
func NewRAM(kind Kind, size int) *RAM {
	return &RAM{kind: kind, mem: make([]byte, size)}
}

func (r *RAM) Kind() Kind { return r.kind }

// Len returns the number of bytes of storage.
func (r *RAM) Len() int { return len(r.mem) }

func (r *RAM) Read(off uint16) (byte, error) {
	return r.load(AccessRead, off)
}

func (r *RAM) Peek(off uint16) (byte, error) {
	return r.load(AccessPeek, off)
}

func (r *RAM) load(op Access, off uint16) (byte, error) {
	if len(r.mem) == 0 {
		return Sentinel, nil
	}
	if int(off) >= len(r.mem) {
		return 0, outOfWindow(r.kind, op, off)
	}
	return r.mem[off], nil
}

func (r *RAM) Write(off uint16, v byte) error {
	if len(r.mem) == 0 {
		return nil
	}
	if int(off) >= len(r.mem) {
		return outOfWindow(r.kind, AccessWrite, off)
	}
	r.mem[off] = v
	return nil
}

const wramBankSize = 0x1000

// BankedRAM is the switchable work RAM window: one bank on DMG, seven on
// CGB (selected through SVBK).
type BankedRAM struct {
	banks [][wramBankSize]byte
	cur   int
}

// NewBankedRAM allocates n banks, numbered 1..n.
func NewBankedRAM(n int) *BankedRAM {
	if n < 1 {
		n = 1
	}
	return &BankedRAM{banks: make([][wramBankSize]byte, n), cur: 1}
}

func (w *BankedRAM) Kind() Kind { return SwitchableWorkRAM }

// Bank returns the selected bank number (1-based).
func (w *BankedRAM) Bank() int { return w.cur }

// SelectBank makes bank n visible. 0 selects bank 1; numbers past the
// last bank wrap.
func (w *BankedRAM) SelectBank(n int) {
	if n <= 0 {
		n = 1
	}
	w.cur = (n-1)%len(w.banks) + 1
}

func (w *BankedRAM) Read(off uint16) (byte, error) {
	if off >= wramBankSize {
		return 0, outOfWindow(SwitchableWorkRAM, AccessRead, off)
	}
	return w.banks[w.cur-1][off], nil
}

func (w *BankedRAM) Peek(off uint16) (byte, error) {
	if off >= wramBankSize {
		return 0, outOfWindow(SwitchableWorkRAM, AccessPeek, off)
	}
	return w.banks[w.cur-1][off], nil
}

func (w *BankedRAM) Write(off uint16, v byte) error {
	if off >= wramBankSize {
		return outOfWindow(SwitchableWorkRAM, AccessWrite, off)
	}
	w.banks[w.cur-1][off] = v
	return nil
}
