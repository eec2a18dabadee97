package bus

const romBankSize = 0x4000

// ROM exposes one 16KB bank of a cartridge image. Bank 0 backs
// RomBank00; the switchable device starts at bank 1.
// Writes are accepted without effect: MBC control lives outside the bus.
type ROM struct {
	kind  Kind
	image []byte
	bank  int
}

// NewROMBank0 returns the fixed 0x0000-0x3FFF view of image.
func NewROMBank0(image []byte) *ROM {
	return &ROM{kind: RomBank00, image: image}
}

// NewSwitchableROM returns the 0x4000-0x7FFF view of image, showing bank 1.
func NewSwitchableROM(image []byte) *ROM {
	return &ROM{kind: CartridgeRomBank, image: image, bank: 1}
}

func (r *ROM) Kind() Kind { return r.kind }

// Bank returns the bank currently visible through the window.
func (r *ROM) Bank() int { return r.bank }

// SelectBank switches the visible bank. Only the switchable device may
// change banks; bank 0 requests on it map to bank 1 as on MBC hardware.
func (r *ROM) SelectBank(n int) {
	if r.kind == RomBank00 {
		return
	}
	if n <= 0 {
		n = 1
	}
	r.bank = n
}

// Banks returns the number of 16KB banks in the image, rounded up.
func (r *ROM) Banks() int {
	return (len(r.image) + romBankSize - 1) / romBankSize
}

func (r *ROM) byteAt(off uint16) byte {
	i := r.bank*romBankSize + int(off)
	if i < len(r.image) {
		return r.image[i]
	}
	return Sentinel // beyond the image
}

func (r *ROM) Read(off uint16) (byte, error) {
	if off >= romBankSize {
		return 0, outOfWindow(r.kind, AccessRead, off)
	}
	return r.byteAt(off), nil
}

func (r *ROM) Peek(off uint16) (byte, error) {
	if off >= romBankSize {
		return 0, outOfWindow(r.kind, AccessPeek, off)
	}
	return r.byteAt(off), nil
}

func (r *ROM) Write(off uint16, v byte) error {
	if off >= romBankSize {
		return outOfWindow(r.kind, AccessWrite, off)
	}
	return nil
}
