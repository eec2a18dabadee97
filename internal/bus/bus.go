package bus

import "fmt"

// Bus routes the 16-bit address space to one device per region.
type Bus struct {
	mmap    *MemoryMap
	devices [NumKinds]Device
}

// Config sizes the RAM regions that vary between cartridges and models.
type Config struct {
	ExternalRAMSize int // 0 when the cartridge has no RAM
	WRAMBanks       int // switchable work RAM banks: 1 on DMG, 7 on CGB
}

// New builds a bus over rom with the standard device set.
func New(rom []byte, cfg Config) *Bus {
	sram := cfg.ExternalRAMSize
	if sram > 0x2000 {
		sram = 0x2000 // one window; banking belongs to the MBC
	}
	wram0 := NewRAM(WorkRAM00, wramBankSize)
	wramx := NewBankedRAM(cfg.WRAMBanks)
	return NewWithDevices(&DMG,
		NewROMBank0(rom),
		NewSwitchableROM(rom),
		NewRAM(VideoRAM, 0x2000),
		NewRAM(ExternalRAM, sram),
		wram0,
		wramx,
		NewEcho(wram0, wramx),
		NewRAM(OAM, 0xA0),
		Void{},
		NewIORegs(),
		NewRAM(HighRAM, 0x7F),
		NewRAM(InterruptEnable, 1),
	)
}

// NewWithDevices builds a bus from an explicit map and device set. Every
// kind in the map needs exactly one device; a broken configuration panics.
func NewWithDevices(mmap *MemoryMap, devs ...Device) *Bus {
	if err := mmap.Validate(); err != nil {
		panic(fmt.Sprintf("bus: invalid memory map: %v", err))
	}
	b := &Bus{mmap: mmap}
	for _, d := range devs {
		b.Install(d)
	}
	for _, e := range mmap {
		if b.devices[e.Kind] == nil {
			panic(fmt.Sprintf("bus: no device for %s", e.Kind))
		}
	}
	return b
}

// Install replaces the device serving d.Kind().
func (b *Bus) Install(d Device) {
	k := d.Kind()
	if k >= NumKinds {
		panic(fmt.Sprintf("bus: device reports unknown kind %s", k))
	}
	b.devices[k] = d
}

// Device returns the device installed for k.
func (b *Bus) Device(k Kind) Device { return b.devices[k] }

// Map returns the memory map the bus dispatches on.
func (b *Bus) Map() *MemoryMap { return b.mmap }

func (b *Bus) route(addr uint16) (Device, uint16) {
	e, off := b.mmap.Lookup(addr)
	return b.devices[e.Kind], off
}

func (b *Bus) Read(addr uint16) (byte, error) {
	d, off := b.route(addr)
	v, err := d.Read(off)
	return v, annotate(err, addr)
}

func (b *Bus) Write(addr uint16, v byte) error {
	d, off := b.route(addr)
	return annotate(d.Write(off, v), addr)
}

// Restore writes v at addr bypassing device side effects where the device
// supports it, and falls back to Write otherwise.
func (b *Bus) Restore(addr uint16, v byte) error {
	d, off := b.route(addr)
	if r, ok := d.(Restorer); ok {
		return annotate(r.Restore(off, v), addr)
	}
	return annotate(d.Write(off, v), addr)
}

// Peek reads addr without triggering device side effects.
func (b *Bus) Peek(addr uint16) (byte, error) {
	d, off := b.route(addr)
	v, err := d.Peek(off)
	return v, annotate(err, addr)
}

func annotate(err error, addr uint16) error {
	if mae, ok := err.(*MemoryAccessError); ok {
		mae.Addr = addr
	}
	return err
}
