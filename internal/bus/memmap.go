package bus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Entry assigns a device kind to the window [Base, Base+Size).
type Entry struct {
	Kind Kind
	Base uint16
	Size uint32
}

func span(k Kind, base, end uint32) Entry {
	return Entry{Kind: k, Base: uint16(base), Size: end - base}
}

// End returns the first address past the window.
func (e Entry) End() uint32 { return uint32(e.Base) + e.Size }

// Contains reports whether addr falls inside the window.
func (e Entry) Contains(addr uint16) bool {
	return addr >= e.Base && uint32(addr) < e.End()
}

// MemoryMap is an ordered table of windows partitioning 0x0000-0xFFFF.
type MemoryMap [12]Entry

// DMG is the fixed Game Boy memory map.
var DMG = MemoryMap{
	span(RomBank00, 0x0000, 0x4000),
	span(CartridgeRomBank, 0x4000, 0x8000),
	span(VideoRAM, 0x8000, 0xA000),
	span(ExternalRAM, 0xA000, 0xC000),
	span(WorkRAM00, 0xC000, 0xD000),
	span(SwitchableWorkRAM, 0xD000, 0xE000),
	span(EchoRAM, 0xE000, 0xFE00),
	span(OAM, 0xFE00, 0xFEA0),
	span(Unusable, 0xFEA0, 0xFF00),
	span(IORegisters, 0xFF00, 0xFF80),
	span(HighRAM, 0xFF80, 0xFFFF),
	span(InterruptEnable, 0xFFFF, 0x10000),
}

// Lookup returns the entry owning addr and the device-local offset.
// A table that passed Validate always finds exactly one entry.
func (m *MemoryMap) Lookup(addr uint16) (Entry, uint16) {
	for _, e := range m {
		if e.Contains(addr) {
			return e, addr - e.Base
		}
	}
	panic(fmt.Sprintf("bus: address %04X not covered by memory map", addr))
}

// Entry returns the window assigned to kind.
func (m *MemoryMap) Entry(k Kind) (Entry, bool) {
	for _, e := range m {
		if e.Kind == k {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks that the entries are contiguous, non-empty, start at 0
// and end at 0x10000, and that no kind is mapped twice.
func (m *MemoryMap) Validate() error {
	var seen [NumKinds]bool
	next := uint32(0)
	for i, e := range m {
		if e.Kind >= NumKinds {
			return errors.Errorf("entry %d: unknown device %s", i, e.Kind)
		}
		if seen[e.Kind] {
			return errors.Errorf("entry %d: %s mapped twice", i, e.Kind)
		}
		seen[e.Kind] = true
		if e.Size == 0 {
			return errors.Errorf("entry %d: %s has zero size", i, e.Kind)
		}
		if uint32(e.Base) != next {
			return errors.Errorf("entry %d: %s starts at %04X, want %04X", i, e.Kind, e.Base, next)
		}
		next = e.End()
	}
	if next != 0x10000 {
		return errors.Errorf("memory map ends at %05X, want 10000", next)
	}
	return nil
}
