package bus

import "fmt"

// Kind identifies the physical region a device backs.
type Kind uint8

const (
	RomBank00 Kind = iota
	CartridgeRomBank
	VideoRAM
	ExternalRAM
	WorkRAM00
	SwitchableWorkRAM // banks 1-7 on CGB, a single bank on DMG
	EchoRAM           // mirror of C000-DDFF
	OAM
	Unusable
	IORegisters
	HighRAM
	InterruptEnable

	NumKinds
)

var kindNames = [NumKinds]string{
	RomBank00:         "ROM0",
	CartridgeRomBank:  "ROMX",
	VideoRAM:          "VRAM",
	ExternalRAM:       "SRAM",
	WorkRAM00:         "WRAM0",
	SwitchableWorkRAM: "WRAMX",
	EchoRAM:           "ECHO",
	OAM:               "OAM",
	Unusable:          "UNUSABLE",
	IORegisters:       "IO",
	HighRAM:           "HRAM",
	InterruptEnable:   "IE",
}

func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Sentinel is returned for reads from regions without backing storage.
const Sentinel byte = 0xFF

// Device is the capability every backing store reachable from the Bus implements.
// Offsets are local to the device window.
type Device interface {
	Kind() Kind
	Read(off uint16) (byte, error)
	Write(off uint16, v byte) error
	// Peek observes a byte without side effects.
	Peek(off uint16) (byte, error)
}

// Restorer is implemented by devices whose Write has side effects. Restore
// puts v back into storage at off without them.
type Restorer interface {
	Restore(off uint16, v byte) error
}

// Access names the operation that faulted.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
	AccessPeek
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessPeek:
		return "peek"
	}
	return "access"
}

// MemoryAccessError is returned when a device rejects an access.
type MemoryAccessError struct {
	Kind   Kind
	Op     Access
	Offset uint16 // device-local
	Addr   uint16 // absolute, filled in by the Bus
	Reason string
	Err    error // device-side cause, if any
}

func (e *MemoryAccessError) Error() string {
	reason := e.Reason
	switch {
	case reason == "" && e.Err != nil:
		reason = e.Err.Error()
	case reason == "":
		reason = "access fault"
	case e.Err != nil:
		reason += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s at %04X (offset %04X): %s", e.Kind, e.Op, e.Addr, e.Offset, reason)
}

func (e *MemoryAccessError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors walk through to the device-side error.
func (e *MemoryAccessError) Cause() error { return e.Err }

func outOfWindow(k Kind, op Access, off uint16) error {
	return &MemoryAccessError{Kind: k, Op: op, Offset: off, Reason: "offset outside device window"}
}
