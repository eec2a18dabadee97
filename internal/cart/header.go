// Package cart reads the cartridge header. The core maps ROM images as is;
// the header only tells the driver how to size the machine around them.
package cart

import (
	"bytes"

	"github.com/pkg/errors"
)

const (
	titleStart  = 0x0134
	cgbFlagAddr = 0x0143
	typeAddr    = 0x0147
	romSizeAddr = 0x0148
	ramSizeAddr = 0x0149
	checksum    = 0x014D
	headerEnd   = 0x0150
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

type Header struct {
	Title    string
	CGBFlag  byte // 0x80 supports CGB, 0xC0 CGB only
	Type     byte
	ROMSize  int // bytes
	ROMBanks int // 16 KiB banks
	RAMSize  int // bytes
	LogoOK   bool
}

// ParseHeader decodes the $0100-$014F header of rom. A missing logo is
// reported through LogoOK rather than failing; test ROMs often omit it.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd {
		return nil, errors.Errorf("ROM too small to contain header: %d bytes", len(rom))
	}
	h := &Header{
		CGBFlag: rom[cgbFlagAddr],
		Type:    rom[typeAddr],
		RAMSize: ramSize(rom[ramSizeAddr]),
		LogoOK:  bytes.Equal(rom[0x0104:0x0134], nintendoLogo[:]),
	}
	// newer carts reuse the end of the title for the manufacturer code and CGB flag
	title := rom[titleStart:cgbFlagAddr]
	if h.CGBFlag&0x80 == 0 {
		title = rom[titleStart : cgbFlagAddr+1]
	}
	h.Title = string(bytes.TrimRight(title, "\x00"))

	code := rom[romSizeAddr]
	if code > 0x08 {
		return nil, errors.Errorf("unsupported ROM size code %02X", code)
	}
	h.ROMSize = 32 * 1024 << code
	h.ROMBanks = 2 << code
	return h, nil
}

// ChecksumOK verifies the header checksum at $014D.
func ChecksumOK(rom []byte) bool {
	if len(rom) <= checksum {
		return false
	}
	var sum byte
	for _, b := range rom[titleStart:checksum] {
		sum = sum - b - 1
	}
	return sum == rom[checksum]
}

func ramSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

// ROMOnly reports whether the cartridge runs without a mapper.
func (h *Header) ROMOnly() bool { return h.Type == 0x00 || h.Type == 0x08 || h.Type == 0x09 }

// CGB reports whether the game can use CGB hardware.
func (h *Header) CGB() bool { return h.CGBFlag&0x80 != 0 }

func (h *Header) TypeName() string {
	switch h.Type {
	case 0x00:
		return "ROM ONLY"
	case 0x08, 0x09:
		return "ROM+RAM"
	case 0x01, 0x02, 0x03:
		return "MBC1"
	case 0x05, 0x06:
		return "MBC2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return "unknown"
	}
}
