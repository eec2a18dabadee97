package emu

import (
	"github.com/pkg/errors"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
)

// I/O register offsets inside FF00-FF7F.
const (
	regSB   = 0x01
	regSC   = 0x02
	regIF   = 0x0F
	regDMA  = 0x46
	regSVBK = 0x70
)

const addrIE = 0xFFFF

// Interrupt bits in IE and IF, highest priority first.
const (
	IntVBlank uint8 = iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad
)

const oamSize = 0xA0

func (m *Machine) attachPorts() {
	// IF only implements bits 0-4; the rest read back as 1
	m.io.Attach(regIF, bus.PortFuncs{
		OnRead:  func(l byte) byte { return l | 0xE0 },
		OnWrite: func(_, v byte) (byte, error) { return v | 0xE0, nil },
	})
	m.io.Latch(regIF, 0xE0)

	// Serial completes immediately: no link partner, no shift clock.
	m.io.Attach(regSC, bus.PortFuncs{OnWrite: m.writeSC})

	m.io.Attach(regDMA, bus.PortFuncs{OnWrite: m.writeDMA})

	if m.cfg.CGB {
		m.io.Attach(regSVBK, bus.PortFuncs{
			OnWrite: func(_, v byte) (byte, error) {
				m.wram.SelectBank(int(v & 0x07))
				return v | 0xF8, nil
			},
		})
		m.io.Latch(regSVBK, 0xF9)
	}
}

func (m *Machine) writeSC(_, v byte) (byte, error) {
	if v&0x81 != 0x81 {
		return v, nil
	}
	sb := m.io.Latched(regSB)
	if _, err := m.serial.Write([]byte{sb}); err != nil {
		return 0, errors.Wrap(err, "serial transfer")
	}
	m.RequestInterrupt(IntSerial)
	return v &^ 0x80, nil
}

// writeDMA copies XX00-XX9F into OAM in one go.
func (m *Machine) writeDMA(_, v byte) (byte, error) {
	src := uint16(v) << 8
	for i := uint16(0); i < oamSize; i++ {
		b, err := m.bus.Peek(src + i)
		if err != nil {
			return 0, errors.Wrapf(err, "oam dma from %04X", src+i)
		}
		if err := m.oam.Write(i, b); err != nil {
			return 0, errors.Wrap(err, "oam dma")
		}
	}
	return v, nil
}
