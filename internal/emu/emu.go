package emu

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

// Machine owns the CPU, the bus and the I/O registers wired between them.
type Machine struct {
	cfg Config

	bus  *bus.Bus
	cpu  *cpu.CPU
	io   *bus.IORegs
	wram *bus.BankedRAM
	oam  bus.Device

	serial io.Writer
	cycles uint64
}

// New builds a machine around rom. The ROM image is mapped as is; there is
// no MBC, so the switchable window always shows bank 1.
func New(cfg Config, rom []byte) *Machine {
	cfg.Defaults()
	banks := 1
	if cfg.CGB {
		banks = 7
	}
	b := bus.New(rom, bus.Config{ExternalRAMSize: cfg.ExternalRAMSize, WRAMBanks: banks})
	m := &Machine{
		cfg:    cfg,
		bus:    b,
		cpu:    cpu.New(),
		io:     b.Device(bus.IORegisters).(*bus.IORegs),
		wram:   b.Device(bus.SwitchableWorkRAM).(*bus.BankedRAM),
		oam:    b.Device(bus.OAM),
		serial: cfg.Serial,
	}
	m.attachPorts()
	if cfg.PostBoot {
		m.ResetPostBoot()
	}
	return m
}

func (m *Machine) CPU() *cpu.CPU { return m.cpu }
func (m *Machine) Bus() *bus.Bus { return m.bus }

// Cycles returns the M-cycles elapsed since construction.
func (m *Machine) Cycles() uint64 { return m.cycles }

// SetSerialWriter connects an io.Writer to receive bytes written to the serial port (FF01/FF02).
func (m *Machine) SetSerialWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	m.serial = w
}

// RequestInterrupt raises bit in IF.
func (m *Machine) RequestInterrupt(bit uint8) {
	m.io.Latch(regIF, m.io.Latched(regIF)|1<<(bit&7)|0xE0)
}

// ResetPostBoot puts the CPU and I/O registers in the state the DMG boot ROM
// leaves behind and starts execution at $0100.
func (m *Machine) ResetPostBoot() {
	r := cpu.PowerOn()
	if m.cfg.CGB {
		r.Set8(cpu.A, 0x11) // games detect CGB hardware by A=$11
	}
	m.cpu.SetRegisters(r)

	regs := m.io
	regs.Latch(0x00, 0xCF) // P1
	regs.Latch(0x05, 0x00) // TIMA
	regs.Latch(0x06, 0x00) // TMA
	regs.Latch(0x07, 0xF8) // TAC
	regs.Latch(regIF, 0xE1)
	regs.Latch(0x40, 0x91) // LCDC
	regs.Latch(0x47, 0xFC) // BGP
	regs.Latch(0x48, 0xFF) // OBP0
	regs.Latch(0x49, 0xFF) // OBP1
	_ = m.bus.Write(addrIE, 0x00)
}

// Step services the highest-priority pending interrupt if IME allows it,
// otherwise runs one instruction. It returns the elapsed M-cycles.
func (m *Machine) Step() (int, error) {
	ie, err := m.bus.Peek(addrIE)
	if err != nil {
		return 0, errors.Wrap(err, "read IE")
	}
	flags := m.io.Latched(regIF)
	if pending := ie & flags & 0x1F; pending != 0 {
		m.cpu.Wake()
		if m.cpu.IME() {
			bit := uint8(bits.TrailingZeros8(pending))
			cycles, err := m.cpu.Interrupt(m.bus, bit)
			if err != nil {
				return 0, err
			}
			m.io.Latch(regIF, flags&^(1<<bit))
			m.cycles += uint64(cycles)
			if m.cfg.Trace {
				m.cfg.TraceLogger.Printf("INT %d -> %04X", bit, 0x40+8*uint16(bit))
			}
			return cycles, nil
		}
	}

	r := m.cpu.Registers()
	pc := r.Get(cpu.PC)
	op, _ := m.bus.Peek(pc)
	idle := m.cpu.Halted()
	cycles, err := m.cpu.Step(m.bus)
	if err != nil {
		return 0, err
	}
	m.cycles += uint64(cycles)
	if m.cfg.Trace {
		m.trace(pc, op, idle, cycles)
	}
	return cycles, nil
}

// trace logs one step. Idle steps name no opcode since nothing was fetched.
func (m *Machine) trace(pc uint16, op byte, idle bool, cycles int) {
	what := fmt.Sprintf("OP=%02X", op)
	if idle {
		what = "HALT"
	}
	ie, _ := m.bus.Peek(addrIE)
	m.cfg.TraceLogger.Printf("PC=%04X %s cyc=%d %s IME=%t IF=%02X IE=%02X",
		pc, what, cycles, m.cpu.Registers(), m.cpu.IME(), m.io.Latched(regIF), ie)
}
