package emu

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

// newMachine places prog at $0100 and starts from the post-boot state.
func newMachine(t *testing.T, cfg Config, prog ...byte) *Machine {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], prog)
	cfg.PostBoot = true
	m := New(cfg, rom)
	if err := m.Bus().Write(0xFF0F, 0x00); err != nil {
		t.Fatalf("clear IF: %v", err)
	}
	return m
}

func mustStep(t *testing.T, m *Machine) int {
	t.Helper()
	cyc, err := m.Step()
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	return cyc
}

func peek(m *Machine, addr uint16) byte {
	v, _ := m.Bus().Peek(addr)
	return v
}

func pc(m *Machine) uint16 {
	r := m.CPU().Registers()
	return r.Get(cpu.PC)
}

func TestMachine_PostBootState(t *testing.T) {
	m := New(Config{PostBoot: true}, make([]byte, 0x8000))
	want := cpu.PowerOn()
	if got := m.CPU().Registers(); got != want {
		t.Fatalf("post-boot registers\n got %s\nwant %s", spew.Sdump(got), spew.Sdump(want))
	}
	if v := peek(m, 0xFF0F); v != 0xE1 {
		t.Fatalf("IF got %02x want e1", v)
	}

	m = New(Config{PostBoot: true, CGB: true}, make([]byte, 0x8000))
	r := m.CPU().Registers()
	if a := r.Get8(cpu.A); a != 0x11 {
		t.Fatalf("CGB post-boot A got %02x want 11", a)
	}
}

func TestMachine_IFUpperBitsReadAsOne(t *testing.T) {
	m := newMachine(t, Config{}, 0xF0, 0x0F) // LDH A,(0F)
	m.RequestInterrupt(IntTimer)
	mustStep(t, m)
	r := m.CPU().Registers()
	if a := r.Get8(cpu.A); a != 0xE4 {
		t.Fatalf("IF read got %02x want e4", a)
	}
	if v := peek(m, 0xFF0F); v != 0xE4 {
		t.Fatalf("IF peek got %02x want e4", v)
	}
}

func TestMachine_SerialTransfer(t *testing.T) {
	var out bytes.Buffer
	m := newMachine(t, Config{Serial: &out},
		0x3E, 'A', // LD A,'A'
		0xE0, 0x01, // LDH (SB),A
		0x3E, 0x81, // LD A,81
		0xE0, 0x02, // LDH (SC),A
	)
	for i := 0; i < 4; i++ {
		mustStep(t, m)
	}
	if out.String() != "A" {
		t.Fatalf("serial out got %q want %q", out.String(), "A")
	}
	if v := peek(m, 0xFF02); v&0x80 != 0 {
		t.Fatalf("serial control bit7 not cleared: %02x", v)
	}
	if v := peek(m, 0xFF0F); v&(1<<IntSerial) == 0 {
		t.Fatalf("serial IF bit not set after transfer: %02x", v)
	}
}

type brokenLink struct{ err error }

func (b brokenLink) Write([]byte) (int, error) { return 0, b.err }

func TestMachine_SerialWriterFaultIsMemoryAccessError(t *testing.T) {
	linkDown := errors.New("link down")
	m := newMachine(t, Config{Serial: brokenLink{linkDown}},
		0x3E, 0x81, // LD A,81
		0xE0, 0x02, // LDH (SC),A
	)
	mustStep(t, m)
	_, err := m.Step()

	var mae *bus.MemoryAccessError
	if !errors.As(err, &mae) {
		t.Fatalf("got %T %v want *bus.MemoryAccessError", err, err)
	}
	if mae.Addr != 0xFF02 || mae.Kind != bus.IORegisters || mae.Op != bus.AccessWrite {
		t.Fatalf("fault fields: %s", spew.Sdump(mae))
	}
	var cerr *cpu.Error
	if !errors.As(err, &cerr) || cerr.PC != 0x0102 {
		t.Fatalf("got %v want cpu.Error at 0102", err)
	}
	if !errors.Is(err, linkDown) {
		t.Fatalf("writer error lost: %v", err)
	}
	if pc(m) != 0x0102 {
		t.Fatalf("PC got %04x want 0102", pc(m))
	}
	if v := peek(m, 0xFF0F); v&(1<<IntSerial) != 0 {
		t.Fatalf("serial IF bit set by failed transfer: %02x", v)
	}
}

func TestMachine_SerialWriterCanBeReplaced(t *testing.T) {
	var first, second bytes.Buffer
	m := newMachine(t, Config{Serial: &first})
	m.SetSerialWriter(&second)
	b := m.Bus()
	b.Write(0xFF01, 'x')
	b.Write(0xFF02, 0x81)
	if first.Len() != 0 || second.String() != "x" {
		t.Fatalf("serial routed to wrong writer: first=%q second=%q", first.String(), second.String())
	}
	b.Write(0xFF02, 0x80) // internal clock not selected: no transfer
	if second.Len() != 1 {
		t.Fatalf("transfer started without internal clock")
	}
}

func TestMachine_OAMDMA(t *testing.T) {
	m := newMachine(t, Config{},
		0x3E, 0xC0, // LD A,C0
		0xE0, 0x46, // LDH (DMA),A
	)
	b := m.Bus()
	for i := uint16(0); i < oamSize; i++ {
		b.Write(0xC000+i, byte(i)^0x5A)
	}
	if _, err := b.Peek(0xFF46); err != nil {
		t.Fatalf("peek DMA: %v", err)
	}
	if v := peek(m, 0xFE00); v != 0 {
		t.Fatalf("peek of DMA register started a transfer")
	}
	mustStep(t, m)
	mustStep(t, m)
	for i := uint16(0); i < oamSize; i++ {
		if got, want := peek(m, 0xFE00+i), byte(i)^0x5A; got != want {
			t.Fatalf("OAM[%02x] got %02x want %02x", i, got, want)
		}
	}
	if v := peek(m, 0xFF46); v != 0xC0 {
		t.Fatalf("DMA register got %02x want c0", v)
	}
}

func TestMachine_SVBKSwitchesWorkRAM(t *testing.T) {
	m := newMachine(t, Config{CGB: true})
	b := m.Bus()
	b.Write(0xD000, 0x11)
	b.Write(0xFF70, 0x02)
	if v := peek(m, 0xD000); v != 0x00 {
		t.Fatalf("bank 2 D000 got %02x want 00", v)
	}
	b.Write(0xD000, 0x22)
	if v := peek(m, 0xF000); v != 0x22 {
		t.Fatalf("echo of bank 2 got %02x want 22", v)
	}
	b.Write(0xFF70, 0x00) // 0 selects bank 1
	if v := peek(m, 0xD000); v != 0x11 {
		t.Fatalf("bank 1 D000 got %02x want 11", v)
	}
	if v := peek(m, 0xFF70); v != 0xF8 {
		t.Fatalf("SVBK got %02x want f8", v)
	}

	dmg := newMachine(t, Config{})
	dmg.Bus().Write(0xD000, 0x33)
	dmg.Bus().Write(0xFF70, 0x02)
	if v := peek(dmg, 0xD000); v != 0x33 {
		t.Fatalf("DMG SVBK write switched banks")
	}
}

func TestMachine_InterruptDispatch(t *testing.T) {
	m := newMachine(t, Config{}, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	m.Bus().Write(0xFFFF, 1<<IntTimer)
	mustStep(t, m)
	mustStep(t, m)
	if !m.CPU().IME() {
		t.Fatalf("IME not set after EI; NOP")
	}
	m.RequestInterrupt(IntTimer)
	if cyc := mustStep(t, m); cyc != cpu.InterruptCycles {
		t.Fatalf("dispatch cycles got %d want %d", cyc, cpu.InterruptCycles)
	}
	if pc(m) != 0x0050 || m.CPU().IME() {
		t.Fatalf("after dispatch PC=%04x IME=%v", pc(m), m.CPU().IME())
	}
	if v := peek(m, 0xFF0F); v != 0xE0 {
		t.Fatalf("IF not acknowledged: %02x", v)
	}
	if lo, hi := peek(m, 0xFFFC), peek(m, 0xFFFD); lo != 0x02 || hi != 0x01 {
		t.Fatalf("return address got %02x%02x want 0102", hi, lo)
	}
}

func TestMachine_InterruptPriority(t *testing.T) {
	m := newMachine(t, Config{}, 0xFB, 0x00) // EI; NOP
	m.Bus().Write(0xFFFF, 0x1F)
	mustStep(t, m)
	mustStep(t, m)
	m.RequestInterrupt(IntJoypad)
	m.RequestInterrupt(IntVBlank)
	mustStep(t, m)
	if pc(m) != 0x0040 {
		t.Fatalf("serviced %04x want VBlank vector 0040", pc(m))
	}
	if v := peek(m, 0xFF0F); v != 0xE0|1<<IntJoypad {
		t.Fatalf("IF got %02x want joypad still pending", v)
	}
}

func TestMachine_HaltWakesWithoutIME(t *testing.T) {
	m := newMachine(t, Config{}, 0x76, 0x3C) // HALT; INC A
	m.Bus().Write(0xFFFF, 1<<IntVBlank)
	mustStep(t, m)
	for i := 0; i < 5; i++ {
		if cyc := mustStep(t, m); cyc != cpu.IdleCycles {
			t.Fatalf("halted step got %d cycles", cyc)
		}
	}
	m.RequestInterrupt(IntVBlank)
	mustStep(t, m)
	r := m.CPU().Registers()
	if m.CPU().Halted() || r.Get8(cpu.A) != 0x02 || pc(m) != 0x0102 {
		t.Fatalf("after wake halted=%v %s", m.CPU().Halted(), r)
	}
	if v := peek(m, 0xFF0F); v&1 == 0 {
		t.Fatalf("IF acknowledged without service")
	}
}

func TestMachine_TraceAndCycles(t *testing.T) {
	var buf bytes.Buffer
	m := newMachine(t, Config{Trace: true, TraceLogger: log.New(&buf, "", 0)}, 0x00, 0xC3, 0x00, 0x01)
	mustStep(t, m)
	mustStep(t, m)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("trace lines got %d want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "PC=0100 OP=00 cyc=1 A=01") {
		t.Fatalf("trace line got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "PC=0101 OP=C3 cyc=4") {
		t.Fatalf("trace line got %q", lines[1])
	}
	if m.Cycles() != 5 {
		t.Fatalf("cycles got %d want 5", m.Cycles())
	}
}

func TestMachine_TraceMarksHaltedSteps(t *testing.T) {
	var buf bytes.Buffer
	m := newMachine(t, Config{Trace: true, TraceLogger: log.New(&buf, "", 0)}, 0x76, 0x3C) // HALT; INC A
	mustStep(t, m)
	mustStep(t, m)
	mustStep(t, m)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("trace lines got %d want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "PC=0100 OP=76 cyc=1") {
		t.Fatalf("trace line got %q", lines[0])
	}
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, "PC=0101 HALT cyc=1") || strings.Contains(l, "OP=") {
			t.Fatalf("idle trace line got %q", l)
		}
	}
}

func TestMachine_StepReportsCPUFault(t *testing.T) {
	m := newMachine(t, Config{}, 0xDD) // undefined opcode
	_, err := m.Step()
	var cerr *cpu.Error
	if err == nil || !errors.As(err, &cerr) || cerr.PC != 0x0100 {
		t.Fatalf("got %v want cpu.Error at 0100", err)
	}
}
