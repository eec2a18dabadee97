package main

import (
	"strings"
	"testing"

	"github.com/mgutz/ansi"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

func TestFormatDiff_MarksChangedRegisters(t *testing.T) {
	prev := cpu.PowerOn()
	cur := prev
	cur.Set8(cpu.B, 0x42)
	cur.Set(cpu.PC, 0x0101)

	got := formatDiff(prev, cur, false)
	want := "A=01 F=B0 B=42* C=13 D=00 E=D8 H=01 L=4D SP=FFFE PC=0101*"
	if got != want {
		t.Fatalf("diff\n got %s\nwant %s", got, want)
	}
	if s := formatDiff(cur, cur, false); strings.Contains(s, "*") {
		t.Fatalf("unchanged registers marked: %s", s)
	}
}

func TestFormatDiff_Color(t *testing.T) {
	prev := cpu.PowerOn()
	cur := prev
	cur.Set8(cpu.A, 0x00)
	got := formatDiff(prev, cur, true)
	if !strings.HasPrefix(got, "A="+regChanged+"00"+ansi.Reset) {
		t.Fatalf("changed A not highlighted: %q", got)
	}
	if !strings.Contains(got, "F="+regSame+"B0"+ansi.Reset) {
		t.Fatalf("unchanged F not plain: %q", got)
	}
}
