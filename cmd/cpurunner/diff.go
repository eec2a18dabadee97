package main

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

var (
	regSame    = ansi.ColorCode("default:default")
	regChanged = ansi.ColorCode("default+bu:default")
)

type regView struct {
	name  string
	width int
	get   func(r *cpu.Registers) uint16
}

func half(x cpu.Reg8) func(r *cpu.Registers) uint16 {
	return func(r *cpu.Registers) uint16 { return uint16(r.Get8(x)) }
}

func pair(p cpu.Pair) func(r *cpu.Registers) uint16 {
	return func(r *cpu.Registers) uint16 { return r.Get(p) }
}

var regViews = []regView{
	{"A", 2, half(cpu.A)},
	{"F", 2, half(cpu.F)},
	{"B", 2, half(cpu.B)},
	{"C", 2, half(cpu.C)},
	{"D", 2, half(cpu.D)},
	{"E", 2, half(cpu.E)},
	{"H", 2, half(cpu.H)},
	{"L", 2, half(cpu.L)},
	{"SP", 4, pair(cpu.SP)},
	{"PC", 4, pair(cpu.PC)},
}

// formatDiff prints cur with the registers that differ from prev marked,
// in bold underline when color is set and with a trailing '*' otherwise.
func formatDiff(prev, cur cpu.Registers, color bool) string {
	parts := make([]string, 0, len(regViews))
	for _, v := range regViews {
		val := v.get(&cur)
		changed := val != v.get(&prev)
		s := fmt.Sprintf("%0*X", v.width, val)
		switch {
		case color && changed:
			s = regChanged + s + ansi.Reset
		case color:
			s = regSame + s + ansi.Reset
		case changed:
			s += "*"
		}
		parts = append(parts, v.name+"="+s)
	}
	return strings.Join(parts, " ")
}
