package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
)

// byteRing keeps the last len(buf) bytes written to it.
type byteRing struct {
	buf  []byte
	idx  int
	fill int
}

func newByteRing(n int) *byteRing { return &byteRing{buf: make([]byte, n)} }

func (r *byteRing) Write(p []byte) (int, error) {
	for _, ch := range p {
		r.buf[r.idx] = ch
		r.idx = (r.idx + 1) % len(r.buf)
		if r.fill < len(r.buf) {
			r.fill++
		}
	}
	return len(p), nil
}

// Bytes returns the retained bytes in write order.
func (r *byteRing) Bytes() []byte {
	out := make([]byte, 0, r.fill)
	start := (r.idx - r.fill + len(r.buf)) % len(r.buf)
	for j := 0; j < r.fill; j++ {
		out = append(out, r.buf[(start+j)%len(r.buf)])
	}
	return out
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	startPC := flag.Int("pc", 0x0100, "initial PC value")
	trace := flag.Bool("trace", false, "print PC/opcodes")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "when -auto detects failure, print a recent trace window (slows down)")
	traceWindow := flag.Int("traceWindow", 16384, "bytes of recent trace output to keep for 'traceOnFail'")
	serialWindowFlag := flag.Int("serialWindow", 8192, "number of recent serial bytes to retain for diagnostics on fail")
	diff := flag.Bool("diff", false, "print registers after every step, highlighting the ones that changed")
	forceCGB := flag.Bool("cgb", false, "expose CGB work RAM banking even if the header does not ask for it")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	cfg := emu.Config{PostBoot: true, CGB: *forceCGB}
	if h, err := cart.ParseHeader(rom); err != nil {
		log.Printf("header: %v (running image as is)", err)
	} else {
		log.Printf("title=%q type=%s rom=%dKiB ram=%dKiB cgb=%t checksum=%t",
			h.Title, h.TypeName(), h.ROMSize/1024, h.RAMSize/1024, h.CGB(), cart.ChecksumOK(rom))
		if !h.ROMOnly() {
			log.Printf("warning: %s banking is not emulated; only banks 0 and 1 are visible", h.TypeName())
		}
		cfg.CGB = cfg.CGB || h.CGB()
		cfg.ExternalRAMSize = h.RAMSize
	}

	// Stream serial to stdout and capture in-memory for pattern detection
	var ser bytes.Buffer
	serialWindow := *serialWindowFlag
	if serialWindow < 256 {
		serialWindow = 256
	}
	serRing := newByteRing(serialWindow)
	cfg.Serial = os.Stdout
	if *until != "" || *auto {
		cfg.Serial = io.MultiWriter(os.Stdout, &ser, serRing)
	}

	var traceRing *byteRing
	if *trace || *traceOnFail {
		cfg.Trace = true
		var sinks []io.Writer
		if *trace {
			sinks = append(sinks, os.Stdout)
		}
		if *traceOnFail && *traceWindow > 0 {
			traceRing = newByteRing(*traceWindow)
			sinks = append(sinks, traceRing)
		}
		cfg.TraceLogger = log.New(io.MultiWriter(sinks...), "", 0)
	}

	m := emu.New(cfg, rom)
	if *startPC != 0x0100 {
		r := m.CPU().Registers()
		r.Set(cpu.PC, uint16(*startPC))
		m.CPU().SetRegisters(r)
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	// Regex for failure summary: "Failed <n> tests"
	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	// Regex to capture test markers like "11:01"
	stageRe := regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
	lastStage := ""

	done := func(n int) {
		fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", n, m.Cycles(), time.Since(start).Truncate(time.Millisecond))
	}
	dumpDiagnostics := func() {
		if traceRing != nil && traceRing.fill > 0 {
			fmt.Printf("\n--- recent trace (last %d bytes) ---\n%s", traceRing.fill, traceRing.Bytes())
			fmt.Printf("--- end trace ---\n")
		}
		if serRing.fill > 0 {
			fmt.Printf("\n--- recent serial (last %d bytes) ---\n%s", serRing.fill, serRing.Bytes())
			fmt.Printf("\n--- end serial ---\n")
		}
	}

	color := isatty.IsTerminal(os.Stdout.Fd())
	for i := 0; i < *steps; i++ {
		prev := m.CPU().Registers()
		if _, err := m.Step(); err != nil {
			fmt.Printf("\nCPU fault: %v\n", err)
			dumpDiagnostics()
			done(i + 1)
			os.Exit(1)
		}
		if *diff {
			fmt.Println(formatDiff(prev, m.CPU().Registers(), color))
		}
		if *auto {
			s := ser.String()
			if mm := stageRe.FindAllString(s, -1); len(mm) > 0 {
				lastStage = mm[len(mm)-1]
			}
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\n")
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				done(i + 1)
				os.Exit(0)
			}
			if mt := failRe.FindStringSubmatch(s); mt != nil {
				fmt.Printf("\nDetected %s in serial output.\n", mt[0])
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				dumpDiagnostics()
				done(i + 1)
				os.Exit(1)
			}
		} else if *until != "" {
			if strings.Contains(strings.ToLower(ser.String()), strings.ToLower(*until)) {
				fmt.Printf("\nDetected '%s' in serial output.\n", *until)
				done(i + 1)
				return
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i + 1)
			os.Exit(2)
		}
	}
	done(*steps)
}
