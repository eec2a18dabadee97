package emu

import (
	"io"
	"log"
	"os"
)

// Config contains settings that affect emulation behavior.
type Config struct {
	CGB             bool // expose CGB work RAM banking (SVBK)
	ExternalRAMSize int  // cartridge RAM in bytes, 0 if none
	PostBoot        bool // start at $0100 with the registers the boot ROM leaves behind

	Trace       bool        // log every executed instruction
	TraceLogger *log.Logger // destination for trace lines
	Serial      io.Writer   // receives bytes sent through FF01/FF02
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.TraceLogger == nil {
		c.TraceLogger = log.New(os.Stderr, "", 0)
	}
	if c.Serial == nil {
		c.Serial = io.Discard
	}
}
