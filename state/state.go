// Package state holds the guest machine's mutable memory: CPU registers, RAM,
// the PPU register subset the recompiler understands, and the cartridge's
// PRG banks.
//
// A State is allocated once and never moved. Compiled fragments embed the
// absolute addresses of its fields as constants, so relocating or copying a
// State after any fragment has been compiled against it corrupts every
// fragment that references it.
package state

import (
	"runtime"

	"github.com/negative-seven/nopt/mask"
)

// Flag bit positions within P. These are part of the ABI observed by
// compiled code and must never change.
const (
	FlagC = 0
	FlagZ = 1
	FlagI = 2
	FlagD = 3
	FlagB = 4
	FlagU = 5
	FlagV = 6
	FlagN = 7
)

const (
	RAMSize      = 0x0800
	VRAMSize     = 0x1000
	PaletteSize  = 0x20
	PRGRAMSize   = 0x2000
	PRGROMWindow = 0x8000
)

// CPU holds the 6502 register file.
type CPU struct {
	A  byte
	X  byte
	Y  byte
	S  byte
	P  byte
	PC uint16
}

// GetFlag reads a named bit of P.
func (c *CPU) GetFlag(bit int) bool {
	return mask.Bit(c.P, bit)
}

// SetFlag writes a named bit of P.
func (c *CPU) SetFlag(bit int, v bool) {
	c.P = mask.With(c.P, bit, v)
}

// PPU holds the register subset the recompiler's memory lowering
// understands: enough to drive VRAM/palette writes through 0x2006/0x2007 and
// nothing about rendering.
type PPU struct {
	RAM              [VRAMSize]byte
	Palette          [PaletteSize]byte
	ControlRegister  byte
	ReadBuffer       byte
	CurrentAddress   uint16
}

// Cartridge holds the fixed-bank PRG image extracted at load time. PRGROM is
// always exactly PRGROMWindow bytes: a 16KiB dump is mirrored to fill it, a
// 32KiB dump is used as-is (see rom.Load).
type Cartridge struct {
	PRGROM            [PRGROMWindow]byte
	PRGRAM            [PRGRAMSize]byte
	HorizontalMirror  bool
}

// State is the complete guest-observable machine. Exactly one instance
// exists per run.
type State struct {
	CPU       CPU
	PPU       PPU
	Cartridge Cartridge

	RAM [RAMSize]byte

	pinner runtime.Pinner
}

// New allocates a pinned State. The returned pointer must never be copied by
// value or discarded while any compiled fragment referencing it is still
// reachable; Release undoes the pin once the process is shutting down.
func New() *State {
	s := &State{}
	s.pinner.Pin(s)
	return s
}

// Release unpins the state. Only safe to call once no compiled fragment can
// possibly execute again.
func (s *State) Release() {
	s.pinner.Unpin()
}

// ResetVector reads the little-endian reset vector baked into the PRG-ROM
// mirror at 0xFFFC-0xFFFD.
func (s *State) ResetVector() uint16 {
	return mask.Join(s.Cartridge.PRGROM[0xFFFD-PRGROMWindow], s.Cartridge.PRGROM[0xFFFC-PRGROMWindow])
}

// IRQVector reads the little-endian IRQ/BRK vector at 0xFFFE-0xFFFF.
func (s *State) IRQVector() uint16 {
	return mask.Join(s.Cartridge.PRGROM[0xFFFF-PRGROMWindow], s.Cartridge.PRGROM[0xFFFE-PRGROMWindow])
}
