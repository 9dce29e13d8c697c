// Package rom parses an iNES cartridge image into a *state.State's
// Cartridge fields: PRG-ROM (mirrored to the fixed 32KiB window every
// compiled fragment's absolute addresses assume) and the nametable
// mirroring mode.
package rom

import (
	"fmt"

	"github.com/negative-seven/nopt/state"
)

const (
	headerSize     = 0x10
	magic0, magic1 = 'N', 'E'
	magic2, magic3 = 'S', 0x1A

	prgROMChunkSize = 0x4000
	fullWindowSize  = 0x8000

	mirroringFlagByte = 6
	verticalMirrorBit = 1 << 0
)

// Load validates an iNES header and writes the extracted PRG-ROM image and
// mirroring mode into s.Cartridge. A 16KiB (one-chunk) PRG-ROM is mirrored
// across both halves of the 32KiB window, as the NROM board does for that
// ROM size; a full 32KiB (two-chunk) image is used as-is. No other PRG-ROM
// size is supported. s.Cartridge.PRGRAM is left as its New-allocated zero
// value.
func Load(data []byte, s *state.State) error {
	if len(data) < headerSize {
		return fmt.Errorf("rom: file too short for iNES header (%d bytes)", len(data))
	}
	if data[0] != magic0 || data[1] != magic1 || data[2] != magic2 || data[3] != magic3 {
		return fmt.Errorf("rom: missing iNES magic bytes")
	}

	chunks := int(data[4])
	prgLen := chunks * prgROMChunkSize
	if prgLen != prgROMChunkSize && prgLen != fullWindowSize {
		return fmt.Errorf("rom: unsupported PRG-ROM size: %d chunks (%d bytes)", chunks, prgLen)
	}
	if len(data) < headerSize+prgLen {
		return fmt.Errorf("rom: file too short for declared PRG-ROM size: need %d bytes, have %d", headerSize+prgLen, len(data))
	}

	prg := data[headerSize : headerSize+prgLen]
	switch prgLen {
	case prgROMChunkSize:
		copy(s.Cartridge.PRGROM[:prgROMChunkSize], prg)
		copy(s.Cartridge.PRGROM[prgROMChunkSize:], prg)
	case fullWindowSize:
		copy(s.Cartridge.PRGROM[:], prg)
	}

	s.Cartridge.HorizontalMirror = data[mirroringFlagByte]&verticalMirrorBit == 0

	return nil
}
