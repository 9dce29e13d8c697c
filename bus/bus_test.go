package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/bus"
	"github.com/negative-seven/nopt/state"
)

func TestRAMReadWriteMirrors(t *testing.T) {
	s := state.New()
	defer s.Release()

	bus.Write(s, 0x0042, 0xAB)
	assert.Equal(t, byte(0xAB), bus.Read(s, 0x0042))
	// 0x0842, 0x1042, 0x1842 alias the same RAM cell.
	assert.Equal(t, byte(0xAB), bus.Read(s, 0x0842))
	assert.Equal(t, byte(0xAB), bus.Read(s, 0x1842))
}

func TestPRGRAMReadWrite(t *testing.T) {
	s := state.New()
	defer s.Release()

	bus.Write(s, 0x6000, 0x11)
	bus.Write(s, 0x7FFF, 0x22)
	assert.Equal(t, byte(0x11), bus.Read(s, 0x6000))
	assert.Equal(t, byte(0x22), bus.Read(s, 0x7FFF))
}

func TestPRGROMReadOnlyAndMasked(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.Cartridge.PRGROM[0] = 0x5A
	assert.Equal(t, byte(0x5A), bus.Read(s, 0x8000))

	bus.Write(s, 0x8000, 0xFF)
	assert.Equal(t, byte(0x5A), bus.Read(s, 0x8000), "PRG-ROM writes are ignored")
}

func TestUnmappedAddressReadsZero(t *testing.T) {
	s := state.New()
	defer s.Release()

	assert.Equal(t, byte(0), bus.Read(s, 0x4016))
	bus.Write(s, 0x4016, 0xFF) // ignored
	assert.Equal(t, byte(0), bus.Read(s, 0x4016))
}

func TestPPUAddressWriteShiftsLowIntoHigh(t *testing.T) {
	s := state.New()
	defer s.Release()

	bus.Write(s, 0x2006, 0x21)
	bus.Write(s, 0x2006, 0x08)
	assert.Equal(t, uint16(0x2108), s.PPU.CurrentAddress)
}

func TestPPUDataReadIsBuffered(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.PPU.RAM[0x0005] = 0x99
	s.PPU.CurrentAddress = 0x2005

	first := bus.Read(s, 0x2007)
	second := bus.Read(s, 0x2007)
	assert.Equal(t, byte(0x00), first, "first read returns the stale buffer")
	assert.Equal(t, byte(0x99), second, "second read returns the buffered value")
}

func TestPPUDataPaletteReadBypassesBuffer(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.PPU.Palette[0x01] = 0x3C
	s.PPU.ReadBuffer = 0x77
	s.PPU.CurrentAddress = 0x3F01

	got := bus.Read(s, 0x2007)
	assert.Equal(t, byte(0x3C), got)
	assert.Equal(t, byte(0x77), s.PPU.ReadBuffer, "palette reads leave the buffer alone")
}

func TestPPUDataWriteAndIncrement(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.PPU.CurrentAddress = 0x2000
	bus.Write(s, 0x2007, 0x42)
	require.Equal(t, byte(0x42), s.PPU.RAM[0x0000])
	assert.Equal(t, uint16(0x2001), s.PPU.CurrentAddress)

	s.PPU.ControlRegister = 1 << 2
	bus.Write(s, 0x2007, 0x43)
	assert.Equal(t, uint16(0x2021), s.PPU.CurrentAddress, "control bit 2 selects +32")
}

func TestVRAMIndexHorizontalMirroring(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.Cartridge.HorizontalMirror = false
	assert.Equal(t, uint16(0x0800), bus.VRAMIndex(s, 0x2800))

	s.Cartridge.HorizontalMirror = true
	assert.Equal(t, uint16(0x0000), bus.VRAMIndex(s, 0x2000))
	assert.Equal(t, uint16(0x0400), bus.VRAMIndex(s, 0x2400))
	assert.Equal(t, uint16(0x0400), bus.VRAMIndex(s, 0x2800), "nametable 2 folds onto 1")
	assert.Equal(t, uint16(0x0800), bus.VRAMIndex(s, 0x2C00), "nametable 3 folds down")
}
