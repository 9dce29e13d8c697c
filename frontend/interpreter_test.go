package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/state"
)

func prgOff(addr uint16) uint16 { return addr - 0x8000 }

// STA through the full bus dispatch: a store to 0x2006 twice then 0x2007
// drives the PPU address latch and data port exactly as the bus does.
func TestSTADrivesPPUPort(t *testing.T) {
	s := newTestState()
	defer s.Release()

	// LDA #$21 / STA $2006 / LDA #$08 / STA $2006 / LDA #$42 / STA $2007
	codeBytes := []byte{
		0xA9, 0x21, 0x8D, 0x06, 0x20,
		0xA9, 0x08, 0x8D, 0x06, 0x20,
		0xA9, 0x42, 0x8D, 0x07, 0x20,
	}
	copy(s.Cartridge.PRGROM[:], codeBytes)
	s.CPU.PC = 0x8000

	for i := 0; i < 6; i++ {
		step(s)
	}

	assert.Equal(t, byte(0x42), s.PPU.RAM[0x0108])
	assert.Equal(t, uint16(0x2109), s.PPU.CurrentAddress)
}

// LDA $2007 returns the buffered value one read late.
func TestLDAFromPPUDataIsBuffered(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.PPU.RAM[0x0005] = 0x77
	s.PPU.CurrentAddress = 0x2005

	copy(s.Cartridge.PRGROM[:], []byte{
		0xAD, 0x07, 0x20, // LDA $2007
		0xAD, 0x07, 0x20, // LDA $2007
	})
	s.CPU.PC = 0x8000

	step(s)
	assert.Equal(t, byte(0x00), s.CPU.A)
	step(s)
	assert.Equal(t, byte(0x77), s.CPU.A)
}

func TestPHPSetsBAndUnused(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.S = 0xFD
	s.CPU.P = 0x01 // carry only
	s.Cartridge.PRGROM[prgOff(0x8000)] = 0x08 // PHP

	s.CPU.PC = 0x8000
	step(s)

	require.Equal(t, byte(0xFC), s.CPU.S)
	assert.Equal(t, byte(0x31), s.RAM[0x01FD], "pushed P carries B and Unused set")
	assert.Equal(t, byte(0x01), s.CPU.P, "live P is unchanged")
}

func TestPLPPreservesBAndUnused(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.S = 0xFC
	s.RAM[0x01FD] = 0xFF
	s.CPU.P = 0x00
	s.Cartridge.PRGROM[prgOff(0x8000)] = 0x28 // PLP

	s.CPU.PC = 0x8000
	step(s)

	assert.Equal(t, byte(0xCF), s.CPU.P, "B and Unused keep their pre-pull state")
}

func TestPHAAndPLA(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.S = 0xFD
	s.CPU.A = 0x80
	copy(s.Cartridge.PRGROM[:], []byte{
		0x48, // PHA
		0xA9, 0x00, // LDA #$00
		0x68, // PLA
	})
	s.CPU.PC = 0x8000

	step(s)
	step(s)
	step(s)

	assert.Equal(t, byte(0x80), s.CPU.A)
	assert.Equal(t, byte(0xFD), s.CPU.S)
	assert.True(t, s.CPU.GetFlag(state.FlagN), "PLA refreshes N from the pulled value")
	assert.False(t, s.CPU.GetFlag(state.FlagZ))
}

func TestBRKAndRTI(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.S = 0xFD
	s.CPU.PC = 0x8000
	s.CPU.P = 0x01

	s.Cartridge.PRGROM[prgOff(0x8000)] = 0x00 // BRK
	s.Cartridge.PRGROM[prgOff(0x9000)] = 0x40 // RTI
	s.Cartridge.PRGROM[prgOff(0xFFFE)] = 0x00
	s.Cartridge.PRGROM[prgOff(0xFFFF)] = 0x90

	step(s)
	require.Equal(t, uint16(0x9000), s.CPU.PC)
	require.True(t, s.CPU.GetFlag(state.FlagI))

	step(s)
	assert.Equal(t, uint16(0x8002), s.CPU.PC, "BRK pushes PC+2")
	assert.Equal(t, byte(0xFD), s.CPU.S)
	assert.True(t, s.CPU.GetFlag(state.FlagC))
}

func TestRMWShiftOnMemory(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.RAM[0x0010] = 0x81
	copy(s.Cartridge.PRGROM[:], []byte{0x06, 0x10}) // ASL $10
	s.CPU.PC = 0x8000

	step(s)

	assert.Equal(t, byte(0x02), s.RAM[0x0010])
	assert.True(t, s.CPU.GetFlag(state.FlagC), "bit 7 shifted out into carry")
	assert.False(t, s.CPU.GetFlag(state.FlagN))
	assert.False(t, s.CPU.GetFlag(state.FlagZ))
}

func TestSBCBorrowAndCompare(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.A = 0x10
	s.CPU.SetFlag(state.FlagC, true) // no borrow
	copy(s.Cartridge.PRGROM[:], []byte{0xE9, 0x01}) // SBC #$01
	s.CPU.PC = 0x8000

	step(s)
	assert.Equal(t, byte(0x0F), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagC), "no borrow occurred")

	s.CPU.A = 0x10
	copy(s.Cartridge.PRGROM[:], []byte{0xC9, 0x20}) // CMP #$20
	s.CPU.PC = 0x8000
	step(s)
	assert.Equal(t, byte(0x10), s.CPU.A, "compare leaves A alone")
	assert.False(t, s.CPU.GetFlag(state.FlagC), "A < operand borrows")
	assert.True(t, s.CPU.GetFlag(state.FlagN))
}

func TestIndexedAddressing(t *testing.T) {
	s := newTestState()
	defer s.Release()

	t.Run("zero page,X wraps", func(t *testing.T) {
		s.CPU.X = 0x05
		s.RAM[0x0002] = 0x3B
		copy(s.Cartridge.PRGROM[:], []byte{0xB5, 0xFD}) // LDA $FD,X
		s.CPU.PC = 0x8000
		step(s)
		assert.Equal(t, byte(0x3B), s.CPU.A)
	})

	t.Run("(indirect),Y", func(t *testing.T) {
		s.CPU.Y = 0x03
		s.RAM[0x0040] = 0x00
		s.RAM[0x0041] = 0x02
		s.RAM[0x0203] = 0x7E
		copy(s.Cartridge.PRGROM[:], []byte{0xB1, 0x40}) // LDA ($40),Y
		s.CPU.PC = 0x8000
		step(s)
		assert.Equal(t, byte(0x7E), s.CPU.A)
	})

	t.Run("(indirect,X) with zero page wrap", func(t *testing.T) {
		s.CPU.X = 0x02
		s.RAM[0x00FF] = 0x10
		s.RAM[0x0000] = 0x02
		s.RAM[0x0210] = 0x55
		copy(s.Cartridge.PRGROM[:], []byte{0xA1, 0xFD}) // LDA ($FD,X)
		s.CPU.PC = 0x8000
		step(s)
		assert.Equal(t, byte(0x55), s.CPU.A)
	})
}

func TestBITSetsFlagsFromMemory(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.A = 0x01
	s.RAM[0x0020] = 0xC0
	copy(s.Cartridge.PRGROM[:], []byte{0x24, 0x20}) // BIT $20
	s.CPU.PC = 0x8000

	step(s)

	assert.True(t, s.CPU.GetFlag(state.FlagN))
	assert.True(t, s.CPU.GetFlag(state.FlagV))
	assert.True(t, s.CPU.GetFlag(state.FlagZ), "A AND mem is zero")
}
