package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/bus"
	"github.com/negative-seven/nopt/decode"
	"github.com/negative-seven/nopt/frontend"
	"github.com/negative-seven/nopt/state"
)

type busSource struct{ s *state.State }

func (b busSource) ReadByte(addr uint16) byte { return bus.Read(b.s, addr) }

// step decodes and interprets exactly one instruction at s.CPU.PC, the
// same per-step unit of work the executor performs, but evaluated
// directly instead of going through the JIT backend.
func step(s *state.State) {
	instr, _ := decode.Decode(busSource{s}, s.CPU.PC)
	in := frontend.NewInterpreter(s)
	frontend.Transpile[bool, byte, uint16](in, instr)
}

func newTestState() *state.State {
	s := state.New()
	return s
}

// LDA #$00 leaves A zero with Z set and N clear.
func TestLDAImmediateSetsZero(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.PC = 0x8000
	s.Cartridge.PRGROM[0] = 0xA9 // LDA #imm
	s.Cartridge.PRGROM[1] = 0x00

	step(s)

	require.Equal(t, byte(0x00), s.CPU.A)
	require.True(t, s.CPU.GetFlag(state.FlagZ))
	require.False(t, s.CPU.GetFlag(state.FlagN))
	require.Equal(t, uint16(0x8002), s.CPU.PC)
}

// ADC #$01 against A=0x7F crosses into the negative range: N and V set,
// no carry out.
func TestADCCarryAndOverflow(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.PC = 0x8000
	s.CPU.A = 0x7F
	s.CPU.SetFlag(state.FlagC, false)
	s.Cartridge.PRGROM[0] = 0x69 // ADC #imm
	s.Cartridge.PRGROM[1] = 0x01

	step(s)

	require.Equal(t, byte(0x80), s.CPU.A)
	require.True(t, s.CPU.GetFlag(state.FlagN))
	require.True(t, s.CPU.GetFlag(state.FlagV))
	require.False(t, s.CPU.GetFlag(state.FlagC))
	require.False(t, s.CPU.GetFlag(state.FlagZ))
	require.Equal(t, uint16(0x8002), s.CPU.PC)
}

// JMP indirect page-wrap bug: the high byte
// of the target is fetched from the same page as the low byte, wrapping
// 0x80FF -> 0x8000 rather than spilling into 0x8100.
func TestJMPIndirectPageWrapBug(t *testing.T) {
	s := newTestState()
	defer s.Release()

	s.CPU.PC = 0xC000

	// Instruction lives in PRG-ROM at 0xC000: 6C FF 80 (JMP ($80FF)).
	prgOff := func(addr uint16) uint16 { return addr - 0x8000 }
	s.Cartridge.PRGROM[prgOff(0xC000)] = 0x6C
	s.Cartridge.PRGROM[prgOff(0xC001)] = 0xFF
	s.Cartridge.PRGROM[prgOff(0xC002)] = 0x80

	s.Cartridge.PRGROM[prgOff(0x80FF)] = 0x00
	s.Cartridge.PRGROM[prgOff(0x8000)] = 0x90
	s.Cartridge.PRGROM[prgOff(0x8100)] = 0x80

	step(s)

	require.Equal(t, uint16(0x9000), s.CPU.PC)
}

// BNE +2 at 0xC000: taken lands past the skipped bytes, not taken falls
// through.
func TestBranchTakenAndNotTaken(t *testing.T) {
	prgOff := func(addr uint16) uint16 { return addr - 0x8000 }

	t.Run("taken", func(t *testing.T) {
		s := newTestState()
		defer s.Release()
		s.CPU.PC = 0xC000
		s.CPU.SetFlag(state.FlagZ, false)
		s.Cartridge.PRGROM[prgOff(0xC000)] = 0xD0 // BNE
		s.Cartridge.PRGROM[prgOff(0xC001)] = 0x02

		step(s)
		require.Equal(t, uint16(0xC004), s.CPU.PC)
	})

	t.Run("not taken", func(t *testing.T) {
		s := newTestState()
		defer s.Release()
		s.CPU.PC = 0xC000
		s.CPU.SetFlag(state.FlagZ, true)
		s.Cartridge.PRGROM[prgOff(0xC000)] = 0xD0 // BNE
		s.Cartridge.PRGROM[prgOff(0xC001)] = 0x02

		step(s)
		require.Equal(t, uint16(0xC002), s.CPU.PC)
	})
}

// JSR then RTS returns to the instruction after the JSR with S restored.
func TestJSRRTSRoundTrip(t *testing.T) {
	s := newTestState()
	defer s.Release()
	prgOff := func(addr uint16) uint16 { return addr - 0x8000 }

	s.CPU.PC = 0xC000
	s.CPU.S = 0xFD
	initialS := s.CPU.S

	s.Cartridge.PRGROM[prgOff(0xC000)] = 0x20 // JSR
	s.Cartridge.PRGROM[prgOff(0xC001)] = 0x00
	s.Cartridge.PRGROM[prgOff(0xC002)] = 0xD0

	s.Cartridge.PRGROM[prgOff(0xD000)] = 0x60 // RTS

	step(s)
	require.Equal(t, uint16(0xD000), s.CPU.PC)

	step(s)
	require.Equal(t, uint16(0xC003), s.CPU.PC)
	require.Equal(t, initialS, s.CPU.S)
}
