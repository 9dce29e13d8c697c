package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/executor"
	"github.com/negative-seven/nopt/state"
)

func prgOff(addr uint16) uint16 { return addr - 0x8000 }

func newExecutor(t *testing.T) (*executor.Executor, *state.State) {
	t.Helper()
	s := state.New()
	t.Cleanup(s.Release)
	return executor.New(s, nil), s
}

func TestStepLDAImmediate(t *testing.T) {
	ex, s := newExecutor(t)

	copy(s.Cartridge.PRGROM[:], []byte{0xA9, 0x00, 0x00})
	s.CPU.PC = 0x8000

	require.NoError(t, ex.Step())

	assert.Equal(t, byte(0x00), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagZ))
	assert.False(t, s.CPU.GetFlag(state.FlagN))
	assert.Equal(t, uint16(0x8002), s.CPU.PC)
}

func TestStepJMPIndirectPageWrap(t *testing.T) {
	ex, s := newExecutor(t)

	s.Cartridge.PRGROM[prgOff(0xC000)] = 0x6C
	s.Cartridge.PRGROM[prgOff(0xC001)] = 0xFF
	s.Cartridge.PRGROM[prgOff(0xC002)] = 0x80
	s.Cartridge.PRGROM[prgOff(0x80FF)] = 0x00
	s.Cartridge.PRGROM[prgOff(0x8000)] = 0x90
	s.Cartridge.PRGROM[prgOff(0x8100)] = 0x80
	s.CPU.PC = 0xC000

	require.NoError(t, ex.Step())
	assert.Equal(t, uint16(0x9000), s.CPU.PC, "high byte fetched from 0x8000, not 0x8100")
}

func TestStepJSRRTSRoundTrip(t *testing.T) {
	ex, s := newExecutor(t)

	s.Cartridge.PRGROM[prgOff(0xC000)] = 0x20 // JSR $D000
	s.Cartridge.PRGROM[prgOff(0xC001)] = 0x00
	s.Cartridge.PRGROM[prgOff(0xC002)] = 0xD0
	s.Cartridge.PRGROM[prgOff(0xD000)] = 0x60 // RTS
	s.CPU.PC = 0xC000
	s.CPU.S = 0xFD

	require.NoError(t, ex.Step())
	require.Equal(t, uint16(0xD000), s.CPU.PC)

	require.NoError(t, ex.Step())
	assert.Equal(t, uint16(0xC003), s.CPU.PC)
	assert.Equal(t, byte(0xFD), s.CPU.S)
}

func TestPRGROMFragmentIsCached(t *testing.T) {
	ex, s := newExecutor(t)

	copy(s.Cartridge.PRGROM[:], []byte{0xA9, 0x01}) // LDA #$01
	s.CPU.PC = 0x8000

	require.False(t, ex.Cached(0x8000))
	require.NoError(t, ex.Step())
	assert.True(t, ex.Cached(0x8000))

	// Second pass over the same PC hits the cache and still executes.
	s.CPU.A = 0
	s.CPU.PC = 0x8000
	require.NoError(t, ex.Step())
	assert.Equal(t, byte(0x01), s.CPU.A)
	assert.Equal(t, uint16(0x8002), s.CPU.PC)
}

func TestRAMFragmentIsNotCached(t *testing.T) {
	ex, s := newExecutor(t)

	// INX sitting in RAM: decoded bytes come from a mutable region, so the
	// fragment runs once and is dropped.
	s.RAM[0x0200] = 0xE8
	s.CPU.PC = 0x0200
	s.CPU.X = 41

	require.NoError(t, ex.Step())
	assert.Equal(t, byte(42), s.CPU.X)
	assert.Equal(t, uint16(0x0201), s.CPU.PC)
	assert.False(t, ex.Cached(0x0200))
	assert.False(t, ex.Cached(0x8200))
}

func TestRunStopsOnPredicate(t *testing.T) {
	ex, s := newExecutor(t)

	// A short countdown: LDX #$03 / DEX / BNE -3 / NOP.
	copy(s.Cartridge.PRGROM[:], []byte{
		0xA2, 0x03, // LDX #$03
		0xCA,       // DEX
		0xD0, 0xFD, // BNE back to DEX
		0xEA, // NOP
	})
	s.CPU.PC = 0x8000

	err := ex.Run(func(st *state.State) bool { return st.CPU.PC == 0x8005 })
	require.NoError(t, err)
	assert.Equal(t, byte(0), s.CPU.X)
	assert.True(t, s.CPU.GetFlag(state.FlagZ))
}
