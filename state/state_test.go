package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/negative-seven/nopt/state"
)

func TestFlagBitPositions(t *testing.T) {
	c := &state.CPU{}

	c.SetFlag(state.FlagC, true)
	assert.Equal(t, byte(0x01), c.P)
	c.SetFlag(state.FlagN, true)
	assert.Equal(t, byte(0x81), c.P)
	c.SetFlag(state.FlagC, false)
	assert.Equal(t, byte(0x80), c.P)

	c.P = 0
	for bit, want := range map[int]byte{
		state.FlagC: 0x01, state.FlagZ: 0x02, state.FlagI: 0x04, state.FlagD: 0x08,
		state.FlagB: 0x10, state.FlagU: 0x20, state.FlagV: 0x40, state.FlagN: 0x80,
	} {
		c.P = 0
		c.SetFlag(bit, true)
		assert.Equal(t, want, c.P, "flag bit %d", bit)
		assert.True(t, c.GetFlag(bit))
	}
}

func TestVectors(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.Cartridge.PRGROM[0x7FFC] = 0x00
	s.Cartridge.PRGROM[0x7FFD] = 0x80
	s.Cartridge.PRGROM[0x7FFE] = 0x34
	s.Cartridge.PRGROM[0x7FFF] = 0x12

	assert.Equal(t, uint16(0x8000), s.ResetVector())
	assert.Equal(t, uint16(0x1234), s.IRQVector())
}
