package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/backend"
	"github.com/negative-seven/nopt/decode"
	"github.com/negative-seven/nopt/frontend"
	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// compileAndRun pushes one decoded instruction through the full transpile,
// lower, map, call pipeline against s.
func compileAndRun(t *testing.T, s *state.State, instr decode.Instruction) {
	t.Helper()

	b := frontend.NewBuilder()
	frontend.Transpile[ir.Var1, ir.Var8, ir.Var16](b, instr)

	frag, err := backend.Compile(b.Fn, s)
	require.NoError(t, err)
	defer func() { require.NoError(t, frag.Release()) }()

	frag.Run()
}

func op(m decode.Mnemonic, am decode.AddressingMode) decode.Operation {
	return decode.Operation{Mnemonic: m, AddressingMode: am}
}

func TestCompiledLDAImmediate(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.PC = 0x8000
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Lda, decode.Immediate), Operand: 0x00})

	assert.Equal(t, byte(0x00), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagZ))
	assert.False(t, s.CPU.GetFlag(state.FlagN))
	assert.Equal(t, uint16(0x8002), s.CPU.PC)
}

func TestCompiledADCCarryAndOverflow(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.A = 0x7F
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Adc, decode.Immediate), Operand: 0x01})

	assert.Equal(t, byte(0x80), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagN))
	assert.True(t, s.CPU.GetFlag(state.FlagV))
	assert.False(t, s.CPU.GetFlag(state.FlagC))
	assert.False(t, s.CPU.GetFlag(state.FlagZ))
}

func TestCompiledSBCSetsCarryWhenNoBorrow(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.A = 0x10
	s.CPU.SetFlag(state.FlagC, true)
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Sbc, decode.Immediate), Operand: 0x01})

	assert.Equal(t, byte(0x0F), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagC))
}

// Both branch arms of a compiled conditional work against live flags.
func TestCompiledBranch(t *testing.T) {
	instr := decode.Instruction{Address: 0xC000, Operation: op(decode.Bne, decode.Relative), Operand: 0x02}

	t.Run("taken", func(t *testing.T) {
		s := state.New()
		defer s.Release()
		s.CPU.SetFlag(state.FlagZ, false)
		compileAndRun(t, s, instr)
		assert.Equal(t, uint16(0xC004), s.CPU.PC)
	})

	t.Run("not taken", func(t *testing.T) {
		s := state.New()
		defer s.Release()
		s.CPU.SetFlag(state.FlagZ, true)
		compileAndRun(t, s, instr)
		assert.Equal(t, uint16(0xC002), s.CPU.PC)
	})
}

// A compiled store walks the region-dispatch chain: block parameters,
// nested branches, and a region write all lower correctly.
func TestCompiledSTAToRAM(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.A = 0x5C
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Sta, decode.Absolute), Operand: 0x0123})

	assert.Equal(t, byte(0x5C), s.RAM[0x0123])
}

// A compiled load reads through the same chain, including the PRG-ROM
// region, and the mirrored RAM mask.
func TestCompiledLDAAbsolute(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.Cartridge.PRGROM[0x0010] = 0x9A
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Lda, decode.Absolute), Operand: 0x8010})
	assert.Equal(t, byte(0x9A), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagN))

	s.RAM[0x0042] = 0x31
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Lda, decode.Absolute), Operand: 0x0842})
	assert.Equal(t, byte(0x31), s.CPU.A, "0x0842 mirrors RAM cell 0x042")
}

func TestCompiledJSRPushesReturnAddress(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.S = 0xFD
	compileAndRun(t, s, decode.Instruction{Address: 0xC000, Operation: op(decode.Jsr, decode.Absolute), Operand: 0xD000})

	assert.Equal(t, uint16(0xD000), s.CPU.PC)
	assert.Equal(t, byte(0xFB), s.CPU.S)
	assert.Equal(t, byte(0xC0), s.RAM[0x01FD], "return address high pushed first")
	assert.Equal(t, byte(0x02), s.RAM[0x01FC], "return address low pushed second")
}

func TestCompiledROLThroughCarry(t *testing.T) {
	s := state.New()
	defer s.Release()

	s.CPU.A = 0x80
	s.CPU.SetFlag(state.FlagC, true)
	compileAndRun(t, s, decode.Instruction{Address: 0x8000, Operation: op(decode.Rol, decode.Accumulator)})

	assert.Equal(t, byte(0x01), s.CPU.A)
	assert.True(t, s.CPU.GetFlag(state.FlagC), "bit 7 rotated out")
}

func TestCompileForDisplayMatchesCompile(t *testing.T) {
	s := state.New()
	defer s.Release()

	b := frontend.NewBuilder()
	frontend.Transpile[ir.Var1, ir.Var8, ir.Var16](b, decode.Instruction{
		Address: 0x8000, Operation: op(decode.Nop, decode.Implied),
	})

	code, err := backend.CompileForDisplay(b.Fn, s)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}
