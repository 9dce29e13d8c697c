package trace_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/decode"
	"github.com/negative-seven/nopt/frontend"
	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/trace"
)

func buildIR(instr decode.Instruction) *ir.Function {
	b := frontend.NewBuilder()
	frontend.Transpile[ir.Var1, ir.Var8, ir.Var16](b, instr)
	return b.Fn
}

func TestDumpIRListsEveryStatementAndTerminator(t *testing.T) {
	instr := decode.Instruction{
		Address:   0x8000,
		Operation: decode.Operation{Mnemonic: decode.Lda, AddressingMode: decode.Immediate},
		Operand:   0x42,
	}
	fn := buildIR(instr)
	require.NoError(t, fn.Validate())

	dump := trace.DumpIR(fn)

	assert.Contains(t, dump, "block0:")
	assert.Contains(t, dump, "imm8 0x42")
	assert.Contains(t, dump, "store reg a")
	assert.Contains(t, dump, "store flag n")
	assert.Contains(t, dump, "store flag z")
	assert.Contains(t, dump, "store pc")
	assert.Contains(t, dump, "return")

	var stmts, terms int
	for _, b := range fn.Blocks {
		stmts += len(b.Stmts)
		terms++
	}
	assert.Equal(t, stmts+terms+len(fn.Blocks), strings.Count(dump, "\n"),
		"one line per statement, terminator, and block header")
}

// Compiling the same instruction twice yields byte-identical IR text.
func TestTranspileIsDeterministic(t *testing.T) {
	instr := decode.Instruction{
		Address:   0xC000,
		Operation: decode.Operation{Mnemonic: decode.Adc, AddressingMode: decode.IndirectY},
		Operand:   0x40,
	}
	first := trace.DumpIR(buildIR(instr))
	second := trace.DumpIR(buildIR(instr))
	assert.Equal(t, first, second)
}

func TestDisassembleResolvesSymbols(t *testing.T) {
	// movzx eax, byte ptr [0x1000] ; ret — hand-assembled x86-64.
	code := []byte{0x0F, 0xB6, 0x04, 0x25, 0x00, 0x10, 0x00, 0x00, 0xC3}
	out := trace.Disassemble(code, 0, map[uintptr]string{0x1000: "cpu_a"})

	assert.Contains(t, out, "RET")
	assert.Contains(t, out, "cpu_a", "absolute guest-state addresses resolve to names")
}

func TestDisassembleSkipsUndecodableBytes(t *testing.T) {
	out := trace.Disassemble([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xC3}, 0, nil)
	assert.Contains(t, out, ".byte")
}
