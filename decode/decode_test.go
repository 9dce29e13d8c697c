package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/decode"
)

// program serves bytes at a fixed base address, the shape Decode sees when
// fetching from a mapped code window.
type program struct {
	base  uint16
	bytes []byte
}

func (p program) ReadByte(addr uint16) byte { return p.bytes[addr-p.base] }

func TestAllOpcodesHaveValidLength(t *testing.T) {
	for opcode := 0; opcode < 256; opcode++ {
		src := program{bytes: []byte{byte(opcode), 0, 0}}
		inst, _ := decode.Decode(src, 0)
		length := inst.Operation.AddressingMode.OperandLength()
		assert.Containsf(t, []int{0, 1, 2}, length, "opcode %#x", opcode)
	}
}

func TestLDAImmediate(t *testing.T) {
	src := program{base: 0x8000, bytes: []byte{0xA9, 0x00, 0x00}}
	inst, allPRGROM := decode.Decode(src, 0x8000)

	require.Equal(t, decode.Lda, inst.Operation.Mnemonic)
	require.Equal(t, decode.Immediate, inst.Operation.AddressingMode)
	require.Equal(t, uint16(0x00), inst.Operand)
	assert.Equal(t, uint16(0x8002), inst.AddressEnd())
	assert.True(t, allPRGROM)
}

func TestDecodeConsumesExactLength(t *testing.T) {
	src := program{base: 0x8000, bytes: []byte{0x6D, 0x34, 0x12}} // ADC Absolute
	inst, _ := decode.Decode(src, 0x8000)

	assert.Equal(t, inst.Operation.AddressingMode.OperandLength()+1, int(inst.Length()))
	assert.Equal(t, inst.Address+inst.Length(), inst.AddressEnd())
}

func TestNonPRGROMByteClearsFlag(t *testing.T) {
	src := program{bytes: []byte{0xA9, 0x00}}
	_, allPRGROM := decode.Decode(src, 0x0000)
	assert.False(t, allPRGROM)
}

func TestInstructionString(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  string
	}{
		{[]byte{0xA9, 0x00}, "Lda #$00"},
		{[]byte{0x6D, 0x34, 0x12}, "Adc $1234"},
		{[]byte{0xBD, 0x34, 0x12}, "Lda $1234,x"},
		{[]byte{0x6C, 0xFF, 0x80}, "Jmp ($80ff)"},
		{[]byte{0xB1, 0x40}, "Lda ($40),y"},
		{[]byte{0xA1, 0x40}, "Lda ($40,x)"},
		{[]byte{0xB5, 0xFD}, "Lda $fd,x"},
		{[]byte{0x0A}, "Asl a"},
		{[]byte{0xEA}, "Nop"},
		// Relative operands print as the resolved target: 0x8002 - 3.
		{[]byte{0xD0, 0xFD}, "Bne $7fff"},
	}
	for _, c := range cases {
		inst, _ := decode.Decode(program{base: 0x8000, bytes: c.bytes}, 0x8000)
		assert.Equal(t, c.want, inst.String())
	}
}

// Re-emitting a decoded instruction's bytes and decoding again reproduces
// the same mnemonic, mode, and operand for every opcode.
func TestDecodeIsStableUnderReassembly(t *testing.T) {
	for opcode := 0; opcode < 256; opcode++ {
		src := program{base: 0x8000, bytes: []byte{byte(opcode), 0x34, 0x12}}
		first, _ := decode.Decode(src, 0x8000)

		reassembled := []byte{byte(opcode)}
		switch first.Operation.AddressingMode.OperandLength() {
		case 1:
			reassembled = append(reassembled, byte(first.Operand), 0)
		case 2:
			reassembled = append(reassembled, byte(first.Operand), byte(first.Operand>>8))
		default:
			reassembled = append(reassembled, 0, 0)
		}

		second, _ := decode.Decode(program{base: 0x8000, bytes: reassembled}, 0x8000)
		require.Equal(t, first, second, "opcode %#02x", opcode)
	}
}

func TestUnknownOpcodeIsUnimplemented(t *testing.T) {
	src := program{base: 0x8000, bytes: []byte{0x02, 0, 0}}
	inst, _ := decode.Decode(src, 0x8000)
	assert.Equal(t, decode.Unimplemented, inst.Operation.Mnemonic)
	assert.Equal(t, uint16(0x8001), inst.AddressEnd())
}
