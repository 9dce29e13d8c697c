// Package decode turns a stream of 6502 bytes into structured Instruction
// values: one opcode byte, a static table lookup, then an
// addressing-mode-sized operand assembled in little-endian order.
package decode

// Mnemonic names a 6502 operation, or the distinguished Unimplemented
// sentinel for bytes with no official meaning.
type Mnemonic int

const (
	Unimplemented Mnemonic = iota
	Adc
	And
	Asl
	Bcc
	Bcs
	Beq
	Bit
	Bmi
	Bne
	Bpl
	Brk
	Bvc
	Bvs
	Clc
	Cld
	Cli
	Clv
	Cmp
	Cpx
	Cpy
	Dec
	Dex
	Dey
	Eor
	Inc
	Inx
	Iny
	Jmp
	Jsr
	Lda
	Ldx
	Ldy
	Lsr
	Nop
	Ora
	Pha
	Php
	Pla
	Plp
	Rol
	Ror
	Rti
	Rts
	Sbc
	Sec
	Sed
	Sei
	Sta
	Stx
	Sty
	Tax
	Tay
	Tsx
	Txa
	Txs
	Tya
)

// AddressingMode names how an instruction's operand bytes are interpreted.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	IndirectX
	IndirectY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
)

// OperandLength returns the number of operand bytes (0, 1, or 2) the
// addressing mode consumes.
func (m AddressingMode) OperandLength() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, Relative:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	default:
		return 0
	}
}

// Operation is the static, opcode-independent part of an instruction.
type Operation struct {
	Mnemonic       Mnemonic
	AddressingMode AddressingMode
}

// Instruction is one decoded 6502 instruction: where it starts, what it
// does, and its (possibly zero-extended) operand.
type Instruction struct {
	Address   uint16
	Operation Operation
	Operand   uint16
}

// Length is the total byte count of the instruction, including its opcode.
func (i Instruction) Length() uint16 {
	return 1 + uint16(i.Operation.AddressingMode.OperandLength())
}

// AddressEnd is the guest address one past the instruction's last byte.
func (i Instruction) AddressEnd() uint16 {
	return i.Address + i.Length()
}

// ByteSource reads one guest byte and reports it, used by Decode to fetch
// opcode and operand bytes in order.
type ByteSource interface {
	ReadByte(addr uint16) byte
}

// Decode reads one instruction starting at addr from src. The returned bool
// is true only if every fetched byte address fell in 0x8000-0xFFFF, the
// PRG-ROM window; the executor's fragment cache admits a compiled fragment
// only when this predicate holds.
func Decode(src ByteSource, addr uint16) (Instruction, bool) {
	allPRGROM := true
	next := addr
	fetch := func() byte {
		if next < 0x8000 {
			allPRGROM = false
		}
		b := src.ReadByte(next)
		next++
		return b
	}

	opcode := fetch()
	op := opcodeTable[opcode]
	if op.Mnemonic == Unimplemented {
		op.AddressingMode = Implied
	}

	var operand uint16
	switch op.AddressingMode.OperandLength() {
	case 1:
		operand = uint16(fetch())
	case 2:
		lo := fetch()
		hi := fetch()
		operand = uint16(hi)<<8 | uint16(lo)
	}

	return Instruction{Address: addr, Operation: op, Operand: operand}, allPRGROM
}

// opcodeTable maps every opcode byte 0x00-0xFF to its operation. Bytes
// with no official meaning map to Unimplemented; their entries keep the
// unofficial form's conventional addressing mode, but Decode treats every
// Unimplemented opcode as Implied, so it consumes no operand bytes.
var opcodeTable = [256]Operation{
	0x00: {Mnemonic: Brk, AddressingMode: Implied},
	0x01: {Mnemonic: Ora, AddressingMode: IndirectX},
	0x02: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x03: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0x04: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x05: {Mnemonic: Ora, AddressingMode: ZeroPage},
	0x06: {Mnemonic: Asl, AddressingMode: ZeroPage},
	0x07: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x08: {Mnemonic: Php, AddressingMode: Implied},
	0x09: {Mnemonic: Ora, AddressingMode: Immediate},
	0x0a: {Mnemonic: Asl, AddressingMode: Accumulator},
	0x0b: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x0c: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x0d: {Mnemonic: Ora, AddressingMode: Absolute},
	0x0e: {Mnemonic: Asl, AddressingMode: Absolute},
	0x0f: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x10: {Mnemonic: Bpl, AddressingMode: Relative},
	0x11: {Mnemonic: Ora, AddressingMode: IndirectY},
	0x12: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x13: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0x14: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x15: {Mnemonic: Ora, AddressingMode: ZeroPageX},
	0x16: {Mnemonic: Asl, AddressingMode: ZeroPageX},
	0x17: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x18: {Mnemonic: Clc, AddressingMode: Implied},
	0x19: {Mnemonic: Ora, AddressingMode: AbsoluteY},
	0x1a: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x1b: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x1c: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x1d: {Mnemonic: Ora, AddressingMode: AbsoluteX},
	0x1e: {Mnemonic: Asl, AddressingMode: AbsoluteX},
	0x1f: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x20: {Mnemonic: Jsr, AddressingMode: Absolute},
	0x21: {Mnemonic: And, AddressingMode: IndirectX},
	0x22: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x23: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0x24: {Mnemonic: Bit, AddressingMode: ZeroPage},
	0x25: {Mnemonic: And, AddressingMode: ZeroPage},
	0x26: {Mnemonic: Rol, AddressingMode: ZeroPage},
	0x27: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x28: {Mnemonic: Plp, AddressingMode: Implied},
	0x29: {Mnemonic: And, AddressingMode: Immediate},
	0x2a: {Mnemonic: Rol, AddressingMode: Accumulator},
	0x2b: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x2c: {Mnemonic: Bit, AddressingMode: Absolute},
	0x2d: {Mnemonic: And, AddressingMode: Absolute},
	0x2e: {Mnemonic: Rol, AddressingMode: Absolute},
	0x2f: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x30: {Mnemonic: Bmi, AddressingMode: Relative},
	0x31: {Mnemonic: And, AddressingMode: IndirectY},
	0x32: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x33: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0x34: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x35: {Mnemonic: And, AddressingMode: ZeroPageX},
	0x36: {Mnemonic: Rol, AddressingMode: ZeroPageX},
	0x37: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x38: {Mnemonic: Sec, AddressingMode: Implied},
	0x39: {Mnemonic: And, AddressingMode: AbsoluteY},
	0x3a: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x3b: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x3c: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x3d: {Mnemonic: And, AddressingMode: AbsoluteX},
	0x3e: {Mnemonic: Rol, AddressingMode: AbsoluteX},
	0x3f: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x40: {Mnemonic: Rti, AddressingMode: Implied},
	0x41: {Mnemonic: Eor, AddressingMode: IndirectX},
	0x42: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x43: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0x44: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x45: {Mnemonic: Eor, AddressingMode: ZeroPage},
	0x46: {Mnemonic: Lsr, AddressingMode: ZeroPage},
	0x47: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x48: {Mnemonic: Pha, AddressingMode: Implied},
	0x49: {Mnemonic: Eor, AddressingMode: Immediate},
	0x4a: {Mnemonic: Lsr, AddressingMode: Accumulator},
	0x4b: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x4c: {Mnemonic: Jmp, AddressingMode: Absolute},
	0x4d: {Mnemonic: Eor, AddressingMode: Absolute},
	0x4e: {Mnemonic: Lsr, AddressingMode: Absolute},
	0x4f: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x50: {Mnemonic: Bvc, AddressingMode: Relative},
	0x51: {Mnemonic: Eor, AddressingMode: IndirectY},
	0x52: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x53: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0x54: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x55: {Mnemonic: Eor, AddressingMode: ZeroPageX},
	0x56: {Mnemonic: Lsr, AddressingMode: ZeroPageX},
	0x57: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x58: {Mnemonic: Cli, AddressingMode: Implied},
	0x59: {Mnemonic: Eor, AddressingMode: AbsoluteY},
	0x5a: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x5b: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x5c: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x5d: {Mnemonic: Eor, AddressingMode: AbsoluteX},
	0x5e: {Mnemonic: Lsr, AddressingMode: AbsoluteX},
	0x5f: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x60: {Mnemonic: Rts, AddressingMode: Implied},
	0x61: {Mnemonic: Adc, AddressingMode: IndirectX},
	0x62: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x63: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0x64: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x65: {Mnemonic: Adc, AddressingMode: ZeroPage},
	0x66: {Mnemonic: Ror, AddressingMode: ZeroPage},
	0x67: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x68: {Mnemonic: Pla, AddressingMode: Implied},
	0x69: {Mnemonic: Adc, AddressingMode: Immediate},
	0x6a: {Mnemonic: Ror, AddressingMode: Accumulator},
	0x6b: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x6c: {Mnemonic: Jmp, AddressingMode: Indirect},
	0x6d: {Mnemonic: Adc, AddressingMode: Absolute},
	0x6e: {Mnemonic: Ror, AddressingMode: Absolute},
	0x6f: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x70: {Mnemonic: Bvs, AddressingMode: Relative},
	0x71: {Mnemonic: Adc, AddressingMode: IndirectY},
	0x72: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x73: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0x74: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x75: {Mnemonic: Adc, AddressingMode: ZeroPageX},
	0x76: {Mnemonic: Ror, AddressingMode: ZeroPageX},
	0x77: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0x78: {Mnemonic: Sei, AddressingMode: Implied},
	0x79: {Mnemonic: Adc, AddressingMode: AbsoluteY},
	0x7a: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x7b: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x7c: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x7d: {Mnemonic: Adc, AddressingMode: AbsoluteX},
	0x7e: {Mnemonic: Ror, AddressingMode: AbsoluteX},
	0x7f: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x80: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x81: {Mnemonic: Sta, AddressingMode: IndirectX},
	0x82: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x83: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0x84: {Mnemonic: Sty, AddressingMode: ZeroPage},
	0x85: {Mnemonic: Sta, AddressingMode: ZeroPage},
	0x86: {Mnemonic: Stx, AddressingMode: ZeroPage},
	0x87: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0x88: {Mnemonic: Dey, AddressingMode: Implied},
	0x89: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x8a: {Mnemonic: Txa, AddressingMode: Implied},
	0x8b: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0x8c: {Mnemonic: Sty, AddressingMode: Absolute},
	0x8d: {Mnemonic: Sta, AddressingMode: Absolute},
	0x8e: {Mnemonic: Stx, AddressingMode: Absolute},
	0x8f: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0x90: {Mnemonic: Bcc, AddressingMode: Relative},
	0x91: {Mnemonic: Sta, AddressingMode: IndirectY},
	0x92: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0x93: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0x94: {Mnemonic: Sty, AddressingMode: ZeroPageX},
	0x95: {Mnemonic: Sta, AddressingMode: ZeroPageX},
	0x96: {Mnemonic: Stx, AddressingMode: ZeroPageY},
	0x97: {Mnemonic: Unimplemented, AddressingMode: ZeroPageY},
	0x98: {Mnemonic: Tya, AddressingMode: Implied},
	0x99: {Mnemonic: Sta, AddressingMode: AbsoluteY},
	0x9a: {Mnemonic: Txs, AddressingMode: Implied},
	0x9b: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x9c: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0x9d: {Mnemonic: Sta, AddressingMode: AbsoluteX},
	0x9e: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0x9f: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0xa0: {Mnemonic: Ldy, AddressingMode: Immediate},
	0xa1: {Mnemonic: Lda, AddressingMode: IndirectX},
	0xa2: {Mnemonic: Ldx, AddressingMode: Immediate},
	0xa3: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0xa4: {Mnemonic: Ldy, AddressingMode: ZeroPage},
	0xa5: {Mnemonic: Lda, AddressingMode: ZeroPage},
	0xa6: {Mnemonic: Ldx, AddressingMode: ZeroPage},
	0xa7: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0xa8: {Mnemonic: Tay, AddressingMode: Implied},
	0xa9: {Mnemonic: Lda, AddressingMode: Immediate},
	0xaa: {Mnemonic: Tax, AddressingMode: Implied},
	0xab: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0xac: {Mnemonic: Ldy, AddressingMode: Absolute},
	0xad: {Mnemonic: Lda, AddressingMode: Absolute},
	0xae: {Mnemonic: Ldx, AddressingMode: Absolute},
	0xaf: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0xb0: {Mnemonic: Bcs, AddressingMode: Relative},
	0xb1: {Mnemonic: Lda, AddressingMode: IndirectY},
	0xb2: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0xb3: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0xb4: {Mnemonic: Ldy, AddressingMode: ZeroPageX},
	0xb5: {Mnemonic: Lda, AddressingMode: ZeroPageX},
	0xb6: {Mnemonic: Ldx, AddressingMode: ZeroPageY},
	0xb7: {Mnemonic: Unimplemented, AddressingMode: ZeroPageY},
	0xb8: {Mnemonic: Clv, AddressingMode: Implied},
	0xb9: {Mnemonic: Lda, AddressingMode: AbsoluteY},
	0xba: {Mnemonic: Tsx, AddressingMode: Implied},
	0xbb: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0xbc: {Mnemonic: Ldy, AddressingMode: AbsoluteX},
	0xbd: {Mnemonic: Lda, AddressingMode: AbsoluteX},
	0xbe: {Mnemonic: Ldx, AddressingMode: AbsoluteY},
	0xbf: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0xc0: {Mnemonic: Cpy, AddressingMode: Immediate},
	0xc1: {Mnemonic: Cmp, AddressingMode: IndirectX},
	0xc2: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0xc3: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0xc4: {Mnemonic: Cpy, AddressingMode: ZeroPage},
	0xc5: {Mnemonic: Cmp, AddressingMode: ZeroPage},
	0xc6: {Mnemonic: Dec, AddressingMode: ZeroPage},
	0xc7: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0xc8: {Mnemonic: Iny, AddressingMode: Implied},
	0xc9: {Mnemonic: Cmp, AddressingMode: Immediate},
	0xca: {Mnemonic: Dex, AddressingMode: Implied},
	0xcb: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0xcc: {Mnemonic: Cpy, AddressingMode: Absolute},
	0xcd: {Mnemonic: Cmp, AddressingMode: Absolute},
	0xce: {Mnemonic: Dec, AddressingMode: Absolute},
	0xcf: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0xd0: {Mnemonic: Bne, AddressingMode: Relative},
	0xd1: {Mnemonic: Cmp, AddressingMode: IndirectY},
	0xd2: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0xd3: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0xd4: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0xd5: {Mnemonic: Cmp, AddressingMode: ZeroPageX},
	0xd6: {Mnemonic: Dec, AddressingMode: ZeroPageX},
	0xd7: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0xd8: {Mnemonic: Cld, AddressingMode: Implied},
	0xd9: {Mnemonic: Cmp, AddressingMode: AbsoluteY},
	0xda: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0xdb: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0xdc: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0xdd: {Mnemonic: Cmp, AddressingMode: AbsoluteX},
	0xde: {Mnemonic: Dec, AddressingMode: AbsoluteX},
	0xdf: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0xe0: {Mnemonic: Cpx, AddressingMode: Immediate},
	0xe1: {Mnemonic: Sbc, AddressingMode: IndirectX},
	0xe2: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0xe3: {Mnemonic: Unimplemented, AddressingMode: IndirectX},
	0xe4: {Mnemonic: Cpx, AddressingMode: ZeroPage},
	0xe5: {Mnemonic: Sbc, AddressingMode: ZeroPage},
	0xe6: {Mnemonic: Inc, AddressingMode: ZeroPage},
	0xe7: {Mnemonic: Unimplemented, AddressingMode: ZeroPage},
	0xe8: {Mnemonic: Inx, AddressingMode: Implied},
	0xe9: {Mnemonic: Sbc, AddressingMode: Immediate},
	0xea: {Mnemonic: Nop, AddressingMode: Implied},
	0xeb: {Mnemonic: Unimplemented, AddressingMode: Immediate},
	0xec: {Mnemonic: Cpx, AddressingMode: Absolute},
	0xed: {Mnemonic: Sbc, AddressingMode: Absolute},
	0xee: {Mnemonic: Inc, AddressingMode: Absolute},
	0xef: {Mnemonic: Unimplemented, AddressingMode: Absolute},
	0xf0: {Mnemonic: Beq, AddressingMode: Relative},
	0xf1: {Mnemonic: Sbc, AddressingMode: IndirectY},
	0xf2: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0xf3: {Mnemonic: Unimplemented, AddressingMode: IndirectY},
	0xf4: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0xf5: {Mnemonic: Sbc, AddressingMode: ZeroPageX},
	0xf6: {Mnemonic: Inc, AddressingMode: ZeroPageX},
	0xf7: {Mnemonic: Unimplemented, AddressingMode: ZeroPageX},
	0xf8: {Mnemonic: Sed, AddressingMode: Implied},
	0xf9: {Mnemonic: Sbc, AddressingMode: AbsoluteY},
	0xfa: {Mnemonic: Unimplemented, AddressingMode: Implied},
	0xfb: {Mnemonic: Unimplemented, AddressingMode: AbsoluteY},
	0xfc: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
	0xfd: {Mnemonic: Sbc, AddressingMode: AbsoluteX},
	0xfe: {Mnemonic: Inc, AddressingMode: AbsoluteX},
	0xff: {Mnemonic: Unimplemented, AddressingMode: AbsoluteX},
}
