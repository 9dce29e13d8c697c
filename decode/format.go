package decode

import "fmt"

var mnemonicNames = [...]string{
	Unimplemented: "Unimplemented",
	Adc:           "Adc",
	And:           "And",
	Asl:           "Asl",
	Bcc:           "Bcc",
	Bcs:           "Bcs",
	Beq:           "Beq",
	Bit:           "Bit",
	Bmi:           "Bmi",
	Bne:           "Bne",
	Bpl:           "Bpl",
	Brk:           "Brk",
	Bvc:           "Bvc",
	Bvs:           "Bvs",
	Clc:           "Clc",
	Cld:           "Cld",
	Cli:           "Cli",
	Clv:           "Clv",
	Cmp:           "Cmp",
	Cpx:           "Cpx",
	Cpy:           "Cpy",
	Dec:           "Dec",
	Dex:           "Dex",
	Dey:           "Dey",
	Eor:           "Eor",
	Inc:           "Inc",
	Inx:           "Inx",
	Iny:           "Iny",
	Jmp:           "Jmp",
	Jsr:           "Jsr",
	Lda:           "Lda",
	Ldx:           "Ldx",
	Ldy:           "Ldy",
	Lsr:           "Lsr",
	Nop:           "Nop",
	Ora:           "Ora",
	Pha:           "Pha",
	Php:           "Php",
	Pla:           "Pla",
	Plp:           "Plp",
	Rol:           "Rol",
	Ror:           "Ror",
	Rti:           "Rti",
	Rts:           "Rts",
	Sbc:           "Sbc",
	Sec:           "Sec",
	Sed:           "Sed",
	Sei:           "Sei",
	Sta:           "Sta",
	Stx:           "Stx",
	Sty:           "Sty",
	Tax:           "Tax",
	Tay:           "Tay",
	Tsx:           "Tsx",
	Txa:           "Txa",
	Txs:           "Txs",
	Tya:           "Tya",
}

func (m Mnemonic) String() string {
	if int(m) < len(mnemonicNames) {
		return mnemonicNames[m]
	}
	return fmt.Sprintf("Mnemonic(%d)", int(m))
}

// String renders the instruction in conventional 6502 assembly notation.
// Relative operands print as their resolved target address rather than the
// raw displacement.
func (i Instruction) String() string {
	m := i.Operation.Mnemonic
	switch i.Operation.AddressingMode {
	case Absolute:
		return fmt.Sprintf("%v $%04x", m, i.Operand)
	case AbsoluteX:
		return fmt.Sprintf("%v $%04x,x", m, i.Operand)
	case AbsoluteY:
		return fmt.Sprintf("%v $%04x,y", m, i.Operand)
	case Accumulator:
		return fmt.Sprintf("%v a", m)
	case Immediate:
		return fmt.Sprintf("%v #$%02x", m, i.Operand)
	case Indirect:
		return fmt.Sprintf("%v ($%04x)", m, i.Operand)
	case IndirectY:
		return fmt.Sprintf("%v ($%02x),y", m, i.Operand)
	case Relative:
		target := i.AddressEnd() + uint16(int16(int8(i.Operand)))
		return fmt.Sprintf("%v $%04x", m, target)
	case IndirectX:
		return fmt.Sprintf("%v ($%02x,x)", m, i.Operand)
	case ZeroPage:
		return fmt.Sprintf("%v $%02x", m, i.Operand)
	case ZeroPageX:
		return fmt.Sprintf("%v $%02x,x", m, i.Operand)
	case ZeroPageY:
		return fmt.Sprintf("%v $%02x,y", m, i.Operand)
	default: // Implied
		return m.String()
	}
}
