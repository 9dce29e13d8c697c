package frontend

import "github.com/negative-seven/nopt/decode"

// Transpile expands one decoded instruction into IR (or, against
// Interpreter, directly evaluates it) by calling the shared operation
// vocabulary in Visitor. Every official mnemonic is handled; Unimplemented
// only advances PC.
func Transpile[B1, B8, B16 any](v Visitor[B1, B8, B16], instr decode.Instruction) {
	t := transpiler[B1, B8, B16]{v: v, instr: instr}
	t.run()
}

type transpiler[B1, B8, B16 any] struct {
	v     Visitor[B1, B8, B16]
	instr decode.Instruction
}

func (t *transpiler[B1, B8, B16]) run() {
	mnem := t.instr.Operation.Mnemonic

	switch mnem {
	case decode.Adc:
		t.adcSbc(false)
	case decode.Sbc:
		t.adcSbc(true)
	case decode.And:
		t.logic(t.v.And8)
	case decode.Eor:
		t.logic(t.v.Xor8)
	case decode.Ora:
		t.logic(t.v.Or8)
	case decode.Asl:
		t.shift(true, false)
	case decode.Lsr:
		t.shift(false, false)
	case decode.Rol:
		t.shift(true, true)
	case decode.Ror:
		t.shift(false, true)
	case decode.Cmp:
		t.compare(RegA)
	case decode.Cpx:
		t.compare(RegX)
	case decode.Cpy:
		t.compare(RegY)
	case decode.Inc:
		t.incDecMemory(1)
	case decode.Dec:
		t.incDecMemory(0xFF)
	case decode.Inx:
		t.incDecRegister(RegX, 1)
	case decode.Dex:
		t.incDecRegister(RegX, 0xFF)
	case decode.Iny:
		t.incDecRegister(RegY, 1)
	case decode.Dey:
		t.incDecRegister(RegY, 0xFF)
	case decode.Lda:
		t.load(RegA)
	case decode.Ldx:
		t.load(RegX)
	case decode.Ldy:
		t.load(RegY)
	case decode.Sta:
		t.store(RegA)
	case decode.Stx:
		t.store(RegX)
	case decode.Sty:
		t.store(RegY)
	case decode.Tax:
		t.transfer(RegA, RegX, true)
	case decode.Tay:
		t.transfer(RegA, RegY, true)
	case decode.Tsx:
		t.transfer(RegS, RegX, true)
	case decode.Txa:
		t.transfer(RegX, RegA, true)
	case decode.Txs:
		t.transfer(RegX, RegS, false)
	case decode.Tya:
		t.transfer(RegY, RegA, true)
	case decode.Bcc:
		t.branch(func() B1 { return t.v.Not(t.v.ReadFlag(FlagC)) })
	case decode.Bcs:
		t.branch(func() B1 { return t.v.ReadFlag(FlagC) })
	case decode.Beq:
		t.branch(func() B1 { return t.v.ReadFlag(FlagZ) })
	case decode.Bmi:
		t.branch(func() B1 { return t.v.ReadFlag(FlagN) })
	case decode.Bne:
		t.branch(func() B1 { return t.v.Not(t.v.ReadFlag(FlagZ)) })
	case decode.Bpl:
		t.branch(func() B1 { return t.v.Not(t.v.ReadFlag(FlagN)) })
	case decode.Bvc:
		t.branch(func() B1 { return t.v.Not(t.v.ReadFlag(FlagV)) })
	case decode.Bvs:
		t.branch(func() B1 { return t.v.ReadFlag(FlagV) })
	case decode.Bit:
		t.bit()
	case decode.Jmp:
		t.jmp()
	case decode.Jsr:
		t.jsr()
	case decode.Rts:
		t.rts()
	case decode.Brk:
		t.brk()
	case decode.Rti:
		t.rti()
	case decode.Clc:
		t.v.SetFlag(FlagC, t.v.Immediate1(false))
		t.fallthroughPC()
	case decode.Cld:
		t.v.SetFlag(FlagD, t.v.Immediate1(false))
		t.fallthroughPC()
	case decode.Cli:
		t.v.SetFlag(FlagI, t.v.Immediate1(false))
		t.fallthroughPC()
	case decode.Clv:
		t.v.SetFlag(FlagV, t.v.Immediate1(false))
		t.fallthroughPC()
	case decode.Sec:
		t.v.SetFlag(FlagC, t.v.Immediate1(true))
		t.fallthroughPC()
	case decode.Sed:
		t.v.SetFlag(FlagD, t.v.Immediate1(true))
		t.fallthroughPC()
	case decode.Sei:
		t.v.SetFlag(FlagI, t.v.Immediate1(true))
		t.fallthroughPC()
	case decode.Pha:
		t.push8(t.v.ReadRegister(RegA))
		t.fallthroughPC()
	case decode.Php:
		t.push8(t.statusWithBAndUnusedSet())
		t.fallthroughPC()
	case decode.Pla:
		a := t.pop8()
		t.v.SetRegister(RegA, a)
		t.setNZ(a)
		t.fallthroughPC()
	case decode.Plp:
		t.restoreStatusPreservingBU(t.pop8())
		t.fallthroughPC()
	case decode.Nop, decode.Unimplemented:
		t.fallthroughPC()
	default:
		t.fallthroughPC()
	}

	t.v.Return()
}

// fallthroughPC writes address+length to PC, the default next-PC for any
// instruction that doesn't otherwise redirect control flow.
func (t *transpiler[B1, B8, B16]) fallthroughPC() {
	t.v.SetPC(t.v.Immediate16(t.instr.AddressEnd()))
}

func (t *transpiler[B1, B8, B16]) setNZ(val B8) {
	t.v.SetFlag(FlagN, t.v.SignBit8(val))
	t.v.SetFlag(FlagZ, t.v.EqualZero8(val))
}

func (t *transpiler[B1, B8, B16]) zeroExtend(v B8) B16 {
	return t.v.Concatenate(t.v.Immediate8(0), v)
}

func (t *transpiler[B1, B8, B16]) signExtend(v B8) B16 {
	sign := t.v.SignBit8(v)
	high := t.v.IfElseWithResult8(sign, func() B8 { return t.v.Immediate8(0xFF) }, func() B8 { return t.v.Immediate8(0x00) })
	return t.v.Concatenate(high, v)
}

// readU16Deref dereferences a 16-bit pointer with the 6502 page-wrap bug:
// the high byte is read from the same page as the low byte, so the pointer
// low byte wraps modulo 256 before the high-byte fetch.
func (t *transpiler[B1, B8, B16]) readU16Deref(ptr B16) B16 {
	lo := t.v.ReadMemory(ptr)
	ptrLow := t.v.LowByte(ptr)
	ptrHigh := t.v.HighByte(ptr)
	wrappedLow := t.v.Add8(ptrLow, t.v.Immediate8(1))
	hi := t.v.ReadMemory(t.v.Concatenate(ptrHigh, wrappedLow))
	return t.v.Concatenate(hi, lo)
}

func (t *transpiler[B1, B8, B16]) operandByte() B8 {
	return t.v.Immediate8(byte(t.instr.Operand))
}

// operandAddress resolves the 16-bit effective address for every
// memory-referencing addressing mode. Immediate/Accumulator/Implied/
// Relative never reach here.
func (t *transpiler[B1, B8, B16]) operandAddress() B16 {
	switch t.instr.Operation.AddressingMode {
	case decode.ZeroPage:
		return t.zeroExtend(t.operandByte())
	case decode.ZeroPageX:
		return t.zeroExtend(t.v.Add8(t.operandByte(), t.v.ReadRegister(RegX)))
	case decode.ZeroPageY:
		return t.zeroExtend(t.v.Add8(t.operandByte(), t.v.ReadRegister(RegY)))
	case decode.Absolute:
		return t.v.Immediate16(t.instr.Operand)
	case decode.AbsoluteX:
		return t.v.Add16(t.v.Immediate16(t.instr.Operand), t.zeroExtend(t.v.ReadRegister(RegX)))
	case decode.AbsoluteY:
		return t.v.Add16(t.v.Immediate16(t.instr.Operand), t.zeroExtend(t.v.ReadRegister(RegY)))
	case decode.IndirectX:
		ptr := t.zeroExtend(t.v.Add8(t.operandByte(), t.v.ReadRegister(RegX)))
		return t.readU16Deref(ptr)
	case decode.IndirectY:
		ptr := t.zeroExtend(t.operandByte())
		deref := t.readU16Deref(ptr)
		return t.v.Add16(deref, t.zeroExtend(t.v.ReadRegister(RegY)))
	case decode.Indirect:
		return t.readU16Deref(t.v.Immediate16(t.instr.Operand))
	default:
		return t.v.Immediate16(t.instr.Operand)
	}
}

func (t *transpiler[B1, B8, B16]) readOperand8() B8 {
	switch t.instr.Operation.AddressingMode {
	case decode.Immediate:
		return t.operandByte()
	case decode.Accumulator:
		return t.v.ReadRegister(RegA)
	default:
		return t.v.ReadMemory(t.operandAddress())
	}
}

func (t *transpiler[B1, B8, B16]) writeOperand8(val B8) {
	if t.instr.Operation.AddressingMode == decode.Accumulator {
		t.v.SetRegister(RegA, val)
		return
	}
	t.v.WriteMemory(t.operandAddress(), val)
}

func (t *transpiler[B1, B8, B16]) push8(val B8) {
	s := t.v.ReadRegister(RegS)
	t.v.WriteMemory(t.v.Concatenate(t.v.Immediate8(1), s), val)
	t.v.SetRegister(RegS, t.v.Add8(s, t.v.Immediate8(0xFF)))
}

func (t *transpiler[B1, B8, B16]) pop8() B8 {
	s := t.v.Add8(t.v.ReadRegister(RegS), t.v.Immediate8(1))
	t.v.SetRegister(RegS, s)
	return t.v.ReadMemory(t.v.Concatenate(t.v.Immediate8(1), s))
}

func (t *transpiler[B1, B8, B16]) push16(val B16) {
	t.push8(t.v.HighByte(val))
	t.push8(t.v.LowByte(val))
}

func (t *transpiler[B1, B8, B16]) pop16() B16 {
	low := t.pop8()
	high := t.pop8()
	return t.v.Concatenate(high, low)
}

// statusWithBAndUnusedSet reads P and forces bits B and Unused set, as PHP
// and BRK both require.
func (t *transpiler[B1, B8, B16]) statusWithBAndUnusedSet() B8 {
	p := t.v.ReadRegister(RegP)
	withB := t.v.Or8(p, t.v.Immediate8(1<<FlagB))
	return t.v.Or8(withB, t.v.Immediate8(1<<FlagU))
}

// restoreStatusPreservingBU writes a popped status byte back to P but keeps
// the currently-set B and Unused bits, as PLP and RTI both require.
func (t *transpiler[B1, B8, B16]) restoreStatusPreservingBU(popped B8) {
	current := t.v.ReadRegister(RegP)
	bu := t.v.And8(current, t.v.Immediate8((1<<FlagB)|(1<<FlagU)))
	cleared := t.v.And8(popped, t.v.Immediate8(^byte((1<<FlagB)|(1<<FlagU))))
	t.v.SetRegister(RegP, t.v.Or8(cleared, bu))
}

func (t *transpiler[B1, B8, B16]) adcSbc(subtract bool) {
	a := t.v.ReadRegister(RegA)
	operand := t.readOperand8()
	carryIn := t.v.ReadFlag(FlagC)

	var sum B8
	var carryOut, overflow B1
	if subtract {
		var borrowOut B1
		sum, borrowOut, overflow = t.v.SubWithBorrow8(a, operand, t.v.Not(carryIn))
		carryOut = t.v.Not(borrowOut)
	} else {
		sum, carryOut, overflow = t.v.AddWithCarry8(a, operand, carryIn)
	}

	t.v.SetRegister(RegA, sum)
	t.v.SetFlag(FlagC, carryOut)
	t.v.SetFlag(FlagV, overflow)
	t.setNZ(sum)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) logic(op func(a, b B8) B8) {
	result := op(t.v.ReadRegister(RegA), t.readOperand8())
	t.v.SetRegister(RegA, result)
	t.setNZ(result)
	t.fallthroughPC()
}

// shift implements ASL/LSR/ROL/ROR: left==true for ASL/ROL, rotate==true for
// ROL/ROR. ASL/LSR feed in a constant 0 carry; ROL/ROR feed the real carry
// flag.
func (t *transpiler[B1, B8, B16]) shift(left, rotate bool) {
	val := t.readOperand8()
	carryIn := t.v.Immediate1(false)
	if rotate {
		carryIn = t.v.ReadFlag(FlagC)
	}

	var result B8
	var carryOut B1
	if left {
		result, carryOut = t.v.RotateLeftThroughCarry(val, carryIn)
	} else {
		result, carryOut = t.v.RotateRightThroughCarry(val, carryIn)
	}

	t.writeOperand8(result)
	t.v.SetFlag(FlagC, carryOut)
	t.setNZ(result)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) compare(reg Register) {
	a := t.v.ReadRegister(reg)
	operand := t.readOperand8()
	diff, borrowOut, _ := t.v.SubWithBorrow8(a, operand, t.v.Immediate1(false))
	t.v.SetFlag(FlagC, t.v.Not(borrowOut))
	t.setNZ(diff)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) incDecMemory(delta byte) {
	val := t.readOperand8()
	result := t.v.Add8(val, t.v.Immediate8(delta))
	t.writeOperand8(result)
	t.setNZ(result)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) incDecRegister(reg Register, delta byte) {
	result := t.v.Add8(t.v.ReadRegister(reg), t.v.Immediate8(delta))
	t.v.SetRegister(reg, result)
	t.setNZ(result)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) load(reg Register) {
	val := t.readOperand8()
	t.v.SetRegister(reg, val)
	t.setNZ(val)
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) store(reg Register) {
	t.writeOperand8(t.v.ReadRegister(reg))
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) transfer(from, to Register, updateFlags bool) {
	val := t.v.ReadRegister(from)
	t.v.SetRegister(to, val)
	if updateFlags {
		t.setNZ(val)
	}
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) branch(cond func() B1) {
	target := t.v.Add16(t.v.Immediate16(t.instr.AddressEnd()), t.signExtend(t.operandByte()))
	taken := cond()
	nextPC := t.v.Select16(taken, target, t.v.Immediate16(t.instr.AddressEnd()))
	t.v.SetPC(nextPC)
}

func (t *transpiler[B1, B8, B16]) bit() {
	mem := t.readOperand8()
	a := t.v.ReadRegister(RegA)
	t.v.SetFlag(FlagN, t.v.GetBit8(mem, 7))
	t.v.SetFlag(FlagV, t.v.GetBit8(mem, 6))
	t.v.SetFlag(FlagZ, t.v.EqualZero8(t.v.And8(a, mem)))
	t.fallthroughPC()
}

func (t *transpiler[B1, B8, B16]) jmp() {
	switch t.instr.Operation.AddressingMode {
	case decode.Indirect:
		t.v.SetPC(t.readU16Deref(t.v.Immediate16(t.instr.Operand)))
	default:
		t.v.SetPC(t.v.Immediate16(t.instr.Operand))
	}
}

func (t *transpiler[B1, B8, B16]) jsr() {
	t.push16(t.v.Immediate16(t.instr.Address + 2))
	t.v.SetPC(t.v.Immediate16(t.instr.Operand))
}

func (t *transpiler[B1, B8, B16]) rts() {
	addr := t.pop16()
	t.v.SetPC(t.v.Add16(addr, t.v.Immediate16(1)))
}

func (t *transpiler[B1, B8, B16]) brk() {
	t.v.SetFlag(FlagI, t.v.Immediate1(true))
	t.push16(t.v.Immediate16(t.instr.Address + 2))
	t.push8(t.statusWithBAndUnusedSet())
	irqLow := t.v.ReadMemory(t.v.Immediate16(0xFFFE))
	irqHigh := t.v.ReadMemory(t.v.Immediate16(0xFFFF))
	t.v.SetPC(t.v.Concatenate(irqHigh, irqLow))
}

func (t *transpiler[B1, B8, B16]) rti() {
	t.restoreStatusPreservingBU(t.pop8())
	t.v.SetPC(t.pop16())
}
