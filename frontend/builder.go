package frontend

import "github.com/negative-seven/nopt/ir"

// Builder is the IR-building Visitor implementation: every method appends a
// node to the current block of an *ir.Function instead of evaluating
// anything. This is what backend.Compile consumes.
type Builder struct {
	Fn  *ir.Function
	cur ir.BlockID
}

// NewBuilder creates a builder with a fresh, single-entry-block function.
func NewBuilder() *Builder {
	return &Builder{Fn: ir.NewFunction(), cur: ir.Entry}
}

func (b *Builder) Immediate1(v bool) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1Immediate, Immediate: v})
}

func (b *Builder) Immediate8(v byte) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8Immediate, Immediate: v})
}

func (b *Builder) Immediate16(v uint16) ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16Immediate, Immediate: v})
}

func (b *Builder) ReadFlag(f Flag) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1ReadFlag, Flag: ir.Flag(f)})
}

func (b *Builder) SetFlag(f Flag, v ir.Var1) {
	b.Fn.EmitStore1(b.cur, ir.Destination{Kind: ir.DestFlag, Flag: ir.Flag(f)}, v)
}

func (b *Builder) ReadRegister(r Register) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8ReadRegister, Register: ir.Register(r)})
}

func (b *Builder) SetRegister(r Register, v ir.Var8) {
	b.Fn.EmitStore8(b.cur, ir.Destination{Kind: ir.DestRegister, Register: ir.Register(r)}, v)
}

func (b *Builder) ReadPC() ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16ReadPC})
}

func (b *Builder) SetPC(v ir.Var16) {
	b.Fn.EmitStore16(b.cur, ir.Destination{Kind: ir.DestPC}, v)
}

func (b *Builder) ReadMemory(addr ir.Var16) ir.Var8 {
	return dispatchRead[ir.Var1, ir.Var8, ir.Var16](b, addr)
}

func (b *Builder) WriteMemory(addr ir.Var16, v ir.Var8) {
	dispatchWrite[ir.Var1, ir.Var8, ir.Var16](b, addr, v)
}

func (b *Builder) ReadRegion(r Region, addr ir.Var16) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8ReadRegion, Region: ir.Region(r), Address: addr})
}

func (b *Builder) WriteRegion(r Region, addr ir.Var16, v ir.Var8) {
	b.Fn.EmitStore8(b.cur, ir.Destination{Kind: ir.DestRegion, Region: ir.Region(r), Address: addr}, v)
}

func (b *Builder) ReadPPUControl() ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8ReadPPUControl})
}

func (b *Builder) WritePPUControl(v ir.Var8) {
	b.Fn.EmitStore8(b.cur, ir.Destination{Kind: ir.DestPPUControl}, v)
}

func (b *Builder) ReadPPUCurrentAddress() ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16ReadPPUAddress})
}

func (b *Builder) SetPPUCurrentAddress(v ir.Var16) {
	b.Fn.EmitStore16(b.cur, ir.Destination{Kind: ir.DestPPUAddress}, v)
}

func (b *Builder) ReadPPUReadBuffer() ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8ReadPPUReadBuffer})
}

func (b *Builder) SetPPUReadBuffer(v ir.Var8) {
	b.Fn.EmitStore8(b.cur, ir.Destination{Kind: ir.DestPPUReadBuffer}, v)
}

func (b *Builder) Not(v ir.Var1) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1Not, Operand1: v})
}

func (b *Builder) And1(a, c ir.Var1) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1And, Operand1: a, Operand1b: c})
}

func (b *Builder) Or8(a, c ir.Var8) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8Or, A: a, B: c})
}

func (b *Builder) And8(a, c ir.Var8) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8And, A: a, B: c})
}

func (b *Builder) Xor8(a, c ir.Var8) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8Xor, A: a, B: c})
}

func (b *Builder) EqualZero8(v ir.Var8) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1EqualZero8, Operand8: v})
}

func (b *Builder) SignBit8(v ir.Var8) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1SignBit8, Operand8: v})
}

func (b *Builder) GetBit8(v ir.Var8, index int) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1SelectedBit8, Operand8: v, BitIndex: index})
}

func (b *Builder) LessOrEqual16(a, c ir.Var16) ir.Var1 {
	return b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1LessOrEqual16, Operand16a: a, Operand16b: c})
}

func (b *Builder) LowByte(v ir.Var16) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8LowByte, Operand16: v})
}

func (b *Builder) HighByte(v ir.Var16) ir.Var8 {
	return b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8HighByte, Operand16: v})
}

func (b *Builder) Concatenate(high, low ir.Var8) ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16Concatenate, High: high, Low: low})
}

func (b *Builder) Add16(a, c ir.Var16) ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16Add, A: a, B: c})
}

func (b *Builder) Add8(a, c ir.Var8) ir.Var8 {
	sum, _, _ := b.AddWithCarry8(a, c, b.Immediate1(false))
	return sum
}

func (b *Builder) AddWithCarry8(a, c ir.Var8, carryIn ir.Var1) (ir.Var8, ir.Var1, ir.Var1) {
	sum := b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8AddWithCarry, A: a, B: c, CarryIn: carryIn})
	carryOut := b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1SumCarry, SumA: a, SumB: c, SumCarryIn: carryIn})
	overflow := b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1SumOverflow, SumA: a, SumB: c, SumCarryIn: carryIn})
	return sum, carryOut, overflow
}

func (b *Builder) SubWithBorrow8(a, c ir.Var8, borrowIn ir.Var1) (ir.Var8, ir.Var1, ir.Var1) {
	diff := b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8SubWithBorrow, A: a, B: c, CarryIn: borrowIn})
	borrowOut := b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1DiffBorrow, SumA: a, SumB: c, SumCarryIn: borrowIn})
	overflow := b.Fn.Emit1(b.cur, ir.Op1{Kind: ir.Op1DiffOverflow, SumA: a, SumB: c, SumCarryIn: borrowIn})
	return diff, borrowOut, overflow
}

func (b *Builder) RotateLeftThroughCarry(v ir.Var8, carryIn ir.Var1) (ir.Var8, ir.Var1) {
	result := b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8RotateLeftThroughCarry, A: v, CarryIn: carryIn})
	carryOut := b.GetBit8(v, 7)
	return result, carryOut
}

func (b *Builder) RotateRightThroughCarry(v ir.Var8, carryIn ir.Var1) (ir.Var8, ir.Var1) {
	result := b.Fn.Emit8(b.cur, ir.Op8{Kind: ir.Op8RotateRightThroughCarry, A: v, CarryIn: carryIn})
	carryOut := b.GetBit8(v, 0)
	return result, carryOut
}

func (b *Builder) Select16(cond ir.Var1, then, els ir.Var16) ir.Var16 {
	return b.Fn.Emit16(b.cur, ir.Op16{Kind: ir.Op16Select, Cond: cond, Then: then, Else: els})
}

// IfElseWithResult8 creates a true block and a false block, both branching
// to a fresh join block parameterized on an 8-bit value; the caller's
// current block is left pointing at the join block with the threaded
// result available as a normal Var8.
func (b *Builder) IfElseWithResult8(cond ir.Var1, trueBlock, falseBlock func() ir.Var8) ir.Var8 {
	outer := b.cur
	trueID := b.Fn.NewBlock()
	falseID := b.Fn.NewBlock()
	joinID := b.Fn.NewBlock()

	joinParam := b.Fn.NewVar8()
	b.Fn.Block(joinID).Param = ir.Param{Present: true, Width: ir.Width8, Var8: joinParam}

	b.cur = trueID
	trueResult := trueBlock()
	b.Fn.SetBranch(b.cur, b.Immediate1(true), joinID, &ir.Arg{Width: ir.Width8, Var8: trueResult}, joinID, &ir.Arg{Width: ir.Width8, Var8: trueResult})

	b.cur = falseID
	falseResult := falseBlock()
	b.Fn.SetBranch(b.cur, b.Immediate1(true), joinID, &ir.Arg{Width: ir.Width8, Var8: falseResult}, joinID, &ir.Arg{Width: ir.Width8, Var8: falseResult})

	b.Fn.SetBranch(outer, cond, trueID, nil, falseID, nil)

	b.cur = joinID
	return joinParam
}

// If creates a true block that falls through to a fresh, parameterless
// continuation block; the false edge jumps straight to the continuation.
func (b *Builder) If(cond ir.Var1, trueBlock func()) {
	outer := b.cur
	trueID := b.Fn.NewBlock()
	contID := b.Fn.NewBlock()

	b.cur = trueID
	trueBlock()
	b.Fn.SetBranch(b.cur, b.Immediate1(true), contID, nil, contID, nil)

	b.Fn.SetBranch(outer, cond, trueID, nil, contID, nil)

	b.cur = contID
}

func (b *Builder) Return() {
	b.Fn.SetReturn(b.cur)
}
