package backend

import (
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// lowerer walks one ir.Function's blocks in the order Builder created them
// and emits one obj.Prog chain via the shared assembler. Every IR block is
// visited exactly once and owns exactly one native label; since Builder
// only ever creates forward edges (if/else merges, never loops), a single
// program-order pass suffices and no work-list is needed.
//
// Every SSA variable, regardless of width, owns one 8-byte slot in the
// pinned scratch slab (backend/scratch.go) and is always written and read
// as a full quadword: values logically narrower than 64 bits are kept
// zero-extended in their slot so that a later 64-bit reload never picks up
// stale high bytes. This trades an allocator for uniformity.
type lowerer struct {
	asm    *assembler
	state  *state.State
	fn     *ir.Function
	frame  *frame
	labels []*obj.Prog // one per ir.BlockID, the label a branch targets
}

// Register roles. The fragment is a leaf function that never calls back
// into Go or C, so the general-purpose registers are free to clobber
// between statements; nothing is live across a slot store/load boundary
// except regSlots, which holds the scratch slab base for the fragment's
// whole run.
const (
	regA     = x86.REG_AX
	regB     = x86.REG_BX
	regC     = x86.REG_CX
	regD     = x86.REG_DX
	regE     = x86.REG_R8
	regF     = x86.REG_R9
	regG     = x86.REG_R10
	regH     = x86.REG_R11
	regSlots = x86.REG_R12
)

// lower assembles fn into machine code. A non-nil error means golang-asm's
// linker refused an instruction, unreachable for this backend's instruction
// set; Compile panics on it.
func lower(fn *ir.Function, st *state.State) ([]byte, error) {
	if err := fn.Validate(); err != nil {
		panic("backend: " + err.Error())
	}

	lw := &lowerer{
		asm:   newAssembler(),
		state: st,
		fn:    fn,
		frame: newFrame(varCount(fn)),
	}
	if lw.frame.size() > scratchSize {
		panic("backend: fragment variable count exceeds the scratch slab")
	}

	lw.labels = make([]*obj.Prog, len(fn.Blocks))
	for id := range fn.Blocks {
		lw.labels[id] = lw.asm.newDetachedLabel()
	}

	lw.loadImmediate(regSlots, int64(scratchBase()))

	for id := range fn.Blocks {
		lw.asm.place(lw.labels[id])
		lw.block(ir.BlockID(id))
	}

	return lw.asm.assemble()
}

// varCount returns one past the highest variable id used anywhere in fn
// (including block parameters): exactly the number of slots the frame
// needs.
func varCount(fn *ir.Function) uint32 {
	max := uint32(0)
	bump := func(id uint32) {
		if id+1 > max {
			max = id + 1
		}
	}
	for _, b := range fn.Blocks {
		if b.Param.Present {
			switch b.Param.Width {
			case ir.Width1:
				bump(uint32(b.Param.Var1))
			case ir.Width8:
				bump(uint32(b.Param.Var8))
			case ir.Width16:
				bump(uint32(b.Param.Var16))
			}
		}
		for _, s := range b.Stmts {
			switch {
			case s.Def1 != nil:
				bump(uint32(s.Def1.Var))
			case s.Def8 != nil:
				bump(uint32(s.Def8.Var))
			case s.Def16 != nil:
				bump(uint32(s.Def16.Var))
			}
		}
	}
	return max
}

func (lw *lowerer) block(id ir.BlockID) {
	b := lw.fn.Block(id)
	for _, s := range b.Stmts {
		switch {
		case s.Def1 != nil:
			lw.def1(*s.Def1)
		case s.Def8 != nil:
			lw.def8(*s.Def8)
		case s.Def16 != nil:
			lw.def16(*s.Def16)
		case s.Store1 != nil:
			lw.loadSlot(uint32(s.Store1.Value), regA)
			lw.storeTo8(s.Store1.Dest, regA)
		case s.Store8 != nil:
			lw.loadSlot(uint32(s.Store8.Value), regA)
			lw.storeTo8(s.Store8.Dest, regA)
		case s.Store16 != nil:
			lw.loadSlot(uint32(s.Store16.Value), regA)
			lw.storeTo16(s.Store16.Dest, regA)
		}
	}
	lw.terminator(b.Terminator)
}

func (lw *lowerer) def1(d ir.Def1) {
	op := d.Op
	switch op.Kind {
	case ir.Op1Immediate:
		v := int64(0)
		if op.Immediate {
			v = 1
		}
		lw.loadImmediate(regA, v)
	case ir.Op1ReadFlag:
		lw.loadAbsoluteByte(statusAddress(lw.state), regA)
		lw.shiftRightConst(regA, int64(op.Flag))
		lw.andConst(regA, 1)
	case ir.Op1Not:
		lw.loadSlot(uint32(op.Operand1), regA)
		lw.xorConst(regA, 1)
	case ir.Op1And:
		lw.loadSlot(uint32(op.Operand1), regA)
		lw.loadSlot(uint32(op.Operand1b), regB)
		lw.andReg(regA, regB)
	case ir.Op1EqualZero8:
		lw.loadSlot(uint32(op.Operand8), regA)
		lw.setIfZero(regA)
	case ir.Op1SignBit8:
		lw.loadSlot(uint32(op.Operand8), regA)
		lw.shiftRightConst(regA, 7)
		lw.andConst(regA, 1)
	case ir.Op1SelectedBit8:
		lw.loadSlot(uint32(op.Operand8), regA)
		lw.shiftRightConst(regA, int64(op.BitIndex))
		lw.andConst(regA, 1)
	case ir.Op1LessOrEqual16:
		lw.loadSlot(uint32(op.Operand16a), regA)
		lw.loadSlot(uint32(op.Operand16b), regB)
		lw.setIfLessOrEqual(regA, regB)
	case ir.Op1SumCarry:
		lw.computeAdd(uint32(op.SumA), uint32(op.SumB), uint32(op.SumCarryIn), false, false)
		lw.carryOut(regA)
	case ir.Op1SumOverflow:
		lw.computeAdd(uint32(op.SumA), uint32(op.SumB), uint32(op.SumCarryIn), false, false)
		lw.overflowFlag(regA)
	case ir.Op1DiffBorrow:
		lw.computeAdd(uint32(op.SumA), uint32(op.SumB), uint32(op.SumCarryIn), true, true)
		lw.carryOut(regA)
		lw.xorConst(regA, 1) // borrowOut = !carryOut
	case ir.Op1DiffOverflow:
		lw.computeAdd(uint32(op.SumA), uint32(op.SumB), uint32(op.SumCarryIn), true, true)
		lw.overflowFlag(regA)
	}
	lw.storeSlot(uint32(d.Var), regA)
}

func (lw *lowerer) def8(d ir.Def8) {
	op := d.Op
	switch op.Kind {
	case ir.Op8Immediate:
		lw.loadImmediate(regA, int64(op.Immediate))
	case ir.Op8BlockParam:
		lw.loadSlot(uint32(d.Var), regA) // already written by predecessor's branch
	case ir.Op8ReadRegister:
		lw.loadAbsoluteByte(registerAddress(lw.state, op.Register), regA)
	case ir.Op8ReadRegion:
		lw.loadSlot(uint32(op.Address), regB)
		lw.readRegion(op.Region, regB, regA)
	case ir.Op8ReadPPUControl:
		lw.loadAbsoluteByte(ppuControlAddress(lw.state), regA)
	case ir.Op8ReadPPUReadBuffer:
		lw.loadAbsoluteByte(ppuReadBufferAddress(lw.state), regA)
	case ir.Op8LowByte:
		lw.loadSlot(uint32(op.Operand16), regA)
		lw.andConst(regA, 0xFF)
	case ir.Op8HighByte:
		lw.loadSlot(uint32(op.Operand16), regA)
		lw.shiftRightConst(regA, 8)
		lw.andConst(regA, 0xFF)
	case ir.Op8Or:
		lw.loadSlot(uint32(op.A), regA)
		lw.loadSlot(uint32(op.B), regB)
		lw.orReg(regA, regB)
	case ir.Op8And:
		lw.loadSlot(uint32(op.A), regA)
		lw.loadSlot(uint32(op.B), regB)
		lw.andReg(regA, regB)
	case ir.Op8Xor:
		lw.loadSlot(uint32(op.A), regA)
		lw.loadSlot(uint32(op.B), regB)
		lw.xorReg(regA, regB)
	case ir.Op8RotateLeftThroughCarry:
		lw.loadSlot(uint32(op.A), regA)
		lw.shiftLeftConst(regA, 1)
		lw.loadSlot(uint32(op.CarryIn), regB)
		lw.orReg(regA, regB)
		lw.andConst(regA, 0xFF)
	case ir.Op8RotateRightThroughCarry:
		lw.loadSlot(uint32(op.A), regA)
		lw.shiftRightConst(regA, 1)
		lw.loadSlot(uint32(op.CarryIn), regB)
		lw.shiftLeftConst(regB, 7)
		lw.orReg(regA, regB)
		lw.andConst(regA, 0xFF)
	case ir.Op8AddWithCarry:
		lw.computeAdd(uint32(op.A), uint32(op.B), uint32(op.CarryIn), false, false)
		lw.sumMasked(regA)
	case ir.Op8SubWithBorrow:
		lw.computeAdd(uint32(op.A), uint32(op.B), uint32(op.CarryIn), true, true)
		lw.sumMasked(regA)
	}
	lw.storeSlot(uint32(d.Var), regA)
}

func (lw *lowerer) def16(d ir.Def16) {
	op := d.Op
	switch op.Kind {
	case ir.Op16Immediate:
		lw.loadImmediate(regA, int64(op.Immediate))
	case ir.Op16ReadPC:
		lw.loadAbsoluteWord(pcAddress(lw.state), regA)
	case ir.Op16ReadPPUAddress:
		lw.loadAbsoluteWord(ppuCurrentAddressAddress(lw.state), regA)
	case ir.Op16Concatenate:
		lw.loadSlot(uint32(op.High), regA)
		lw.shiftLeftConst(regA, 8)
		lw.loadSlot(uint32(op.Low), regB)
		lw.orReg(regA, regB)
	case ir.Op16Add:
		lw.loadSlot(uint32(op.A), regA)
		lw.loadSlot(uint32(op.B), regB)
		lw.addReg(regA, regB)
		lw.andConst(regA, 0xFFFF)
	case ir.Op16Select:
		lw.selectValue(op.Cond, uint32(op.Then), uint32(op.Else), regA)
	}
	lw.storeSlot(uint32(d.Var), regA)
}

// storeTo8 writes the byte currently in reg (also used for 1-bit values,
// kept as 0/1) to a Destination.
func (lw *lowerer) storeTo8(dest ir.Destination, reg int16) {
	switch dest.Kind {
	case ir.DestFlag:
		lw.storeFlag(dest.Flag, reg)
	case ir.DestRegister:
		lw.storeAbsoluteByte(registerAddress(lw.state, dest.Register), reg)
	case ir.DestRegion:
		lw.loadSlot(uint32(dest.Address), regC)
		lw.writeRegion(dest.Region, regC, reg)
	case ir.DestPPUControl:
		lw.storeAbsoluteByte(ppuControlAddress(lw.state), reg)
	case ir.DestPPUReadBuffer:
		lw.storeAbsoluteByte(ppuReadBufferAddress(lw.state), reg)
	default:
		panic("backend: invalid 8-bit store destination")
	}
}

func (lw *lowerer) storeTo16(dest ir.Destination, reg int16) {
	switch dest.Kind {
	case ir.DestPC:
		lw.storeAbsoluteWord(pcAddress(lw.state), reg)
	case ir.DestPPUAddress:
		lw.storeAbsoluteWord(ppuCurrentAddressAddress(lw.state), reg)
	default:
		panic("backend: invalid 16-bit store destination")
	}
}

// storeFlag sets or clears one bit of P without disturbing the others:
// P = (P &^ (1<<bit)) | ((value&1)<<bit).
func (lw *lowerer) storeFlag(f ir.Flag, valueReg int16) {
	lw.andConst(valueReg, 1)
	if f != 0 {
		lw.shiftLeftConst(valueReg, int64(f))
	}
	lw.loadAbsoluteByte(statusAddress(lw.state), regG)
	lw.andConst(regG, int64(^(1<<uint(f)))&0xFF)
	lw.orReg(regG, valueReg)
	lw.storeAbsoluteByte(statusAddress(lw.state), regG)
}

func (lw *lowerer) terminator(term ir.Terminator) {
	switch term.Kind {
	case ir.TermReturn:
		p := lw.asm.newProg()
		p.As = obj.ARET
	case ir.TermBranch:
		// Both argument writes are unconditional: the value is always
		// defined at this point regardless of which edge is taken, and
		// only the taken successor's parameter slot is ever read again.
		lw.passArg(term.TrueBlock, term.TrueArg)
		lw.passArg(term.FalseBlock, term.FalseArg)

		lw.loadSlot(uint32(term.Cond), regH)
		lw.cmpZero(regH)

		jeq := lw.asm.newProg()
		jeq.As = x86.AJEQ
		jeq.To.Type = obj.TYPE_BRANCH

		jmpTrue := lw.asm.newProg()
		jmpTrue.As = obj.AJMP
		jmpTrue.To.Type = obj.TYPE_BRANCH
		jmpTrue.To.Val = lw.labels[term.TrueBlock]

		falseLabel := lw.asm.newLabel()
		jeq.To.Val = falseLabel

		jmpFalse := lw.asm.newProg()
		jmpFalse.As = obj.AJMP
		jmpFalse.To.Type = obj.TYPE_BRANCH
		jmpFalse.To.Val = lw.labels[term.FalseBlock]
	}
}

// passArg writes a branch edge's argument into the target block's
// parameter slot, if the target declares one.
func (lw *lowerer) passArg(target ir.BlockID, arg *ir.Arg) {
	if arg == nil {
		return
	}
	param := lw.fn.Block(target).Param
	if !param.Present {
		return
	}
	var srcID, dstID uint32
	switch arg.Width {
	case ir.Width1:
		srcID, dstID = uint32(arg.Var1), uint32(param.Var1)
	case ir.Width8:
		srcID, dstID = uint32(arg.Var8), uint32(param.Var8)
	case ir.Width16:
		srcID, dstID = uint32(arg.Var16), uint32(param.Var16)
	}
	lw.loadSlot(srcID, regG)
	lw.storeSlot(dstID, regG)
}
