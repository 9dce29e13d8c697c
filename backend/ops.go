package backend

import (
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/negative-seven/nopt/ir"
)

// This file holds the primitive obj.Prog emitters lower.go's per-op switch
// statements are built from: slot access, register-register ALU ops, and
// the small branch-based idioms (boolean materialization, 3-way select)
// used instead of flag-dependent SETcc/CMOV so that every conditional
// here reduces to the same CMPQ-against-zero/JEQ/JNE pattern already used
// for the terminator's own branch, rather than trusting operand-order
// conventions for signed/unsigned Jcc variants this backend never
// otherwise needs.

func (lw *lowerer) slotAddr(a *obj.Addr, id uint32) {
	a.Type = obj.TYPE_MEM
	a.Reg = regSlots
	a.Offset = lw.frame.offset(id)
}

// loadSlot and storeSlot always move a full quadword: every variable's
// slot is kept zero-extended to 64 bits regardless of its IR width, so a
// later full-width reload never mixes in stale bytes.
func (lw *lowerer) loadSlot(id uint32, reg int16) {
	p := lw.asm.newProg()
	p.As = x86.AMOVQ
	lw.slotAddr(&p.From, id)
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
}

func (lw *lowerer) storeSlot(id uint32, reg int16) {
	p := lw.asm.newProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = reg
	lw.slotAddr(&p.To, id)
}

func (lw *lowerer) loadImmediate(reg int16, v int64) {
	p := lw.asm.newProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = v
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
}

func (lw *lowerer) movReg(dst, src int16) {
	if dst == src {
		return
	}
	p := lw.asm.newProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
}

// regOp emits a two-operand register ALU instruction in Go asm's
// `OP src, dst` order, i.e. dst = dst OP src.
func (lw *lowerer) regOp(as obj.As, dst, src int16) {
	p := lw.asm.newProg()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
}

func (lw *lowerer) addReg(dst, src int16) { lw.regOp(x86.AADDQ, dst, src) }
func (lw *lowerer) subReg(dst, src int16) { lw.regOp(x86.ASUBQ, dst, src) }
func (lw *lowerer) andReg(dst, src int16) { lw.regOp(x86.AANDQ, dst, src) }
func (lw *lowerer) orReg(dst, src int16)  { lw.regOp(x86.AORQ, dst, src) }
func (lw *lowerer) xorReg(dst, src int16) { lw.regOp(x86.AXORQ, dst, src) }

func (lw *lowerer) constOp(as obj.As, reg int16, v int64) {
	p := lw.asm.newProg()
	p.As = as
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = v
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
}

func (lw *lowerer) andConst(reg int16, v int64)  { lw.constOp(x86.AANDQ, reg, v) }
func (lw *lowerer) xorConst(reg int16, v int64)  { lw.constOp(x86.AXORQ, reg, v) }
func (lw *lowerer) shiftLeftConst(reg int16, v int64)  { lw.constOp(x86.ASHLQ, reg, v) }
func (lw *lowerer) shiftRightConst(reg int16, v int64) { lw.constOp(x86.ASHRQ, reg, v) }

func (lw *lowerer) notReg(reg int16) {
	p := lw.asm.newProg()
	p.As = x86.ANOTQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
}

// cmpZero sets flags for reg compared against the literal 0. Equality is
// the only flags-setting comparison this backend relies on; every ordered
// comparison is instead computed arithmetically (see setIfLessOrEqual).
func (lw *lowerer) cmpZero(reg int16) {
	p := lw.asm.newProg()
	p.As = x86.ACMPQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = reg
	p.To.Type = obj.TYPE_CONST
	p.To.Offset = 0
}

// materializeBool turns the flags set by the preceding cmpZero into a 0/1
// value in dst: jumpWhenTrue is the conditional jump (JEQ or JNE) taken
// when the boolean should be 1.
func (lw *lowerer) materializeBool(jumpWhenTrue obj.As, dst int16) {
	jTrue := lw.asm.newProg()
	jTrue.As = jumpWhenTrue
	jTrue.To.Type = obj.TYPE_BRANCH

	lw.loadImmediate(dst, 0)
	jEnd := lw.asm.newProg()
	jEnd.As = obj.AJMP
	jEnd.To.Type = obj.TYPE_BRANCH

	trueLabel := lw.asm.newLabel()
	jTrue.To.Val = trueLabel
	lw.loadImmediate(dst, 1)

	endLabel := lw.asm.newLabel()
	jEnd.To.Val = endLabel
}

func (lw *lowerer) setIfZero(reg int16) {
	lw.cmpZero(reg)
	lw.materializeBool(x86.AJEQ, reg)
}

func (lw *lowerer) setIfNonZero(reg int16) {
	lw.cmpZero(reg)
	lw.materializeBool(x86.AJNE, reg)
}

// setIfLessOrEqual computes (a<=b) into aReg, given a and b already
// zero-extended non-negative 64-bit values (every 16-bit IR value fits
// comfortably, so a-b can never itself overflow 64 bits). Done with plain
// subtraction plus a sign/zero test rather than CMPQ/JLE, sidestepping any
// doubt about Go asm's signed-compare operand order.
func (lw *lowerer) setIfLessOrEqual(aReg, bReg int16) {
	lw.subReg(aReg, bReg) // aReg = a - b
	lw.movReg(regF, aReg)
	lw.shiftRightConst(regF, 63) // regF = sign bit of (a-b): 1 iff a<b
	lw.setIfZero(aReg)           // aReg = 1 iff a==b
	lw.orReg(aReg, regF)
}

// computeAdd is the shared core of every add/sub-with-carry op
// (Adc/Sbc's 8-bit result, and the SumCarry/SumOverflow/DiffBorrow/
// DiffOverflow 1-bit ops derived from the same addition): it loads a and
// b, optionally inverting b and the incoming carry (subtraction is
// modeled as add-with-inverted-operand-and-carry, exactly as
// frontend.Interpreter.SubWithBorrow8 does), and leaves:
//   regA = a (original, unmasked to one byte by the caller where needed)
//   regB = b or ^b&0xFF
//   regC = the wide, unmasked sum a + b' + carryIn'
// ready for sumMasked/carryOut/overflowFlag to extract a result from.
func (lw *lowerer) computeAdd(aID, bID, carryInID uint32, invertB, invertCarry bool) {
	lw.loadSlot(aID, regA)
	lw.loadSlot(bID, regB)
	if invertB {
		lw.notReg(regB)
		lw.andConst(regB, 0xFF)
	}
	lw.loadSlot(carryInID, regD)
	if invertCarry {
		lw.xorConst(regD, 1)
	}
	lw.movReg(regC, regA)
	lw.addReg(regC, regB)
	lw.addReg(regC, regD)
}

func (lw *lowerer) sumMasked(dst int16) {
	lw.movReg(dst, regC)
	lw.andConst(dst, 0xFF)
}

func (lw *lowerer) carryOut(dst int16) {
	lw.movReg(dst, regC)
	lw.shiftRightConst(dst, 8)
	lw.andConst(dst, 1)
}

// overflowFlag computes the signed-overflow predicate shared by Adc/Sbc
// and SumOverflow/DiffOverflow: (a^sum)&(b^sum)&0x80 != 0, using the a/b/
// sum values computeAdd left in regA/regB/regC.
func (lw *lowerer) overflowFlag(dst int16) {
	lw.sumMasked(regE)
	lw.movReg(regF, regA)
	lw.xorReg(regF, regE)
	lw.movReg(regG, regB)
	lw.xorReg(regG, regE)
	lw.andReg(regF, regG)
	lw.andConst(regF, 0x80)
	lw.movReg(dst, regF)
	lw.setIfNonZero(dst)
}

// selectValue implements Op16Select without CMOV: branch on cond, loading
// the chosen slot directly into dst on either arm.
func (lw *lowerer) selectValue(cond ir.Var1, thenID, elseID uint32, dst int16) {
	lw.loadSlot(uint32(cond), regH)
	lw.cmpZero(regH)

	jeq := lw.asm.newProg()
	jeq.As = x86.AJEQ
	jeq.To.Type = obj.TYPE_BRANCH

	lw.loadSlot(thenID, dst)
	jmpEnd := lw.asm.newProg()
	jmpEnd.As = obj.AJMP
	jmpEnd.To.Type = obj.TYPE_BRANCH

	elseLabel := lw.asm.newLabel()
	jeq.To.Val = elseLabel
	lw.loadSlot(elseID, dst)

	endLabel := lw.asm.newLabel()
	jmpEnd.To.Val = endLabel
}

// maskRegionOffset reduces a 16-bit offset to the region's index space.
// VRAM additionally folds in horizontal mirroring, matching
// bus.VRAMIndex: the remap only fires when the cartridge requested it,
// which is fixed at load time and therefore a compile-time constant here.
// index -= (index>>1)&0x400 subtracts 0x400 exactly when bit 11 is set.
func (lw *lowerer) maskRegionOffset(r ir.Region, addrReg int16) {
	layout := regionLayoutOf(lw.state, r)
	lw.andConst(addrReg, int64(layout.mask))
	if r == ir.RegionPPUVRAM && lw.state.Cartridge.HorizontalMirror {
		lw.movReg(regF, addrReg)
		lw.shiftRightConst(regF, 1)
		lw.andConst(regF, 0x400)
		lw.subReg(addrReg, regF)
	}
}

// readRegion/writeRegion mask a 16-bit offset to one guest memory
// region's index space and load/store the resulting byte at the region's
// base address, matching backend/layout.go's regionLayoutOf exactly.
func (lw *lowerer) readRegion(r ir.Region, addrReg, dst int16) {
	layout := regionLayoutOf(lw.state, r)
	lw.maskRegionOffset(r, addrReg)
	lw.loadImmediate(dst, int64(layout.base))
	p := lw.asm.newProg()
	p.As = x86.AADDQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = addrReg
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	load := lw.asm.newProg()
	load.As = x86.AMOVBLZX
	load.From.Type = obj.TYPE_MEM
	load.From.Reg = dst
	load.To.Type = obj.TYPE_REG
	load.To.Reg = dst
}

func (lw *lowerer) writeRegion(r ir.Region, addrReg, valueReg int16) {
	layout := regionLayoutOf(lw.state, r)
	if !layout.writable {
		return
	}
	lw.maskRegionOffset(r, addrReg)
	lw.loadImmediate(regE, int64(layout.base))
	lw.addReg(regE, addrReg)
	store := lw.asm.newProg()
	store.As = x86.AMOVB
	store.From.Type = obj.TYPE_REG
	store.From.Reg = valueReg
	store.To.Type = obj.TYPE_MEM
	store.To.Reg = regE
}

// loadAbsoluteByte/loadAbsoluteWord/storeAbsoluteByte/storeAbsoluteWord
// access one fixed field of the guest-state object at a compile-time
// constant address.
func (lw *lowerer) loadAbsoluteByte(addr uintptr, dst int16) {
	lw.loadImmediate(dst, int64(addr))
	p := lw.asm.newProg()
	p.As = x86.AMOVBLZX
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = dst
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
}

func (lw *lowerer) loadAbsoluteWord(addr uintptr, dst int16) {
	lw.loadImmediate(dst, int64(addr))
	p := lw.asm.newProg()
	p.As = x86.AMOVWLZX
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = dst
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
}

func (lw *lowerer) storeAbsoluteByte(addr uintptr, src int16) {
	if src == regE {
		lw.movReg(regF, src)
		src = regF
	}
	lw.loadImmediate(regE, int64(addr))
	p := lw.asm.newProg()
	p.As = x86.AMOVB
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = regE
}

func (lw *lowerer) storeAbsoluteWord(addr uintptr, src int16) {
	if src == regE {
		lw.movReg(regF, src)
		src = regF
	}
	lw.loadImmediate(regE, int64(addr))
	p := lw.asm.newProg()
	p.As = x86.AMOVW
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = regE
}
