// Package frontend is the transpiler: it expands one decoded 6502
// instruction into the typed IR described by package ir.
//
// The transpiler itself (transpile.go) is written once against the Visitor
// interface below and is shared, unchanged, by two implementations: Builder
// (builder.go), which emits real ir.Function nodes for the JIT path, and
// Interpreter (interpreter.go), which evaluates directly against a
// *state.State for tests that don't need the backend. The interface is
// type-parameterized over its three value widths, instantiated once per
// implementation.
package frontend

// Register names an 8-bit CPU register.
type Register int

const (
	RegA Register = iota
	RegX
	RegY
	RegS
	RegP
)

// Flag names one of the eight packed bits of P.
type Flag int

const (
	FlagC Flag = 0
	FlagZ Flag = 1
	FlagI Flag = 2
	FlagD Flag = 3
	FlagB Flag = 4
	FlagU Flag = 5
	FlagV Flag = 6
	FlagN Flag = 7
)

// Visitor is the operation vocabulary the transpiler is written against. B1,
// B8, B16 are the implementation's representation of a 1-bit, 8-bit, and
// 16-bit value respectively: ir.Var1/Var8/Var16 for Builder, plain
// bool/byte/uint16 for Interpreter.
type Visitor[B1, B8, B16 any] interface {
	Immediate1(bool) B1
	Immediate8(byte) B8
	Immediate16(uint16) B16

	ReadFlag(Flag) B1
	SetFlag(Flag, B1)

	ReadRegister(Register) B8
	SetRegister(Register, B8)

	ReadPC() B16
	SetPC(B16)

	// ReadMemory / WriteMemory perform a full guest-bus access: region
	// dispatch is internal to the implementation, not modeled as separate
	// transpiler-visible operations.
	ReadMemory(B16) B8
	WriteMemory(B16, B8)

	// ReadRegion / WriteRegion access one fixed memory region at an
	// unmasked address; the implementation applies the region's mask. Used
	// by the shared bus-dispatch helpers in membus.go, not by transpile.go
	// directly.
	ReadRegion(Region, B16) B8
	WriteRegion(Region, B16, B8)

	ReadPPUControl() B8
	WritePPUControl(B8)
	ReadPPUCurrentAddress() B16
	SetPPUCurrentAddress(B16)
	ReadPPUReadBuffer() B8
	SetPPUReadBuffer(B8)

	Not(B1) B1
	And1(a, b B1) B1

	Or8(a, b B8) B8
	And8(a, b B8) B8
	Xor8(a, b B8) B8

	EqualZero8(B8) B1
	SignBit8(B8) B1
	GetBit8(v B8, index int) B1
	LessOrEqual16(a, b B16) B1

	LowByte(B16) B8
	HighByte(B16) B8
	Concatenate(high, low B8) B16

	Add16(a, b B16) B16
	Add8(a, b B8) B8 // wraparound add with no observable carry, for index arithmetic

	AddWithCarry8(a, b B8, carryIn B1) (sum B8, carryOut B1, overflow B1)
	SubWithBorrow8(a, b B8, borrowIn B1) (diff B8, borrowOut B1, overflow B1)
	RotateLeftThroughCarry(v B8, carryIn B1) (result B8, carryOut B1)
	RotateRightThroughCarry(v B8, carryIn B1) (result B8, carryOut B1)

	Select16(cond B1, then, els B16) B16

	// IfElseWithResult8 evaluates exactly one of trueBlock/falseBlock and
	// yields its B8 result, threading it back to the caller. Used for
	// region-dispatch chains that must resolve to a single read value.
	IfElseWithResult8(cond B1, trueBlock func() B8, falseBlock func() B8) B8

	// If evaluates trueBlock only when cond holds, with no result. Used for
	// region-dispatch chains on the write side.
	If(cond B1, trueBlock func())

	// Return ends the fragment. Exactly one call per transpiled
	// instruction, made after PC has been written.
	Return()
}
