// Package ir models the intermediate representation one 6502 instruction
// compiles through: typed single-assignment values over three bit widths,
// basic blocks owned by an arena, and a two-way branch terminator.
//
// Blocks form a directed graph whose successors may be shared (an if/else
// merge), so blocks reference each other only through Function-scoped
// indices, never owning pointers.
package ir

// Width identifies the bit-width of an IR value.
type Width int

const (
	Width1 Width = iota
	Width8
	Width16
)

// Var1, Var8, Var16 are SSA variable ids, unique within one Function and
// immutable once defined. They are allocated from the Function's monotonic
// counter, so ids are unique across every block of a function even though
// blocks themselves are arena-indexed.
type Var1 uint32
type Var8 uint32
type Var16 uint32

// BlockID is an index into Function.Blocks. It is never an owning
// reference: blocks reach each other only through BlockID, which is how two
// branches are allowed to target the same successor without any ownership
// conflict.
type BlockID int

// Register names an 8-bit CPU register field.
type Register int

const (
	RegA Register = iota
	RegX
	RegY
	RegS
	RegP // the raw, packed status byte; PHP/PLP/BRK/RTI address it directly
)

// Flag names one of the eight packed bits of P. The numeric values are the
// bit positions compiled code observes in the packed status byte.
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

// Region names a guest memory region addressable by a 16-bit offset. The
// transpiler never builds a raw CPU-bus address op itself; dispatchRead /
// dispatchWrite (frontend/membus.go) expand a full 16-bit address into a
// chain of region reads/writes guarded by range comparisons, which is what
// ultimately produces these nodes.
type Region int

const (
	RegionRAM Region = iota
	RegionPRGRAM
	RegionPRGROM
	RegionPPUVRAM
	RegionPPUPalette
)

// Def1 is a definition of a 1-bit SSA value.
type Def1 struct {
	Var Var1
	Op  Op1
}

// Op1 is the tagged union of 1-bit-producing operations.
type Op1 struct {
	Kind Op1Kind

	Immediate   bool
	Flag        Flag
	Operand1    Var1 // Not, operand of AND (first)
	Operand1b   Var1 // AND's second operand
	Operand8    Var8 // EqualZero, SignBit
	BitIndex    int  // SelectedBit
	Operand16a  Var16
	Operand16b  Var16 // LessOrEqual
	SumA, SumB  Var8  // SumCarry / SumOverflow / DiffBorrow / DiffOverflow operands
	SumCarryIn  Var1
}

type Op1Kind int

const (
	Op1Immediate Op1Kind = iota
	Op1ReadFlag
	Op1Not
	Op1And
	Op1EqualZero8
	Op1SignBit8
	Op1SelectedBit8
	Op1LessOrEqual16
	Op1SumCarry
	Op1SumOverflow
	Op1DiffBorrow
	Op1DiffOverflow
)

// Def8 is a definition of an 8-bit SSA value.
type Def8 struct {
	Var Var8
	Op  Op8
}

type Op8 struct {
	Kind Op8Kind

	Immediate  byte
	Register   Register
	Region     Region
	Address    Var16
	Operand16  Var16 // LowByte / HighByte
	A, B       Var8
	CarryIn    Var1
}

type Op8Kind int

const (
	Op8Immediate Op8Kind = iota
	Op8BlockParam
	Op8ReadRegister
	Op8ReadRegion
	Op8ReadPPUControl
	Op8ReadPPUReadBuffer
	Op8LowByte
	Op8HighByte
	Op8Or
	Op8And
	Op8Xor
	Op8RotateLeftThroughCarry
	Op8RotateRightThroughCarry
	Op8AddWithCarry
	Op8SubWithBorrow
)

// Def16 is a definition of a 16-bit SSA value.
type Def16 struct {
	Var Var16
	Op  Op16
}

type Op16 struct {
	Kind Op16Kind

	Immediate uint16
	High, Low Var8
	A, B      Var16
	Cond      Var1
	Then, Else Var16
}

type Op16Kind int

const (
	Op16Immediate Op16Kind = iota
	Op16ReadPC
	Op16ReadPPUAddress
	Op16Concatenate
	Op16Add
	Op16Select
)

// Destination identifies where a store writes. Exactly one of the typed
// fields is meaningful, selected by Kind.
type Destination struct {
	Kind       DestKind
	Flag       Flag
	Register   Register
	Region     Region
	Address    Var16
}

type DestKind int

const (
	DestFlag DestKind = iota
	DestRegister
	DestRegion
	DestPC
	DestPPUAddress
	DestPPUControl
	DestPPUReadBuffer
)

// Store1, Store8, Store16 write an SSA value to a Destination.
type Store1 struct {
	Dest  Destination
	Value Var1
}

type Store8 struct {
	Dest  Destination
	Value Var8
}

type Store16 struct {
	Dest  Destination
	Value Var16
}

// Stmt is any instruction that may appear in a block's body: a definition of
// one of the three widths, or a store to a destination. Exactly one of the
// embedded pointers is non-nil.
type Stmt struct {
	Def1   *Def1
	Def8   *Def8
	Def16  *Def16
	Store1 *Store1
	Store8 *Store8
	Store16 *Store16
}

// Param describes a block's optional single parameter.
type Param struct {
	Present bool
	Width   Width
	Var1    Var1
	Var8    Var8
	Var16   Var16
}

// Terminator is either Return or a two-way Branch. Kind selects which
// fields are meaningful; an unset Terminator (Kind's zero value with
// Set==false) is a programming error caught before lowering.
type Terminator struct {
	Set  bool
	Kind TermKind

	Cond Var1

	TrueBlock  BlockID
	TrueArg    *Arg
	FalseBlock BlockID
	FalseArg   *Arg
}

type TermKind int

const (
	TermReturn TermKind = iota
	TermBranch
)

// Arg is the value passed across an edge to a block parameter; Width
// selects which of the three fields is meaningful.
type Arg struct {
	Width Width
	Var1  Var1
	Var8  Var8
	Var16 Var16
}

// BasicBlock is one node of the function's block graph.
type BasicBlock struct {
	Param      Param
	Stmts      []Stmt
	Terminator Terminator
}

// Function owns every block and variable id produced while compiling one
// 6502 instruction. It is discarded once the backend has lowered it.
type Function struct {
	Blocks []BasicBlock

	nextVar uint32
}

// NewFunction creates a function with a single, parameterless entry block at
// index 0.
func NewFunction() *Function {
	f := &Function{}
	f.Blocks = append(f.Blocks, BasicBlock{})
	return f
}

// Entry is always block 0.
const Entry BlockID = 0

// NewBlock appends a fresh block and returns its id.
func (f *Function) NewBlock() BlockID {
	f.Blocks = append(f.Blocks, BasicBlock{})
	return BlockID(len(f.Blocks) - 1)
}

func (f *Function) Block(id BlockID) *BasicBlock {
	return &f.Blocks[id]
}

func (f *Function) newVar() uint32 {
	id := f.nextVar
	f.nextVar++
	return id
}

func (f *Function) NewVar1() Var1   { return Var1(f.newVar()) }
func (f *Function) NewVar8() Var8   { return Var8(f.newVar()) }
func (f *Function) NewVar16() Var16 { return Var16(f.newVar()) }

// Emit1 appends a 1-bit definition to block id and returns its variable.
func (f *Function) Emit1(id BlockID, op Op1) Var1 {
	v := f.NewVar1()
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Def1: &Def1{Var: v, Op: op}})
	return v
}

func (f *Function) Emit8(id BlockID, op Op8) Var8 {
	v := f.NewVar8()
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Def8: &Def8{Var: v, Op: op}})
	return v
}

func (f *Function) Emit16(id BlockID, op Op16) Var16 {
	v := f.NewVar16()
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Def16: &Def16{Var: v, Op: op}})
	return v
}

func (f *Function) EmitStore1(id BlockID, dest Destination, v Var1) {
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Store1: &Store1{Dest: dest, Value: v}})
}

func (f *Function) EmitStore8(id BlockID, dest Destination, v Var8) {
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Store8: &Store8{Dest: dest, Value: v}})
}

func (f *Function) EmitStore16(id BlockID, dest Destination, v Var16) {
	b := f.Block(id)
	b.Stmts = append(b.Stmts, Stmt{Store16: &Store16{Dest: dest, Value: v}})
}

// SetReturn marks block id as returning; the entry-most block that has
// written PC should call this last.
func (f *Function) SetReturn(id BlockID) {
	f.Block(id).Terminator = Terminator{Set: true, Kind: TermReturn}
}

// SetBranch marks block id as a two-way conditional branch.
func (f *Function) SetBranch(id BlockID, cond Var1, trueBlock BlockID, trueArg *Arg, falseBlock BlockID, falseArg *Arg) {
	f.Block(id).Terminator = Terminator{
		Set:        true,
		Kind:       TermBranch,
		Cond:       cond,
		TrueBlock:  trueBlock,
		TrueArg:    trueArg,
		FalseBlock: falseBlock,
		FalseArg:   falseArg,
	}
}

// Validate checks the block-graph invariants: every block has a
// terminator, and every parameterized block's incoming edges (found by
// scanning all terminators) supply a matching argument. It does not check
// def-before-use dominance, which is guaranteed by construction since the
// builder never hands out a Var before emitting its defining Stmt.
func (f *Function) Validate() error {
	for i, b := range f.Blocks {
		if !b.Terminator.Set {
			return &UnsetTerminatorError{Block: BlockID(i)}
		}
		if b.Terminator.Kind == TermBranch {
			if f.Block(b.Terminator.TrueBlock).Param.Present && b.Terminator.TrueArg == nil {
				return &MissingArgError{From: BlockID(i), To: b.Terminator.TrueBlock}
			}
			if f.Block(b.Terminator.FalseBlock).Param.Present && b.Terminator.FalseArg == nil {
				return &MissingArgError{From: BlockID(i), To: b.Terminator.FalseBlock}
			}
		}
	}
	return nil
}

type UnsetTerminatorError struct{ Block BlockID }

func (e *UnsetTerminatorError) Error() string {
	return "ir: block has no terminator set"
}

type MissingArgError struct{ From, To BlockID }

func (e *MissingArgError) Error() string {
	return "ir: branch edge targets a parameterized block without an argument"
}
