package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negative-seven/nopt/ir"
)

func TestVariableIDsAreFunctionUnique(t *testing.T) {
	f := ir.NewFunction()
	other := f.NewBlock()

	v1 := f.Emit1(ir.Entry, ir.Op1{Kind: ir.Op1Immediate, Immediate: true})
	v2 := f.Emit8(other, ir.Op8{Kind: ir.Op8Immediate, Immediate: 0x42})
	v3 := f.Emit16(ir.Entry, ir.Op16{Kind: ir.Op16Immediate, Immediate: 0x1234})

	ids := map[uint32]bool{uint32(v1): true, uint32(v2): true, uint32(v3): true}
	assert.Len(t, ids, 3, "ids must be unique across blocks of one function")
}

func TestValidateRejectsUnsetTerminator(t *testing.T) {
	f := ir.NewFunction()
	err := f.Validate()
	require.Error(t, err)
	var unset *ir.UnsetTerminatorError
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, ir.Entry, unset.Block)
}

func TestValidateRejectsMissingBranchArgument(t *testing.T) {
	f := ir.NewFunction()
	join := f.NewBlock()
	f.Block(join).Param = ir.Param{Present: true, Width: ir.Width8, Var8: f.NewVar8()}
	f.SetReturn(join)

	cond := f.Emit1(ir.Entry, ir.Op1{Kind: ir.Op1Immediate, Immediate: true})
	arg := &ir.Arg{Width: ir.Width8, Var8: f.Emit8(ir.Entry, ir.Op8{Kind: ir.Op8Immediate})}
	f.SetBranch(ir.Entry, cond, join, arg, join, nil)

	err := f.Validate()
	require.Error(t, err)
	var missing *ir.MissingArgError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ir.Entry, missing.From)
	assert.Equal(t, join, missing.To)
}

func TestValidateAcceptsCompleteFunction(t *testing.T) {
	f := ir.NewFunction()
	join := f.NewBlock()
	f.Block(join).Param = ir.Param{Present: true, Width: ir.Width8, Var8: f.NewVar8()}
	f.SetReturn(join)

	cond := f.Emit1(ir.Entry, ir.Op1{Kind: ir.Op1Immediate, Immediate: false})
	arg := &ir.Arg{Width: ir.Width8, Var8: f.Emit8(ir.Entry, ir.Op8{Kind: ir.Op8Immediate, Immediate: 1})}
	f.SetBranch(ir.Entry, cond, join, arg, join, arg)

	require.NoError(t, f.Validate())
}
