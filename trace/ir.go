// Package trace is the debug aid: a textual IR dump, a native-code
// disassembly against a symbol resolver naming the guest-state fields
// baked into compiled addresses, and an optional interactive
// bubbletea/lipgloss viewer over the executor. None of this sits on the
// hot path or influences compilation or cache admission.
package trace

import (
	"fmt"
	"strings"

	"github.com/negative-seven/nopt/ir"
)

// DumpIR renders fn as one line per statement and one per terminator,
// grouped by block.
func DumpIR(fn *ir.Function) string {
	var b strings.Builder
	for id := range fn.Blocks {
		block := fn.Block(ir.BlockID(id))
		fmt.Fprintf(&b, "block%d%s:\n", id, paramString(block.Param))
		for _, s := range block.Stmts {
			fmt.Fprintf(&b, "  %s\n", stmtString(s))
		}
		fmt.Fprintf(&b, "  %s\n", terminatorString(block.Terminator))
	}
	return b.String()
}

func paramString(p ir.Param) string {
	if !p.Present {
		return ""
	}
	switch p.Width {
	case ir.Width1:
		return fmt.Sprintf("(v%d:1)", p.Var1)
	case ir.Width8:
		return fmt.Sprintf("(v%d:8)", p.Var8)
	default:
		return fmt.Sprintf("(v%d:16)", p.Var16)
	}
}

func stmtString(s ir.Stmt) string {
	switch {
	case s.Def1 != nil:
		return fmt.Sprintf("v%d:1 = %s", s.Def1.Var, op1String(s.Def1.Op))
	case s.Def8 != nil:
		return fmt.Sprintf("v%d:8 = %s", s.Def8.Var, op8String(s.Def8.Op))
	case s.Def16 != nil:
		return fmt.Sprintf("v%d:16 = %s", s.Def16.Var, op16String(s.Def16.Op))
	case s.Store1 != nil:
		return fmt.Sprintf("store %s, v%d", destString(s.Store1.Dest), s.Store1.Value)
	case s.Store8 != nil:
		return fmt.Sprintf("store %s, v%d", destString(s.Store8.Dest), s.Store8.Value)
	case s.Store16 != nil:
		return fmt.Sprintf("store %s, v%d", destString(s.Store16.Dest), s.Store16.Value)
	default:
		return "<empty statement>"
	}
}

func op1String(op ir.Op1) string {
	switch op.Kind {
	case ir.Op1Immediate:
		return fmt.Sprintf("imm1 %v", op.Immediate)
	case ir.Op1ReadFlag:
		return fmt.Sprintf("read_flag %s", flagName(op.Flag))
	case ir.Op1Not:
		return fmt.Sprintf("not v%d", op.Operand1)
	case ir.Op1And:
		return fmt.Sprintf("and1 v%d, v%d", op.Operand1, op.Operand1b)
	case ir.Op1EqualZero8:
		return fmt.Sprintf("eqz8 v%d", op.Operand8)
	case ir.Op1SignBit8:
		return fmt.Sprintf("sign8 v%d", op.Operand8)
	case ir.Op1SelectedBit8:
		return fmt.Sprintf("bit8 v%d, %d", op.Operand8, op.BitIndex)
	case ir.Op1LessOrEqual16:
		return fmt.Sprintf("le16 v%d, v%d", op.Operand16a, op.Operand16b)
	case ir.Op1SumCarry:
		return fmt.Sprintf("sum_carry v%d, v%d, v%d", op.SumA, op.SumB, op.SumCarryIn)
	case ir.Op1SumOverflow:
		return fmt.Sprintf("sum_overflow v%d, v%d, v%d", op.SumA, op.SumB, op.SumCarryIn)
	case ir.Op1DiffBorrow:
		return fmt.Sprintf("diff_borrow v%d, v%d, v%d", op.SumA, op.SumB, op.SumCarryIn)
	case ir.Op1DiffOverflow:
		return fmt.Sprintf("diff_overflow v%d, v%d, v%d", op.SumA, op.SumB, op.SumCarryIn)
	default:
		return "<unknown op1>"
	}
}

func op8String(op ir.Op8) string {
	switch op.Kind {
	case ir.Op8Immediate:
		return fmt.Sprintf("imm8 %#02x", op.Immediate)
	case ir.Op8BlockParam:
		return "param8"
	case ir.Op8ReadRegister:
		return fmt.Sprintf("read_reg %s", registerName(op.Register))
	case ir.Op8ReadRegion:
		return fmt.Sprintf("read_region %s, v%d", regionName(op.Region), op.Address)
	case ir.Op8ReadPPUControl:
		return "read_ppu_control"
	case ir.Op8ReadPPUReadBuffer:
		return "read_ppu_read_buffer"
	case ir.Op8LowByte:
		return fmt.Sprintf("low8 v%d", op.Operand16)
	case ir.Op8HighByte:
		return fmt.Sprintf("high8 v%d", op.Operand16)
	case ir.Op8Or:
		return fmt.Sprintf("or8 v%d, v%d", op.A, op.B)
	case ir.Op8And:
		return fmt.Sprintf("and8 v%d, v%d", op.A, op.B)
	case ir.Op8Xor:
		return fmt.Sprintf("xor8 v%d, v%d", op.A, op.B)
	case ir.Op8RotateLeftThroughCarry:
		return fmt.Sprintf("rol8 v%d, v%d", op.A, op.CarryIn)
	case ir.Op8RotateRightThroughCarry:
		return fmt.Sprintf("ror8 v%d, v%d", op.A, op.CarryIn)
	case ir.Op8AddWithCarry:
		return fmt.Sprintf("adc8 v%d, v%d, v%d", op.A, op.B, op.CarryIn)
	case ir.Op8SubWithBorrow:
		return fmt.Sprintf("sbc8 v%d, v%d, v%d", op.A, op.B, op.CarryIn)
	default:
		return "<unknown op8>"
	}
}

func op16String(op ir.Op16) string {
	switch op.Kind {
	case ir.Op16Immediate:
		return fmt.Sprintf("imm16 %#04x", op.Immediate)
	case ir.Op16ReadPC:
		return "read_pc"
	case ir.Op16ReadPPUAddress:
		return "read_ppu_address"
	case ir.Op16Concatenate:
		return fmt.Sprintf("concat v%d, v%d", op.High, op.Low)
	case ir.Op16Add:
		return fmt.Sprintf("add16 v%d, v%d", op.A, op.B)
	case ir.Op16Select:
		return fmt.Sprintf("select16 v%d, v%d, v%d", op.Cond, op.Then, op.Else)
	default:
		return "<unknown op16>"
	}
}

func destString(d ir.Destination) string {
	switch d.Kind {
	case ir.DestFlag:
		return fmt.Sprintf("flag %s", flagName(d.Flag))
	case ir.DestRegister:
		return fmt.Sprintf("reg %s", registerName(d.Register))
	case ir.DestRegion:
		return fmt.Sprintf("region %s[v%d]", regionName(d.Region), d.Address)
	case ir.DestPC:
		return "pc"
	case ir.DestPPUAddress:
		return "ppu_address"
	case ir.DestPPUControl:
		return "ppu_control"
	case ir.DestPPUReadBuffer:
		return "ppu_read_buffer"
	default:
		return "<unknown destination>"
	}
}

func terminatorString(t ir.Terminator) string {
	if !t.Set {
		return "<unset terminator>"
	}
	switch t.Kind {
	case ir.TermReturn:
		return "return"
	case ir.TermBranch:
		return fmt.Sprintf("branch v%d, block%d%s, block%d%s", t.Cond,
			t.TrueBlock, argString(t.TrueArg), t.FalseBlock, argString(t.FalseArg))
	default:
		return "<unknown terminator>"
	}
}

func argString(a *ir.Arg) string {
	if a == nil {
		return "()"
	}
	switch a.Width {
	case ir.Width1:
		return fmt.Sprintf("(v%d)", a.Var1)
	case ir.Width8:
		return fmt.Sprintf("(v%d)", a.Var8)
	default:
		return fmt.Sprintf("(v%d)", a.Var16)
	}
}

func registerName(r ir.Register) string {
	switch r {
	case ir.RegA:
		return "a"
	case ir.RegX:
		return "x"
	case ir.RegY:
		return "y"
	case ir.RegS:
		return "s"
	default:
		return "p"
	}
}

func regionName(r ir.Region) string {
	switch r {
	case ir.RegionRAM:
		return "ram"
	case ir.RegionPRGRAM:
		return "prg_ram"
	case ir.RegionPRGROM:
		return "prg_rom"
	case ir.RegionPPUVRAM:
		return "ppu_vram"
	default:
		return "ppu_palette"
	}
}

func flagName(f ir.Flag) string {
	switch f {
	case ir.FlagC:
		return "c"
	case ir.FlagZ:
		return "z"
	case ir.FlagI:
		return "i"
	case ir.FlagD:
		return "d"
	case ir.FlagB:
		return "b"
	case ir.FlagU:
		return "u"
	case ir.FlagV:
		return "v"
	default:
		return "n"
	}
}
