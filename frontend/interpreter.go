package frontend

import (
	"github.com/negative-seven/nopt/bus"
	"github.com/negative-seven/nopt/state"
)

// Interpreter is the test-only Visitor implementation: it evaluates the
// transpiler's operation vocabulary directly against a live *state.State
// instead of emitting IR, so the per-mnemonic semantics in transpile.go can
// be exercised without the JIT backend.
type Interpreter struct {
	State *state.State
}

func NewInterpreter(s *state.State) *Interpreter {
	return &Interpreter{State: s}
}

func (in *Interpreter) Immediate1(v bool) bool      { return v }
func (in *Interpreter) Immediate8(v byte) byte      { return v }
func (in *Interpreter) Immediate16(v uint16) uint16 { return v }

func (in *Interpreter) ReadFlag(f Flag) bool {
	return in.State.CPU.GetFlag(int(f))
}

func (in *Interpreter) SetFlag(f Flag, v bool) {
	in.State.CPU.SetFlag(int(f), v)
}

func (in *Interpreter) ReadRegister(r Register) byte {
	switch r {
	case RegA:
		return in.State.CPU.A
	case RegX:
		return in.State.CPU.X
	case RegY:
		return in.State.CPU.Y
	case RegS:
		return in.State.CPU.S
	default:
		return in.State.CPU.P
	}
}

func (in *Interpreter) SetRegister(r Register, v byte) {
	switch r {
	case RegA:
		in.State.CPU.A = v
	case RegX:
		in.State.CPU.X = v
	case RegY:
		in.State.CPU.Y = v
	case RegS:
		in.State.CPU.S = v
	default:
		in.State.CPU.P = v
	}
}

func (in *Interpreter) ReadPC() uint16 { return in.State.CPU.PC }
func (in *Interpreter) SetPC(v uint16) { in.State.CPU.PC = v }

func (in *Interpreter) ReadMemory(addr uint16) byte     { return dispatchRead[bool, byte, uint16](in, addr) }
func (in *Interpreter) WriteMemory(addr uint16, v byte) { dispatchWrite[bool, byte, uint16](in, addr, v) }

func (in *Interpreter) ReadRegion(r Region, addr uint16) byte {
	switch r {
	case RegionRAM:
		return in.State.RAM[addr&0x07FF]
	case RegionPRGRAM:
		return in.State.Cartridge.PRGRAM[addr&0x1FFF]
	case RegionPRGROM:
		return in.State.Cartridge.PRGROM[addr&0x7FFF]
	case RegionPPUVRAM:
		return in.State.PPU.RAM[bus.VRAMIndex(in.State, addr)]
	default:
		return in.State.PPU.Palette[addr&0x001F]
	}
}

func (in *Interpreter) WriteRegion(r Region, addr uint16, v byte) {
	switch r {
	case RegionRAM:
		in.State.RAM[addr&0x07FF] = v
	case RegionPRGRAM:
		in.State.Cartridge.PRGRAM[addr&0x1FFF] = v
	case RegionPRGROM:
		// immutable; ignored
	case RegionPPUVRAM:
		in.State.PPU.RAM[bus.VRAMIndex(in.State, addr)] = v
	default:
		in.State.PPU.Palette[addr&0x001F] = v
	}
}

func (in *Interpreter) ReadPPUControl() byte          { return in.State.PPU.ControlRegister }
func (in *Interpreter) WritePPUControl(v byte)        { in.State.PPU.ControlRegister = v }
func (in *Interpreter) ReadPPUCurrentAddress() uint16 { return in.State.PPU.CurrentAddress }
func (in *Interpreter) SetPPUCurrentAddress(v uint16) { in.State.PPU.CurrentAddress = v }
func (in *Interpreter) ReadPPUReadBuffer() byte       { return in.State.PPU.ReadBuffer }
func (in *Interpreter) SetPPUReadBuffer(v byte)       { in.State.PPU.ReadBuffer = v }

func (in *Interpreter) Not(v bool) bool     { return !v }
func (in *Interpreter) And1(a, b bool) bool { return a && b }

func (in *Interpreter) Or8(a, b byte) byte  { return a | b }
func (in *Interpreter) And8(a, b byte) byte { return a & b }
func (in *Interpreter) Xor8(a, b byte) byte { return a ^ b }

func (in *Interpreter) EqualZero8(v byte) bool { return v == 0 }
func (in *Interpreter) SignBit8(v byte) bool   { return v&0x80 != 0 }
func (in *Interpreter) GetBit8(v byte, index int) bool {
	return v&(1<<uint(index)) != 0
}
func (in *Interpreter) LessOrEqual16(a, b uint16) bool { return a <= b }

func (in *Interpreter) LowByte(v uint16) byte  { return byte(v) }
func (in *Interpreter) HighByte(v uint16) byte { return byte(v >> 8) }
func (in *Interpreter) Concatenate(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

func (in *Interpreter) Add16(a, b uint16) uint16 { return a + b }
func (in *Interpreter) Add8(a, b byte) byte      { return a + b }

func (in *Interpreter) AddWithCarry8(a, b byte, carryIn bool) (byte, bool, bool) {
	var c byte
	if carryIn {
		c = 1
	}
	wide := uint16(a) + uint16(b) + uint16(c)
	sum := byte(wide)
	carryOut := wide > 0xFF
	overflow := (a^sum)&(b^sum)&0x80 != 0
	return sum, carryOut, overflow
}

func (in *Interpreter) SubWithBorrow8(a, b byte, borrowIn bool) (byte, bool, bool) {
	carryIn := !borrowIn
	sum, carryOut, overflow := in.AddWithCarry8(a, ^b, carryIn)
	return sum, !carryOut, overflow
}

func (in *Interpreter) RotateLeftThroughCarry(v byte, carryIn bool) (byte, bool) {
	carryOut := v&0x80 != 0
	result := v << 1
	if carryIn {
		result |= 1
	}
	return result, carryOut
}

func (in *Interpreter) RotateRightThroughCarry(v byte, carryIn bool) (byte, bool) {
	carryOut := v&0x01 != 0
	result := v >> 1
	if carryIn {
		result |= 0x80
	}
	return result, carryOut
}

func (in *Interpreter) Select16(cond bool, then, els uint16) uint16 {
	if cond {
		return then
	}
	return els
}

func (in *Interpreter) IfElseWithResult8(cond bool, trueBlock, falseBlock func() byte) byte {
	if cond {
		return trueBlock()
	}
	return falseBlock()
}

func (in *Interpreter) If(cond bool, trueBlock func()) {
	if cond {
		trueBlock()
	}
}

func (in *Interpreter) Return() {}
