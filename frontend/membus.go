package frontend

// dispatchRead and dispatchWrite implement the CPU-bus range table as a
// chain of range tests: a pair of <= comparisons AND-ed together per range,
// threading the prior candidate value through as the false arm.
//
// Shared, unmodified, by Builder.ReadMemory/WriteMemory (which compiles
// this chain to IR) and Interpreter.ReadMemory/WriteMemory (which evaluates
// it directly), so both implementations of Visitor get the same bus
// semantics for free.
func dispatchRead[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16) B8 {
	result := ifInRange(v, addr, 0x0000, 0x1FFF, func() B8 {
		return v.ReadRegion(RegionRAM, addr)
	}, v.Immediate8(0))
	result = ifInRange(v, addr, 0x2007, 0x2007, func() B8 {
		return ppuReadData(v)
	}, result)
	result = ifInRange(v, addr, 0x6000, 0x7FFF, func() B8 {
		return v.ReadRegion(RegionPRGRAM, addr)
	}, result)
	result = ifInRange(v, addr, 0x8000, 0xFFFF, func() B8 {
		return v.ReadRegion(RegionPRGROM, addr)
	}, result)
	return result
}

func dispatchWrite[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16, value B8) {
	ifInRangeWrite(v, addr, 0x0000, 0x1FFF, func() {
		v.WriteRegion(RegionRAM, addr, value)
	})
	ifInRangeWrite(v, addr, 0x2000, 0x2000, func() {
		v.WritePPUControl(value)
	})
	ifInRangeWrite(v, addr, 0x2006, 0x2006, func() {
		old := v.ReadPPUCurrentAddress()
		lowOld := v.LowByte(old)
		v.SetPPUCurrentAddress(v.Concatenate(lowOld, value))
	})
	ifInRangeWrite(v, addr, 0x2007, 0x2007, func() {
		ppuWriteData(v, value)
	})
	ifInRangeWrite(v, addr, 0x6000, 0x7FFF, func() {
		v.WriteRegion(RegionPRGRAM, addr, value)
	})
}

// ppuReadData implements the 0x2007 read side: capture the current address,
// advance it, then resolve the captured (pre-increment) address through the
// PPU-internal dispatch.
func ppuReadData[B1, B8, B16 any](v Visitor[B1, B8, B16]) B8 {
	addr := v.ReadPPUCurrentAddress()
	incrementPPUAddress(v)
	return ppuInternalRead(v, addr)
}

func ppuWriteData[B1, B8, B16 any](v Visitor[B1, B8, B16], value B8) {
	addr := v.ReadPPUCurrentAddress()
	ppuInternalWrite(v, addr, value)
	incrementPPUAddress(v)
}

// ppuInternalRead dispatches a PPU-internal address (not a CPU address) to
// VRAM or palette RAM. The VRAM arm returns the *previous* read-buffer value
// and refills the buffer; the palette arm bypasses the buffer entirely.
func ppuInternalRead[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16) B8 {
	result := ifInRange(v, addr, 0x2000, 0x3EFF, func() B8 {
		prev := v.ReadPPUReadBuffer()
		v.SetPPUReadBuffer(v.ReadRegion(RegionPPUVRAM, addr))
		return prev
	}, v.Immediate8(0))
	result = ifInRange(v, addr, 0x3F00, 0x3FFF, func() B8 {
		return v.ReadRegion(RegionPPUPalette, addr)
	}, result)
	return result
}

func ppuInternalWrite[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16, value B8) {
	ifInRangeWrite(v, addr, 0x2000, 0x3EFF, func() {
		v.WriteRegion(RegionPPUVRAM, addr, value)
	})
	ifInRangeWrite(v, addr, 0x3F00, 0x3FFF, func() {
		v.WriteRegion(RegionPPUPalette, addr, value)
	})
}

func incrementPPUAddress[B1, B8, B16 any](v Visitor[B1, B8, B16]) {
	control := v.ReadPPUControl()
	bit2 := v.GetBit8(control, 2)
	step := v.Select16(bit2, v.Immediate16(32), v.Immediate16(1))
	v.SetPPUCurrentAddress(v.Add16(v.ReadPPUCurrentAddress(), step))
}

func ifInRange[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16, lo, hi uint16, trueBlock func() B8, falseValue B8) B8 {
	cond := v.And1(
		v.LessOrEqual16(v.Immediate16(lo), addr),
		v.LessOrEqual16(addr, v.Immediate16(hi)),
	)
	return v.IfElseWithResult8(cond, trueBlock, func() B8 { return falseValue })
}

func ifInRangeWrite[B1, B8, B16 any](v Visitor[B1, B8, B16], addr B16, lo, hi uint16, trueBlock func()) {
	cond := v.And1(
		v.LessOrEqual16(v.Immediate16(lo), addr),
		v.LessOrEqual16(addr, v.Immediate16(hi)),
	)
	v.If(cond, trueBlock)
}
