package backend

import (
	"unsafe"

	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// registerAddress resolves the absolute address of one named register
// field of a pinned *state.State, for embedding into compiled code as a
// constant.
func registerAddress(s *state.State, r ir.Register) uintptr {
	switch r {
	case ir.RegA:
		return uintptr(unsafe.Pointer(&s.CPU.A))
	case ir.RegX:
		return uintptr(unsafe.Pointer(&s.CPU.X))
	case ir.RegY:
		return uintptr(unsafe.Pointer(&s.CPU.Y))
	case ir.RegS:
		return uintptr(unsafe.Pointer(&s.CPU.S))
	default: // ir.RegP
		return uintptr(unsafe.Pointer(&s.CPU.P))
	}
}

func pcAddress(s *state.State) uintptr {
	return uintptr(unsafe.Pointer(&s.CPU.PC))
}

func statusAddress(s *state.State) uintptr {
	return uintptr(unsafe.Pointer(&s.CPU.P))
}

func ppuControlAddress(s *state.State) uintptr {
	return uintptr(unsafe.Pointer(&s.PPU.ControlRegister))
}

func ppuReadBufferAddress(s *state.State) uintptr {
	return uintptr(unsafe.Pointer(&s.PPU.ReadBuffer))
}

func ppuCurrentAddressAddress(s *state.State) uintptr {
	return uintptr(unsafe.Pointer(&s.PPU.CurrentAddress))
}

// regionLayout describes one guest memory region's base address and index
// mask, matching frontend.dispatchRead/dispatchWrite's region semantics
// exactly.
type regionLayout struct {
	base     uintptr
	mask     uint32
	writable bool
}

func regionLayoutOf(s *state.State, r ir.Region) regionLayout {
	switch r {
	case ir.RegionRAM:
		return regionLayout{base: uintptr(unsafe.Pointer(&s.RAM[0])), mask: state.RAMSize - 1, writable: true}
	case ir.RegionPRGRAM:
		return regionLayout{base: uintptr(unsafe.Pointer(&s.Cartridge.PRGRAM[0])), mask: state.PRGRAMSize - 1, writable: true}
	case ir.RegionPRGROM:
		return regionLayout{base: uintptr(unsafe.Pointer(&s.Cartridge.PRGROM[0])), mask: state.PRGROMWindow - 1, writable: false}
	case ir.RegionPPUVRAM:
		return regionLayout{base: uintptr(unsafe.Pointer(&s.PPU.RAM[0])), mask: state.VRAMSize - 1, writable: true}
	default: // ir.RegionPPUPalette
		return regionLayout{base: uintptr(unsafe.Pointer(&s.PPU.Palette[0])), mask: state.PaletteSize - 1, writable: true}
	}
}

// frame assigns each IR variable its slot in the scratch slab: every
// variable, regardless of width, owns one 8-byte-aligned slot. This trades
// slab space for a trivially simple variable-to-native-value map instead
// of a real allocator.
type frame struct {
	slotCount uint32
}

func newFrame(varCount uint32) *frame {
	return &frame{slotCount: varCount}
}

const slotSize = 8

func (f *frame) size() int64 {
	return int64(f.slotCount) * slotSize
}

func (f *frame) offset(id uint32) int64 {
	return int64(id) * slotSize
}
