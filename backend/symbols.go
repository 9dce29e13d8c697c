package backend

import (
	"unsafe"

	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// Symbols returns every fixed guest-state address compiled code can
// reference as an absolute constant, named for trace's disassembly
// resolver (cpu_a, cpu_pc, cpu_ram, ...).
func Symbols(s *state.State) map[uintptr]string {
	return map[uintptr]string{
		registerAddress(s, ir.RegA): "cpu_a",
		registerAddress(s, ir.RegX): "cpu_x",
		registerAddress(s, ir.RegY): "cpu_y",
		registerAddress(s, ir.RegS): "cpu_s",
		statusAddress(s):            "cpu_p",
		pcAddress(s):                "cpu_pc",

		ppuControlAddress(s):      "ppu_control",
		ppuReadBufferAddress(s):   "ppu_read_buffer",
		ppuCurrentAddressAddress(s): "ppu_current_address",

		uintptr(unsafe.Pointer(&s.RAM[0])):              "cpu_ram",
		uintptr(unsafe.Pointer(&s.PPU.RAM[0])):           "ppu_vram",
		uintptr(unsafe.Pointer(&s.PPU.Palette[0])):       "ppu_palette",
		uintptr(unsafe.Pointer(&s.Cartridge.PRGRAM[0])):  "prg_ram",
		uintptr(unsafe.Pointer(&s.Cartridge.PRGROM[0])):  "prg_rom",
	}
}
