package trace

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Disassemble decodes code as a sequence of x86-64 instructions starting
// at the native address base, resolving any absolute-address operand that
// matches a key of symbols to its name (backend.Symbols' cpu_a/cpu_pc/
// cpu_ram/... table). A byte range that fails to
// decode is reported as a single `.byte` line and skipped one byte at a
// time, so one bad instruction never hides the rest of the fragment.
func Disassemble(code []byte, base uint64, symbols map[uintptr]string) string {
	resolve := func(addr uint64) (string, uint64) {
		if name, ok := symbols[uintptr(addr)]; ok {
			return name, 0
		}
		return "", 0
	}

	var b strings.Builder
	for offset := 0; offset < len(code); {
		pc := base + uint64(offset)
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil || inst.Len == 0 {
			fmt.Fprintf(&b, "%#08x: .byte %#02x\n", pc, code[offset])
			offset++
			continue
		}
		fmt.Fprintf(&b, "%#08x: %s\n", pc, x86asm.GoSyntax(inst, pc, resolve))
		offset += inst.Len
	}
	return b.String()
}
