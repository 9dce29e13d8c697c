package backend

import (
	"runtime"
	"unsafe"
)

// Fragments spill every SSA variable to a slot in one shared, pinned slab
// rather than the goroutine stack: compiled code runs under a NOSPLIT
// assembly thunk where deep stack frames would silently exhaust the
// runtime's guard space. The slab's base address is baked into each
// fragment as a constant, the same lifetime contract as the guest-state
// fields themselves. Fragments never nest or run concurrently (§5's
// single-threaded model), so one slab serves every fragment.
const scratchSize = 1 << 16

type scratchSlab struct {
	slots  [scratchSize]byte
	pinner runtime.Pinner
}

var scratch = func() *scratchSlab {
	s := &scratchSlab{}
	s.pinner.Pin(s)
	return s
}()

func scratchBase() uintptr {
	return uintptr(unsafe.Pointer(&scratch.slots[0]))
}
