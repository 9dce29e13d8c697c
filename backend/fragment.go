package backend

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// Fragment is one compiled, runnable unit of native code produced from a
// single ir.Function: the executor's cache entry. Its backing page is
// owned for as long as the fragment is cached; Release must run exactly
// once, when the executor drops it.
type Fragment struct {
	region mmap.MMap
	entry  uintptr
}

// Compile lowers fn to native code and places it in a freshly mapped
// executable page bound to st's absolute field addresses. The page is
// writable only for the copy of the assembled bytes and is then
// reprotected read+execute: this backend never patches a fragment after
// assembly. A lowering failure is a programming error and panics.
func Compile(fn *ir.Function, st *state.State) (*Fragment, error) {
	code, err := lower(fn, st)
	if err != nil {
		panic("backend: lower fragment: " + err.Error())
	}

	region, err := mmap.MapRegion(nil, len(code), mmap.RDWR|mmap.EXEC, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("backend: map executable page: %w", err)
	}
	copy(region, code)
	if err := syscall.Mprotect(region, syscall.PROT_READ|syscall.PROT_EXEC); err != nil {
		_ = region.Unmap()
		return nil, fmt.Errorf("backend: make page read-only: %w", err)
	}

	return &Fragment{
		region: region,
		entry:  uintptr(unsafe.Pointer(&region[0])),
	}, nil
}

// CompileForDisplay lowers fn to native code bytes without mapping an
// executable page: trace's disassembly view needs the assembled bytes to
// read, never to run, and must not allocate a page for every keystroke of
// the interactive viewer. Never call Fragment methods on this output.
func CompileForDisplay(fn *ir.Function, st *state.State) ([]byte, error) {
	return lower(fn, st)
}

// Code exposes the fragment's assembled bytes for disassembly. Callers
// must not mutate or retain the slice past the fragment's Release.
func (f *Fragment) Code() []byte {
	return f.region
}

// Run transfers control to the fragment's native code and returns once it
// hits its terminating RET. The fragment itself advances the guest PC (and
// every other piece of state it touches) before returning; the caller
// only needs to read state back out.
func (f *Fragment) Run() {
	callFragment(f.entry)
}

// Release unmaps the fragment's executable page. The fragment must not be
// Run again afterwards.
func (f *Fragment) Release() error {
	return f.region.Unmap()
}
