// Package executor drives a *state.State one decoded instruction at a
// time, compiling each distinct guest PC into native code through
// backend.Compile and reusing the result from a fragment cache whenever
// the instruction's bytes came entirely from PRG-ROM.
package executor

import (
	"fmt"
	"log/slog"

	"github.com/negative-seven/nopt/backend"
	"github.com/negative-seven/nopt/bus"
	"github.com/negative-seven/nopt/decode"
	"github.com/negative-seven/nopt/frontend"
	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/state"
)

// Executor owns the guest state and the fragment cache built up over its
// lifetime. It is not safe for concurrent use from multiple goroutines:
// compiled fragments write through baked-in absolute addresses with no
// synchronization.
type Executor struct {
	State *state.State
	log   *slog.Logger

	// cache is indexed by PC&cacheMask, with one slot per byte of the
	// PRG-ROM window: a slot only exists for addresses that can possibly
	// be PRG-ROM-only, so PCs outside 0x8000-0xFFFF always miss and never
	// probe this array.
	cache     []*backend.Fragment
	cacheMask uint16

	// OnCompile, when set, observes every freshly compiled fragment before
	// it first runs: the guest PC, the IR it was built from, and the
	// assembled native bytes. Observability only; it must not mutate
	// anything.
	OnCompile func(pc uint16, fn *ir.Function, code []byte)
}

// busSource adapts bus.Read to decode.ByteSource.
type busSource struct{ s *state.State }

func (b busSource) ReadByte(addr uint16) byte { return bus.Read(b.s, addr) }

const prgROMBase = 0x8000

// New creates an executor over st, sizing the fragment cache to the
// cartridge's PRG-ROM window (state.PRGROMWindow, always a power of two).
func New(st *state.State, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		State:     st,
		log:       log,
		cache:     make([]*backend.Fragment, state.PRGROMWindow),
		cacheMask: state.PRGROMWindow - 1,
	}
}

func (e *Executor) slot(pc uint16) int {
	return int((pc - prgROMBase) & e.cacheMask)
}

// Cached reports whether a compiled fragment for pc is held in the
// persistent cache.
func (e *Executor) Cached(pc uint16) bool {
	return pc >= prgROMBase && e.cache[e.slot(pc)] != nil
}

// Step executes exactly one guest instruction at the current PC: probe the
// cache, else decode, transpile, compile, conditionally admit, then run.
func (e *Executor) Step() error {
	pc := e.State.CPU.PC

	if pc >= prgROMBase {
		if frag := e.cache[e.slot(pc)]; frag != nil {
			frag.Run()
			return nil
		}
	}

	instr, allPRGROM := decode.Decode(busSource{e.State}, pc)

	b := frontend.NewBuilder()
	frontend.Transpile[ir.Var1, ir.Var8, ir.Var16](b, instr)

	frag, err := backend.Compile(b.Fn, e.State)
	if err != nil {
		return fmt.Errorf("executor: compile fragment at %#04x: %w", pc, err)
	}

	if instr.Operation.Mnemonic == decode.Unimplemented {
		e.log.Warn("unimplemented opcode, compiled as no-op", "pc", pc)
	}
	if e.OnCompile != nil {
		e.OnCompile(pc, b.Fn, frag.Code())
	}

	if allPRGROM && pc >= prgROMBase {
		e.cache[e.slot(pc)] = frag
		e.log.Debug("cached fragment", "pc", pc)
	} else {
		defer func() {
			if relErr := frag.Release(); relErr != nil {
				e.log.Warn("failed to release uncached fragment", "pc", pc, "err", relErr)
			}
		}()
	}

	frag.Run()
	return nil
}

// Run executes instructions until stop reports true (checked after each
// Step), or Step itself returns an error.
func (e *Executor) Run(stop func(*state.State) bool) error {
	for {
		if err := e.Step(); err != nil {
			return err
		}
		if stop(e.State) {
			return nil
		}
	}
}
