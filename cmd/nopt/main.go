// Command nopt is the CLI entrypoint: it loads an iNES ROM, runs it
// through the executor forever, and optionally drops into the
// interactive trace viewer instead of a bare loop. NOPT_LOG selects the
// log level ("trace" through "error"); unset or unrecognized, it is trace.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/negative-seven/nopt/backend"
	"github.com/negative-seven/nopt/executor"
	"github.com/negative-seven/nopt/ir"
	"github.com/negative-seven/nopt/rom"
	"github.com/negative-seven/nopt/state"
	"github.com/negative-seven/nopt/trace"
)

// LevelTrace sits one step below slog.LevelDebug, for per-instruction
// pipeline noise too chatty even for debug.
const LevelTrace = slog.LevelDebug - 4

func levelFromEnv() slog.Level {
	switch os.Getenv("NOPT_LOG") {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelTrace
	}
}

func main() {
	traceFlag := flag.Bool("trace", false, "open the interactive IR/native/state viewer instead of running freely")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nopt [--trace] <rom path>")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelFromEnv()}))
	slog.SetDefault(logger)

	if err := run(flag.Arg(0), *traceFlag, logger); err != nil {
		fmt.Fprintln(os.Stderr, "nopt:", err)
		os.Exit(1)
	}
}

func run(romPath string, interactive bool, logger *slog.Logger) error {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	st := state.New()
	defer st.Release()

	if err := rom.Load(data, st); err != nil {
		return fmt.Errorf("load rom: %w", err)
	}
	st.CPU.PC = st.ResetVector()

	ex := executor.New(st, logger)

	if logger.Enabled(context.Background(), LevelTrace) {
		ex.OnCompile = func(pc uint16, fn *ir.Function, code []byte) {
			logger.Log(context.Background(), LevelTrace, "compiled fragment",
				"pc", fmt.Sprintf("%#04x", pc),
				"ir", "\n"+trace.DumpIR(fn),
				"native", "\n"+trace.Disassemble(code, 0, backend.Symbols(st)))
		}
	}

	if interactive {
		return trace.Run(ex)
	}

	for {
		if err := ex.Step(); err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}
}
