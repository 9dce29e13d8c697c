package trace

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/negative-seven/nopt/backend"
	"github.com/negative-seven/nopt/bus"
	"github.com/negative-seven/nopt/decode"
	"github.com/negative-seven/nopt/executor"
	"github.com/negative-seven/nopt/frontend"
	"github.com/negative-seven/nopt/ir"
)

// viewerByteSource adapts bus.Read to decode.ByteSource, mirroring
// executor's own unexported adapter: the viewer decodes independently of
// the executor's real pipeline so that inspecting a fragment never
// touches the executor's cache or influences compilation.
type viewerByteSource struct{ ex *executor.Executor }

func (v viewerByteSource) ReadByte(addr uint16) byte { return bus.Read(v.ex.State, addr) }

// model is the bubbletea model for the interactive stepper: a live,
// steppable IR/native/state inspector driven by an executor.Executor.
type model struct {
	ex *executor.Executor

	prevPC     uint16
	irDump     string
	nativeDump string
	err        error
}

func newModel(ex *executor.Executor) model {
	m := model{ex: ex}
	m.refresh()
	return m
}

// refresh recompiles (for display only) the instruction at the current
// PC and renders its IR and native disassembly. This never touches
// ex's fragment cache.
func (m *model) refresh() {
	pc := m.ex.State.CPU.PC
	instr, _ := decode.Decode(viewerByteSource{m.ex}, pc)

	b := frontend.NewBuilder()
	frontend.Transpile[ir.Var1, ir.Var8, ir.Var16](b, instr)
	m.irDump = fmt.Sprintf("%#04x: %v\n\n%s", pc, instr, DumpIR(b.Fn))

	frag, err := backend.CompileForDisplay(b.Fn, m.ex.State)
	if err != nil {
		m.nativeDump = fmt.Sprintf("<compile error: %v>", err)
		return
	}
	m.nativeDump = Disassemble(frag, 0, backend.Symbols(m.ex.State))
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.ex.State.CPU.PC
			if err := m.ex.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m model) status() string {
	c := m.ex.State.CPU
	var flags strings.Builder
	for _, set := range []bool{
		c.GetFlag(7), c.GetFlag(6), c.GetFlag(5), c.GetFlag(4),
		c.GetFlag(3), c.GetFlag(2), c.GetFlag(1), c.GetFlag(0),
	} {
		if set {
			flags.WriteString("/ ")
		} else {
			flags.WriteString("  ")
		}
	}
	return fmt.Sprintf(`
PC: %#04x (%#04x)
 A: %#02x
 X: %#02x
 Y: %#02x
 S: %#02x
N V U B D I Z C
%s`, c.PC, m.prevPC, c.A, c.X, c.Y, c.S, flags.String())
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.irDump,
			m.status(),
		),
		"",
		m.nativeDump,
		"",
		spew.Sdump(m.ex.State.CPU),
	)
}

// Run starts the interactive viewer over ex, blocking until the user
// quits. It steps ex for real on every keypress; it is strictly additive
// presentation over the same executor a non-interactive caller would use.
func Run(ex *executor.Executor) error {
	m, err := tea.NewProgram(newModel(ex)).Run()
	if err != nil {
		return err
	}
	if final, ok := m.(model); ok && final.err != nil {
		return final.err
	}
	return nil
}
