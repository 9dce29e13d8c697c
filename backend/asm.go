package backend

import (
	"sync"

	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"
	"github.com/twitchyliquid64/golang-asm/objabi"
)

// assembler wraps golang-asm's obj.Prog machinery: build a chain of
// *obj.Prog values under a TEXT symbol, then flush the chain through the
// linker's assembler to get raw machine code. One assembler per compiled
// fragment; the obj.Link context is not reusable across functions of the
// same name.
type assembler struct {
	ctxt  *obj.Link
	sym   *obj.LSym
	first *obj.Prog
	last  *obj.Prog
}

// The x86 instruction tables are package-global in golang-asm and must be
// initialized exactly once per process.
var instInitOnce sync.Once

func newAssembler() *assembler {
	ctxt := obj.Linknew(&x86.Linkamd64)
	ctxt.Headtype = objabi.Hlinux
	ctxt.DiagFunc = func(format string, args ...interface{}) {}
	instInitOnce.Do(func() { ctxt.Arch.Init(ctxt) })

	sym := &obj.LSym{Name: "fragment"}
	ctxt.InitTextSym(sym, obj.NOSPLIT|obj.NOFRAME)

	a := &assembler{ctxt: ctxt, sym: sym}

	// The TEXT prog must head the list or the assembler treats every
	// following instruction as outside any function.
	text := a.newProg()
	text.As = obj.ATEXT
	text.From.Type = obj.TYPE_MEM
	text.From.Name = obj.NAME_EXTERN
	text.From.Sym = sym
	text.To.Type = obj.TYPE_TEXTSIZE
	text.To.Offset = 0
	text.To.Val = int32(0)
	sym.Func.Text = text

	return a
}

// newProg allocates a fresh instruction and links it at the end of the
// chain being built.
func (a *assembler) newProg() *obj.Prog {
	p := a.ctxt.NewProg()
	if a.first == nil {
		a.first = p
		a.last = p
	} else {
		a.last.Link = p
		a.last = p
	}
	return p
}

// newLabel emits a zero-length marker instruction at the current end of
// the chain, for the local forward jumps inside one lowered operation.
func (a *assembler) newLabel() *obj.Prog {
	p := a.newProg()
	p.As = obj.ANOP
	return p
}

// newDetachedLabel allocates a zero-length marker instruction without
// linking it into the chain, so branches emitted earlier in program order
// can target blocks that are placed later; place links it in at its final
// position.
func (a *assembler) newDetachedLabel() *obj.Prog {
	p := a.ctxt.NewProg()
	p.As = obj.ANOP
	return p
}

func (a *assembler) place(p *obj.Prog) {
	a.last.Link = p
	a.last = p
}

// assemble flushes the instruction chain through the linker, returning the
// raw machine code bytes.
func (a *assembler) assemble() ([]byte, error) {
	plist := &obj.Plist{Firstpc: a.first}
	obj.Flushplist(a.ctxt, plist, a.ctxt.NewProg, "")
	if a.ctxt.Errors > 0 {
		return nil, errAssembleFailed
	}
	return a.sym.P, nil
}

var errAssembleFailed = assembleError("golang-asm: assembly failed")

type assembleError string

func (e assembleError) Error() string { return string(e) }
