// context.go - Per-job assembly state shared by the driver and the architectures

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

Per-job assembly state shared by the driver and the architectures
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/expr"
	"github.com/intuitionamiga/ieasm/assembler/memory"
	"github.com/intuitionamiga/ieasm/assembler/symbols"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

// Hint is a sizing decision taken on the first pass for one instruction
// address and replayed on the second.
type Hint uint8

const (
	// ForceLong selects the longest expansion of a pseudo-instruction
	// because one of its operands was not yet defined.
	ForceLong Hint = 1 << iota
)

// Context carries everything one assembly job needs. It is created with
// NewContext, handed to Assemble once and then only read.
type Context struct {
	Pass    int
	Address uint32
	Origin  uint32
	Image   *memory.Image
	Symbols *symbols.Table
	Arch    Arch
	Log     logrus.FieldLogger
	Eval    *expr.Evaluator
	Tokens  *token.Tokenizer
	Pos     token.Pos

	// IncludePaths are searched by incbin after the directory of the
	// current source file.
	IncludePaths []string
	ReadFile     func(name string) ([]byte, error)

	// Listing, when non-nil, collects one entry per source line of the
	// second pass.
	Listing *Listing

	initialArch Arch
	here        uint32
	hints       map[uint32]Hint
	sizes       map[uint32]int
	lastGlobal  string

	// lineEnds is the address after each source line on the first pass.
	lineEnds []uint32
	lineNo   int

	lineBytes []byte
	lineCode  bool

	diags *multierror.Error
}

// NewContext prepares a job for arch. A nil log discards log output.
func NewContext(arch Arch, log logrus.FieldLogger) *Context {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	ctx := &Context{
		Symbols:     symbols.New(),
		Arch:        arch,
		Log:         log,
		ReadFile:    os.ReadFile,
		initialArch: arch,
		hints:       make(map[uint32]Hint),
		sizes:       make(map[uint32]int),
	}
	ctx.Eval = &expr.Evaluator{Symbols: ctx.Symbols, Qualify: ctx.Qualify}
	return ctx
}

// Qualify expands a local label (".name") with the last global label.
func (ctx *Context) Qualify(name string) string {
	if strings.HasPrefix(name, ".") && ctx.lastGlobal != "" {
		return ctx.lastGlobal + name
	}
	return name
}

// ForceLong reports whether the instruction being assembled must take its
// long form.
func (ctx *Context) ForceLong() bool {
	return ctx.hints[ctx.here]&ForceLong != 0
}

// markForceLong records the hint for the current instruction. Only the first
// pass writes hints.
func (ctx *Context) markForceLong() {
	if ctx.Pass == 1 {
		ctx.hints[ctx.here] |= ForceLong
	}
}

// Hints returns a copy of the hint map.
func (ctx *Context) Hints() map[uint32]Hint {
	out := make(map[uint32]Hint, len(ctx.hints))
	for k, v := range ctx.hints {
		out[k] = v
	}
	return out
}

// Emit places b at the current address and advances it. The image is only
// written on the second pass.
func (ctx *Context) Emit(b []byte) {
	if ctx.Pass == 2 && ctx.Image != nil {
		ctx.Image.WriteBytes(ctx.Address, b)
		ctx.lineBytes = append(ctx.lineBytes, b...)
	}
	ctx.Address += uint32(len(b))
}

// EmitWord emits the low size bytes of v in the architecture's byte order.
func (ctx *Context) EmitWord(v uint64, size int) {
	ctx.Emit(ctx.Arch.Endian().Bytes(v, size))
}

// Reserve advances the address by n zero bytes.
func (ctx *Context) Reserve(n int) {
	ctx.Emit(make([]byte, n))
}

func (ctx *Context) report(err error) {
	ctx.diags = multierror.Append(ctx.diags, diag.At(err, ctx.Pos.File, ctx.Pos.Line))
}

// Diagnostics lists every error collected so far.
func (ctx *Context) Diagnostics() []error {
	if ctx.diags == nil {
		return nil
	}
	return ctx.diags.Errors
}

// Err returns the collected diagnostics as one error, or nil.
func (ctx *Context) Err() error {
	return ctx.diags.ErrorOrNil()
}
