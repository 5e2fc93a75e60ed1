// driver.go - Two-pass assembly driver

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

Two-pass assembly driver
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/memory"
	"github.com/intuitionamiga/ieasm/assembler/symbols"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

// Assemble runs both passes over src.
//
// The first pass defines labels, fixes the size of every instruction and
// records sizing hints for operands that were not yet known. If it produced
// any diagnostics the job stops there. Otherwise the symbol table is locked
// and the second pass emits the image, re-checking each label address and
// instruction size against the first pass. A size mismatch aborts at once.
//
// On failure ctx.Image is nil and the returned error lists every diagnostic.
func Assemble(ctx *Context, src *Source) error {
	for pass := 1; pass <= 2; pass++ {
		ctx.begin(pass)
		for _, ln := range src.Lines {
			if err := ctx.assembleLine(ln); err != nil {
				ctx.report(err)
				if diag.KindOf(err) == diag.PassConsistencyError {
					ctx.Image = nil
					return ctx.Err()
				}
			}
		}
		if d := ctx.Symbols.Depth(); d > 0 {
			ctx.Pos = token.Pos{File: src.Name}
			ctx.report(diag.Newf(diag.LexicalError, "%d scope(s) still open at end of source", d))
		}
		ctx.Log.WithFields(logrus.Fields{
			"pass":    pass,
			"end":     ctx.Address,
			"symbols": ctx.Symbols.Count(),
			"errors":  len(ctx.Diagnostics()),
		}).Debug("pass complete")

		if ctx.diags != nil {
			ctx.Image = nil
			return ctx.Err()
		}
		if pass == 1 {
			ctx.Symbols.Lock()
		}
	}
	return nil
}

func (ctx *Context) begin(pass int) {
	ctx.Pass = pass
	ctx.Eval.Pass = pass
	ctx.Address = ctx.Origin
	ctx.Arch = ctx.initialArch
	ctx.lastGlobal = ""
	ctx.lineNo = 0
	if pass == 1 {
		ctx.lineEnds = ctx.lineEnds[:0]
	}
	ctx.Image = memory.New(ctx.Arch.Endian())
	if ctx.Listing != nil {
		ctx.Listing.Entries = nil
	}
}

func (ctx *Context) assembleLine(ln Line) error {
	ctx.Pos = ln.Pos
	ctx.Tokens = token.NewAt(ln.Pos, []byte(ln.Text))
	ctx.lineBytes = ctx.lineBytes[:0]
	ctx.lineCode = false
	start := ctx.Address
	idx := ctx.lineNo
	ctx.lineNo++

	err := ctx.statement()
	switch {
	case ctx.Pass == 1:
		ctx.lineEnds = append(ctx.lineEnds, ctx.Address)
	case err != nil && idx < len(ctx.lineEnds):
		// Keep later addresses in step with the first pass.
		ctx.Address = ctx.lineEnds[idx]
	}
	if ctx.Pass == 2 && ctx.Listing != nil {
		ctx.Listing.add(ctx, start, ln)
	}
	return err
}

func (ctx *Context) statement() error {
	ts := ctx.Tokens
	tok, err := ts.Next()
	if err != nil {
		return err
	}
	if tok.IsEnd() {
		return nil
	}
	if tok.Kind != token.Ident {
		return diag.Newf(diag.LexicalError, "expected label, directive or instruction, found '%s'", tok)
	}

	next, err := ts.Next()
	if err != nil {
		return err
	}
	switch {
	case next.IsPunct(":"):
		if err := ctx.defineLabel(tok.Text); err != nil {
			return err
		}
		if tok, err = ts.Next(); err != nil {
			return err
		}
		if tok.IsEnd() {
			return nil
		}
		if tok.Kind != token.Ident {
			return diag.Newf(diag.LexicalError, "expected directive or instruction, found '%s'", tok)
		}
	case next.IsPunct("="):
		return ctx.assign(tok.Text, false)
	case next.Kind == token.Ident && isAssignWord(next.Text):
		return ctx.assign(tok.Text, strings.EqualFold(strings.TrimPrefix(next.Text, "."), "equ"))
	default:
		ts.Unget(next)
	}

	name := strings.ToLower(tok.Text)
	if fn, ok := directives[strings.TrimPrefix(name, ".")]; ok {
		if err := fn(ctx, name); err != nil {
			return err
		}
	} else if err := ctx.instruction(tok.Text); err != nil {
		return err
	}
	return ctx.expectEnd()
}

func isAssignWord(s string) bool {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "equ", "set":
		return true
	}
	return false
}

func (ctx *Context) expectEnd() error {
	tok, err := ctx.Tokens.Next()
	if err != nil {
		return err
	}
	if !tok.IsEnd() {
		return diag.Newf(diag.LexicalError, "unexpected '%s' at end of statement", tok)
	}
	return nil
}

func (ctx *Context) instruction(mnemonic string) error {
	start := ctx.Address
	if a := ctx.Arch.Alignment(); a > 1 && start%uint32(a) != 0 {
		return diag.Newf(diag.AlignmentViolation, "instruction at $%08X is not %d-byte aligned", start, a)
	}
	ctx.here = start
	ctx.lineCode = true

	n, err := ctx.Arch.ParseInstruction(ctx, mnemonic)
	if err != nil {
		// Keep later addresses in step with the first pass.
		ctx.Address = start
		if want, ok := ctx.sizes[start]; ok && ctx.Pass == 2 {
			ctx.Address += uint32(want)
		}
		return err
	}
	ctx.Address = start + uint32(n)

	if ctx.Pass == 1 {
		ctx.sizes[start] = n
		return nil
	}
	if want, ok := ctx.sizes[start]; !ok || want != n {
		return diag.Newf(diag.PassConsistencyError, "%s at $%08X is %d bytes on the second pass, %d on the first", mnemonic, start, n, want)
	}
	return nil
}

func (ctx *Context) defineLabel(name string) error {
	if strings.HasPrefix(name, ".") {
		if ctx.lastGlobal == "" {
			return diag.Newf(diag.LexicalError, "local label %s has no preceding global label", name)
		}
		name = ctx.lastGlobal + name
	} else {
		ctx.lastGlobal = name
	}

	value := int64(ctx.Address)
	if ctx.Pass == 2 {
		prev, ok := ctx.Symbols.Local(name)
		if ok && prev.Flags&symbols.Appended != 0 && prev.Value != value {
			return diag.Newf(diag.PassConsistencyError, "label %s moved from $%08X to $%08X", name, prev.Value, value)
		}
	}
	return ctx.Symbols.Append(name, value)
}

// assign handles "name equ expr", "name set expr" and "name = expr". An
// expression that still refers to undefined symbols on the first pass
// defines nothing until the second pass.
func (ctx *Context) assign(name string, constant bool) error {
	res, err := ctx.Eval.Eval(ctx.Tokens)
	if err != nil {
		return err
	}
	if err := ctx.expectEnd(); err != nil {
		return err
	}
	if res.Unresolved {
		return nil
	}
	name = ctx.Qualify(name)
	if constant {
		return ctx.Symbols.Append(name, res.Value)
	}
	ctx.Symbols.Set(name, res.Value)
	return nil
}
