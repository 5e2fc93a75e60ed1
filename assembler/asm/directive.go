// directive.go - Assembler directives

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

Assembler directives
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"path/filepath"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

type directive func(ctx *Context, name string) error

// directives is keyed by name without the optional leading dot.
var directives map[string]directive

func init() {
	directives = map[string]directive{
		"org":      dirOrg,
		"equ":      dirAssign,
		"set":      dirAssign,
		"ds":       dirSpace,
		"ds.b":     dirSpace,
		"ds.w":     dirSpace,
		"ds.l":     dirSpace,
		"ds.q":     dirSpace,
		"space":    dirSpace,
		"align":    dirAlign,
		"scope":    dirScope,
		"ends":     dirEndScope,
		"endscope": dirEndScope,
		"export":   dirExport,
		"global":   dirExport,
		"arch":     dirArch,
		"incbin":   dirIncbin,
	}
	for name := range dataSizes {
		directives[name] = dirData
	}
}

var dataSizes = map[string]int{
	"db": 1, "dc.b": 1, "byte": 1,
	"dw": 2, "dc.w": 2, "half": 2, "short": 2,
	"dl": 4, "dc.l": 4, "word": 4, "long": 4,
	"dq": 8, "dc.q": 8, "dword": 8, "quad": 8,
}

var spaceUnits = map[string]int{
	"ds": 1, "ds.b": 1, "space": 1,
	"ds.w": 2,
	"ds.l": 4,
	"ds.q": 8,
}

func bare(name string) string {
	if len(name) > 0 && name[0] == '.' {
		return name[1:]
	}
	return name
}

// known evaluates an expression that changes addresses, which must
// therefore be known on the first pass.
func (ctx *Context) known(what string) (int64, error) {
	res, err := ctx.Eval.Eval(ctx.Tokens)
	if err != nil {
		return 0, err
	}
	if res.Unresolved {
		return 0, diag.Newf(diag.UndefinedSymbol, "%s must only refer to symbols defined earlier", what)
	}
	return res.Value, nil
}

// comma consumes a ',' if one follows and reports whether it did.
func (ctx *Context) comma() (bool, error) {
	tok, err := ctx.Tokens.Next()
	if err != nil {
		return false, err
	}
	if tok.IsPunct(",") {
		return true, nil
	}
	ctx.Tokens.Unget(tok)
	return false, nil
}

func dirOrg(ctx *Context, name string) error {
	v, err := ctx.known("org address")
	if err != nil {
		return err
	}
	if v < 0 || v > 0xFFFFFFFF {
		return diag.OutOfRange("org address", v, 0, 0xFFFFFFFF)
	}
	ctx.Address = uint32(v)
	return nil
}

// dirAssign is the ".equ name, expr" / ".set name, expr" form.
func dirAssign(ctx *Context, name string) error {
	tok, err := ctx.Tokens.Next()
	if err != nil {
		return err
	}
	if tok.Kind != token.Ident {
		return diag.Newf(diag.LexicalError, "%s needs a symbol name, found '%s'", name, tok)
	}
	if _, err := ctx.comma(); err != nil {
		return err
	}
	if err := ctx.assign(tok.Text, bare(name) == "equ"); err != nil {
		return err
	}
	// assign consumed the end of the statement.
	ctx.Tokens.Unget(token.Token{Kind: token.EOL})
	return nil
}

// unitBounds is the range a size-byte unit accepts: signed low bound,
// unsigned high bound. An 8-byte unit takes any value.
func unitBounds(size int) (low, high int64) {
	bits := uint(size * 8)
	return -(1 << (bits - 1)), 1<<bits - 1
}

func dirData(ctx *Context, name string) error {
	size := dataSizes[bare(name)]
	low, high := unitBounds(size)
	for {
		tok, err := ctx.Tokens.Next()
		if err != nil {
			return err
		}
		if tok.Kind == token.String {
			if size != 1 {
				return diag.Newf(diag.IllegalOperandType, "%s does not take strings", name)
			}
			ctx.Emit([]byte(tok.Text))
		} else {
			ctx.Tokens.Unget(tok)
			res, err := ctx.Eval.Eval(ctx.Tokens)
			if err != nil {
				return err
			}
			v := res.Value
			if res.Unresolved {
				v = 0
			} else if size < 8 && (v < low || v > high) {
				return diag.OutOfRange(name+" value", v, low, high)
			}
			ctx.EmitWord(uint64(v), size)
		}

		more, err := ctx.comma()
		if err != nil || !more {
			return err
		}
	}
}

// dirSpace reserves count units, filled with zero or the optional value.
func dirSpace(ctx *Context, name string) error {
	unit := spaceUnits[bare(name)]
	count, err := ctx.known(name + " count")
	if err != nil {
		return err
	}
	if count < 0 || count > 1<<24 {
		return diag.OutOfRange(name+" count", count, 0, 1<<24)
	}
	var fill int64
	if more, err := ctx.comma(); err != nil {
		return err
	} else if more {
		res, err := ctx.Eval.Eval(ctx.Tokens)
		if err != nil {
			return err
		}
		fill = res.Value
		if low, high := unitBounds(unit); !res.Unresolved && unit < 8 && (fill < low || fill > high) {
			return diag.OutOfRange(name+" fill value", fill, low, high)
		}
	}
	if fill == 0 {
		ctx.Reserve(int(count) * unit)
		return nil
	}
	for i := int64(0); i < count; i++ {
		ctx.EmitWord(uint64(fill), unit)
	}
	return nil
}

func dirAlign(ctx *Context, name string) error {
	n, err := ctx.known("alignment")
	if err != nil {
		return err
	}
	if n < 1 || n > 1<<16 {
		return diag.OutOfRange("alignment", n, 1, 1<<16)
	}
	if rem := int64(ctx.Address) % n; rem != 0 {
		ctx.Reserve(int(n - rem))
	}
	return nil
}

func dirScope(ctx *Context, name string) error {
	ctx.Symbols.ScopeStart()
	return nil
}

func dirEndScope(ctx *Context, name string) error {
	return ctx.Symbols.ScopeEnd()
}

// dirExport marks global symbols for the export table. Exports are applied
// on the second pass, once every symbol is defined.
func dirExport(ctx *Context, name string) error {
	for {
		tok, err := ctx.Tokens.Next()
		if err != nil {
			return err
		}
		if tok.Kind != token.Ident {
			return diag.Newf(diag.LexicalError, "%s needs symbol names, found '%s'", name, tok)
		}
		if ctx.Pass == 2 {
			if err := ctx.Symbols.Export(ctx.Qualify(tok.Text)); err != nil {
				return err
			}
		}
		more, err := ctx.comma()
		if err != nil || !more {
			return err
		}
	}
}

// dirArch switches the architecture for the following lines.
func dirArch(ctx *Context, name string) error {
	tok, err := ctx.Tokens.Next()
	if err != nil {
		return err
	}
	if tok.Kind != token.Ident && tok.Kind != token.String {
		return diag.Newf(diag.LexicalError, "%s needs an architecture name, found '%s'", name, tok)
	}
	a, err := Lookup(tok.Text)
	if err != nil {
		return err
	}
	ctx.Arch = a
	ctx.Log.WithField("arch", a.Name()).Debug("architecture switch")
	return nil
}

// dirIncbin inserts a file: incbin "file"[, offset[, length]].
func dirIncbin(ctx *Context, name string) error {
	tok, err := ctx.Tokens.Next()
	if err != nil {
		return err
	}
	if tok.Kind != token.String {
		return diag.Newf(diag.LexicalError, "%s needs a quoted file name, found '%s'", name, tok)
	}
	_, data, err := findFile(ctx.ReadFile, filepath.Dir(ctx.Pos.File), tok.Text, ctx.IncludePaths)
	if err != nil {
		return err
	}

	offset, length := int64(0), int64(len(data))
	if more, err := ctx.comma(); err != nil {
		return err
	} else if more {
		if offset, err = ctx.known("incbin offset"); err != nil {
			return err
		}
		length -= offset
		if more, err = ctx.comma(); err != nil {
			return err
		} else if more {
			if length, err = ctx.known("incbin length"); err != nil {
				return err
			}
		}
	}
	if offset < 0 || offset > int64(len(data)) {
		return diag.OutOfRange("incbin offset", offset, 0, int64(len(data)))
	}
	if length < 0 || offset+length > int64(len(data)) {
		return diag.OutOfRange("incbin length", length, 0, int64(len(data))-offset)
	}
	ctx.Emit(data[offset : offset+length])
	return nil
}
