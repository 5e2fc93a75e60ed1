// operand.go - Operand model and the shared operand parser

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

Operand model and the shared operand parser
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

type OperandKind uint8

const (
	NoOperand OperandKind = iota
	Register
	Immediate
	RegisterOffset // offset(register), also plain (register)
)

func (k OperandKind) String() string {
	switch k {
	case Register:
		return "register"
	case Immediate:
		return "immediate"
	case RegisterOffset:
		return "offset(register)"
	}
	return "none"
}

// Operand is one parsed operand. Value holds the register number, the
// immediate, or the base register of a RegisterOffset operand.
type Operand struct {
	Kind       OperandKind
	Value      int64
	Offset     int16
	ForceLong  bool
	Unresolved bool
}

func Reg(n int) Operand { return Operand{Kind: Register, Value: int64(n)} }

func Imm(v int64) Operand { return Operand{Kind: Immediate, Value: v} }

func RegOff(base int, off int16) Operand {
	return Operand{Kind: RegisterOffset, Value: int64(base), Offset: off}
}

// Registers maps register names, including aliases, to numbers.
type Registers struct {
	names  []string
	lookup map[string]int
}

// NewRegisters takes the canonical name of each register in number order and
// any extra aliases.
func NewRegisters(names []string, aliases map[string]int) *Registers {
	r := &Registers{names: names, lookup: make(map[string]int, len(names)+len(aliases))}
	for i, n := range names {
		r.lookup[strings.ToLower(n)] = i
	}
	for n, i := range aliases {
		r.lookup[strings.ToLower(n)] = i
	}
	return r
}

func (r *Registers) Register(name string) (int, bool) {
	n, ok := r.lookup[strings.ToLower(name)]
	return n, ok
}

func (r *Registers) Name(n int) string {
	if n >= 0 && n < len(r.names) {
		return r.names[n]
	}
	return fmt.Sprintf("?%d", n)
}

func (r *Registers) Count() int {
	return len(r.names)
}

// ParseOperands reads a comma separated operand list up to the end of the
// statement. Accepted forms are register, (register), expression,
// expression(register) and #expression.
//
// On the first pass an operand that refers to an undefined symbol is marked
// ForceLong and the hint is recorded for the current address, so that the
// second pass sizes the instruction the same way.
func ParseOperands(ctx *Context, regs *Registers) ([]Operand, error) {
	ts := ctx.Tokens
	tok, err := ts.Next()
	if err != nil {
		return nil, err
	}
	ts.Unget(tok)
	if tok.IsEnd() {
		return nil, nil
	}

	var ops []Operand
	for {
		op, err := parseOperand(ctx, regs)
		if err != nil {
			return nil, err
		}
		if op.Unresolved {
			op.ForceLong = true
			ctx.markForceLong()
		}
		ops = append(ops, op)

		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if tok.IsPunct(",") {
			continue
		}
		ts.Unget(tok)
		if tok.IsEnd() {
			return ops, nil
		}
		return nil, diag.Newf(diag.LexicalError, "unexpected '%s' after operand %d", tok, len(ops))
	}
}

func parseOperand(ctx *Context, regs *Registers) (Operand, error) {
	ts := ctx.Tokens
	tok, err := ts.Next()
	if err != nil {
		return Operand{}, err
	}

	switch {
	case tok.IsPunct("#"):
		res, err := ctx.Eval.Eval(ts)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: Immediate, Value: res.Value, Unresolved: res.Unresolved}, nil

	case tok.Kind == token.Ident:
		if n, ok := regs.Register(tok.Text); ok {
			return Reg(n), nil
		}

	case tok.IsPunct("("):
		inner, err := ts.Next()
		if err != nil {
			return Operand{}, err
		}
		if inner.Kind == token.Ident {
			if n, ok := regs.Register(inner.Text); ok {
				if err := expectPunct(ts, ")"); err != nil {
					return Operand{}, err
				}
				return RegOff(n, 0), nil
			}
		}
		ts.Unget(inner)
		res, err := ctx.Eval.EvalParenTail(ts)
		if err != nil {
			return Operand{}, err
		}
		return offsetOrImmediate(ctx, regs, res.Value, res.Unresolved)
	}

	ts.Unget(tok)
	res, err := ctx.Eval.Eval(ts)
	if err != nil {
		return Operand{}, err
	}
	return offsetOrImmediate(ctx, regs, res.Value, res.Unresolved)
}

// offsetOrImmediate finishes an operand that started with an expression:
// a following "(reg)" turns it into a register-offset operand.
func offsetOrImmediate(ctx *Context, regs *Registers, v int64, unresolved bool) (Operand, error) {
	ts := ctx.Tokens
	tok, err := ts.Next()
	if err != nil {
		return Operand{}, err
	}
	if !tok.IsPunct("(") {
		ts.Unget(tok)
		return Operand{Kind: Immediate, Value: v, Unresolved: unresolved}, nil
	}

	reg, err := ts.Next()
	if err != nil {
		return Operand{}, err
	}
	n, ok := regs.Register(reg.Text)
	if reg.Kind != token.Ident || !ok {
		return Operand{}, diag.Newf(diag.IllegalOperandType, "expected register after '(', found '%s'", reg)
	}
	if err := expectPunct(ts, ")"); err != nil {
		return Operand{}, err
	}
	if unresolved {
		v = 0
	} else if v < -32768 || v > 32767 {
		return Operand{}, diag.OutOfRange("offset", v, -32768, 32767)
	}
	op := RegOff(n, int16(v))
	op.Unresolved = unresolved
	return op, nil
}

func expectPunct(ts token.Stream, p string) error {
	tok, err := ts.Next()
	if err != nil {
		return err
	}
	if !tok.IsPunct(p) {
		return diag.Newf(diag.LexicalError, "expected '%s', found '%s'", p, tok)
	}
	return nil
}

// CheckOperands validates ops against the kinds a pseudo-instruction takes.
func CheckOperands(mnemonic string, ops []Operand, kinds ...OperandKind) error {
	if len(ops) != len(kinds) {
		return diag.Newf(diag.OperandCountMismatch, "%s takes %d operand(s), got %d", mnemonic, len(kinds), len(ops))
	}
	for i, k := range kinds {
		if ops[i].Kind != k {
			return diag.Newf(diag.IllegalOperandType, "%s operand %d must be %s, got %s", mnemonic, i+1, k, ops[i].Kind)
		}
	}
	return nil
}
