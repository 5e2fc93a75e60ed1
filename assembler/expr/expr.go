// expr.go - Integer expression evaluator

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

Integer expression evaluator
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package expr

import (
	"strconv"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

// Resolver looks up symbol values. *symbols.Table satisfies it.
type Resolver interface {
	Lookup(name string) (int64, error)
}

// Result is an evaluated expression. Unresolved is set on the first pass when
// any identifier in the expression was not yet defined; Value is then a
// placeholder.
type Result struct {
	Value      int64
	Unresolved bool
}

// Evaluator parses and evaluates expressions from a token stream.
//
// Binding, tightest first: unary ~ ! - +, then * / %, + -, << >>, &, ^, |.
// Every binary level is left-associative.
type Evaluator struct {
	Symbols Resolver
	Pass    int
	// Qualify, when set, maps an identifier to the symbol name to look up.
	Qualify func(name string) string
}

var precedence = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4,
	">>": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

func binaryPrec(tok token.Token) (int, bool) {
	if tok.Kind != token.Operator {
		return 0, false
	}
	p, ok := precedence[tok.Text]
	return p, ok
}

// Eval reads one expression. The first token that cannot continue the
// expression is pushed back onto ts.
func (e *Evaluator) Eval(ts token.Stream) (Result, error) {
	lhs, err := e.unary(ts)
	if err != nil {
		return Result{}, err
	}
	return e.climb(ts, lhs, 1)
}

// EvalParenTail evaluates an expression whose opening parenthesis the caller
// has already consumed, then continues with any binary operators that follow
// the closing parenthesis.
func (e *Evaluator) EvalParenTail(ts token.Stream) (Result, error) {
	inner, err := e.group(ts)
	if err != nil {
		return Result{}, err
	}
	return e.climb(ts, inner, 1)
}

func (e *Evaluator) climb(ts token.Stream, lhs Result, minPrec int) (Result, error) {
	for {
		op, err := ts.Next()
		if err != nil {
			return Result{}, err
		}
		prec, ok := binaryPrec(op)
		if !ok || prec < minPrec {
			ts.Unget(op)
			return lhs, nil
		}
		rhs, err := e.unary(ts)
		if err != nil {
			return Result{}, err
		}
		for {
			next, err := ts.Next()
			if err != nil {
				return Result{}, err
			}
			ts.Unget(next)
			nprec, ok := binaryPrec(next)
			if !ok || nprec <= prec {
				break
			}
			if rhs, err = e.climb(ts, rhs, prec+1); err != nil {
				return Result{}, err
			}
		}
		if lhs, err = apply(op, lhs, rhs); err != nil {
			return Result{}, err
		}
	}
}

func (e *Evaluator) unary(ts token.Stream) (Result, error) {
	tok, err := ts.Next()
	if err != nil {
		return Result{}, err
	}
	if tok.Kind == token.Operator {
		switch tok.Text {
		case "-", "+", "~", "!":
			v, err := e.unary(ts)
			if err != nil {
				return Result{}, err
			}
			switch tok.Text {
			case "-":
				v.Value = -v.Value
			case "~":
				v.Value = ^v.Value
			case "!":
				v.Value = boolValue(v.Value == 0)
			}
			return v, nil
		}
	}
	return e.primary(ts, tok)
}

func (e *Evaluator) primary(ts token.Stream, tok token.Token) (Result, error) {
	switch tok.Kind {
	case token.Number:
		v, err := ParseNumber(tok.Text)
		return Result{Value: v}, err
	case token.Char:
		return Result{Value: int64([]rune(tok.Text)[0])}, nil
	case token.Ident:
		return e.resolve(tok.Text)
	case token.Punct:
		if tok.Text == "(" {
			return e.group(ts)
		}
	}
	return Result{}, diag.Newf(diag.LexicalError, "expected expression, found %s", describe(tok))
}

// group evaluates the body of a parenthesised sub-expression up to and
// including its closing parenthesis.
func (e *Evaluator) group(ts token.Stream) (Result, error) {
	inner, err := e.Eval(ts)
	if err != nil {
		return Result{}, err
	}
	return inner, expectClose(ts)
}

func (e *Evaluator) resolve(name string) (Result, error) {
	if e.Qualify != nil {
		name = e.Qualify(name)
	}
	if e.Symbols != nil {
		if v, err := e.Symbols.Lookup(name); err == nil {
			return Result{Value: v}, nil
		}
	}
	if e.Pass <= 1 {
		return Result{Unresolved: true}, nil
	}
	return Result{}, diag.Newf(diag.UndefinedSymbol, "%s", name)
}

func expectClose(ts token.Stream) error {
	tok, err := ts.Next()
	if err != nil {
		return err
	}
	if !tok.IsPunct(")") {
		return diag.Newf(diag.LexicalError, "expected ')', found %s", describe(tok))
	}
	return nil
}

func apply(op token.Token, lhs, rhs Result) (Result, error) {
	out := Result{Unresolved: lhs.Unresolved || rhs.Unresolved}
	a, b := lhs.Value, rhs.Value
	switch op.Text {
	case "+":
		out.Value = a + b
	case "-":
		out.Value = a - b
	case "*":
		out.Value = a * b
	case "/", "%":
		if b == 0 {
			// A placeholder divisor is not a real division by zero.
			if out.Unresolved {
				return out, nil
			}
			return Result{}, diag.Newf(diag.ArithmeticError, "division by zero")
		}
		if op.Text == "/" {
			out.Value = a / b
		} else {
			out.Value = a % b
		}
	case "<<":
		out.Value = a << uint64(b)
	case ">>":
		out.Value = a >> uint64(b)
	case "&":
		out.Value = a & b
	case "^":
		out.Value = a ^ b
	case "|":
		out.Value = a | b
	}
	return out, nil
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func describe(tok token.Token) string {
	if tok.IsEnd() {
		return "end of line"
	}
	return "'" + tok.String() + "'"
}

// ParseNumber converts a numeric literal. It accepts decimal, 0x and $ hex,
// 0b binary, 0o and leading-zero octal, and '_' digit separators.
func ParseNumber(text string) (int64, error) {
	s := text
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, diag.Newf(diag.LexicalError, "malformed number %q", text)
	}
	return int64(u), nil
}
