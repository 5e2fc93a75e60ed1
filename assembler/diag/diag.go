// diag.go - Assembler error kinds and positioned diagnostics

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

Assembler error kinds and positioned diagnostics
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an assembly failure.
type Kind int

const (
	LexicalError Kind = iota + 1
	UnknownInstruction
	UnknownOperandCombination
	IllegalOperandType
	OperandCountMismatch
	ValueOutOfRange
	AlignmentViolation
	UndefinedSymbol
	DuplicateSymbol
	ArithmeticError
	PassConsistencyError
)

var kindNames = map[Kind]string{
	LexicalError:              "lexical error",
	UnknownInstruction:        "unknown instruction",
	UnknownOperandCombination: "unknown operand combination",
	IllegalOperandType:        "illegal operand type",
	OperandCountMismatch:      "operand count mismatch",
	ValueOutOfRange:           "value out of range",
	AlignmentViolation:        "alignment violation",
	UndefinedSymbol:           "undefined symbol",
	DuplicateSymbol:           "duplicate symbol",
	ArithmeticError:           "arithmetic error",
	PassConsistencyError:      "pass consistency error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a single assembler diagnostic. Low and High are only meaningful
// for ValueOutOfRange.
type Error struct {
	Kind Kind
	Msg  string
	Low  int64
	High int64
	File string
	Line int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches any diagnostic of the same kind, so callers can test against
// the Err* sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrLexical                   = &Error{Kind: LexicalError}
	ErrUnknownInstruction        = &Error{Kind: UnknownInstruction}
	ErrUnknownOperandCombination = &Error{Kind: UnknownOperandCombination}
	ErrIllegalOperandType        = &Error{Kind: IllegalOperandType}
	ErrOperandCountMismatch      = &Error{Kind: OperandCountMismatch}
	ErrValueOutOfRange           = &Error{Kind: ValueOutOfRange}
	ErrAlignmentViolation        = &Error{Kind: AlignmentViolation}
	ErrUndefinedSymbol           = &Error{Kind: UndefinedSymbol}
	ErrDuplicateSymbol           = &Error{Kind: DuplicateSymbol}
	ErrArithmetic                = &Error{Kind: ArithmeticError}
	ErrPassConsistency           = &Error{Kind: PassConsistencyError}
)

// Newf builds an unpositioned diagnostic.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// OutOfRange reports value against the inclusive bounds [low, high] and names
// the bound that was crossed.
func OutOfRange(what string, value, low, high int64) *Error {
	bound := fmt.Sprintf("upper bound %d", high)
	if value < low {
		bound = fmt.Sprintf("lower bound %d", low)
	}
	return &Error{
		Kind: ValueOutOfRange,
		Msg:  fmt.Sprintf("%s %d exceeds %s (%d, %d)", what, value, bound, low, high),
		Low:  low,
		High: high,
	}
}

// At attaches a source position to err. Diagnostics that already carry a
// position keep it; foreign errors are wrapped with the position prefix.
func At(err error, file string, line int) error {
	if err == nil {
		return nil
	}
	var d *Error
	if errors.As(err, &d) {
		if d.Line > 0 {
			return d
		}
		c := *d
		c.File, c.Line = file, line
		return &c
	}
	return errors.Wrapf(err, "%s:%d", file, line)
}

// KindOf returns the kind of the first diagnostic in err's chain, or 0.
func KindOf(err error) Kind {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind
	}
	return 0
}
