// token.go - Source tokenizer with single token push-back

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

Source tokenizer with single token push-back
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package token

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/diag"
)

// Kind identifies the class of a token.
type Kind uint8

const (
	EOF      Kind = iota // end of input
	EOL                  // end of line
	Ident                // identifiers, mnemonics, directives, registers
	Number               // numeric literal, text kept verbatim
	Char                 // character literal, text holds the decoded character
	String               // string literal, text holds the decoded string
	Operator             // + - * / % << >> & | ^ ~ !
	Punct                // , ( ) : # =
)

var kindNames = [...]string{"EOF", "EOL", "identifier", "number", "character", "string", "operator", "punctuation"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Pos is a source position. Lines and columns start at 1.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

// IsPunct reports whether the token is the punctuation s.
func (t Token) IsPunct(s string) bool {
	return t.Kind == Punct && t.Text == s
}

// IsEnd reports whether the token terminates a statement.
func (t Token) IsEnd() bool {
	return t.Kind == EOL || t.Kind == EOF
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, EOL:
		return t.Kind.String()
	case String:
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Text
}

// Stream is the contract the evaluator and operand parsers read from.
// At most one token may be pushed back between reads.
type Stream interface {
	Next() (Token, error)
	Unget(tok Token)
}

// Tokenizer splits assembler source into tokens. Comments start with ';' or
// "//" and run to the end of the line.
type Tokenizer struct {
	src     []byte
	off     int
	pos     Pos
	pending *Token
}

// New returns a tokenizer positioned at line 1 of file.
func New(file string, src []byte) *Tokenizer {
	return NewAt(Pos{File: file, Line: 1, Col: 1}, src)
}

// NewAt returns a tokenizer whose first byte is at pos.
func NewAt(pos Pos, src []byte) *Tokenizer {
	if pos.Col == 0 {
		pos.Col = 1
	}
	return &Tokenizer{src: src, pos: pos}
}

// Unget pushes tok back so the next call to Next returns it.
func (t *Tokenizer) Unget(tok Token) {
	if t.pending != nil {
		panic("token: push-back slot already holds " + t.pending.String())
	}
	t.pending = &tok
}

// SkipLine discards everything up to and including the next end of line.
func (t *Tokenizer) SkipLine() {
	if p := t.pending; p != nil {
		t.pending = nil
		if p.IsEnd() {
			return
		}
	}
	for t.off < len(t.src) {
		c := t.src[t.off]
		t.advance()
		if c == '\n' {
			return
		}
	}
}

func (t *Tokenizer) advance() {
	if t.src[t.off] == '\n' {
		t.pos.Line++
		t.pos.Col = 1
	} else {
		t.pos.Col++
	}
	t.off++
}

func (t *Tokenizer) peekByte(n int) byte {
	if t.off+n < len(t.src) {
		return t.src[t.off+n]
	}
	return 0
}

// Next returns the next token.
func (t *Tokenizer) Next() (Token, error) {
	if p := t.pending; p != nil {
		t.pending = nil
		return *p, nil
	}

	for t.off < len(t.src) {
		c := t.src[t.off]
		if c == ' ' || c == '\t' || c == '\r' {
			t.advance()
			continue
		}
		if c == ';' || (c == '/' && t.peekByte(1) == '/') {
			for t.off < len(t.src) && t.src[t.off] != '\n' {
				t.advance()
			}
			continue
		}
		break
	}

	start := t.pos
	if t.off >= len(t.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := t.src[t.off]
	switch {
	case c == '\n':
		t.advance()
		return Token{Kind: EOL, Pos: start}, nil
	case isIdentStart(c):
		begin := t.off
		for t.off < len(t.src) && isIdentChar(t.src[t.off]) {
			t.advance()
		}
		return Token{Kind: Ident, Text: string(t.src[begin:t.off]), Pos: start}, nil
	case isDigit(c) || (c == '$' && isHexDigit(t.peekByte(1))):
		begin := t.off
		t.advance()
		for t.off < len(t.src) && (isIdentChar(t.src[t.off]) && t.src[t.off] != '.') {
			t.advance()
		}
		return Token{Kind: Number, Text: string(t.src[begin:t.off]), Pos: start}, nil
	case c == '\'':
		s, err := t.quoted('\'')
		if err != nil {
			return Token{}, err
		}
		if len([]rune(s)) != 1 {
			return Token{}, diag.Newf(diag.LexicalError, "column %d: character literal must hold one character", start.Col)
		}
		return Token{Kind: Char, Text: s, Pos: start}, nil
	case c == '"':
		s, err := t.quoted('"')
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: String, Text: s, Pos: start}, nil
	case (c == '<' && t.peekByte(1) == '<') || (c == '>' && t.peekByte(1) == '>'):
		t.advance()
		t.advance()
		return Token{Kind: Operator, Text: string([]byte{c, c}), Pos: start}, nil
	case strings.IndexByte("+-*/%&|^~!", c) >= 0:
		t.advance()
		return Token{Kind: Operator, Text: string(c), Pos: start}, nil
	case strings.IndexByte(",():#=", c) >= 0:
		t.advance()
		return Token{Kind: Punct, Text: string(c), Pos: start}, nil
	}
	return Token{}, diag.Newf(diag.LexicalError, "column %d: unexpected character %q", start.Col, c)
}

// quoted reads a quoted literal with C-style escapes. The opening quote is at
// the current offset.
func (t *Tokenizer) quoted(q byte) (string, error) {
	start := t.pos
	t.advance()
	var sb strings.Builder
	for {
		if t.off >= len(t.src) || t.src[t.off] == '\n' {
			return "", diag.Newf(diag.LexicalError, "column %d: unterminated literal", start.Col)
		}
		c := t.src[t.off]
		t.advance()
		if c == q {
			return sb.String(), nil
		}
		if c == '\\' {
			if t.off >= len(t.src) {
				return "", diag.Newf(diag.LexicalError, "column %d: unterminated escape", start.Col)
			}
			c = unescape(t.src[t.off])
			t.advance()
		}
		sb.WriteByte(c)
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return c
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
