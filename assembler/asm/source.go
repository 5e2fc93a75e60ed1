// source.go - Source loading: includes, macros, rept blocks and conditionals

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

Source loading: includes, macros, rept blocks and conditionals
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/intuitionamiga/ieasm/assembler/expr"
	"github.com/intuitionamiga/ieasm/assembler/symbols"
	"github.com/intuitionamiga/ieasm/assembler/token"
)

// Line is one preprocessed source line with the position it came from.
// Lines produced by a macro or rept block carry the position of the line
// that expanded them.
type Line struct {
	Pos  token.Pos
	Text string
}

// Source is a fully preprocessed translation unit.
type Source struct {
	Name  string
	Lines []Line
}

// Text returns the lines joined back into source text.
func (s *Source) Text() string {
	var b strings.Builder
	for _, ln := range s.Lines {
		b.WriteString(ln.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

type macro struct {
	name   string
	params int
	body   []string
}

const maxExpansionDepth = 100

// Loader reads source files and expands includes, macros, rept blocks and
// if/else/endif. A Loader is used for a single translation unit.
type Loader struct {
	IncludePaths []string
	Log          logrus.FieldLogger
	ReadFile     func(name string) ([]byte, error)

	included map[string]bool
	macros   map[string]*macro
	consts   *symbols.Table
}

func NewLoader(log logrus.FieldLogger, includePaths ...string) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{
		IncludePaths: includePaths,
		Log:          log,
		ReadFile:     os.ReadFile,
	}
}

// LoadFile reads and preprocesses path.
func (l *Loader) LoadFile(path string) (*Source, error) {
	data, err := l.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return l.Load(path, data)
}

// Load preprocesses src as though it had been read from name. Includes are
// resolved against the directory of name first.
func (l *Loader) Load(name string, src []byte) (*Source, error) {
	l.included = make(map[string]bool)
	l.macros = make(map[string]*macro)
	l.consts = symbols.New()
	if abs, err := filepath.Abs(name); err == nil {
		l.included[abs] = true
	}

	lines, err := l.includes(name, src, 0)
	if err != nil {
		return nil, err
	}
	lines, err = l.collectMacros(lines)
	if err != nil {
		return nil, err
	}
	var out []Line
	if err := l.expand(lines, &out, 0); err != nil {
		return nil, err
	}
	return &Source{Name: name, Lines: out}, nil
}

func split(name string, src []byte) []Line {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Line{Pos: token.Pos{File: name, Line: i + 1, Col: 1}, Text: r}
	}
	return lines
}

func lineError(pos token.Pos, format string, args ...interface{}) error {
	return errors.Errorf("%s:%d: %s", pos.File, pos.Line, fmt.Sprintf(format, args...))
}

// words splits the code part of a line into lower-cased fields.
func words(text string) (trimmed string, lower []string) {
	trimmed = strings.TrimSpace(stripComment(text))
	return trimmed, strings.Fields(strings.ToLower(trimmed))
}

func directiveIs(word string, names ...string) bool {
	word = strings.TrimPrefix(word, ".")
	for _, n := range names {
		if word == n {
			return true
		}
	}
	return false
}

func (l *Loader) includes(name string, src []byte, depth int) ([]Line, error) {
	if depth > maxExpansionDepth {
		return nil, errors.Errorf("%s: include nesting too deep", name)
	}
	var out []Line
	for _, ln := range split(name, src) {
		trimmed, w := words(ln.Text)
		if len(w) == 0 || !directiveIs(w[0], "include") {
			out = append(out, ln)
			continue
		}
		file := strings.Trim(strings.TrimSpace(trimmed[len(w[0]):]), "\"'")
		if file == "" {
			return nil, lineError(ln.Pos, "missing filename for include")
		}
		path, data, err := findFile(l.ReadFile, filepath.Dir(name), file, l.IncludePaths)
		if err != nil {
			return nil, lineError(ln.Pos, "failed to include %s: %v", file, err)
		}
		abs, _ := filepath.Abs(path)
		if l.included[abs] {
			l.Log.WithField("file", file).Warnf("%s:%d: circular include skipped", ln.Pos.File, ln.Pos.Line)
			continue
		}
		l.included[abs] = true
		l.Log.WithField("file", path).Debug("include")
		sub, err := l.includes(path, data, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// findFile reads file relative to dir, then along paths.
func findFile(read func(string) ([]byte, error), dir, file string, paths []string) (string, []byte, error) {
	if filepath.IsAbs(file) {
		data, err := read(file)
		return file, data, err
	}
	var first error
	for _, d := range append([]string{dir}, paths...) {
		p := filepath.Join(d, file)
		data, err := read(p)
		if err == nil {
			return p, data, nil
		}
		if first == nil {
			first = err
		}
	}
	return "", nil, errors.Wrapf(first, "cannot find %q", file)
}

// collectMacros removes macro definitions from lines. Both "name macro" and
// ".macro name" open a definition; "endm" closes it.
func (l *Loader) collectMacros(lines []Line) ([]Line, error) {
	var out []Line
	for i := 0; i < len(lines); i++ {
		_, w := words(lines[i].Text)
		var name string
		switch {
		case len(w) >= 2 && directiveIs(w[1], "macro"):
			name = strings.TrimSuffix(w[0], ":")
		case len(w) >= 2 && directiveIs(w[0], "macro"):
			name = w[1]
		default:
			out = append(out, lines[i])
			continue
		}

		start := lines[i].Pos
		m := &macro{name: name}
		closed := false
		for i++; i < len(lines); i++ {
			_, bw := words(lines[i].Text)
			if len(bw) == 1 && directiveIs(bw[0], "endm", "endmacro") {
				closed = true
				break
			}
			m.body = append(m.body, lines[i].Text)
		}
		if !closed {
			return nil, lineError(start, "macro %s without endm", name)
		}
		for _, bl := range m.body {
			for p := 9; p > m.params; p-- {
				if strings.Contains(bl, `\`+strconv.Itoa(p)) {
					m.params = p
				}
			}
		}
		if _, dup := l.macros[name]; dup {
			return nil, lineError(start, "macro %s already defined", name)
		}
		l.macros[name] = m
	}
	return out, nil
}

var (
	nargWord   = regexp.MustCompile(`(?i)\bnarg\b`)
	constLine  = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_]*)\s*(?:=|\s\.?equ\s|\s\.?set\s)\s*(.+)$`)
	labelFirst = regexp.MustCompile(`^([A-Za-z_.][A-Za-z0-9_.]*):\s*(.*)$`)
)

type cond struct {
	active  bool
	hadTrue bool
	hasElse bool
}

// expand resolves conditionals, rept blocks and macro invocations.
func (l *Loader) expand(lines []Line, out *[]Line, depth int) error {
	if depth > maxExpansionDepth {
		return errors.New("macro/rept expansion depth exceeded (possible infinite recursion)")
	}

	var conds []cond
	emitting := func(n int) bool {
		for _, c := range conds[:n] {
			if !c.active {
				return false
			}
		}
		return true
	}

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		trimmed, w := words(ln.Text)

		if len(w) > 0 {
			switch strings.TrimPrefix(w[0], ".") {
			case "if":
				if !emitting(len(conds)) {
					conds = append(conds, cond{hadTrue: true})
					continue
				}
				v, err := l.constant(ln, trimmed[len(w[0]):])
				if err != nil {
					return err
				}
				conds = append(conds, cond{active: v != 0, hadTrue: v != 0})
				continue
			case "else":
				if len(conds) == 0 {
					return lineError(ln.Pos, "else without matching if")
				}
				top := &conds[len(conds)-1]
				if top.hasElse {
					return lineError(ln.Pos, "duplicate else")
				}
				top.hasElse = true
				if emitting(len(conds) - 1) {
					top.active = !top.hadTrue
				}
				continue
			case "endif":
				if len(conds) == 0 {
					return lineError(ln.Pos, "endif without matching if")
				}
				conds = conds[:len(conds)-1]
				continue
			}
		}
		if !emitting(len(conds)) || len(w) == 0 {
			if emitting(len(conds)) {
				*out = append(*out, ln)
			}
			continue
		}

		if directiveIs(w[0], "rept") {
			count, err := l.constant(ln, trimmed[len(w[0]):])
			if err != nil {
				return err
			}
			var body []Line
			nest := 1
			for i++; i < len(lines); i++ {
				_, bw := words(lines[i].Text)
				if len(bw) > 0 && directiveIs(bw[0], "rept") {
					nest++
				} else if len(bw) > 0 && directiveIs(bw[0], "endr") {
					if nest--; nest == 0 {
						break
					}
				}
				body = append(body, lines[i])
			}
			if nest != 0 {
				return lineError(ln.Pos, "rept without matching endr")
			}
			for c := int64(0); c < count; c++ {
				if err := l.expand(body, out, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		if m := constLine.FindStringSubmatch(trimmed); m != nil {
			if v, err := l.constant(ln, m[2]); err == nil {
				l.consts.Set(m[1], v)
			}
		}

		// A label in front of a macro invocation stays on its own line.
		code, label := trimmed, ""
		if m := labelFirst.FindStringSubmatch(trimmed); m != nil {
			label, code = m[1], m[2]
		}
		fields := strings.Fields(code)
		if len(fields) > 0 {
			if mac, ok := l.macros[strings.ToLower(fields[0])]; ok {
				if label != "" {
					*out = append(*out, Line{Pos: ln.Pos, Text: label + ":"})
				}
				args := splitMacroArgs(strings.TrimSpace(code[len(fields[0]):]))
				l.Log.WithFields(logrus.Fields{"macro": mac.name, "args": len(args), "params": mac.params}).Debug("expand")
				if err := l.expand(mac.instantiate(ln.Pos, args), out, depth+1); err != nil {
					return err
				}
				continue
			}
		}
		*out = append(*out, ln)
	}

	if len(conds) > 0 {
		return errors.Errorf("unterminated if block (%d level(s) deep)", len(conds))
	}
	return nil
}

func (m *macro) instantiate(pos token.Pos, args []string) []Line {
	lines := make([]Line, len(m.body))
	for i, text := range m.body {
		text = nargWord.ReplaceAllString(text, strconv.Itoa(len(args)))
		for p := 9; p >= 1; p-- {
			arg := ""
			if p <= len(args) {
				arg = args[p-1]
			}
			text = strings.ReplaceAll(text, `\`+strconv.Itoa(p), arg)
		}
		lines[i] = Line{Pos: pos, Text: text}
	}
	return lines
}

// constant evaluates a preprocessor expression. Only literals and names
// assigned earlier with constant values are visible.
func (l *Loader) constant(ln Line, text string) (int64, error) {
	ev := &expr.Evaluator{Symbols: l.consts, Pass: 2}
	ts := token.NewAt(ln.Pos, []byte(text))
	res, err := ev.Eval(ts)
	if err != nil {
		return 0, lineError(ln.Pos, "%v", err)
	}
	if tok, err := ts.Next(); err != nil || !tok.IsEnd() {
		return 0, lineError(ln.Pos, "trailing text after expression")
	}
	return res.Value, nil
}

// splitMacroArgs splits on commas outside parentheses and quotes.
func splitMacroArgs(s string) []string {
	if s == "" {
		return nil
	}
	var args []string
	depth, quote, start := 0, byte(0), 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

// stripComment drops a ';' or "//" comment that is not inside quotes.
func stripComment(line string) string {
	quote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ';', c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}
