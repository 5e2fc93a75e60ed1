// symbols.go - Lexically scoped symbol table

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

Lexically scoped symbol table
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package symbols

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/intuitionamiga/ieasm/assembler/diag"
)

// Flags records how a symbol was created and what has happened to it since.
type Flags uint8

const (
	Appended Flags = 1 << iota // created by Append, immutable through Set
	Mutable                    // created by Set
	Exported                   // listed in the export table
	Locked                     // existed when the table was locked
)

// Symbol is one stored binding. Scope is the id of the scope that owns it,
// 0 for the global scope.
type Symbol struct {
	Name  string
	Value int64
	Scope int
	Depth int
	Flags Flags

	// pass is the generation that last defined the record: 0 before Lock,
	// 1 after.
	pass int
}

type key struct {
	scope int
	name  string
}

// Table holds symbols for one assembly job.
//
// Records are never removed. Closing a scope only takes its id off the
// active stack, which hides its records for the rest of the pass. Lock
// restarts scope numbering, so the second pass re-opens the scopes of the
// first one in the same order.
//
// After Lock a name resolves to the innermost binding already defined on
// the second pass, exactly as the first pass saw it at the same line. Only
// when no such binding exists does lookup fall back to the first pass
// records, which is what makes forward references resolve.
type Table struct {
	records []*Symbol
	index   map[key]*Symbol
	active  []int
	scopes  int
	locked  bool
	pass    int
}

func New() *Table {
	return &Table{
		index:  make(map[key]*Symbol),
		active: []int{0},
	}
}

func (t *Table) current() int {
	return t.active[len(t.active)-1]
}

func (t *Table) add(name string, value int64, flags Flags) *Symbol {
	s := &Symbol{
		Name:  name,
		Value: value,
		Scope: t.current(),
		Depth: len(t.active) - 1,
		Flags: flags,
		pass:  t.pass,
	}
	t.records = append(t.records, s)
	t.index[key{s.Scope, name}] = s
	return s
}

// defined returns the innermost binding of name made in the current pass.
func (t *Table) defined(name string) *Symbol {
	for i := len(t.active) - 1; i >= 0; i-- {
		if s, ok := t.index[key{t.active[i], name}]; ok && s.pass == t.pass {
			return s
		}
	}
	return nil
}

func (t *Table) visible(name string) *Symbol {
	if s := t.defined(name); s != nil {
		return s
	}
	for i := len(t.active) - 1; i >= 0; i-- {
		if s, ok := t.index[key{t.active[i], name}]; ok {
			return s
		}
	}
	return nil
}

// Append defines name in the innermost scope. Before Lock a second
// definition in the same scope is a DuplicateSymbol error; after Lock the
// existing record takes the new value.
func (t *Table) Append(name string, value int64) error {
	if s, ok := t.index[key{t.current(), name}]; ok {
		if !t.locked {
			return diag.Newf(diag.DuplicateSymbol, "symbol %q already defined in this scope", name)
		}
		s.Value = value
		s.pass = t.pass
		return nil
	}
	t.add(name, value, Appended)
	return nil
}

// Set assigns a reassignable symbol. A visible symbol made by Set is
// updated, a visible symbol made by Append is left alone, and an unknown
// name is created in the innermost scope.
func (t *Table) Set(name string, value int64) {
	if s := t.defined(name); s != nil {
		if s.Flags&Mutable != 0 {
			s.Value = value
		}
		return
	}
	if s, ok := t.index[key{t.current(), name}]; ok {
		// Redefinition of a first pass record.
		if s.Flags&Mutable != 0 {
			s.Value = value
		}
		s.pass = t.pass
		return
	}
	t.add(name, value, Mutable)
}

// Lookup resolves name from the innermost scope outward.
func (t *Table) Lookup(name string) (int64, error) {
	if s := t.visible(name); s != nil {
		return s.Value, nil
	}
	return 0, diag.Newf(diag.UndefinedSymbol, "%s", name)
}

// Find is Lookup returning the whole record.
func (t *Table) Find(name string) (Symbol, bool) {
	if s := t.visible(name); s != nil {
		return *s, true
	}
	return Symbol{}, false
}

// Local returns the record of name owned by the innermost scope, whether or
// not the current pass has defined it yet.
func (t *Table) Local(name string) (Symbol, bool) {
	if s, ok := t.index[key{t.current(), name}]; ok {
		return *s, true
	}
	return Symbol{}, false
}

func (t *Table) ScopeStart() {
	t.scopes++
	t.active = append(t.active, t.scopes)
}

func (t *Table) ScopeEnd() error {
	if len(t.active) == 1 {
		return errors.New("scope end without matching scope start")
	}
	t.active = t.active[:len(t.active)-1]
	return nil
}

// Depth is the number of open nested scopes.
func (t *Table) Depth() int {
	return len(t.active) - 1
}

// Export marks the global binding of name for the export table. It fails
// while an open nested scope shadows the name.
func (t *Table) Export(name string) error {
	for i := len(t.active) - 1; i > 0; i-- {
		if s, ok := t.index[key{t.active[i], name}]; ok && s.pass == t.pass {
			return errors.Errorf("cannot export %q: shadowed by a nested scope", name)
		}
	}
	s, ok := t.index[key{0, name}]
	if !ok {
		return diag.Newf(diag.UndefinedSymbol, "cannot export %q: no global definition", name)
	}
	s.Flags |= Exported
	return nil
}

// Lock switches the table into its second-pass mode.
func (t *Table) Lock() {
	t.locked = true
	t.pass = 1
	t.scopes = 0
	t.active = t.active[:1]
	for _, s := range t.records {
		s.Flags |= Locked
	}
}

func (t *Table) IsLocked() bool {
	return t.locked
}

// Count is the number of stored records, including those of closed scopes.
func (t *Table) Count() int {
	return len(t.records)
}

// Symbols returns a copy of every record in definition order.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, len(t.records))
	for i, s := range t.records {
		out[i] = *s
	}
	return out
}

// Exports returns the exported globals sorted by name.
func (t *Table) Exports() []Symbol {
	var out []Symbol
	for _, s := range t.records {
		if s.Flags&Exported != 0 {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
