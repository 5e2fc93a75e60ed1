// table.go - Descriptor tables, operand shapes and field packing

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

Descriptor tables, operand shapes and field packing
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/intuitionamiga/ieasm/assembler/diag"
)

// Part selects what a field takes from its operand.
type Part uint8

const (
	PartValue  Part = iota // register number or immediate
	PartBase               // base register of a RegisterOffset operand
	PartOffset             // displacement of a RegisterOffset operand
)

// Permutation places a logical immediate into scattered instruction bits.
// Gather must undo Scatter for every in-range value and return the
// sign-extended result.
type Permutation struct {
	Name    string
	Width   uint
	Signed  bool
	Scatter func(v int64) uint64
	Gather  func(word uint64) int64
}

// Field packs one operand value into the instruction word.
type Field struct {
	Operand int
	Part    Part
	Shift   uint
	Width   uint
	Signed  bool
	// PCRel fields encode the operand minus the instruction address.
	PCRel bool
	// Align, when above 1, is the required divisor of the encoded value.
	Align int64
	// Low and High override the bounds implied by Width and Signed.
	Low  int64
	High int64
	Perm *Permutation
	Name string
}

func (f *Field) name() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.PCRel:
		return "branch offset"
	case f.Part == PartOffset:
		return "offset"
	}
	return "immediate"
}

// Bounds is the inclusive range the field accepts.
func (f *Field) Bounds() (low, high int64) {
	if f.Low != 0 || f.High != 0 {
		return f.Low, f.High
	}
	w, signed := f.Width, f.Signed
	if f.Perm != nil {
		w, signed = f.Perm.Width, f.Perm.Signed
	}
	if w == 0 {
		return 0, 0
	}
	if signed {
		return -(1 << (w - 1)), 1<<(w-1) - 1
	}
	return 0, 1<<w - 1
}

func (f *Field) check(v int64) error {
	low, high := f.Bounds()
	if v < low || v > high {
		return diag.OutOfRange(f.name(), v, low, high)
	}
	if f.Align > 1 && v%f.Align != 0 {
		return diag.Newf(diag.AlignmentViolation, "%s %d is not a multiple of %d", f.name(), v, f.Align)
	}
	return nil
}

func (f *Field) pack(v int64) uint64 {
	if f.Perm != nil {
		return f.Perm.Scatter(v)
	}
	return (uint64(v) & mask(f.Width)) << f.Shift
}

func (f *Field) extract(word uint64) int64 {
	if f.Perm != nil {
		return f.Perm.Gather(word)
	}
	v := (word >> f.Shift) & mask(f.Width)
	if f.Signed && f.Width > 0 {
		return SignExtend(v, f.Width)
	}
	return int64(v)
}

func mask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<w - 1
}

// SignExtend treats the low bits of v as a two's complement number.
func SignExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// Shape is an operand signature plus the packing of each operand.
type Shape struct {
	Name     string
	Operands []OperandKind
	Fields   []Field
}

func (s *Shape) accepts(ops []Operand) bool {
	for i, k := range s.Operands {
		if ops[i].Kind != k {
			return false
		}
	}
	return true
}

// IsTarget reports whether operand i is encoded PC-relative.
func (s *Shape) IsTarget(i int) bool {
	for _, f := range s.Fields {
		if f.Operand == i && f.PCRel {
			return true
		}
	}
	return false
}

type Flags uint8

const (
	// EncodeOnly entries are skipped by the disassembler, typically operand
	// swapping aliases that would shadow the real instruction.
	EncodeOnly Flags = 1 << iota
)

// Descriptor is one table row. Opcode holds the fixed bits selected by Mask.
type Descriptor struct {
	Mnemonic string
	Opcode   uint64
	Mask     uint64
	Shape    *Shape
	Flags    Flags
}

// Table is an ordered descriptor list. Order matters in both directions:
// the first row whose mnemonic and shape fit encodes, the first row whose
// fixed bits match decodes.
type Table struct {
	entries []Descriptor
	byName  map[string][]int
}

// NewTable validates and indexes entries.
func NewTable(entries []Descriptor) (*Table, error) {
	t := &Table{entries: entries, byName: make(map[string][]int)}
	for i := range entries {
		d := &entries[i]
		if d.Shape == nil {
			return nil, errors.Errorf("%s: missing shape", d.Mnemonic)
		}
		if d.Opcode&^d.Mask != 0 {
			return nil, errors.Errorf("%s: opcode %#x has bits outside mask %#x", d.Mnemonic, d.Opcode, d.Mask)
		}
		for _, f := range d.Shape.Fields {
			if f.Operand < 0 || f.Operand >= len(d.Shape.Operands) {
				return nil, errors.Errorf("%s: shape %s field refers to operand %d", d.Mnemonic, d.Shape.Name, f.Operand)
			}
		}
		name := strings.ToLower(d.Mnemonic)
		t.byName[name] = append(t.byName[name], i)
	}
	return t, nil
}

// MustTable is NewTable for static tables.
func MustTable(entries []Descriptor) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Entries() []Descriptor {
	return t.entries
}

func (t *Table) Has(mnemonic string) bool {
	_, ok := t.byName[strings.ToLower(mnemonic)]
	return ok
}

// Encode selects the row for mnemonic and ops and packs the instruction
// word. addr is the address of the instruction, used by PC-relative fields.
// Operands still unresolved on the first pass are packed as zero without
// range checks.
func (t *Table) Encode(mnemonic string, ops []Operand, addr uint32) (uint64, *Descriptor, error) {
	cands := t.byName[strings.ToLower(mnemonic)]
	if len(cands) == 0 {
		return 0, nil, diag.Newf(diag.UnknownInstruction, "%s", mnemonic)
	}

	var countOK []int
	for _, i := range cands {
		d := &t.entries[i]
		if len(ops) != len(d.Shape.Operands) {
			continue
		}
		if !d.Shape.accepts(ops) {
			countOK = append(countOK, i)
			continue
		}
		word, err := d.encode(ops, addr)
		return word, d, err
	}

	switch {
	case len(countOK) == 0 && len(cands) == 1:
		want := len(t.entries[cands[0]].Shape.Operands)
		return 0, nil, diag.Newf(diag.OperandCountMismatch, "%s takes %d operand(s), got %d", mnemonic, want, len(ops))
	case len(countOK) == 1:
		s := t.entries[countOK[0]].Shape
		for i, k := range s.Operands {
			if ops[i].Kind != k {
				return 0, nil, diag.Newf(diag.IllegalOperandType, "%s operand %d must be %s, got %s", mnemonic, i+1, k, ops[i].Kind)
			}
		}
	}
	return 0, nil, diag.Newf(diag.UnknownOperandCombination, "%s %s", mnemonic, kindList(ops))
}

func kindList(ops []Operand) string {
	if len(ops) == 0 {
		return "with no operands"
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.Kind.String()
	}
	return strings.Join(parts, ", ")
}

func (d *Descriptor) encode(ops []Operand, addr uint32) (uint64, error) {
	word := d.Opcode
	for i := range d.Shape.Fields {
		f := &d.Shape.Fields[i]
		op := ops[f.Operand]
		v := op.Value
		if f.Part == PartOffset {
			v = int64(op.Offset)
		}
		if op.Unresolved && f.Part != PartBase {
			continue
		}
		if f.PCRel {
			v -= int64(addr)
		}
		if err := f.check(v); err != nil {
			return 0, err
		}
		word |= f.pack(v)
	}
	return word, nil
}

// Decode finds the first decodable row whose fixed bits match word and
// unpacks its operands. PC-relative operands come back as absolute targets.
func (t *Table) Decode(word uint64, addr uint32) (*Descriptor, []Operand, bool) {
	for i := range t.entries {
		d := &t.entries[i]
		if d.Flags&EncodeOnly != 0 || word&d.Mask != d.Opcode {
			continue
		}
		ops := make([]Operand, len(d.Shape.Operands))
		for j, k := range d.Shape.Operands {
			ops[j].Kind = k
		}
		for _, f := range d.Shape.Fields {
			v := f.extract(word)
			if f.PCRel {
				v = int64(uint32(int64(addr) + v))
			}
			if f.Part == PartOffset {
				ops[f.Operand].Offset = int16(v)
			} else {
				ops[f.Operand].Value = v
			}
		}
		return d, ops, true
	}
	return nil, nil, false
}
