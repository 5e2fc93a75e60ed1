// script.go - Descriptor tables defined in Lua

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

Descriptor tables defined in Lua
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
Package script builds table-driven architectures from a Lua file. The file
sets a global "arch" table:

	arch = {
	  name = "tiny16", endian = "big", width = 2, align = 2,
	  registers = { "r0", "r1", "r2", "r3" },
	  aliases = { sp = 3 },
	  shapes = {
	    ri = { operands = { "reg", "imm" },
	           fields = { { op = 1, shift = 8, width = 2 },
	                      { op = 2, shift = 0, width = 8, signed = true } } },
	    br = { operands = { "imm" },
	           fields = { { op = 1, pcrel = true, align = 2, width = 9, signed = true,
	                        pieces = { { 1, 8, 0 } } } } },
	  },
	  instructions = {
	    { "nop", 0x0000, 0xffff, "none" },
	    { "li",  0x1000, 0xfc00, "ri" },
	    { "jmp", 0x2000, 0xff00, "br", encode_only = true },
	  },
	}

Operand numbers are 1-based. A field with pieces is a scattered immediate:
each piece {from, count, to} moves count bits starting at bit "from" of
the value to bit "to" of the word. Opcodes and masks wider than 53 bits must
be given as strings.

The Lua state only lives while the file is read; encoding never calls back
into Lua.
*/
package script

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/expr"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

// LoadFile reads a Lua architecture description.
func LoadFile(path string) (*asm.Machine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading architecture script")
	}
	return Load(path, src)
}

// Load runs src and converts its arch table.
func Load(name string, src []byte) (*asm.Machine, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return nil, errors.Wrapf(err, "%s: opening lua library", name)
		}
	}
	if err := L.DoString(string(src)); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	root, ok := L.GetGlobal("arch").(*lua.LTable)
	if !ok {
		return nil, errors.Errorf("%s: script does not set a global arch table", name)
	}
	m, err := convert(root)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return m, nil
}

func convert(root *lua.LTable) (*asm.Machine, error) {
	m := &asm.Machine{
		ArchName: str(root, "name"),
		Width:    int(num(root, "width")),
		Align:    int(num(root, "align")),
	}
	if m.ArchName == "" {
		return nil, errors.New("arch.name is required")
	}
	switch m.Width {
	case 1, 2, 4, 8:
	default:
		return nil, errors.Errorf("arch.width must be 1, 2, 4 or 8, got %d", m.Width)
	}
	if m.Align == 0 {
		m.Align = 1
	}
	order, err := memory.ParseEndian(str(root, "endian"))
	if err != nil {
		return nil, err
	}
	m.Order = order

	regs, err := registers(root)
	if err != nil {
		return nil, err
	}
	m.Regs = regs

	shapes, err := readShapes(root)
	if err != nil {
		return nil, err
	}
	entries, err := readInstructions(root, shapes)
	if err != nil {
		return nil, err
	}
	if m.Table, err = asm.NewTable(entries); err != nil {
		return nil, err
	}
	return m, nil
}

func str(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func num(t *lua.LTable, key string) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func boolean(t *lua.LTable, key string) bool {
	return lua.LVAsBool(t.RawGetString(key))
}

// integer accepts a Lua number or a numeric string such as "0xFFFF0000FFFF".
func integer(v lua.LValue, what string) (int64, error) {
	switch x := v.(type) {
	case lua.LNumber:
		return int64(x), nil
	case lua.LString:
		return expr.ParseNumber(string(x))
	}
	return 0, errors.Errorf("%s: expected a number, got %s", what, v.Type())
}

func list(t *lua.LTable, key string) (*lua.LTable, bool) {
	l, ok := t.RawGetString(key).(*lua.LTable)
	return l, ok
}

func registers(root *lua.LTable) (*asm.Registers, error) {
	l, ok := list(root, "registers")
	if !ok || l.Len() == 0 {
		return nil, errors.New("arch.registers must list the register names")
	}
	names := make([]string, 0, l.Len())
	for i := 1; i <= l.Len(); i++ {
		names = append(names, lua.LVAsString(l.RawGetInt(i)))
	}
	aliases := make(map[string]int)
	if a, ok := list(root, "aliases"); ok {
		var bad error
		a.ForEach(func(k, v lua.LValue) {
			n, ok := v.(lua.LNumber)
			if !ok || int(n) < 0 || int(n) >= len(names) {
				bad = errors.Errorf("alias %s does not name a register number", k)
				return
			}
			aliases[lua.LVAsString(k)] = int(n)
		})
		if bad != nil {
			return nil, bad
		}
	}
	return asm.NewRegisters(names, aliases), nil
}

var operandKinds = map[string]asm.OperandKind{
	"reg": asm.Register,
	"imm": asm.Immediate,
	"mem": asm.RegisterOffset,
}

var parts = map[string]asm.Part{
	"":       asm.PartValue,
	"value":  asm.PartValue,
	"base":   asm.PartBase,
	"offset": asm.PartOffset,
}

func readShapes(root *lua.LTable) (map[string]*asm.Shape, error) {
	shapes := map[string]*asm.Shape{"none": {Name: "none"}}
	l, ok := list(root, "shapes")
	if !ok {
		return shapes, nil
	}
	// Sorted so errors are reported in a stable order.
	var keys []string
	l.ForEach(func(k, _ lua.LValue) { keys = append(keys, lua.LVAsString(k)) })
	sort.Strings(keys)
	for _, name := range keys {
		t, ok := l.RawGetString(name).(*lua.LTable)
		if !ok {
			return nil, errors.Errorf("shape %s is not a table", name)
		}
		s, err := readShape(name, t)
		if err != nil {
			return nil, err
		}
		shapes[name] = s
	}
	return shapes, nil
}

func readShape(name string, t *lua.LTable) (*asm.Shape, error) {
	s := &asm.Shape{Name: name}
	if ops, ok := list(t, "operands"); ok {
		for i := 1; i <= ops.Len(); i++ {
			k, ok := operandKinds[lua.LVAsString(ops.RawGetInt(i))]
			if !ok {
				return nil, errors.Errorf("shape %s: operand %d: unknown kind %q", name, i, lua.LVAsString(ops.RawGetInt(i)))
			}
			s.Operands = append(s.Operands, k)
		}
	}
	fields, _ := list(t, "fields")
	if fields == nil {
		return s, nil
	}
	for i := 1; i <= fields.Len(); i++ {
		ft, ok := fields.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, errors.Errorf("shape %s: field %d is not a table", name, i)
		}
		f, err := readField(ft)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %s: field %d", name, i)
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func readField(t *lua.LTable) (asm.Field, error) {
	f := asm.Field{
		Operand: int(num(t, "op")) - 1,
		Shift:   uint(num(t, "shift")),
		Width:   uint(num(t, "width")),
		Signed:  boolean(t, "signed"),
		PCRel:   boolean(t, "pcrel"),
		Align:   int64(num(t, "align")),
		Name:    str(t, "name"),
	}
	p, ok := parts[strings.ToLower(str(t, "part"))]
	if !ok {
		return f, errors.Errorf("unknown part %q", str(t, "part"))
	}
	f.Part = p
	if v := t.RawGetString("low"); v != lua.LNil {
		low, err := integer(v, "low")
		if err != nil {
			return f, err
		}
		high, err := integer(t.RawGetString("high"), "high")
		if err != nil {
			return f, err
		}
		f.Low, f.High = low, high
	}
	if pieces, ok := list(t, "pieces"); ok {
		perm, err := permutation(f, pieces)
		if err != nil {
			return f, err
		}
		f.Perm = perm
	}
	return f, nil
}

type piece struct{ from, count, to uint }

// permutation turns a piece list into a scatter/gather pair.
func permutation(f asm.Field, l *lua.LTable) (*asm.Permutation, error) {
	if f.Width == 0 || f.Width > 64 {
		return nil, errors.Errorf("scattered field needs a width of 1 to 64, got %d", f.Width)
	}
	var ps []piece
	for i := 1; i <= l.Len(); i++ {
		pt, ok := l.RawGetInt(i).(*lua.LTable)
		if !ok || pt.Len() != 3 {
			return nil, errors.Errorf("piece %d must be {from, count, to}", i)
		}
		p := piece{
			from:  uint(lua.LVAsNumber(pt.RawGetInt(1))),
			count: uint(lua.LVAsNumber(pt.RawGetInt(2))),
			to:    uint(lua.LVAsNumber(pt.RawGetInt(3))),
		}
		if p.count == 0 || p.from+p.count > f.Width || p.to+p.count > 64 {
			return nil, errors.Errorf("piece %d {%d, %d, %d} does not fit", i, p.from, p.count, p.to)
		}
		ps = append(ps, p)
	}
	width, signed := f.Width, f.Signed
	return &asm.Permutation{
		Name:   fmt.Sprintf("%d pieces", len(ps)),
		Width:  width,
		Signed: signed,
		Scatter: func(v int64) uint64 {
			var w uint64
			for _, p := range ps {
				w |= ((uint64(v) >> p.from) & (1<<p.count - 1)) << p.to
			}
			return w
		},
		Gather: func(w uint64) int64 {
			var v uint64
			for _, p := range ps {
				v |= ((w >> p.to) & (1<<p.count - 1)) << p.from
			}
			if signed {
				return asm.SignExtend(v, width)
			}
			return int64(v)
		},
	}, nil
}

func readInstructions(root *lua.LTable, shapes map[string]*asm.Shape) ([]asm.Descriptor, error) {
	l, ok := list(root, "instructions")
	if !ok || l.Len() == 0 {
		return nil, errors.New("arch.instructions must list at least one instruction")
	}
	out := make([]asm.Descriptor, 0, l.Len())
	for i := 1; i <= l.Len(); i++ {
		t, ok := l.RawGetInt(i).(*lua.LTable)
		if !ok || t.Len() != 4 {
			return nil, errors.Errorf("instruction %d must be {mnemonic, opcode, mask, shape}", i)
		}
		mnemonic := lua.LVAsString(t.RawGetInt(1))
		opcode, err := integer(t.RawGetInt(2), mnemonic+" opcode")
		if err != nil {
			return nil, err
		}
		mask, err := integer(t.RawGetInt(3), mnemonic+" mask")
		if err != nil {
			return nil, err
		}
		shape, ok := shapes[lua.LVAsString(t.RawGetInt(4))]
		if !ok {
			return nil, errors.Errorf("%s: unknown shape %q", mnemonic, lua.LVAsString(t.RawGetInt(4)))
		}
		d := asm.Descriptor{Mnemonic: mnemonic, Opcode: uint64(opcode), Mask: uint64(mask), Shape: shape}
		if boolean(t, "encode_only") {
			d.Flags |= asm.EncodeOnly
		}
		out = append(out, d)
	}
	return out, nil
}
