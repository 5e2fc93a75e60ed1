// script_test.go - Lua architecture tables tests

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

Lua architecture tables tests
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

const tiny16 = `
local regs = {}
for i = 0, 3 do regs[#regs + 1] = "r" .. i end

arch = {
  name = "tiny16", endian = "big", width = 2, align = 2,
  registers = regs,
  aliases = { sp = 3 },
  shapes = {
    ri = { operands = { "reg", "imm" },
           fields = { { op = 1, shift = 8, width = 2 },
                      { op = 2, shift = 0, width = 8, signed = true } } },
    rr = { operands = { "reg", "reg" },
           fields = { { op = 1, shift = 8, width = 2 },
                      { op = 2, shift = 0, width = 2 } } },
    mem = { operands = { "reg", "mem" },
            fields = { { op = 1, shift = 8, width = 2 },
                       { op = 2, part = "base", shift = 6, width = 2 },
                       { op = 2, part = "offset", shift = 0, width = 6, signed = true } } },
    br = { operands = { "imm" },
           fields = { { op = 1, pcrel = true, align = 2, width = 9, signed = true,
                        pieces = { { 1, 8, 0 } } } } },
  },
  instructions = {
    { "nop", 0x0000, 0xffff, "none" },
    { "li",  "$1000", 0xfc00, "ri" },
    { "mov", 0x1400, 0xfc00, "rr" },
    { "ld",  0x3000, 0xfc00, "mem" },
    { "jmp", 0x2000, 0xff00, "br" },
    { "b",   0x2000, 0xff00, "br", encode_only = true },
  },
}
`

const program = `
start:	nop
	li r1, -2
	mov sp, r1
	ld r2, 4(r3)
	jmp start
	b start
`

func assemble(t *testing.T, m *asm.Machine, src string) (*asm.Context, error) {
	t.Helper()
	s, err := asm.NewLoader(nil).Load("test.s", []byte(src))
	require.NoError(t, err)
	ctx := asm.NewContext(m, nil)
	return ctx, asm.Assemble(ctx, s)
}

func TestLoad(t *testing.T) {
	m, err := Load("tiny16.lua", []byte(tiny16))
	require.NoError(t, err)
	assert.Equal(t, "tiny16", m.Name())
	assert.Equal(t, memory.Big, m.Endian())
	assert.Equal(t, 2, m.Alignment())
	assert.Equal(t, 4, m.Regs.Count())
	n, ok := m.Regs.Register("sp")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Len(t, m.Table.Entries(), 6)
	assert.Equal(t, asm.EncodeOnly, m.Table.Entries()[5].Flags)
}

func TestAssemble(t *testing.T) {
	m, err := Load("tiny16.lua", []byte(tiny16))
	require.NoError(t, err)
	ctx, err := assemble(t, m, program)
	require.NoError(t, err)

	assert.EqualValues(t, 12, ctx.Address)
	assert.Equal(t, []byte{
		0x00, 0x00,
		0x11, 0xfe,
		0x17, 0x01,
		0x32, 0xc4,
		0x20, 0xfc,
		0x20, 0xfb,
	}, ctx.Image.ReadBytes(0, 12))
}

func TestDisassemble(t *testing.T) {
	m, err := Load("tiny16.lua", []byte(tiny16))
	require.NoError(t, err)
	ctx, err := assemble(t, m, program)
	require.NoError(t, err)

	var texts []string
	for _, ins := range asm.DisassembleRange(m, ctx.Image, 0, ctx.Address) {
		texts = append(texts, ins.Text)
	}
	assert.Equal(t, []string{
		"nop",
		"li r1, -2",
		"mov r3, r1",
		"ld r2, 4(r3)",
		"jmp 0x0",
		"jmp 0x0",
	}, texts)
}

func TestRangeChecks(t *testing.T) {
	m, err := Load("tiny16.lua", []byte(tiny16))
	require.NoError(t, err)
	for _, c := range []struct {
		src  string
		kind diag.Kind
	}{
		{"li r1, 128", diag.ValueOutOfRange},
		{"ld r1, 32(r2)", diag.ValueOutOfRange},
		{"jmp 3", diag.AlignmentViolation},
		{"jmp 512", diag.ValueOutOfRange},
		{"mov r1, 5", diag.IllegalOperandType},
	} {
		ctx, err := assemble(t, m, "\t"+c.src+"\n")
		require.Error(t, err, c.src)
		assert.Equal(t, c.kind, diag.KindOf(ctx.Diagnostics()[0]), c.src)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, c := range []struct {
		name, src, want string
	}{
		{"no table", `x = 1`, "global arch table"},
		{"syntax", `arch = {`, "syntax.lua"},
		{"no name", `arch = { width = 2, registers = {"r0"}, instructions = {{"nop", 0, 0, "none"}} }`, "arch.name"},
		{"width", `arch = { name = "w", width = 3, registers = {"r0"}, instructions = {{"nop", 0, 0, "none"}} }`, "arch.width"},
		{"endian", `arch = { name = "e", width = 2, endian = "middle", registers = {"r0"}, instructions = {{"nop", 0, 0, "none"}} }`, "byte order"},
		{"shape", `arch = { name = "s", width = 2, registers = {"r0"}, instructions = {{"nop", 0, 0, "rr"}} }`, `unknown shape "rr"`},
		{"kind", `arch = { name = "k", width = 2, registers = {"r0"},
			shapes = { x = { operands = { "float" } } },
			instructions = {{"nop", 0, 0, "x"}} }`, `unknown kind "float"`},
		{"piece", `arch = { name = "p", width = 2, registers = {"r0"},
			shapes = { x = { operands = { "imm" }, fields = { { op = 1, width = 4, pieces = { { 2, 4, 0 } } } } } },
			instructions = {{"j", 0, 0, "x"}} }`, "does not fit"},
		{"alias", `arch = { name = "a", width = 2, registers = {"r0"}, aliases = { sp = 4 },
			instructions = {{"nop", 0, 0, "none"}} }`, "alias sp"},
	} {
		_, err := Load(c.name+".lua", []byte(c.src))
		require.Error(t, err, c.name)
		assert.Contains(t, err.Error(), c.want, c.name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny16.lua")
	require.NoError(t, os.WriteFile(path, []byte(tiny16), 0o644))
	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny16", m.Name())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
