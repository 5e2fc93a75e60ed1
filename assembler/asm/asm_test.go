// asm_test.go - Assembler core tests

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

Assembler core tests
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

// ---------------------------------------------------------------------------
// Test architecture
// ---------------------------------------------------------------------------
//
// toy is a 32-bit little-endian machine with eight registers. The opcode is
// the low byte, rd sits at bit 8, rs at bit 11 and a 16-bit immediate or
// offset at bit 16. Branches carry a 24-bit PC-relative offset at bit 8.

var (
	toyRegs = NewRegisters([]string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}, map[string]int{"sp": 7})

	toyRd    = Field{Operand: 0, Shift: 8, Width: 3}
	toyImm16 = Field{Operand: 1, Shift: 16, Width: 16, Signed: true}

	toyNone   = &Shape{Name: "none"}
	toyRI     = &Shape{Name: "ri", Operands: []OperandKind{Register, Immediate}, Fields: []Field{toyRd, toyImm16}}
	toyRIHalf = &Shape{Name: "ri-half", Operands: []OperandKind{Register, Immediate}, Fields: []Field{toyRd, {Operand: 1, Shift: 16, Width: 16}}}
	toyRR     = &Shape{Name: "rr", Operands: []OperandKind{Register, Register}, Fields: []Field{toyRd, {Operand: 1, Shift: 11, Width: 3}}}
	toyMem    = &Shape{Name: "mem", Operands: []OperandKind{Register, RegisterOffset}, Fields: []Field{
		toyRd,
		{Operand: 1, Part: PartBase, Shift: 11, Width: 3},
		{Operand: 1, Part: PartOffset, Shift: 16, Width: 16, Signed: true},
	}}
	toyBranch = &Shape{Name: "branch", Operands: []OperandKind{Immediate}, Fields: []Field{
		{Operand: 0, Shift: 8, Width: 24, Signed: true, PCRel: true, Align: 4},
	}}

	toyTable = MustTable([]Descriptor{
		{Mnemonic: "nop", Opcode: 0x00000000, Mask: 0xFFFFFFFF, Shape: toyNone},
		{Mnemonic: "mov", Opcode: 0x01, Mask: 0xFF, Shape: toyRI},
		{Mnemonic: "mov", Opcode: 0x02, Mask: 0xFF, Shape: toyRR},
		{Mnemonic: "ld", Opcode: 0x03, Mask: 0xFF, Shape: toyMem},
		{Mnemonic: "br", Opcode: 0x04, Mask: 0xFF, Shape: toyBranch},
		{Mnemonic: "movh", Opcode: 0x05, Mask: 0xFF, Shape: toyRIHalf},
		{Mnemonic: "movl", Opcode: 0x06, Mask: 0xFF, Shape: toyRIHalf},
		{Mnemonic: "jmp", Opcode: 0x04, Mask: 0xFF, Shape: toyBranch, Flags: EncodeOnly},
	})

	toy = &Machine{
		ArchName: "toy",
		Order:    memory.Little,
		Width:    4,
		Align:    4,
		Regs:     toyRegs,
		Table:    toyTable,
		Expand:   toyExpand,
	}
)

func toyExpand(ctx *Context, m *Machine, mnemonic string, ops []Operand) (int, bool, error) {
	switch strings.ToLower(mnemonic) {
	case "ldi":
		if err := CheckOperands(mnemonic, ops, Register, Immediate); err != nil {
			return 0, true, err
		}
		v := ops[1].Value
		if !ctx.ForceLong() && v >= -32768 && v <= 32767 {
			n, err := m.Emit(ctx, "mov", ops)
			return n, true, err
		}
		n1, err := m.Emit(ctx, "movh", []Operand{ops[0], Imm((v >> 16) & 0xFFFF)})
		if err != nil {
			return 0, true, err
		}
		n2, err := m.Emit(ctx, "movl", []Operand{ops[0], Imm(v & 0xFFFF)})
		return n1 + n2, true, err
	case "grow":
		// A deliberately unstable instruction.
		n := 4 * ctx.Pass
		ctx.Reserve(n)
		return n, true, nil
	}
	return 0, false, nil
}

func init() {
	MustRegister(toy)
	big := *toy
	big.ArchName = "toybe"
	big.Order = memory.Big
	MustRegister(&big)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func assemble(src string) (*Context, error) {
	s, err := NewLoader(nil).Load("test.s", []byte(src))
	if err != nil {
		return nil, err
	}
	ctx := NewContext(toy, nil)
	return ctx, Assemble(ctx, s)
}

func assembleString(t *testing.T, src string) *Context {
	t.Helper()
	ctx, err := assemble(src)
	require.NoError(t, err)
	require.NotNil(t, ctx.Image)
	return ctx
}

func assembleExpectError(t *testing.T, src string, kind diag.Kind) *Context {
	t.Helper()
	ctx, err := assemble(src)
	require.Error(t, err)
	require.NotNil(t, ctx)
	assert.Nil(t, ctx.Image, "failed job must not produce an image")
	for _, e := range ctx.Diagnostics() {
		if diag.KindOf(e) == kind {
			return ctx
		}
	}
	t.Fatalf("expected a %s diagnostic, got: %v", kind, err)
	return nil
}

func image32(ctx *Context, addr uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = ctx.Image.Read32(addr + uint32(4*i))
	}
	return out
}

func symbol(t *testing.T, ctx *Context, name string) int64 {
	t.Helper()
	s, ok := ctx.Symbols.Find(name)
	require.Truef(t, ok, "symbol %s not defined", name)
	return s.Value
}

// ---------------------------------------------------------------------------
// Encoding through the driver
// ---------------------------------------------------------------------------

func TestAssemble_BasicEncodings(t *testing.T) {
	ctx := assembleString(t, `
start:	mov r1, 5
	mov r2, r3
	ld r1, 8(r2)
	ld r1, (sp)
	br start
	nop
`)
	assert.Equal(t, []uint32{0x00050101, 0x00001A02, 0x00081103, 0x00003903, 0xFFFFF004, 0}, image32(ctx, 0, 6))
	assert.EqualValues(t, 0, symbol(t, ctx, "start"))
}

func TestAssemble_ForwardBranch(t *testing.T) {
	ctx := assembleString(t, `
	br done
	nop
done:	nop
`)
	assert.EqualValues(t, 0x00000804, ctx.Image.Read32(0))
	assert.EqualValues(t, 8, symbol(t, ctx, "done"))
}

func TestAssemble_LocalLabels(t *testing.T) {
	ctx := assembleString(t, `
first:
.loop:	br .loop
second:
.loop:	br .loop
	br first.loop
`)
	assert.EqualValues(t, 0, symbol(t, ctx, "first.loop"))
	assert.EqualValues(t, 4, symbol(t, ctx, "second.loop"))
	assert.Equal(t, []uint32{0x04, 0x04, 0xFFFFF804}, image32(ctx, 0, 3))
}

func TestAssemble_LocalLabelWithoutGlobal(t *testing.T) {
	assembleExpectError(t, ".x: nop\n", diag.LexicalError)
}

// ---------------------------------------------------------------------------
// Forced-long sizing
// ---------------------------------------------------------------------------

func TestAssemble_ForwardPseudoStaysLong(t *testing.T) {
	ctx := assembleString(t, `
	ldi r1, small
back:	ldi r2, 5
	ldi r3, back
small	equ 3
`)
	// The forward reference fixes the long form even though 3 would fit.
	assert.Equal(t, []uint32{0x00000105, 0x00030106, 0x00050201, 0x00080301}, image32(ctx, 0, 4))
	assert.EqualValues(t, 8, symbol(t, ctx, "back"))

	hints := ctx.Hints()
	assert.Equal(t, ForceLong, hints[0])
	assert.NotContains(t, hints, uint32(8))
	assert.NotContains(t, hints, uint32(12))
}

func TestAssemble_LargeValueUsesLongForm(t *testing.T) {
	ctx := assembleString(t, "\tldi r1, $12345\n")
	assert.Equal(t, []uint32{0x00010105, 0x23450106}, image32(ctx, 0, 2))
	assert.Empty(t, ctx.Hints())
}

func TestAssemble_PassSizeMismatchAborts(t *testing.T) {
	ctx := assembleExpectError(t, "\tgrow\n\tnop\n", diag.PassConsistencyError)
	assert.Len(t, ctx.Diagnostics(), 1)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestAssemble_OperandErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.Kind
	}{
		{"\tfoo r1\n", diag.UnknownInstruction},
		{"\tnop r1\n", diag.OperandCountMismatch},
		{"\tld r1\n", diag.OperandCountMismatch},
		{"\tld r1, r2\n", diag.IllegalOperandType},
		{"\tmov 1, 2\n", diag.UnknownOperandCombination},
		{"\tmov r1, 32768\n", diag.ValueOutOfRange},
		{"\tbr 6\n", diag.AlignmentViolation},
		{"\tdb 1\n\tnop\n", diag.AlignmentViolation},
		{"\tmov r1, 1/0\n", diag.ArithmeticError},
		{"\tmov r1, nowhere\n", diag.UndefinedSymbol},
		{"x equ 1\nx equ 2\n", diag.DuplicateSymbol},
		{"\tmov r1, 5 r2\n", diag.LexicalError},
		{"\t.scope\n\tnop\n", diag.LexicalError},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.src), func(t *testing.T) {
			assembleExpectError(t, tt.src, tt.kind)
		})
	}
}

func TestAssemble_RangeBounds(t *testing.T) {
	ctx := assembleExpectError(t, "\tmov r1, -32769\n", diag.ValueOutOfRange)
	var d *diag.Error
	require.ErrorAs(t, ctx.Diagnostics()[0], &d)
	assert.EqualValues(t, -32768, d.Low)
	assert.EqualValues(t, 32767, d.High)
	assert.Contains(t, d.Msg, "lower bound")
	assert.ErrorIs(t, d, diag.ErrValueOutOfRange)
}

func TestAssemble_CollectsErrorsWithPositions(t *testing.T) {
	ctx, err := assemble(`	mov r1, later
	foo r1
	mov r1, 99999
later:	nop
`)
	require.Error(t, err)
	errs := ctx.Diagnostics()
	require.Len(t, errs, 2)

	var d *diag.Error
	require.ErrorAs(t, errs[0], &d)
	assert.Equal(t, diag.UnknownInstruction, d.Kind)
	assert.Equal(t, 2, d.Line)
	require.ErrorAs(t, errs[1], &d)
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
	assert.Equal(t, 3, d.Line)
	assert.Contains(t, err.Error(), "test.s:3")
}

func TestAssemble_UndefinedOnlyOnSecondPass(t *testing.T) {
	ctx := assembleExpectError(t, "\tnop\n\tbr missing\n", diag.UndefinedSymbol)
	assert.Equal(t, 2, ctx.Pass)
}

// ---------------------------------------------------------------------------
// Symbols and scopes
// ---------------------------------------------------------------------------

func TestAssemble_Assignments(t *testing.T) {
	ctx := assembleString(t, `
a	equ 3
b	= a + 1
b	= b * 2
	mov r1, b
	mov r2, late
	.equ c, a << 4
	.set b, 1
	mov r3, c
late	equ 7
`)
	assert.Equal(t, []uint32{0x00080101, 0x00070201, 0x00300301}, image32(ctx, 0, 3))
	assert.EqualValues(t, 1, symbol(t, ctx, "b"))
}

func TestAssemble_SiblingScopes(t *testing.T) {
	ctx := assembleString(t, `
	.scope
x	equ 1
	mov r1, x
	.ends
	.scope
x	equ 2
	mov r1, x
	br fwd
	nop
fwd:
	.ends
`)
	assert.Equal(t, []uint32{0x00010101, 0x00020101, 0x00000804}, image32(ctx, 0, 3))
	// Closed-scope records stay stored, and the second pass reuses them.
	assert.Equal(t, 3, ctx.Symbols.Count())
	_, ok := ctx.Symbols.Find("x")
	assert.False(t, ok)
}

func TestAssemble_ShadowDefinedLaterInScope(t *testing.T) {
	// Before its own definition the inner val must still mean the outer one
	// on both passes.
	ctx := assembleString(t, `
val	= 5
	.scope
	ldi r1, val
	mov r2, val
val	equ $12345
	ldi r3, val
	.ends
`)
	assert.Equal(t, []uint32{0x00050101, 0x00050201, 0x00010305, 0x23450306}, image32(ctx, 0, 4))
	assert.EqualValues(t, 16, ctx.Address)
	assert.EqualValues(t, 5, symbol(t, ctx, "val"))
}

func TestAssemble_OuterBindingUntilScopeDefinesOwn(t *testing.T) {
	ctx := assembleString(t, `
outer:	nop
	.scope
	br outer
	nop
outer:	br outer
	.ends
`)
	assert.Equal(t, []uint32{0, 0xFFFFFC04, 0, 0x00000004}, image32(ctx, 0, 4))
}

func TestAssemble_ScopeEndWithoutStart(t *testing.T) {
	_, err := assemble("\t.ends\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope end without matching scope start")
}

// ---------------------------------------------------------------------------
// Directives
// ---------------------------------------------------------------------------

func TestAssemble_DataDirectives(t *testing.T) {
	ctx := assembleString(t, `
	org $100
	db 1, "AB", -1
	dw $1234
	align 4
	dl $deadbeef
	ds 2
	dq 1
	ds.w 1, $ABCD
`)
	want := []byte{
		0x01, 0x41, 0x42, 0xFF,
		0x34, 0x12, 0x00, 0x00,
		0xEF, 0xBE, 0xAD, 0xDE,
		0x00, 0x00,
		0x01, 0, 0, 0, 0, 0, 0, 0,
		0xCD, 0xAB,
	}
	low, _, ok := ctx.Image.Range()
	require.True(t, ok)
	assert.EqualValues(t, 0x100, low)
	assert.Equal(t, want, ctx.Image.Bytes())
}

func TestAssemble_DataRange(t *testing.T) {
	assembleExpectError(t, "\tdb 256\n", diag.ValueOutOfRange)
	assembleExpectError(t, "\tdw -32769\n", diag.ValueOutOfRange)
	assembleExpectError(t, "\tdw \"no\"\n", diag.IllegalOperandType)
}

func TestAssemble_SpaceFillRange(t *testing.T) {
	assembleExpectError(t, "\tds.b 4, $1234\n", diag.ValueOutOfRange)
	assembleExpectError(t, "\tds.w 2, -32769\n", diag.ValueOutOfRange)
	ctx := assembleString(t, "\tds.b 4, -1\n")
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, ctx.Image.Bytes())
}

func TestAssemble_FailedDataKeepsLaterAddresses(t *testing.T) {
	ctx := assembleExpectError(t, "\tdc.l 1, nosuch, 3\nafter:\tnop\n\tnop\n", diag.UndefinedSymbol)
	require.Len(t, ctx.Diagnostics(), 1)
	assert.EqualValues(t, 12, symbol(t, ctx, "after"))
}

func TestAssemble_OrgNeedsKnownValue(t *testing.T) {
	assembleExpectError(t, "\torg later\nlater:\n", diag.UndefinedSymbol)
}

func TestAssemble_ArchSwitch(t *testing.T) {
	ctx := assembleString(t, `
	mov r1, 5
	.arch toybe
	mov r1, 5
`)
	assert.Equal(t, []byte{0x01, 0x01, 0x05, 0x00, 0x00, 0x05, 0x01, 0x01}, ctx.Image.Bytes())
	assert.Equal(t, "toybe", ctx.Arch.Name())
}

func TestAssemble_Incbin(t *testing.T) {
	s, err := NewLoader(nil).Load("test.s", []byte("\tincbin \"data.bin\", 1, 2\n"))
	require.NoError(t, err)
	ctx := NewContext(toy, nil)
	ctx.ReadFile = func(name string) ([]byte, error) {
		if name == "data.bin" {
			return []byte{9, 8, 7, 6}, nil
		}
		return nil, assert.AnError
	}
	require.NoError(t, Assemble(ctx, s))
	assert.Equal(t, []byte{8, 7}, ctx.Image.Bytes())
}

// ---------------------------------------------------------------------------
// Export table and listing
// ---------------------------------------------------------------------------

func TestAssemble_ExportTable(t *testing.T) {
	ctx := assembleString(t, `
entry:	nop
	export entry, val
val	equ 42
`)
	table := NewExportTable(ctx)
	require.Len(t, table.Symbols, 2)
	assert.Equal(t, "entry", table.Symbols[0].Name)
	assert.Equal(t, ExportedSymbol{Name: "val", Value: 42, Hex: "$0000002A"}, table.Symbols[1])

	var yml strings.Builder
	require.NoError(t, table.Write(&yml, "yaml"))
	assert.Contains(t, yml.String(), "name: val")
	assert.Contains(t, yml.String(), "arch: toy")

	var js strings.Builder
	require.NoError(t, table.Write(&js, "json"))
	back, err := ReadExportTable(strings.NewReader(js.String()), "json")
	require.NoError(t, err)
	assert.Equal(t, table, back)

	assert.Error(t, table.Write(&js, "xml"))
}

func TestAssemble_ExportErrors(t *testing.T) {
	assembleExpectError(t, "\texport ghost\n", diag.UndefinedSymbol)

	_, err := assemble(`
entry:	nop
	.scope
entry	equ 1
	export entry
	.ends
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadowed")
}

func TestListing(t *testing.T) {
	s, err := NewLoader(nil).Load("test.s", []byte("start:\n\tmov r1, 5 ; load\n\tldi r2, $12345\n\tdb 1, 2\n"))
	require.NoError(t, err)
	ctx := NewContext(toy, nil)
	ctx.Listing = &Listing{}
	require.NoError(t, Assemble(ctx, s))
	require.Len(t, ctx.Listing.Entries, 4)

	var out strings.Builder
	_, err = ctx.Listing.WriteTo(&out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasSuffix(lines[0], "start:"))
	assert.Contains(t, lines[1], "00000000  01 01 05 00")
	assert.Contains(t, lines[1], "mov r1, 5")
	assert.Contains(t, lines[1], "; load")
	assert.Contains(t, lines[2], "00000004  05 02 01 00")
	assert.Contains(t, lines[2], "movh r2, 1")
	assert.Contains(t, lines[3], "00000008  06 02 45 23")
	assert.Contains(t, lines[3], "movl r2, 9029")
	assert.Contains(t, lines[4], "0000000C  01 02")
}
