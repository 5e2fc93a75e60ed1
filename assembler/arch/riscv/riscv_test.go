// riscv_test.go - RISC-V target tests

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

RISC-V target tests
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package riscv

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/diag"
)

func assemble(src string) (*asm.Context, error) {
	s, err := asm.NewLoader(nil).Load("test.s", []byte(src))
	if err != nil {
		return nil, err
	}
	ctx := asm.NewContext(Arch, nil)
	return ctx, asm.Assemble(ctx, s)
}

func assembleString(t *testing.T, src string) *asm.Context {
	t.Helper()
	ctx, err := assemble(src)
	require.NoError(t, err)
	require.NotNil(t, ctx.Image)
	return ctx
}

// firstDiag returns the first diagnostic of the failed job.
func firstDiag(t *testing.T, src string) *diag.Error {
	t.Helper()
	ctx, err := assemble(src)
	require.Error(t, err)
	require.NotEmpty(t, ctx.Diagnostics())
	var d *diag.Error
	require.True(t, errors.As(ctx.Diagnostics()[0], &d), "not a diagnostic: %v", ctx.Diagnostics()[0])
	return d
}

func words(ctx *asm.Context, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = ctx.Image.Read32(uint32(4 * i))
	}
	return out
}

func TestPermutationRoundTrip(t *testing.T) {
	cases := []struct {
		perm *asm.Permutation
		step int64
		bits uint64
	}{
		{Branch13, 2, 0xfe000f80},
		{Jal21, 2, 0xfffff000},
		{Store12, 1, 0xfe000f80},
	}
	for _, c := range cases {
		f := asm.Field{Perm: c.perm}
		low, high := f.Bounds()
		for v := low; v <= high; v += c.step {
			w := c.perm.Scatter(v)
			if w&^c.bits != 0 {
				t.Fatalf("%s: %d scatters outside its field: %#x", c.perm.Name, v, w)
			}
			if got := c.perm.Gather(w); got != v {
				t.Fatalf("%s: %d came back as %d", c.perm.Name, v, got)
			}
		}
	}
}

func TestEncode_Basic(t *testing.T) {
	ctx := assembleString(t, `
	addi a0, a0, 2047
	add x10, x11, fp
	lw a0, 8(sp)
	lw a0, sp, 8
	sw a0, 8(sp)
	sw a0, -4(sp)
	lui a2, 0x12345
	fence
	fence 3, 3
	csrr a0, 0x300
	srai a1, a1, 31
	mul a0, a1, a2
`)
	assert.Equal(t, []uint32{
		0x7ff50513,
		0x00858533,
		0x00812503,
		0x00812503,
		0x00a12423,
		0xfea12e23,
		0x12345637,
		0x0ff0000f,
		0x0330000f,
		0x30002573,
		0x41f5d593,
		0x02c58533,
	}, words(ctx, 12))
}

func TestEncode_ImmediateRange(t *testing.T) {
	d := firstDiag(t, "\taddi a0, a0, 2048\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
	assert.EqualValues(t, -2048, d.Low)
	assert.EqualValues(t, 2047, d.High)
	assert.Equal(t, 1, d.Line)

	d = firstDiag(t, "\taddi a0, a0, -2049\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)

	d = firstDiag(t, "\tslli a0, a0, 32\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
	assert.EqualValues(t, 31, d.High)
}

func TestEncode_Branches(t *testing.T) {
	ctx := assembleString(t, `
start:	beq a0, a1, start
	bne a0, zero, skip
	nop
skip:
loop:	nop
	bnez a0, loop
	j skip
`)
	assert.Equal(t, []uint32{
		0x00b50063,
		0x00051463,
		0x00000013,
		0x00000013,
		0xfe051ee3,
		0xff9ff06f,
	}, words(ctx, 6))
}

func TestEncode_BranchLimits(t *testing.T) {
	ctx := assembleString(t, "\tbeq a0, a1, 4094\n\tbeq a0, a1, 4-4096\n")
	assert.Equal(t, []uint32{0x7eb50fe3, 0x80b50063}, words(ctx, 2))

	d := firstDiag(t, "\tbeq a0, a1, 4096\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
	assert.EqualValues(t, -4096, d.Low)
	assert.EqualValues(t, 4095, d.High)

	d = firstDiag(t, "\tbeq a0, a1, 3\n")
	assert.Equal(t, diag.AlignmentViolation, d.Kind)

	d = firstDiag(t, "\tjal ra, 0x100000\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)

	d = firstDiag(t, "\tdb 1\n\tnop\n")
	assert.Equal(t, diag.AlignmentViolation, d.Kind)
}

func TestEncode_SwappedBranchAliases(t *testing.T) {
	ctx := assembleString(t, "\tbgt a0, a1, 0\n\tblt a1, a0, 4\n\tblez a0, 8\n\tbge zero, a0, 12\n")
	// Each pair encodes the same instruction with a zero offset.
	assert.Equal(t, []uint32{0x00a5c063, 0x00a5c063, 0x00a05063, 0x00a05063}, words(ctx, 4))
}

func TestLoadImmediate(t *testing.T) {
	for _, c := range []struct {
		src  string
		want []uint32
	}{
		{"li a0, 5", []uint32{0x00500513}},
		{"li a0, -1", []uint32{0xfff00513}},
		{"li a0, 0xffffffff", []uint32{0xfff00513}},
		{"li a2, 0x10000", []uint32{0x00010637}},
		{"li a0, 0x12345678", []uint32{0x12345537, 0x67850513}},
		{"li a1, 0x12345800", []uint32{0x123465b7, 0x80058593}},
	} {
		ctx := assembleString(t, "\t"+c.src+"\n")
		assert.EqualValues(t, 4*len(c.want), ctx.Address, c.src)
		assert.Equal(t, c.want, words(ctx, len(c.want)), c.src)
	}

	d := firstDiag(t, "\tli a0, 0x100000000\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
}

func TestLoadImmediate_ForwardReferenceStaysLong(t *testing.T) {
	ctx := assembleString(t, `
	li a0, target
	nop
target:
`)
	// target is 12, which alone would fit a single addi.
	assert.EqualValues(t, 12, ctx.Address)
	assert.Equal(t, []uint32{0x00000537, 0x00c50513, 0x00000013}, words(ctx, 3))
	assert.NotZero(t, ctx.Hints()[0]&asm.ForceLong)

	v, err := ctx.Symbols.Lookup("target")
	require.NoError(t, err)
	assert.EqualValues(t, 12, v)
}

func TestLoadImmediate_BackwardReferenceIsCompact(t *testing.T) {
	ctx := assembleString(t, `
target:	nop
	li a0, target
`)
	assert.EqualValues(t, 8, ctx.Address)
	assert.Equal(t, []uint32{0x00000013, 0x00000513}, words(ctx, 2))
	assert.Empty(t, ctx.Hints())
}

func TestLoadImmediate_OuterValueBeforeInnerEqu(t *testing.T) {
	ctx := assembleString(t, `
val = 5
	.scope
	li a0, val
	addi a1, zero, val
val equ 0x12345
	.ends
`)
	assert.EqualValues(t, 8, ctx.Address)
	assert.Equal(t, []uint32{0x00500513, 0x00500593}, words(ctx, 2))
}

func TestLoadAddress(t *testing.T) {
	ctx := assembleString(t, `
	nop
	la a0, data
	nop
data:	dc.l $11223344
`)
	assert.Equal(t, []uint32{0x00000013, 0x00000517, 0x00c50513, 0x00000013, 0x11223344}, words(ctx, 5))
}

func TestCallAndTail(t *testing.T) {
	ctx := assembleString(t, `
func:	ret
	call func
`)
	assert.Equal(t, []uint32{0x00008067, 0xffdff0ef}, words(ctx, 2))

	ctx = assembleString(t, `
	call func
	nop
func:	ret
`)
	assert.Equal(t, []uint32{0x00000317, 0x00c300e7, 0x00000013, 0x00008067}, words(ctx, 4))

	ctx = assembleString(t, `
	tail func
	nop
func:	ret
`)
	assert.Equal(t, []uint32{0x00000317, 0x00c30067}, words(ctx, 2))
}

func TestAtomics(t *testing.T) {
	ctx := assembleString(t, `
	lr.w a0, (a1)
	lr.w.aq a0, (a1)
	sc.w.rl a0, a2, (a1)
`)
	assert.Equal(t, []uint32{0x1005a52f, 0x1405a52f, 0x1ac5a52f}, words(ctx, 3))

	d := firstDiag(t, "\tlr.w a0, 4(a1)\n")
	assert.Equal(t, diag.ValueOutOfRange, d.Kind)
}

func TestOperandErrors(t *testing.T) {
	for _, c := range []struct {
		src  string
		kind diag.Kind
	}{
		{"frob a0", diag.UnknownInstruction},
		{"addi a0, a1", diag.OperandCountMismatch},
		{"add a0, a1, 5", diag.IllegalOperandType},
		{"lw a0, 5", diag.IllegalOperandType},
		{"jal a0, a1, a2", diag.UnknownOperandCombination},
		{"li a0", diag.OperandCountMismatch},
		{"call a0", diag.IllegalOperandType},
		{"lw a0, undefined(sp)", diag.UndefinedSymbol},
	} {
		d := firstDiag(t, "\t"+c.src+"\n")
		assert.Equal(t, c.kind, d.Kind, c.src)
	}
}

func TestDisassemble(t *testing.T) {
	ctx := assembleString(t, `
	addi a0, a0, 2047
	mv a1, a0
	lui a2, 0x12345
	lw a0, 8(sp)
	sw a0, -4(sp)
	bgt a0, a1, 0
	ret
	csrr a0, 0x300
	lr.w.aqrl a0, (a1)
	dc.l $ffffffff
`)
	var texts []string
	for _, ins := range asm.DisassembleRange(Arch, ctx.Image, 0, ctx.Address) {
		texts = append(texts, ins.Text)
	}
	assert.Equal(t, []string{
		"addi a0, a0, 2047",
		"mv a1, a0",
		"lui a2, 0x12345",
		"lw a0, 8(sp)",
		"sw a0, -4(sp)",
		"blt a1, a0, 0x0",
		"ret",
		"csrr a0, 0x300",
		"lr.w.aqrl a0, 0(a1)",
		"dc.b $FF,$FF,$FF,$FF",
	}, texts)
}

func TestRegistered(t *testing.T) {
	a, err := asm.Lookup("RISCV")
	require.NoError(t, err)
	assert.Equal(t, Arch, a)
	assert.Equal(t, 4, a.Alignment())
}
