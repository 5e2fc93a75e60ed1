// pseudo.go - li, la, call and tail

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

li, la, call and tail
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package riscv

import (
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/diag"
)

func expand(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand) (int, bool, error) {
	var (
		n   int
		err error
	)
	switch strings.ToLower(mnemonic) {
	case "li":
		n, err = loadImmediate(ctx, m, mnemonic, ops)
	case "la":
		n, err = loadAddress(ctx, m, mnemonic, ops)
	case "call":
		n, err = farJump(ctx, m, mnemonic, ops, ra)
	case "tail":
		n, err = farJump(ctx, m, mnemonic, ops, zero)
	default:
		return 0, false, nil
	}
	return n, true, err
}

// derived is an immediate computed from src, unresolved when src is.
func derived(src asm.Operand, v int64) asm.Operand {
	op := asm.Imm(v)
	op.Unresolved = src.Unresolved
	return op
}

// emitAll encodes a fixed sequence, stopping at the first error.
func emitAll(seq ...func() (int, error)) (int, error) {
	total := 0
	for _, f := range seq {
		n, err := f()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// hiLo splits a 32-bit quantity for a lui/auipc + addi pair. The low part
// is sign-extended, so the high part rounds up when bit 11 is set.
func hiLo(v int64) (hi, lo int64) {
	lo = asm.SignExtend(uint64(v)&0xfff, 12)
	hi = int64(uint32(v-lo)>>12) & 0xfffff
	return hi, lo
}

// loadImmediate picks the shortest li sequence for a known value. A value
// that was undefined on the first pass always takes lui + addi.
func loadImmediate(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand) (int, error) {
	if err := asm.CheckOperands(mnemonic, ops, asm.Register, asm.Immediate); err != nil {
		return 0, err
	}
	rd, imm := ops[0], ops[1]
	v := imm.Value
	if !imm.Unresolved && (v < -0x80000000 || v > 0xffffffff) {
		return 0, diag.OutOfRange("immediate", v, -0x80000000, 0xffffffff)
	}
	v = int64(int32(uint32(v)))
	hi, lo := hiLo(v)

	lui := func() (int, error) { return m.Emit(ctx, "lui", []asm.Operand{rd, derived(imm, hi)}) }
	addi := func() (int, error) { return m.Emit(ctx, "addi", []asm.Operand{rd, rd, derived(imm, lo)}) }

	switch {
	case ctx.ForceLong():
		return emitAll(lui, addi)
	case v >= -2048 && v <= 2047:
		return m.Emit(ctx, "addi", []asm.Operand{rd, asm.Reg(zero), imm})
	case lo == 0:
		return lui()
	}
	return emitAll(lui, addi)
}

// loadAddress always emits auipc + addi so the length never depends on the
// distance to the symbol.
func loadAddress(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand) (int, error) {
	if err := asm.CheckOperands(mnemonic, ops, asm.Register, asm.Immediate); err != nil {
		return 0, err
	}
	rd, sym := ops[0], ops[1]
	hi, lo := hiLo(sym.Value - int64(ctx.Address))
	return emitAll(
		func() (int, error) { return m.Emit(ctx, "auipc", []asm.Operand{rd, derived(sym, hi)}) },
		func() (int, error) { return m.Emit(ctx, "addi", []asm.Operand{rd, rd, derived(sym, lo)}) },
	)
}

// farJump is call (link in ra) and tail (no link). A resolved target within
// jal range gets a single jal; anything else goes through t1 with
// auipc + jalr.
func farJump(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand, link int) (int, error) {
	if err := asm.CheckOperands(mnemonic, ops, asm.Immediate); err != nil {
		return 0, err
	}
	dest := ops[0]
	off := int64(int32(uint32(dest.Value - int64(ctx.Address))))
	if !ctx.ForceLong() && !dest.Unresolved && off >= -(1<<20) && off < 1<<20 {
		return m.Emit(ctx, "jal", []asm.Operand{asm.Reg(link), dest})
	}
	hi, lo := hiLo(off)
	return emitAll(
		func() (int, error) { return m.Emit(ctx, "auipc", []asm.Operand{asm.Reg(t1), derived(dest, hi)}) },
		func() (int, error) { return m.Emit(ctx, "jalr", []asm.Operand{asm.Reg(link), asm.Reg(t1), derived(dest, lo)}) },
	)
}
