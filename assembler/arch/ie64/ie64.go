// ie64.go - IE64 architecture: size suffixes, li and disassembly format

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

IE64 architecture: size suffixes, li and disassembly format
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

// Package ie64 is the 64-bit IE64 RISC target of the Intuition Engine.
package ie64

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

var sizeSuffix = [4]string{".b", ".w", ".l", ".q"}

// Arch is the registered "ie64" architecture.
var Arch = &asm.Machine{
	ArchName:      "ie64",
	Order:         memory.Little,
	Width:         8,
	Align:         1,
	Regs:          Registers,
	Table:         table,
	Split:         splitSize,
	Expand:        expand,
	Finish:        finish,
	Decorate:      decorate,
	FormatOperand: formatOperand,
}

func init() {
	asm.MustRegister(Arch)
}

// splitSize maps a size suffix to the size field. Sized instructions
// without a suffix are 64-bit.
func splitSize(mnemonic string) (string, uint64, error) {
	m := strings.ToLower(mnemonic)
	if sized[m] {
		return m, sizeQ, nil
	}
	for i, s := range sizeSuffix {
		b := strings.TrimSuffix(m, s)
		if b == m {
			continue
		}
		if !sized[b] {
			if table.Has(b) {
				return "", 0, diag.Newf(diag.UnknownInstruction, "%s takes no size suffix", b)
			}
			return mnemonic, 0, nil
		}
		return b, uint64(i) << sizeShift, nil
	}
	return mnemonic, 0, nil
}

// finish sets X on loads and stores with a displacement.
func finish(d *asm.Descriptor, ops []asm.Operand, word uint64) uint64 {
	if (d.Mnemonic == "load" || d.Mnemonic == "store") && ops[1].Offset != 0 {
		word |= xBit
	}
	return word
}

func decorate(d *asm.Descriptor, word uint64, mnemonic string) string {
	if sized[mnemonic] {
		return mnemonic + sizeSuffix[(word>>sizeShift)&3]
	}
	return mnemonic
}

func formatOperand(m *asm.Machine, d *asm.Descriptor, i int, op asm.Operand) string {
	switch op.Kind {
	case asm.RegisterOffset:
		if op.Offset == 0 {
			return fmt.Sprintf("(%s)", m.Regs.Name(int(op.Value)))
		}
		return fmt.Sprintf("%d(%s)", op.Offset, m.Regs.Name(int(op.Value)))
	case asm.Immediate:
		if d.Shape.IsTarget(i) {
			return fmt.Sprintf("$%06X", uint32(op.Value))
		}
		if d.Mnemonic == "la" {
			return fmt.Sprintf("$%X", uint32(op.Value))
		}
		if d.Mnemonic == "wait" {
			return fmt.Sprintf("#%d", uint32(op.Value))
		}
		return fmt.Sprintf("#$%X", uint32(op.Value))
	}
	return asm.DefaultOperand(m, d, i, op)
}

func expand(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand) (int, bool, error) {
	if strings.ToLower(mnemonic) != "li" {
		return 0, false, nil
	}
	n, err := loadImmediate(ctx, m, mnemonic, ops)
	return n, true, err
}

// loadImmediate emits move.l for values that fit 32 bits unsigned and
// move.l + movt otherwise, or when the value was undefined on the first
// pass.
func loadImmediate(ctx *asm.Context, m *asm.Machine, mnemonic string, ops []asm.Operand) (int, error) {
	if err := asm.CheckOperands(mnemonic, ops, asm.Register, asm.Immediate); err != nil {
		return 0, err
	}
	rd, v := ops[0], ops[1]
	u := uint64(v.Value)
	lo := asm.Imm(int64(uint32(u)))
	lo.Unresolved = v.Unresolved

	n, err := m.Emit(ctx, "move.l", []asm.Operand{rd, lo})
	if err != nil || (!ctx.ForceLong() && u <= 0xFFFFFFFF) {
		return n, err
	}
	hi := asm.Imm(int64(uint32(u >> 32)))
	hi.Unresolved = v.Unresolved
	n2, err := m.Emit(ctx, "movt", []asm.Operand{rd, hi})
	if err != nil {
		return 0, err
	}
	return n + n2, nil
}
