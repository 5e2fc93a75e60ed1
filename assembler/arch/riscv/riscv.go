// riscv.go - RISC-V architecture registration and operand formatting

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

RISC-V architecture registration and operand formatting
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
Package riscv is the RV32IM target. Its immediates are the awkward case for
a table-driven encoder: branch and jump offsets are scattered across the
word, and li, la, call and tail pick their length from values that may only
be known on the second pass.
*/
package riscv

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

const (
	aqBit = 1 << 26
	rlBit = 1 << 25
)

// Arch is the registered "riscv" architecture.
var Arch = &asm.Machine{
	ArchName:      "riscv",
	Order:         memory.Little,
	Width:         4,
	Align:         4,
	Regs:          Registers,
	Table:         table,
	Split:         splitOrdering,
	Expand:        expand,
	Decorate:      decorate,
	FormatOperand: formatOperand,
}

func init() {
	asm.MustRegister(Arch)
}

func atomic(mnemonic string) bool {
	return strings.HasPrefix(mnemonic, "lr.") || strings.HasPrefix(mnemonic, "sc.")
}

// splitOrdering strips the .aq, .rl and .aqrl suffixes of lr and sc.
func splitOrdering(mnemonic string) (string, uint64, error) {
	m := strings.ToLower(mnemonic)
	if !atomic(m) {
		return mnemonic, 0, nil
	}
	for _, s := range []struct {
		suffix string
		bits   uint64
	}{{".aqrl", aqBit | rlBit}, {".aq", aqBit}, {".rl", rlBit}} {
		if strings.HasSuffix(m, s.suffix) {
			return strings.TrimSuffix(m, s.suffix), s.bits, nil
		}
	}
	return mnemonic, 0, nil
}

func decorate(d *asm.Descriptor, word uint64, mnemonic string) string {
	if !atomic(mnemonic) {
		return mnemonic
	}
	switch word & (aqBit | rlBit) {
	case aqBit | rlBit:
		return mnemonic + ".aqrl"
	case aqBit:
		return mnemonic + ".aq"
	case rlBit:
		return mnemonic + ".rl"
	}
	return mnemonic
}

// formatOperand prints upper immediates and CSR numbers in hex.
func formatOperand(m *asm.Machine, d *asm.Descriptor, i int, op asm.Operand) string {
	if op.Kind == asm.Immediate {
		if d.Shape == shapeU {
			return fmt.Sprintf("0x%x", op.Value)
		}
		for _, f := range d.Shape.Fields {
			if f.Operand == i && f.Name == "csr" {
				return fmt.Sprintf("0x%03x", op.Value)
			}
		}
	}
	return asm.DefaultOperand(m, d, i, op)
}
