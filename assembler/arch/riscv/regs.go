// regs.go - RISC-V integer registers and immediate permutations

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

RISC-V integer registers and immediate permutations
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package riscv

import (
	"fmt"

	"github.com/intuitionamiga/ieasm/assembler/asm"
)

// ABI names, printed by the disassembler.
var abiNames = []string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Registers accepts both xN and ABI names, plus fp for s0.
var Registers = func() *asm.Registers {
	aliases := map[string]int{"fp": 8}
	for i := 0; i < 32; i++ {
		aliases[fmt.Sprintf("x%d", i)] = i
	}
	return asm.NewRegisters(abiNames, aliases)
}()

const (
	zero = 0
	ra   = 1
	t1   = 6
)

func bit(v uint64, from, to uint) uint64 {
	return ((v >> from) & 1) << to
}

func bits(v uint64, from, n, to uint) uint64 {
	return ((v >> from) & (1<<n - 1)) << to
}

// Branch13 is the B-type offset: imm[12] at bit 31, imm[10:5] at 25,
// imm[4:1] at 8 and imm[11] at 7. Bit 0 is implied.
var Branch13 = &asm.Permutation{
	Name:   "branch13",
	Width:  13,
	Signed: true,
	Scatter: func(v int64) uint64 {
		u := uint64(v)
		return bit(u, 12, 31) | bits(u, 5, 6, 25) | bits(u, 1, 4, 8) | bit(u, 11, 7)
	},
	Gather: func(w uint64) int64 {
		imm := bit(w, 31, 12) | bits(w, 25, 6, 5) | bits(w, 8, 4, 1) | bit(w, 7, 11)
		return asm.SignExtend(imm, 13)
	},
}

// Jal21 is the J-type offset: imm[20] at bit 31, imm[10:1] at 21,
// imm[11] at 20 and imm[19:12] at 12.
var Jal21 = &asm.Permutation{
	Name:   "jal21",
	Width:  21,
	Signed: true,
	Scatter: func(v int64) uint64 {
		u := uint64(v)
		return bit(u, 20, 31) | bits(u, 1, 10, 21) | bit(u, 11, 20) | bits(u, 12, 8, 12)
	},
	Gather: func(w uint64) int64 {
		imm := bit(w, 31, 20) | bits(w, 21, 10, 1) | bit(w, 20, 11) | bits(w, 12, 8, 12)
		return asm.SignExtend(imm, 21)
	},
}

// Store12 is the S-type offset split around rs1/rs2: imm[11:5] at bit 25
// and imm[4:0] at 7.
var Store12 = &asm.Permutation{
	Name:   "store12",
	Width:  12,
	Signed: true,
	Scatter: func(v int64) uint64 {
		u := uint64(v)
		return bits(u, 5, 7, 25) | bits(u, 0, 5, 7)
	},
	Gather: func(w uint64) int64 {
		return asm.SignExtend(bits(w, 25, 7, 5)|bits(w, 7, 5, 0), 12)
	},
}
