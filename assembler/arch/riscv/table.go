// table.go - RV32IM descriptor table with Zicsr, atomics and the common aliases

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

RV32IM descriptor table with Zicsr, atomics and the common aliases
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package riscv

import (
	"github.com/intuitionamiga/ieasm/assembler/asm"
)

var (
	rd     = asm.Field{Operand: 0, Shift: 7, Width: 5}
	rs1    = asm.Field{Operand: 1, Shift: 15, Width: 5}
	rs2    = asm.Field{Operand: 2, Shift: 20, Width: 5}
	imm12  = asm.Field{Operand: 2, Shift: 20, Width: 12, Signed: true}
	target = func(op int, p *asm.Permutation) asm.Field {
		return asm.Field{Operand: op, PCRel: true, Align: 2, Perm: p}
	}
	base   = asm.Field{Operand: 1, Part: asm.PartBase, Shift: 15, Width: 5}
	offset = asm.Field{Operand: 1, Part: asm.PartOffset, Shift: 20, Width: 12, Signed: true}
	csr    = asm.Field{Operand: 1, Shift: 20, Width: 12, Name: "csr"}

	R   = []asm.OperandKind{asm.Register}
	RR  = []asm.OperandKind{asm.Register, asm.Register}
	RRR = []asm.OperandKind{asm.Register, asm.Register, asm.Register}
	RRI = []asm.OperandKind{asm.Register, asm.Register, asm.Immediate}
	RI  = []asm.OperandKind{asm.Register, asm.Immediate}
	RM  = []asm.OperandKind{asm.Register, asm.RegisterOffset}

	shapeNone  = &asm.Shape{Name: "none"}
	shapeR     = &asm.Shape{Name: "r", Operands: RRR, Fields: []asm.Field{rd, rs1, rs2}}
	shapeI     = &asm.Shape{Name: "i", Operands: RRI, Fields: []asm.Field{rd, rs1, imm12}}
	shapeShift = &asm.Shape{Name: "shift", Operands: RRI, Fields: []asm.Field{rd, rs1, {Operand: 2, Shift: 20, Width: 5, Name: "shift amount"}}}
	shapeU     = &asm.Shape{Name: "u", Operands: RI, Fields: []asm.Field{rd, {Operand: 1, Shift: 12, Width: 20, Low: -(1 << 19), High: 1<<20 - 1}}}
	shapeJ     = &asm.Shape{Name: "j", Operands: RI, Fields: []asm.Field{rd, target(1, Jal21)}}
	shapeB     = &asm.Shape{Name: "b", Operands: RRI, Fields: []asm.Field{
		{Operand: 0, Shift: 15, Width: 5},
		{Operand: 1, Shift: 20, Width: 5},
		target(2, Branch13),
	}}
	shapeLoad  = &asm.Shape{Name: "load", Operands: RM, Fields: []asm.Field{rd, base, offset}}
	shapeStore = &asm.Shape{Name: "store", Operands: RM, Fields: []asm.Field{
		{Operand: 0, Shift: 20, Width: 5},
		base,
		{Operand: 1, Part: asm.PartOffset, Perm: Store12, Name: "offset"},
	}}
	shapeStore3 = &asm.Shape{Name: "store3", Operands: RRI, Fields: []asm.Field{
		{Operand: 0, Shift: 20, Width: 5},
		rs1,
		{Operand: 2, Perm: Store12, Name: "offset"},
	}}
	// lr and sc only take (rs1); the zero-width offset field rejects a
	// displacement.
	shapeLR = &asm.Shape{Name: "lr", Operands: RM, Fields: []asm.Field{rd, base, {Operand: 1, Part: asm.PartOffset, Name: "offset"}}}
	shapeSC = &asm.Shape{Name: "sc", Operands: []asm.OperandKind{asm.Register, asm.Register, asm.RegisterOffset}, Fields: []asm.Field{
		rd,
		{Operand: 1, Shift: 20, Width: 5},
		{Operand: 2, Part: asm.PartBase, Shift: 15, Width: 5},
		{Operand: 2, Part: asm.PartOffset, Name: "offset"},
	}}
	shapeFence = &asm.Shape{Name: "fence", Operands: []asm.OperandKind{asm.Immediate, asm.Immediate}, Fields: []asm.Field{
		{Operand: 0, Shift: 24, Width: 4, Name: "predecessor set"},
		{Operand: 1, Shift: 20, Width: 4, Name: "successor set"},
	}}
	shapeCSR  = &asm.Shape{Name: "csr", Operands: []asm.OperandKind{asm.Register, asm.Immediate, asm.Register}, Fields: []asm.Field{rd, csr, {Operand: 2, Shift: 15, Width: 5}}}
	shapeCSRI = &asm.Shape{Name: "csri", Operands: []asm.OperandKind{asm.Register, asm.Immediate, asm.Immediate}, Fields: []asm.Field{rd, csr, {Operand: 2, Shift: 15, Width: 5, Name: "uimm"}}}

	// Alias shapes.
	shapeRdRs1  = &asm.Shape{Name: "rd-rs1", Operands: RR, Fields: []asm.Field{rd, {Operand: 1, Shift: 15, Width: 5}}}
	shapeRdRs2  = &asm.Shape{Name: "rd-rs2", Operands: RR, Fields: []asm.Field{rd, {Operand: 1, Shift: 20, Width: 5}}}
	shapeBrRsX0 = &asm.Shape{Name: "br-rs-x0", Operands: RI, Fields: []asm.Field{{Operand: 0, Shift: 15, Width: 5}, target(1, Branch13)}}
	shapeBrX0Rs = &asm.Shape{Name: "br-x0-rs", Operands: RI, Fields: []asm.Field{{Operand: 0, Shift: 20, Width: 5}, target(1, Branch13)}}
	shapeBrSwap = &asm.Shape{Name: "br-swap", Operands: RRI, Fields: []asm.Field{
		{Operand: 0, Shift: 20, Width: 5},
		{Operand: 1, Shift: 15, Width: 5},
		target(2, Branch13),
	}}
	shapeJump = &asm.Shape{Name: "jump", Operands: []asm.OperandKind{asm.Immediate}, Fields: []asm.Field{target(0, Jal21)}}
	shapeRs1  = &asm.Shape{Name: "rs1", Operands: R, Fields: []asm.Field{{Operand: 0, Shift: 15, Width: 5}}}
	shapeCSRR = &asm.Shape{Name: "csrr", Operands: RI, Fields: []asm.Field{rd, csr}}
	shapeCSRW = &asm.Shape{Name: "csrw", Operands: []asm.OperandKind{asm.Immediate, asm.Register}, Fields: []asm.Field{
		{Operand: 0, Shift: 20, Width: 12, Name: "csr"},
		{Operand: 1, Shift: 15, Width: 5},
	}}
)

const (
	maskOp     = 0x0000007f
	maskFunct3 = 0x0000707f
	maskFunct7 = 0xfe00707f
	maskAtomic = 0xf800707f
	maskAll    = 0xffffffff
)

// Aliases come first so the disassembler prefers them. The operand
// swapping branch aliases would shadow the real branches and are encode
// only, as are the alternative operand forms.
var table = asm.MustTable([]asm.Descriptor{
	{Mnemonic: "nop", Opcode: 0x00000013, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "mv", Opcode: 0x00000013, Mask: 0xfff0707f, Shape: shapeRdRs1},
	{Mnemonic: "not", Opcode: 0xfff04013, Mask: 0xfff0707f, Shape: shapeRdRs1},
	{Mnemonic: "neg", Opcode: 0x40000033, Mask: 0xfe0ff07f, Shape: shapeRdRs2},
	{Mnemonic: "seqz", Opcode: 0x00103013, Mask: 0xfff0707f, Shape: shapeRdRs1},
	{Mnemonic: "snez", Opcode: 0x00003033, Mask: 0xfe0ff07f, Shape: shapeRdRs2},
	{Mnemonic: "sltz", Opcode: 0x00002033, Mask: 0xfff0707f, Shape: shapeRdRs1},
	{Mnemonic: "sgtz", Opcode: 0x00002033, Mask: 0xfe0ff07f, Shape: shapeRdRs2},

	{Mnemonic: "beqz", Opcode: 0x00000063, Mask: 0x01f0707f, Shape: shapeBrRsX0},
	{Mnemonic: "bnez", Opcode: 0x00001063, Mask: 0x01f0707f, Shape: shapeBrRsX0},
	{Mnemonic: "bltz", Opcode: 0x00004063, Mask: 0x01f0707f, Shape: shapeBrRsX0},
	{Mnemonic: "bgez", Opcode: 0x00005063, Mask: 0x01f0707f, Shape: shapeBrRsX0},
	{Mnemonic: "blez", Opcode: 0x00005063, Mask: 0x000ff07f, Shape: shapeBrX0Rs},
	{Mnemonic: "bgtz", Opcode: 0x00004063, Mask: 0x000ff07f, Shape: shapeBrX0Rs},
	{Mnemonic: "bgt", Opcode: 0x00004063, Mask: maskFunct3, Shape: shapeBrSwap, Flags: asm.EncodeOnly},
	{Mnemonic: "ble", Opcode: 0x00005063, Mask: maskFunct3, Shape: shapeBrSwap, Flags: asm.EncodeOnly},
	{Mnemonic: "bgtu", Opcode: 0x00006063, Mask: maskFunct3, Shape: shapeBrSwap, Flags: asm.EncodeOnly},
	{Mnemonic: "bleu", Opcode: 0x00007063, Mask: maskFunct3, Shape: shapeBrSwap, Flags: asm.EncodeOnly},

	{Mnemonic: "ret", Opcode: 0x00008067, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "j", Opcode: 0x0000006f, Mask: 0x00000fff, Shape: shapeJump},
	{Mnemonic: "jal", Opcode: 0x000000ef, Mask: 0x00000fff, Shape: shapeJump},
	{Mnemonic: "jr", Opcode: 0x00000067, Mask: 0xfff07fff, Shape: shapeRs1},
	{Mnemonic: "jalr", Opcode: 0x000000e7, Mask: 0xfff07fff, Shape: shapeRs1},
	{Mnemonic: "fence", Opcode: 0x0ff0000f, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "csrr", Opcode: 0x00002073, Mask: 0x000ff07f, Shape: shapeCSRR},
	{Mnemonic: "csrw", Opcode: 0x00001073, Mask: 0x00007fff, Shape: shapeCSRW},
	{Mnemonic: "csrs", Opcode: 0x00002073, Mask: 0x00007fff, Shape: shapeCSRW},
	{Mnemonic: "csrc", Opcode: 0x00003073, Mask: 0x00007fff, Shape: shapeCSRW},

	{Mnemonic: "lui", Opcode: 0x00000037, Mask: maskOp, Shape: shapeU},
	{Mnemonic: "auipc", Opcode: 0x00000017, Mask: maskOp, Shape: shapeU},
	{Mnemonic: "jal", Opcode: 0x0000006f, Mask: maskOp, Shape: shapeJ},
	{Mnemonic: "jalr", Opcode: 0x00000067, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "jalr", Opcode: 0x00000067, Mask: maskFunct3, Shape: shapeLoad, Flags: asm.EncodeOnly},

	{Mnemonic: "beq", Opcode: 0x00000063, Mask: maskFunct3, Shape: shapeB},
	{Mnemonic: "bne", Opcode: 0x00001063, Mask: maskFunct3, Shape: shapeB},
	{Mnemonic: "blt", Opcode: 0x00004063, Mask: maskFunct3, Shape: shapeB},
	{Mnemonic: "bge", Opcode: 0x00005063, Mask: maskFunct3, Shape: shapeB},
	{Mnemonic: "bltu", Opcode: 0x00006063, Mask: maskFunct3, Shape: shapeB},
	{Mnemonic: "bgeu", Opcode: 0x00007063, Mask: maskFunct3, Shape: shapeB},

	{Mnemonic: "lb", Opcode: 0x00000003, Mask: maskFunct3, Shape: shapeLoad},
	{Mnemonic: "lh", Opcode: 0x00001003, Mask: maskFunct3, Shape: shapeLoad},
	{Mnemonic: "lw", Opcode: 0x00002003, Mask: maskFunct3, Shape: shapeLoad},
	{Mnemonic: "lbu", Opcode: 0x00004003, Mask: maskFunct3, Shape: shapeLoad},
	{Mnemonic: "lhu", Opcode: 0x00005003, Mask: maskFunct3, Shape: shapeLoad},
	{Mnemonic: "lb", Opcode: 0x00000003, Mask: maskFunct3, Shape: shapeI, Flags: asm.EncodeOnly},
	{Mnemonic: "lh", Opcode: 0x00001003, Mask: maskFunct3, Shape: shapeI, Flags: asm.EncodeOnly},
	{Mnemonic: "lw", Opcode: 0x00002003, Mask: maskFunct3, Shape: shapeI, Flags: asm.EncodeOnly},
	{Mnemonic: "lbu", Opcode: 0x00004003, Mask: maskFunct3, Shape: shapeI, Flags: asm.EncodeOnly},
	{Mnemonic: "lhu", Opcode: 0x00005003, Mask: maskFunct3, Shape: shapeI, Flags: asm.EncodeOnly},
	{Mnemonic: "sb", Opcode: 0x00000023, Mask: maskFunct3, Shape: shapeStore},
	{Mnemonic: "sh", Opcode: 0x00001023, Mask: maskFunct3, Shape: shapeStore},
	{Mnemonic: "sw", Opcode: 0x00002023, Mask: maskFunct3, Shape: shapeStore},
	{Mnemonic: "sb", Opcode: 0x00000023, Mask: maskFunct3, Shape: shapeStore3, Flags: asm.EncodeOnly},
	{Mnemonic: "sh", Opcode: 0x00001023, Mask: maskFunct3, Shape: shapeStore3, Flags: asm.EncodeOnly},
	{Mnemonic: "sw", Opcode: 0x00002023, Mask: maskFunct3, Shape: shapeStore3, Flags: asm.EncodeOnly},

	{Mnemonic: "addi", Opcode: 0x00000013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "slti", Opcode: 0x00002013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "sltiu", Opcode: 0x00003013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "xori", Opcode: 0x00004013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "ori", Opcode: 0x00006013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "andi", Opcode: 0x00007013, Mask: maskFunct3, Shape: shapeI},
	{Mnemonic: "slli", Opcode: 0x00001013, Mask: maskFunct7, Shape: shapeShift},
	{Mnemonic: "srli", Opcode: 0x00005013, Mask: maskFunct7, Shape: shapeShift},
	{Mnemonic: "srai", Opcode: 0x40005013, Mask: maskFunct7, Shape: shapeShift},

	{Mnemonic: "add", Opcode: 0x00000033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "sub", Opcode: 0x40000033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "sll", Opcode: 0x00001033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "slt", Opcode: 0x00002033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "sltu", Opcode: 0x00003033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "xor", Opcode: 0x00004033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "srl", Opcode: 0x00005033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "sra", Opcode: 0x40005033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "or", Opcode: 0x00006033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "and", Opcode: 0x00007033, Mask: maskFunct7, Shape: shapeR},

	{Mnemonic: "mul", Opcode: 0x02000033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "mulh", Opcode: 0x02001033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "mulhsu", Opcode: 0x02002033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "mulhu", Opcode: 0x02003033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "div", Opcode: 0x02004033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "divu", Opcode: 0x02005033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "rem", Opcode: 0x02006033, Mask: maskFunct7, Shape: shapeR},
	{Mnemonic: "remu", Opcode: 0x02007033, Mask: maskFunct7, Shape: shapeR},

	{Mnemonic: "fence", Opcode: 0x0000000f, Mask: 0xf00fffff, Shape: shapeFence},
	{Mnemonic: "fence.i", Opcode: 0x0000100f, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "ecall", Opcode: 0x00000073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "ebreak", Opcode: 0x00100073, Mask: maskAll, Shape: shapeNone},

	{Mnemonic: "csrrw", Opcode: 0x00001073, Mask: maskFunct3, Shape: shapeCSR},
	{Mnemonic: "csrrs", Opcode: 0x00002073, Mask: maskFunct3, Shape: shapeCSR},
	{Mnemonic: "csrrc", Opcode: 0x00003073, Mask: maskFunct3, Shape: shapeCSR},
	{Mnemonic: "csrrwi", Opcode: 0x00005073, Mask: maskFunct3, Shape: shapeCSRI},
	{Mnemonic: "csrrsi", Opcode: 0x00006073, Mask: maskFunct3, Shape: shapeCSRI},
	{Mnemonic: "csrrci", Opcode: 0x00007073, Mask: maskFunct3, Shape: shapeCSRI},

	{Mnemonic: "lr.w", Opcode: 0x1000202f, Mask: maskAtomic, Shape: shapeLR},
	{Mnemonic: "sc.w", Opcode: 0x1800202f, Mask: maskAtomic, Shape: shapeSC},
	{Mnemonic: "lr.d", Opcode: 0x1000302f, Mask: maskAtomic, Shape: shapeLR},
	{Mnemonic: "sc.d", Opcode: 0x1800302f, Mask: maskAtomic, Shape: shapeSC},

	{Mnemonic: "uret", Opcode: 0x00200073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "sret", Opcode: 0x10200073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "hret", Opcode: 0x20200073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "mret", Opcode: 0x30200073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "wfi", Opcode: 0x10500073, Mask: maskAll, Shape: shapeNone},
	{Mnemonic: "sfence.vm", Opcode: 0x10400073, Mask: 0xfff07fff, Shape: shapeRs1},
})
