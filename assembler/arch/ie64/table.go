// table.go - IE64 descriptor table

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

IE64 descriptor table
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
IE64 instructions are one 64-bit little-endian word:

	bits  0-7   opcode
	bit   8     X, set for immediate and displacement forms
	bits  9-10  size (.b .w .l .q)
	bits 11-15  rd
	bits 19-23  rs
	bits 27-31  rt
	bits 32-63  imm32

The size field is free in the masks of sized instructions and fixed in the
rest. Branch immediates are signed offsets from the branch itself.
*/

package ie64

import (
	"fmt"

	"github.com/intuitionamiga/ieasm/assembler/asm"
)

const (
	opMove   = 0x01
	opMovt   = 0x02
	opMoveq  = 0x03
	opLea    = 0x04
	opLoad   = 0x10
	opStore  = 0x11
	opAdd    = 0x20
	opSub    = 0x21
	opMulu   = 0x22
	opMuls   = 0x23
	opDivu   = 0x24
	opDivs   = 0x25
	opMod    = 0x26
	opNeg    = 0x27
	opAnd    = 0x30
	opOr     = 0x31
	opEor    = 0x32
	opNot    = 0x33
	opLsl    = 0x34
	opLsr    = 0x35
	opAsr    = 0x36
	opClz    = 0x37
	opBra    = 0x40
	opBeq    = 0x41
	opBne    = 0x42
	opBlt    = 0x43
	opBge    = 0x44
	opBgt    = 0x45
	opBle    = 0x46
	opBhi    = 0x47
	opBls    = 0x48
	opJmp    = 0x49
	opJsr    = 0x50
	opRts    = 0x51
	opPush   = 0x52
	opPop    = 0x53
	opJsrInd = 0x54
	opNop    = 0xE0
	opHalt   = 0xE1
	opSei    = 0xE2
	opCli    = 0xE3
	opRti    = 0xE4
	opWait   = 0xE5
)

const (
	xBit      = 1 << 8
	sizeShift = 9
	sizeQ     = 3 << sizeShift

	maskOpX     = 0x1FF // opcode and X, size free
	maskFixed   = 0x7FF // opcode, X and size
	maskRt      = 0x1F << 27
	maskRs      = 0x1F << 19
	maskAllBits = ^uint64(0)
)

// Registers are r0-r31; sp is r31.
var Registers = func() *asm.Registers {
	names := make([]string, 32)
	for i := range names {
		names[i] = fmt.Sprintf("r%d", i)
	}
	return asm.NewRegisters(names, map[string]int{"sp": 31})
}()

var (
	rd   = asm.Field{Operand: 0, Shift: 11, Width: 5}
	rs   = func(op int) asm.Field { return asm.Field{Operand: op, Shift: 19, Width: 5} }
	rt   = func(op int) asm.Field { return asm.Field{Operand: op, Shift: 27, Width: 5} }
	imm  = func(op int) asm.Field { return asm.Field{Operand: op, Shift: 32, Width: 32, Low: -0x80000000, High: 0xFFFFFFFF} }
	rel  = func(op int) asm.Field { return asm.Field{Operand: op, Shift: 32, Width: 32, Signed: true, PCRel: true} }
	base = func(op int) asm.Field { return asm.Field{Operand: op, Part: asm.PartBase, Shift: 19, Width: 5} }
	disp = func(op int) asm.Field {
		return asm.Field{Operand: op, Part: asm.PartOffset, Shift: 32, Width: 32, Signed: true, Low: -32768, High: 32767, Name: "displacement"}
	}

	reg  = asm.Register
	imme = asm.Immediate
	mem  = asm.RegisterOffset

	shapeNone   = &asm.Shape{Name: "none"}
	shapeRR     = &asm.Shape{Name: "rr", Operands: []asm.OperandKind{reg, reg}, Fields: []asm.Field{rd, rs(1)}}
	shapeRI     = &asm.Shape{Name: "ri", Operands: []asm.OperandKind{reg, imme}, Fields: []asm.Field{rd, imm(1)}}
	shapeRRR    = &asm.Shape{Name: "rrr", Operands: []asm.OperandKind{reg, reg, reg}, Fields: []asm.Field{rd, rs(1), rt(2)}}
	shapeRRI    = &asm.Shape{Name: "rri", Operands: []asm.OperandKind{reg, reg, imme}, Fields: []asm.Field{rd, rs(1), imm(2)}}
	shapeMem    = &asm.Shape{Name: "mem", Operands: []asm.OperandKind{reg, mem}, Fields: []asm.Field{rd, base(1), disp(1)}}
	shapeBra    = &asm.Shape{Name: "bra", Operands: []asm.OperandKind{imme}, Fields: []asm.Field{rel(0)}}
	shapeBcc    = &asm.Shape{Name: "bcc", Operands: []asm.OperandKind{reg, reg, imme}, Fields: []asm.Field{rs(0), rt(1), rel(2)}}
	shapeBccZ   = &asm.Shape{Name: "bccz", Operands: []asm.OperandKind{reg, imme}, Fields: []asm.Field{rs(0), rel(1)}}
	shapeInd    = &asm.Shape{Name: "indirect", Operands: []asm.OperandKind{mem}, Fields: []asm.Field{base(0), disp(0)}}
	shapePush   = &asm.Shape{Name: "push", Operands: []asm.OperandKind{reg}, Fields: []asm.Field{rs(0)}}
	shapePop    = &asm.Shape{Name: "pop", Operands: []asm.OperandKind{reg}, Fields: []asm.Field{rd}}
	shapeCycles = &asm.Shape{Name: "cycles", Operands: []asm.OperandKind{imme}, Fields: []asm.Field{imm(0)}}
)

// sized lists the mnemonics that take a .b/.w/.l/.q suffix.
var sized = map[string]bool{
	"move": true, "load": true, "store": true,
	"add": true, "sub": true, "mulu": true, "muls": true, "divu": true, "divs": true, "mod": true, "neg": true,
	"and": true, "or": true, "eor": true, "not": true,
	"lsl": true, "lsr": true, "asr": true, "clz": true,
}

func alu3(name string, op uint64) []asm.Descriptor {
	return []asm.Descriptor{
		{Mnemonic: name, Opcode: op, Mask: maskOpX, Shape: shapeRRR},
		{Mnemonic: name, Opcode: op | xBit, Mask: maskOpX, Shape: shapeRRI},
	}
}

func bcc(name, zero string, op uint64) []asm.Descriptor {
	d := []asm.Descriptor{
		{Mnemonic: name, Opcode: op | sizeQ, Mask: maskFixed, Shape: shapeBcc},
	}
	if zero != "" {
		z := asm.Descriptor{Mnemonic: zero, Opcode: op | sizeQ, Mask: maskFixed | maskRt, Shape: shapeBccZ}
		d = append([]asm.Descriptor{z}, d...)
	}
	return d
}

func fixed(name string, op uint64) asm.Descriptor {
	return asm.Descriptor{Mnemonic: name, Opcode: op, Mask: maskAllBits, Shape: shapeNone}
}

var table = func() *asm.Table {
	var e []asm.Descriptor
	e = append(e,
		asm.Descriptor{Mnemonic: "move", Opcode: opMove, Mask: maskOpX, Shape: shapeRR},
		asm.Descriptor{Mnemonic: "move", Opcode: opMove | xBit, Mask: maskOpX, Shape: shapeRI},
		asm.Descriptor{Mnemonic: "movt", Opcode: opMovt | xBit | sizeQ, Mask: maskFixed, Shape: shapeRI},
		asm.Descriptor{Mnemonic: "moveq", Opcode: opMoveq | xBit | sizeQ, Mask: maskFixed, Shape: shapeRI},
		// la is lea from r0, listed first so r0-relative lea prints as la.
		asm.Descriptor{Mnemonic: "la", Opcode: opLea | xBit | sizeQ, Mask: maskFixed | maskRs, Shape: shapeRI},
		asm.Descriptor{Mnemonic: "lea", Opcode: opLea | xBit | sizeQ, Mask: maskFixed, Shape: shapeMem},
		asm.Descriptor{Mnemonic: "load", Opcode: opLoad, Mask: 0xFF, Shape: shapeMem},
		asm.Descriptor{Mnemonic: "store", Opcode: opStore, Mask: 0xFF, Shape: shapeMem},
	)
	for _, a := range []struct {
		name string
		op   uint64
	}{
		{"add", opAdd}, {"sub", opSub}, {"mulu", opMulu}, {"muls", opMuls},
		{"divu", opDivu}, {"divs", opDivs}, {"mod", opMod},
		{"and", opAnd}, {"or", opOr}, {"eor", opEor},
		{"lsl", opLsl}, {"lsr", opLsr}, {"asr", opAsr},
	} {
		e = append(e, alu3(a.name, a.op)...)
	}
	e = append(e,
		asm.Descriptor{Mnemonic: "neg", Opcode: opNeg, Mask: maskOpX, Shape: shapeRR},
		asm.Descriptor{Mnemonic: "not", Opcode: opNot, Mask: maskOpX, Shape: shapeRR},
		asm.Descriptor{Mnemonic: "clz", Opcode: opClz, Mask: maskOpX, Shape: shapeRR},
		asm.Descriptor{Mnemonic: "bra", Opcode: opBra | sizeQ, Mask: maskFixed, Shape: shapeBra},
	)
	e = append(e, bcc("beq", "beqz", opBeq)...)
	e = append(e, bcc("bne", "bnez", opBne)...)
	e = append(e, bcc("blt", "bltz", opBlt)...)
	e = append(e, bcc("bge", "bgez", opBge)...)
	e = append(e, bcc("bgt", "bgtz", opBgt)...)
	e = append(e, bcc("ble", "blez", opBle)...)
	e = append(e, bcc("bhi", "", opBhi)...)
	e = append(e, bcc("bls", "", opBls)...)
	e = append(e,
		asm.Descriptor{Mnemonic: "jmp", Opcode: opJmp, Mask: maskFixed, Shape: shapeInd},
		asm.Descriptor{Mnemonic: "jsr", Opcode: opJsr | sizeQ, Mask: maskFixed, Shape: shapeBra},
		asm.Descriptor{Mnemonic: "jsr", Opcode: opJsrInd, Mask: maskFixed, Shape: shapeInd},
		fixed("rts", opRts),
		asm.Descriptor{Mnemonic: "push", Opcode: opPush | sizeQ, Mask: maskFixed, Shape: shapePush},
		asm.Descriptor{Mnemonic: "pop", Opcode: opPop | sizeQ, Mask: maskFixed, Shape: shapePop},
		fixed("nop", opNop),
		fixed("halt", opHalt),
		fixed("sei", opSei),
		fixed("cli", opCli),
		fixed("rti", opRti),
		asm.Descriptor{Mnemonic: "wait", Opcode: opWait | xBit, Mask: maskFixed, Shape: shapeCycles},
	)
	return asm.MustTable(e)
}()
