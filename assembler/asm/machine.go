// machine.go - Table-driven Arch implementation

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

Table-driven Arch implementation
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/assembler/memory"
)

// Instruction is one decoded instruction, or a run of data bytes when Desc
// is nil.
type Instruction struct {
	Address  uint32
	Size     int
	Word     uint64
	Desc     *Descriptor
	Operands []Operand
	Mnemonic string
	Text     string
}

// Expander handles pseudo-instructions before table dispatch. It reports
// handled=false to fall through to the table.
type Expander func(ctx *Context, m *Machine, mnemonic string, ops []Operand) (n int, handled bool, err error)

// Machine is an Arch built from a descriptor table and a few hooks. Every
// instruction is one word of Width bytes.
type Machine struct {
	ArchName string
	Order    memory.Endian
	Width    int
	Align    int
	Regs     *Registers
	Table    *Table

	// Split separates mnemonic suffixes that select fixed bits, returning
	// the table mnemonic and the bits to OR into the word.
	Split func(mnemonic string) (base string, extra uint64, err error)
	Expand Expander
	// Finish adjusts a packed word after table encoding.
	Finish func(d *Descriptor, ops []Operand, word uint64) uint64
	// Decorate rebuilds the printed mnemonic from the decoded word.
	Decorate      func(d *Descriptor, word uint64, mnemonic string) string
	FormatOperand func(m *Machine, d *Descriptor, i int, op Operand) string
}

func (m *Machine) Name() string          { return m.ArchName }
func (m *Machine) Endian() memory.Endian { return m.Order }
func (m *Machine) Alignment() int        { return m.Align }

// Encode packs one real instruction at addr.
func (m *Machine) Encode(mnemonic string, ops []Operand, addr uint32) (uint64, error) {
	base, extra := mnemonic, uint64(0)
	if m.Split != nil {
		var err error
		if base, extra, err = m.Split(mnemonic); err != nil {
			return 0, err
		}
	}
	word, d, err := m.Table.Encode(base, ops, addr)
	if err != nil {
		return 0, err
	}
	if m.Finish != nil {
		word = m.Finish(d, ops, word)
	}
	return word | extra, nil
}

// Emit encodes one real instruction at ctx.Address and emits it.
func (m *Machine) Emit(ctx *Context, mnemonic string, ops []Operand) (int, error) {
	word, err := m.Encode(mnemonic, ops, ctx.Address)
	if err != nil {
		return 0, err
	}
	ctx.EmitWord(word, m.Width)
	return m.Width, nil
}

func (m *Machine) ParseInstruction(ctx *Context, mnemonic string) (int, error) {
	ops, err := ParseOperands(ctx, m.Regs)
	if err != nil {
		return 0, err
	}
	if m.Expand != nil {
		start := ctx.Address
		n, handled, err := m.Expand(ctx, m, mnemonic, ops)
		if handled {
			if err == nil && ctx.Address-start != uint32(n) {
				return 0, errors.Errorf("%s: expansion reported %d bytes, emitted %d", mnemonic, n, ctx.Address-start)
			}
			return n, err
		}
	}
	return m.Emit(ctx, mnemonic, ops)
}

func (m *Machine) Disassemble(img *memory.Image, addr uint32) (Instruction, error) {
	word := m.Order.Word(img.ReadBytes(addr, m.Width))
	ins := Instruction{Address: addr, Size: m.Width, Word: word}
	d, ops, ok := m.Table.Decode(word, addr)
	if !ok {
		return ins, diag.Newf(diag.UnknownInstruction, "no %s instruction matches $%0*X at $%08X", m.ArchName, m.Width*2, word, addr)
	}
	ins.Desc, ins.Operands = d, ops
	ins.Mnemonic = d.Mnemonic
	if m.Decorate != nil {
		ins.Mnemonic = m.Decorate(d, word, ins.Mnemonic)
	}
	ins.Text = ins.Mnemonic
	if len(ops) > 0 {
		format := m.FormatOperand
		if format == nil {
			format = DefaultOperand
		}
		parts := make([]string, len(ops))
		for i, op := range ops {
			parts[i] = format(m, d, i, op)
		}
		ins.Text += " " + strings.Join(parts, ", ")
	}
	return ins, nil
}

// DefaultOperand prints registers by canonical name, branch targets in hex
// and everything else in decimal.
func DefaultOperand(m *Machine, d *Descriptor, i int, op Operand) string {
	switch op.Kind {
	case Register:
		return m.Regs.Name(int(op.Value))
	case RegisterOffset:
		return fmt.Sprintf("%d(%s)", op.Offset, m.Regs.Name(int(op.Value)))
	}
	if d.Shape.IsTarget(i) {
		return fmt.Sprintf("0x%x", uint32(op.Value))
	}
	return fmt.Sprintf("%d", op.Value)
}
