// arch.go - Architecture capability interface and registry

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

Architecture capability interface and registry
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/intuitionamiga/ieasm/assembler/memory"
)

// Arch is what a target architecture provides to the driver.
type Arch interface {
	Name() string
	Endian() memory.Endian
	// Alignment is the required instruction alignment in bytes; 1 disables
	// the check.
	Alignment() int
	// ParseInstruction reads the operands of mnemonic from ctx.Tokens,
	// emits the encoding at ctx.Address and returns the byte count.
	ParseInstruction(ctx *Context, mnemonic string) (int, error)
	// Disassemble decodes the instruction at addr.
	Disassemble(img *memory.Image, addr uint32) (Instruction, error)
}

var (
	archMu sync.RWMutex
	arches = make(map[string]Arch)
)

// RegisterArch adds a to the registry under its lower-cased name.
func RegisterArch(a Arch) error {
	name := strings.ToLower(a.Name())
	archMu.Lock()
	defer archMu.Unlock()
	if _, ok := arches[name]; ok {
		return errors.Errorf("architecture %q already registered", name)
	}
	arches[name] = a
	return nil
}

// MustRegister is RegisterArch for package init functions.
func MustRegister(a Arch) {
	if err := RegisterArch(a); err != nil {
		panic(err)
	}
}

func Lookup(name string) (Arch, error) {
	archMu.RLock()
	defer archMu.RUnlock()
	if a, ok := arches[strings.ToLower(name)]; ok {
		return a, nil
	}
	return nil, errors.Errorf("unknown architecture %q (have %s)", name, strings.Join(archNames(), ", "))
}

// Arches lists the registered architecture names in order.
func Arches() []string {
	archMu.RLock()
	defer archMu.RUnlock()
	return archNames()
}

func archNames() []string {
	names := make([]string, 0, len(arches))
	for n := range arches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DisassembleRange decodes every instruction in [start, end). Words that do
// not decode, and a tail too short for a whole instruction, come back as
// byte data.
func DisassembleRange(a Arch, img *memory.Image, start, end uint32) []Instruction {
	var out []Instruction
	for addr := start; addr < end; {
		ins, err := a.Disassemble(img, addr)
		if ins.Size <= 0 {
			ins.Size = 1
		}
		if err != nil || addr+uint32(ins.Size) > end {
			n := ins.Size
			if addr+uint32(n) > end {
				n = int(end - addr)
			}
			ins = dataInstruction(img, addr, n)
		}
		out = append(out, ins)
		addr += uint32(ins.Size)
	}
	return out
}

func dataInstruction(img *memory.Image, addr uint32, n int) Instruction {
	b := img.ReadBytes(addr, n)
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("$%02X", v)
	}
	return Instruction{
		Address:  addr,
		Size:     n,
		Mnemonic: "dc.b",
		Text:     "dc.b " + strings.Join(parts, ","),
	}
}
