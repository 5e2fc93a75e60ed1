// listing.go - Assembly listing

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

Assembly listing
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ListingEntry is one source line of the second pass. Code holds the
// disassembly of the instructions the line emitted.
type ListingEntry struct {
	Address uint32
	Bytes   []byte
	Code    []Instruction
	Source  string
}

type Listing struct {
	Entries []ListingEntry
}

func (l *Listing) add(ctx *Context, start uint32, ln Line) {
	e := ListingEntry{Address: start, Source: strings.TrimRight(ln.Text, " \t")}
	if len(ctx.lineBytes) > 0 {
		e.Bytes = append([]byte(nil), ctx.lineBytes...)
		if ctx.lineCode && ctx.Image != nil {
			e.Code = DisassembleRange(ctx.Arch, ctx.Image, start, start+uint32(len(e.Bytes)))
		}
	}
	l.Entries = append(l.Entries, e)
}

func hexBytes(b []byte) string {
	parts := make([]string, 0, 8)
	for i, v := range b {
		if i == 8 {
			parts[7] += "..."
			break
		}
		parts = append(parts, fmt.Sprintf("%02X", v))
	}
	return strings.Join(parts, " ")
}

// WriteTo prints the listing. Lines that emitted nothing show only their
// source; an instruction line that expanded to several instructions prints
// one row per instruction.
func (l *Listing) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	put := func(format string, args ...interface{}) {
		k, _ := fmt.Fprintf(bw, format, args...)
		n += int64(k)
	}
	for _, e := range l.Entries {
		if len(e.Bytes) == 0 {
			put("%-34s %-32s %s\n", "", "", e.Source)
			continue
		}
		if len(e.Code) == 0 {
			put("%08X  %-24s %-32s %s\n", e.Address, hexBytes(e.Bytes), "", e.Source)
			continue
		}
		for i, ins := range e.Code {
			src := ""
			if i == 0 {
				src = e.Source
			}
			off := ins.Address - e.Address
			put("%08X  %-24s %-32s %s\n", ins.Address, hexBytes(e.Bytes[off:off+uint32(ins.Size)]), ins.Text, src)
		}
	}
	return n, bw.Flush()
}
