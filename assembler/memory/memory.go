// memory.go - Sparse memory image for assembled output

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

Sparse memory image for assembled output
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Endian is the byte order of multi-byte reads and writes.
type Endian uint8

const (
	Little Endian = iota
	Big
)

func (e Endian) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}

// ParseEndian accepts "little" or "big".
func ParseEndian(s string) (Endian, error) {
	switch s {
	case "little", "le", "":
		return Little, nil
	case "big", "be":
		return Big, nil
	}
	return Little, errors.Errorf("unknown byte order %q", s)
}

func (e Endian) order() binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Bytes encodes the low size bytes of v in this byte order.
func (e Endian) Bytes(v uint64, size int) []byte {
	var b [8]byte
	if e == Big {
		binary.BigEndian.PutUint64(b[:], v)
		return append([]byte(nil), b[8-size:]...)
	}
	binary.LittleEndian.PutUint64(b[:], v)
	return append([]byte(nil), b[:size]...)
}

// Word is the inverse of Bytes.
func (e Endian) Word(b []byte) uint64 {
	var v uint64
	for i := range b {
		if e == Big {
			v = v<<8 | uint64(b[i])
		} else {
			v |= uint64(b[i]) << (8 * uint(i))
		}
	}
	return v
}

const (
	pageBits = 12
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

type page struct {
	data [pageSize]byte
	used [pageSize / 8]byte
}

// Image is a 32-bit address space that only allocates the pages written to.
// Unwritten bytes read as zero.
type Image struct {
	endian  Endian
	pages   map[uint32]*page
	low     uint32
	high    uint32
	written bool
}

func New(e Endian) *Image {
	return &Image{endian: e, pages: make(map[uint32]*page)}
}

func (m *Image) Endian() Endian {
	return m.endian
}

func (m *Image) Write8(addr uint32, v uint8) {
	p, ok := m.pages[addr>>pageBits]
	if !ok {
		p = &page{}
		m.pages[addr>>pageBits] = p
	}
	off := addr & pageMask
	p.data[off] = v
	p.used[off>>3] |= 1 << (off & 7)

	if !m.written || addr < m.low {
		m.low = addr
	}
	if !m.written || addr > m.high {
		m.high = addr
	}
	m.written = true
}

func (m *Image) Read8(addr uint32) uint8 {
	if p, ok := m.pages[addr>>pageBits]; ok {
		return p.data[addr&pageMask]
	}
	return 0
}

// Used reports whether addr has been written.
func (m *Image) Used(addr uint32) bool {
	p, ok := m.pages[addr>>pageBits]
	if !ok {
		return false
	}
	off := addr & pageMask
	return p.used[off>>3]&(1<<(off&7)) != 0
}

func (m *Image) WriteBytes(addr uint32, b []byte) {
	for i, v := range b {
		m.Write8(addr+uint32(i), v)
	}
}

// ReadBytes returns n bytes starting at addr.
func (m *Image) ReadBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Read8(addr + uint32(i))
	}
	return out
}

func (m *Image) Write16(addr uint32, v uint16) {
	var b [2]byte
	m.endian.order().PutUint16(b[:], v)
	m.WriteBytes(addr, b[:])
}

func (m *Image) Write32(addr uint32, v uint32) {
	var b [4]byte
	m.endian.order().PutUint32(b[:], v)
	m.WriteBytes(addr, b[:])
}

func (m *Image) Write64(addr uint32, v uint64) {
	var b [8]byte
	m.endian.order().PutUint64(b[:], v)
	m.WriteBytes(addr, b[:])
}

func (m *Image) Read16(addr uint32) uint16 {
	return m.endian.order().Uint16(m.ReadBytes(addr, 2))
}

func (m *Image) Read32(addr uint32) uint32 {
	return m.endian.order().Uint32(m.ReadBytes(addr, 4))
}

func (m *Image) Read64(addr uint32) uint64 {
	return m.endian.order().Uint64(m.ReadBytes(addr, 8))
}

// WriteWord stores the low size bytes of v (size 1, 2, 4 or 8).
func (m *Image) WriteWord(addr uint32, v uint64, size int) {
	switch size {
	case 1:
		m.Write8(addr, uint8(v))
	case 2:
		m.Write16(addr, uint16(v))
	case 4:
		m.Write32(addr, uint32(v))
	case 8:
		m.Write64(addr, v)
	default:
		panic(fmt.Sprintf("memory: unsupported word size %d", size))
	}
}

// ReadWord is the inverse of WriteWord.
func (m *Image) ReadWord(addr uint32, size int) uint64 {
	switch size {
	case 1:
		return uint64(m.Read8(addr))
	case 2:
		return uint64(m.Read16(addr))
	case 4:
		return uint64(m.Read32(addr))
	case 8:
		return m.Read64(addr)
	}
	panic(fmt.Sprintf("memory: unsupported word size %d", size))
}

// Range returns the lowest and highest written addresses, inclusive.
func (m *Image) Range() (low, high uint32, ok bool) {
	return m.low, m.high, m.written
}

// Bytes returns the flat contents from the lowest to the highest written
// address, with gaps zero-filled. An empty image yields nil.
func (m *Image) Bytes() []byte {
	if !m.written {
		return nil
	}
	return m.ReadBytes(m.low, int(m.high-m.low)+1)
}

// Span is the length Bytes would return.
func (m *Image) Span() uint64 {
	if !m.written {
		return 0
	}
	return uint64(m.high-m.low) + 1
}

// Len is the number of written bytes.
func (m *Image) Len() int {
	n := 0
	for _, p := range m.pages {
		for _, b := range p.used {
			for ; b != 0; b &= b - 1 {
				n++
			}
		}
	}
	return n
}
