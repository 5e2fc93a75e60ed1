// source_test.go - Assembler core tests

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

Assembler core tests
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(files map[string]string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		if s, ok := files[name]; ok {
			return []byte(s), nil
		}
		return nil, os.ErrNotExist
	}
}

func loadLines(t *testing.T, files map[string]string, main string) []string {
	t.Helper()
	l := NewLoader(nil)
	l.ReadFile = memFS(files)
	src, err := l.LoadFile(main)
	require.NoError(t, err)
	var out []string
	for _, ln := range src.Lines {
		if s := strings.TrimSpace(ln.Text); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestLoader_Include(t *testing.T) {
	lines := loadLines(t, map[string]string{
		"main.s": "\tnop\n\tinclude \"inc.s\"\n\tmov r1, 1\n",
		"inc.s":  "\tmov r2, 2\n\t.include \"main.s\"\n",
	}, "main.s")
	// The circular include of main.s is skipped.
	assert.Equal(t, []string{"nop", "mov r2, 2", "mov r1, 1"}, lines)
}

func TestLoader_IncludePath(t *testing.T) {
	l := NewLoader(nil, "lib")
	l.ReadFile = memFS(map[string]string{"lib/x.s": "\tnop\n"})
	src, err := l.Load("main.s", []byte("include \"x.s\"\n"))
	require.NoError(t, err)
	require.Len(t, src.Lines, 1)
	assert.Equal(t, "lib/x.s", src.Lines[0].Pos.File)
	assert.Equal(t, 1, src.Lines[0].Pos.Line)
}

func TestLoader_MissingInclude(t *testing.T) {
	l := NewLoader(nil)
	l.ReadFile = memFS(nil)
	_, err := l.Load("main.s", []byte("\n\tinclude \"gone.s\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.s:2")
}

func TestLoader_Macros(t *testing.T) {
	lines := loadLines(t, map[string]string{"main.s": `
store	macro
	mov \1, \2
	db narg
	endm
	.macro pair
	db \1, \1
	.endm
	store r1, 5
here:	pair (1+2)
`}, "main.s")
	assert.Equal(t, []string{"mov r1, 5", "db 2", "here:", "db (1+2), (1+2)"}, lines)
}

func TestLoader_MacroWithoutEnd(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Load("main.s", []byte("m macro\n\tnop\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without endm")
}

func TestLoader_RecursiveMacro(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Load("main.s", []byte("m macro\n\tm\n\tendm\n\tm\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth exceeded")
}

func TestLoader_ReptAndConditionals(t *testing.T) {
	lines := loadLines(t, map[string]string{"main.s": `
DEBUG	= 1
COUNT	equ 2
	rept COUNT
	nop
	endr
	if DEBUG
	mov r1, 1
	else
	mov r1, 2
	endif
	if DEBUG - 1
	mov r3, 3
	endif
`}, "main.s")
	assert.Equal(t, []string{"DEBUG\t= 1", "COUNT\tequ 2", "nop", "nop", "mov r1, 1"}, lines)
}

func TestLoader_ConditionalErrors(t *testing.T) {
	for _, src := range []string{"\telse\n", "\tendif\n", "\tif 1\n", "\tif 1\n\telse\n\telse\n\tendif\n", "\trept 2\n\tnop\n"} {
		_, err := NewLoader(nil).Load("main.s", []byte(src))
		assert.Error(t, err, src)
	}
}

func TestLoader_MacroAssembles(t *testing.T) {
	ctx := assembleString(t, `
load	macro
	mov \1, \2
	endm
	load r1, 5
	rept 2
	nop
	endr
`)
	assert.Equal(t, []uint32{0x00050101, 0, 0}, image32(ctx, 0, 3))
	assert.EqualValues(t, 12, ctx.Address)
}

func TestSplitMacroArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "(b, c)", "'x,y'", `"p,q"`}, splitMacroArgs(`a, (b, c), 'x,y', "p,q"`))
	assert.Nil(t, splitMacroArgs(""))
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, `db "a;b" `, stripComment(`db "a;b" ; c`))
	assert.Equal(t, "nop ", stripComment("nop // c"))
	assert.Equal(t, `db ';'`, stripComment(`db ';'`))
}
