// export.go - Export table handed to the linker

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

Export table handed to the linker
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package asm

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ExportedSymbol struct {
	Name  string `yaml:"name" json:"name"`
	Value int64  `yaml:"value" json:"value"`
	Hex   string `yaml:"hex" json:"hex"`
}

// ExportTable lists the symbols a job made visible to other units.
type ExportTable struct {
	Arch    string           `yaml:"arch" json:"arch"`
	Origin  uint32           `yaml:"origin" json:"origin"`
	Symbols []ExportedSymbol `yaml:"symbols" json:"symbols"`
}

// NewExportTable collects the exported symbols of a finished job.
func NewExportTable(ctx *Context) *ExportTable {
	t := &ExportTable{Arch: ctx.initialArch.Name(), Origin: ctx.Origin}
	for _, s := range ctx.Symbols.Exports() {
		t.Symbols = append(t.Symbols, ExportedSymbol{
			Name:  s.Name,
			Value: s.Value,
			Hex:   fmt.Sprintf("$%08X", uint64(s.Value)),
		})
	}
	return t
}

func (t *ExportTable) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return errors.Wrap(err, "encoding export table")
	}
	return enc.Close()
}

func (t *ExportTable) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(t), "encoding export table")
}

// Write encodes t as "yaml" or "json".
func (t *ExportTable) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		return t.WriteYAML(w)
	case "json":
		return t.WriteJSON(w)
	}
	return errors.Errorf("unknown export format %q", format)
}

// ReadExportTable decodes a table written by Write.
func ReadExportTable(r io.Reader, format string) (*ExportTable, error) {
	t := &ExportTable{}
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		err = yaml.NewDecoder(r).Decode(t)
	case "json":
		err = json.NewDecoder(r).Decode(t)
	default:
		return nil, errors.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decoding export table")
	}
	return t, nil
}
