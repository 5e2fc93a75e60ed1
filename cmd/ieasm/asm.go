// asm.go - ieasm asm subcommand

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

ieasm asm subcommand
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/intuitionamiga/ieasm/assembler/asm"
)

// maxImageSize bounds the flat binary. The image is written from its
// lowest to its highest address, so two far-apart org blocks would
// otherwise allocate everything between them.
const maxImageSize = 64 << 20

type asmOptions struct {
	output       string
	origin       uint32
	listing      string
	export       string
	exportFormat string
	includes     []string
}

func newAsmCmd() *cobra.Command {
	var o asmOptions
	cmd := &cobra.Command{
		Use:   "asm [flags] source",
		Short: "Assemble a source file into a flat binary",
		Long: `Asm runs both passes over the source and writes the memory image from
its lowest to its highest written address. Listing and export files are
only written when assembly succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsm(cmd, &o, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output binary (default: source with .bin extension)")
	f.Uint32Var(&o.origin, "origin", 0, "start address")
	f.StringVar(&o.listing, "list", "", "write a listing file")
	f.StringVar(&o.export, "export", "", "write the exported symbol table")
	f.StringVar(&o.exportFormat, "export-format", "", "export table format, yaml or json")
	f.StringArrayVarP(&o.includes, "include", "I", nil, "add an include directory (repeatable)")
	return cmd
}

func runAsm(cmd *cobra.Command, o *asmOptions, input string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("origin") {
		cfg.Origin = o.origin
	}
	if flags.Changed("list") {
		cfg.Listing = o.listing
	}
	if flags.Changed("export-format") {
		cfg.ExportFormat = o.exportFormat
	}
	cfg.IncludePaths = includePaths(o.includes, cfg.IncludePaths)
	if err := cfg.Validate(); err != nil {
		return err
	}

	arch, err := asm.Lookup(cfg.Arch)
	if err != nil {
		return err
	}
	src, err := asm.NewLoader(log, cfg.IncludePaths...).LoadFile(input)
	if err != nil {
		return err
	}

	ctx := asm.NewContext(arch, log.WithField("file", input))
	ctx.Origin = cfg.Origin
	ctx.IncludePaths = cfg.IncludePaths
	if cfg.Listing != "" {
		ctx.Listing = &asm.Listing{}
	}
	if err := asm.Assemble(ctx, src); err != nil {
		printDiagnostics(cmd.ErrOrStderr(), ctx.Diagnostics())
		return errors.Errorf("%s: %d error(s)", input, len(ctx.Diagnostics()))
	}

	out := o.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
	}
	low, high, _ := ctx.Image.Range()
	if n := ctx.Image.Span(); n > maxImageSize {
		return errors.Errorf("%s: image spans $%08X-$%08X (%d bytes), over the %d byte limit", input, low, high, n, maxImageSize)
	}
	binary := ctx.Image.Bytes()
	if err := os.WriteFile(out, binary, 0o644); err != nil {
		return errors.Wrap(err, "writing output file")
	}
	log.WithFields(logrus.Fields{"low": low, "high": high}).Debug("image written")
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully assembled to %s (%d bytes)\n", out, len(binary))

	if cfg.Listing != "" {
		err := writeFile(cfg.Listing, func(w io.Writer) error {
			_, err := ctx.Listing.WriteTo(w)
			return err
		})
		if err != nil {
			return err
		}
	}
	if o.export != "" {
		table := asm.NewExportTable(ctx)
		if err := writeFile(o.export, func(w io.Writer) error { return table.Write(w, cfg.ExportFormat) }); err != nil {
			return err
		}
	}
	return nil
}

// includePaths puts the command line directories ahead of the configured
// ones in a new slice, leaving both inputs untouched.
func includePaths(flags, configured []string) []string {
	out := make([]string, 0, len(flags)+len(configured))
	out = append(out, flags...)
	return append(out, configured...)
}
