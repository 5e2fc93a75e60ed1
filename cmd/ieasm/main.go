// main.go - ieasm command line

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

ieasm command line
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/intuitionamiga/ieasm/assembler/arch/script"
	"github.com/intuitionamiga/ieasm/assembler/asm"
	"github.com/intuitionamiga/ieasm/assembler/diag"
	"github.com/intuitionamiga/ieasm/config"

	_ "github.com/intuitionamiga/ieasm/assembler/arch/ie64"
	_ "github.com/intuitionamiga/ieasm/assembler/arch/riscv"
)

// Flags shared by every subcommand.
var (
	configPath  string
	logLevel    string
	archName    string
	archScripts []string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ieasm",
		Short:         "Retargetable two-pass assembler and disassembler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(root.PersistentFlags())
	root.AddCommand(newAsmCmd(), newDisasmCmd(), newArchesCmd())
	return root
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configPath, "config", "", "configuration file (default ./"+config.FileName+" when present)")
	fs.StringVar(&logLevel, "log-level", "", "log level (panic, fatal, error, warning, info, debug, trace)")
	fs.StringVar(&archName, "arch", "", "target architecture")
	fs.StringArrayVar(&archScripts, "arch-script", nil, "register a Lua descriptor table (repeatable)")
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies the persistent flags over it and
// registers any script architectures.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("arch") {
		cfg.Arch = archName
	}
	cfg.ArchScripts = append(cfg.ArchScripts, archScripts...)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(cfg.Level())

	for _, path := range cfg.ArchScripts {
		m, err := script.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		if err := asm.RegisterArch(m); err != nil {
			return nil, nil, errors.Wrap(err, path)
		}
		log.WithFields(logrus.Fields{"arch": m.Name(), "script": path}).Debug("registered script architecture")
	}
	return cfg, log, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

const (
	colourRed   = "\033[31m"
	colourReset = "\033[0m"
)

// printDiagnostics writes one diagnostic per line, highlighting the kind
// when w is a terminal.
func printDiagnostics(w io.Writer, diags []error) {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = term.IsTerminal(int(f.Fd()))
	}
	for _, err := range diags {
		var d *diag.Error
		if colour && errors.As(err, &d) {
			if d.Line > 0 {
				fmt.Fprintf(w, "%s:%d: %s%s%s: %s\n", d.File, d.Line, colourRed, d.Kind, colourReset, d.Msg)
			} else {
				fmt.Fprintf(w, "%s%s%s: %s\n", colourRed, d.Kind, colourReset, d.Msg)
			}
			continue
		}
		fmt.Fprintln(w, err)
	}
}
