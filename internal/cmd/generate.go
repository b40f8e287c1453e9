package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/giopgen/internal/codegen/generator"
	"github.com/Alia5/giopgen/internal/codegen/meta"
	"github.com/Alia5/giopgen/internal/configpaths"
	"github.com/Alia5/giopgen/internal/log"

	"golang.org/x/term"
)

// Stdout is the --output value that streams the artifact to standard output.
const Stdout = "-"

type Generate struct {
	Input       string `help:"Typed IDL tree document (.json, .yaml, .yml or .toml)" env:"GIOPGEN_INPUT"`
	Output      string `help:"Destination file, or '-' for stdout. Defaults to packet-<dissector>.c next to the input" env:"GIOPGEN_OUTPUT"`
	Target      string `help:"Generator backend" default:"giop" enum:"giop" env:"GIOPGEN_TARGET"`
	Protocol    string `help:"Protocol display name. Defaults to the upper-cased dissector name" env:"GIOPGEN_PROTOCOL"`
	Dissector   string `help:"Dissector short name, a C identifier. Defaults to the input file name" env:"GIOPGEN_DISSECTOR"`
	Description string `help:"Protocol description registered with the analyzer. Defaults to the protocol name" env:"GIOPGEN_DESCRIPTION"`
	Indent      int    `help:"Spaces per indentation level in the generated source" default:"4" env:"GIOPGEN_INDENT"`
	Manifest    string `help:"Also write a routine manifest (.json, .yaml or .yml)" env:"GIOPGEN_MANIFEST"`
	Check       bool   `help:"Leave the output untouched when it was generated from the same input and options" env:"GIOPGEN_CHECK"`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(logger *slog.Logger, decls log.DeclLogger) error {
	if c.Input == "" {
		return errors.New("no input document; pass --input or set GIOPGEN_INPUT")
	}
	manifestFormat := ""
	if c.Manifest != "" {
		var err error
		if manifestFormat, err = ManifestFormat(c.Manifest); err != nil {
			return err
		}
	}

	logger.Info("Starting dissector generation", "input", c.Input, "target", c.Target)

	gen := generator.New(logger)
	md, err := gen.Prepare(generator.Request{
		Input:  c.Input,
		Target: c.Target,
		Options: meta.Options{
			ProtocolName:  c.Protocol,
			DissectorName: c.Dissector,
			Description:   c.Description,
			Indent:        c.Indent,
		},
	})
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = filepath.Join(filepath.Dir(c.Input), "packet-"+md.Options.DissectorName+".c")
	}

	if c.Check && dest != Stdout {
		if existing, err := os.ReadFile(dest); err == nil && generator.UpToDate(existing, md) {
			logger.Info("Output is up to date", "output", dest, "digest", md.Options.Digest)
			return nil
		}
	}

	out, err := gen.Generate(c.Target, md)
	if err != nil {
		return err
	}
	for _, r := range out.Result.Routines {
		decls.Log(r)
	}
	if n := len(out.Result.Diagnostics); n > 0 {
		logger.Warn("Generated source contains unknown typecode markers", "count", n)
	}

	if err := writeArtifact(logger, dest, out.Source); err != nil {
		return err
	}
	if c.Manifest != "" {
		data, err := out.Result.Marshal(manifestFormat)
		if err != nil {
			return fmt.Errorf("render manifest: %w", err)
		}
		if err := writeFile(c.Manifest, data); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		logger.Info("Wrote routine manifest", "manifest", c.Manifest)
	}
	return nil
}

func writeArtifact(logger *slog.Logger, dest string, src []byte) error {
	if dest == Stdout {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			logger.Warn("Writing generated C source to a terminal; redirect stdout or pass --output")
		}
		_, err := os.Stdout.Write(src)
		return err
	}
	if err := writeFile(dest, src); err != nil {
		return fmt.Errorf("write dissector: %w", err)
	}
	logger.Info("Wrote dissector", "output", dest, "bytes", len(src))
	return nil
}

func writeFile(dest string, data []byte) error {
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// ManifestFormat picks the manifest encoding from the file extension.
func ManifestFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("manifest %s: unsupported extension (use .json, .yaml or .yml)", path)
	}
}
