package lexengo

import (
	"fmt"
	"io"
	"slices"

	"github.com/KromDaniel/lexengo/internal/compiler"
)

// GenerateOptions configures Go source generation for a compiled lexer.
type GenerateOptions struct {
	// Name is the generated matcher type (e.g., "Calc" generates Calc.Match)
	Name string

	// Package is the Go package name for the generated code
	Package string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Verbose logs generation steps to LogOutput (stderr when nil)
	Verbose   bool
	LogOutput io.Writer
}

// Validate checks if the options are valid.
func (o GenerateOptions) Validate() error {
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return nil
}

// GenerateGo writes a standalone Go matcher for lx to opts.OutputFile. The
// generated type has a Match(input string, offset int) (int, []string)
// method with the same semantics as Lexer.Match.
func GenerateGo(lx *Lexer[string], opts GenerateOptions) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := newGenerator(lx, opts).Generate(); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}

// RenderGo is like GenerateGo but writes the source to w. OutputFile is
// ignored.
func RenderGo(w io.Writer, lx *Lexer[string], opts GenerateOptions) error {
	if err := newGenerator(lx, opts).Render(w); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}

func newGenerator(lx *Lexer[string], opts GenerateOptions) *compiler.Generator {
	logger := compiler.NewLogger(opts.Verbose)
	logger.SetOutput(opts.LogOutput)

	patterns := make([]string, 0, len(lx.rules))
	for i, r := range lx.rules {
		if !slices.Contains(lx.skipped, i) {
			patterns = append(patterns, r.Pattern)
		}
	}
	return compiler.NewGenerator(lx.dfa, compiler.GenerateConfig{
		Name:       opts.Name,
		Package:    opts.Package,
		OutputFile: opts.OutputFile,
		Patterns:   patterns,
	}, logger)
}
