// Command lexengo compiles lexer rule files into a maximal-munch DFA and
// generates Go matchers, tokenizes input or prints the automaton.
//
//	lexengo generate calc.lex -o calc_lexer.go --package calc --name Calc
//	lexengo tokenize calc.lex input.txt --skip WS
//	lexengo dot calc.lex -o calc.dot
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/KromDaniel/lexengo/pkg/lexengo"
	"github.com/KromDaniel/lexengo/stream"
	"github.com/alecthomas/kong"
)

// CLI is the command line of lexengo.
type CLI struct {
	Verbose     bool `short:"v" env:"LEXENGO_VERBOSE" help:"Log compilation steps to stderr"`
	SkipInvalid bool `name:"skip-invalid" help:"Skip rules whose pattern does not compile instead of failing"`
	MaxStates   int  `name:"max-states" placeholder:"N" help:"DFA state limit (0 = default, -1 = unlimited)"`

	Generate generateCommand `cmd:"" help:"Generate a Go matcher from a rule file"`
	Tokenize tokenizeCommand `cmd:"" help:"Tokenize input with a rule file"`
	Dot      dotCommand      `cmd:"" help:"Print the automaton of a rule file in Graphviz DOT format"`
}

// env is bound into every command's Run method.
type env struct {
	cli    *CLI
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (e *env) compile(path string) (*lexengo.RuleSet, *lexengo.Lexer[string], error) {
	rs, err := lexengo.LoadRules(path)
	if err != nil {
		return nil, nil, err
	}
	opts := []lexengo.Option{
		lexengo.WithVerbose(e.cli.Verbose),
		lexengo.WithLogOutput(e.stderr),
		lexengo.WithMaxStates(e.cli.MaxStates),
	}
	if e.cli.SkipInvalid {
		opts = append(opts, lexengo.WithErrorHandler(func(rerr *lexengo.RuleError) error {
			fmt.Fprintf(e.stderr, "lexengo: skipping %v\n", rerr)
			return nil
		}))
	}
	lx, err := rs.Compile(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, lx, nil
}

type generateCommand struct {
	Rules   string `arg:"" type:"existingfile" help:"Rule file (.lex, .yaml, .yml or .json)"`
	Output  string `short:"o" required:"" placeholder:"FILE" help:"Output Go file"`
	Package string `short:"p" default:"main" help:"Package of the generated file"`
	Name    string `short:"n" default:"Lexer" help:"Name of the generated matcher type"`
}

func (c *generateCommand) Run(e *env) error {
	_, lx, err := e.compile(c.Rules)
	if err != nil {
		return err
	}
	err = lexengo.GenerateGo(lx, lexengo.GenerateOptions{
		Name:       c.Name,
		Package:    c.Package,
		OutputFile: c.Output,
		Verbose:    e.cli.Verbose,
		LogOutput:  e.stderr,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Generated %s (%d states)\n", c.Output, lx.States())
	return nil
}

type tokenizeCommand struct {
	Rules      string   `arg:"" type:"existingfile" help:"Rule file (.lex, .yaml, .yml or .json)"`
	Input      string   `arg:"" optional:"" type:"existingfile" help:"Input file (stdin when omitted)"`
	Skip       []string `placeholder:"TOKEN" help:"Drop tokens of this kind, in addition to the rule set's skip list"`
	KeepAll    bool     `name:"keep-all" help:"Ignore the rule set's skip list"`
	BufferSize int      `name:"buffer-size" default:"65536" help:"Read buffer size in bytes"`
}

func (c *tokenizeCommand) Run(e *env) error {
	rs, lx, err := e.compile(c.Rules)
	if err != nil {
		return err
	}

	in := e.stdin
	name := "<stdin>"
	if c.Input != "" {
		f, err := os.Open(c.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in, name = f, c.Input
	}

	skip := append([]string(nil), c.Skip...)
	if !c.KeepAll {
		skip = append(skip, rs.Skip...)
	}

	err = stream.Tokenize(in, lx, stream.Config{BufferSize: c.BufferSize}, func(tok stream.Token[string]) bool {
		fmt.Fprintf(e.stdout, "%s\t%s\t%q\n", tok.Pos, tok.Kind, tok.Text)
		return true
	}, skip...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type dotCommand struct {
	Rules  string `arg:"" type:"existingfile" help:"Rule file (.lex, .yaml, .yml or .json)"`
	Output string `short:"o" placeholder:"FILE" help:"Output file (stdout when omitted)"`
	NFA    bool   `name:"nfa" help:"Print the merged NFA instead of the DFA"`
}

func (c *dotCommand) Run(e *env) error {
	_, lx, err := e.compile(c.Rules)
	if err != nil {
		return err
	}

	out := e.stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if c.NFA {
		return lx.WriteNFADOT(out)
	}
	return lx.WriteDOT(out)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("lexengo"),
		kong.Description("Compile regular-expression lexer rules into a maximal-munch DFA."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&env{cli: &cli, stdin: stdin, stdout: stdout, stderr: stderr})
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "lexengo: %v\n", err)
		os.Exit(1)
	}
}
