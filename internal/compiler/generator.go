package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/codegen"
	"github.com/dave/jennifer/jen"
)

// GenerateConfig holds the configuration for code generation.
type GenerateConfig struct {
	Name       string   // Generated type name (DefaultTypeName when empty)
	Package    string   // Package of the generated file
	OutputFile string   // Destination used by Generate
	Patterns   []string // Rule patterns, listed in the type's doc comment
}

// Validate checks the configuration for errors.
func (c GenerateConfig) Validate() error {
	if c.Package == "" {
		return errors.New("package name is required")
	}
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("invalid package name %q", c.Package)
	}
	if c.Name != "" && !token.IsIdentifier(c.Name) {
		return fmt.Errorf("invalid type name %q", c.Name)
	}
	return nil
}

// Generator emits a direct-coded Go matcher for a DFA: one switch case per
// state, one rune case per outgoing transition target.
type Generator struct {
	config GenerateConfig
	dfa    *automata.DFA[string]
	logger *Logger
	file   *jen.File
	name   string
	index  map[automata.StateID]int // DFA state id -> generated state number
	consts map[string]string        // token -> constant name
}

// NewGenerator creates a generator for dfa. A nil logger disables logging.
func NewGenerator(dfa *automata.DFA[string], config GenerateConfig, logger *Logger) *Generator {
	if logger == nil {
		logger = NewLogger(false)
	}
	name := config.Name
	if name == "" {
		name = DefaultTypeName
	}
	return &Generator{
		config: config,
		dfa:    dfa,
		logger: logger,
		name:   name,
	}
}

// Generate writes the formatted source to config.OutputFile.
func (g *Generator) Generate() error {
	if g.config.OutputFile == "" {
		return errors.New("output file is required")
	}
	var buf bytes.Buffer
	if err := g.Render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(g.config.OutputFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// Render writes the formatted source to w.
func (g *Generator) Render(w io.Writer) error {
	if err := g.config.Validate(); err != nil {
		return fmt.Errorf("invalid generate config: %w", err)
	}

	g.logger.Section("Code Generation")
	g.build()

	var buf bytes.Buffer
	if err := g.file.Render(&buf); err != nil {
		return fmt.Errorf("failed to render file: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}
	_, err = w.Write(formatted)
	return err
}

func (g *Generator) build() {
	g.file = jen.NewFile(g.config.Package)
	g.file.HeaderComment(GeneratedHeader)
	g.numberStates()
	g.generateTokenConsts()
	g.generateType()
	g.generateAcceptTable()
	g.generateMatch()
}

// numberStates renumbers DFA states densely with the start state as 0.
func (g *Generator) numberStates() {
	g.index = map[automata.StateID]int{g.dfa.Start(): 0}
	for _, id := range g.dfa.States() {
		if _, ok := g.index[id]; !ok {
			g.index[id] = len(g.index)
		}
	}
	g.logger.Log("States: %d", len(g.index))
}

func (g *Generator) generateTokenConsts() {
	g.consts = make(map[string]string)
	var tokens []string
	for _, toks := range g.dfa.Accepting() {
		for _, tok := range toks {
			if _, ok := g.consts[tok]; !ok {
				g.consts[tok] = ""
				tokens = append(tokens, tok)
			}
		}
	}
	sort.Strings(tokens)

	taken := make(map[string]bool)
	defs := make([]jen.Code, 0, len(tokens))
	for i, tok := range tokens {
		name := codegen.TokenConstName(g.name, tok, i)
		for taken[name] {
			name += "_"
		}
		taken[name] = true
		g.consts[tok] = name
		defs = append(defs, jen.Id(name).Op("=").Lit(tok))
	}
	if len(defs) == 0 {
		return
	}
	g.logger.Log("Token constants: %d", len(defs))
	g.file.Commentf("Tokens produced by %s.", g.name)
	g.file.Const().Defs(defs...)
}

func (g *Generator) generateType() {
	g.file.Commentf("%s is a maximal-munch matcher.", g.name)
	if len(g.config.Patterns) > 0 {
		g.file.Comment("")
		g.file.Comment("Rules, in priority order:")
		g.file.Comment("")
		for _, p := range g.config.Patterns {
			g.file.Comment("\t" + strconv.Quote(p))
		}
	}
	g.file.Type().Id(g.name).Struct()
}

func (g *Generator) generateAcceptTable() {
	accepting := g.dfa.Accepting()
	g.file.Var().Id(codegen.AcceptTableName(g.name)).Op("=").
		Map(jen.Int()).Index().String().
		Values(jen.DictFunc(func(d jen.Dict) {
			for id, toks := range accepting {
				values := make([]jen.Code, len(toks))
				for i, tok := range toks {
					values[i] = jen.Id(g.consts[tok])
				}
				d[jen.Lit(g.index[id])] = jen.Values(values...)
			}
		}))
}

func (g *Generator) generateMatch() {
	accept := codegen.AcceptTableName(g.name)
	end, tokens := jen.Id(codegen.EndName), jen.Id(codegen.TokensName)
	ret := jen.Return(jen.Id(codegen.EndName), jen.Id(codegen.TokensName))

	record := func(at string) jen.Code {
		return jen.If(
			jen.List(jen.Id("t"), jen.Id("ok")).Op(":=").Id(accept).Index(jen.Id(codegen.StateName)),
			jen.Id("ok"),
		).Block(
			jen.List(jen.Id(codegen.EndName), jen.Id(codegen.TokensName)).Op("=").List(jen.Id(at), jen.Id("t")),
		)
	}

	body := []jen.Code{
		jen.List(end, tokens).Op(":=").List(jen.Lit(-1), jen.Index().String().Parens(jen.Nil())),
		jen.If(jen.Id(codegen.OffsetName).Op("<").Lit(0).Op("||").
			Id(codegen.OffsetName).Op(">").Len(jen.Id(codegen.InputName))).
			Block(ret),
		jen.Id(codegen.StateName).Op(":=").Lit(0),
		record(codegen.OffsetName),
	}

	edges := g.dfa.Edges()
	if len(edges) > 0 {
		body = append(body,
			jen.For(
				jen.Id(codegen.PosName).Op(":=").Id(codegen.OffsetName),
				jen.Id(codegen.PosName).Op("<").Len(jen.Id(codegen.InputName)).Op("&&").
					Qual("unicode/utf8", "FullRuneInString").Call(jen.Id(codegen.InputName).Index(jen.Id(codegen.PosName).Op(":"))),
				jen.Empty(),
			).Block(
				jen.List(jen.Id(codegen.RuneName), jen.Id(codegen.SizeName)).Op(":=").
					Qual("unicode/utf8", "DecodeRuneInString").Call(jen.Id(codegen.InputName).Index(jen.Id(codegen.PosName).Op(":"))),
				jen.Switch(jen.Id(codegen.StateName)).Block(g.stateCases(edges, ret)...),
				jen.Id(codegen.PosName).Op("+=").Id(codegen.SizeName),
				record(codegen.PosName),
			),
		)
	}
	body = append(body, ret)

	g.file.Comment("Match returns the end offset of the longest match starting at offset and")
	g.file.Comment("the tokens it carries, or -1 and nil when nothing matches.")
	g.file.Func().Params(jen.Id(g.name)).Id("Match").
		Params(jen.Id(codegen.InputName).String(), jen.Id(codegen.OffsetName).Int()).
		Params(jen.Int(), jen.Index().String()).
		Block(body...)
}

// stateCases builds one case per state with outgoing transitions. Runes
// leading to the same target share a case, in ascending order.
func (g *Generator) stateCases(edges []automata.DEdge, ret jen.Code) []jen.Code {
	type target struct {
		to    int
		runes []jen.Code
	}
	byState := make(map[int][]*target)
	for _, e := range edges {
		from, to := g.index[e.From], g.index[e.To]
		targets := byState[from]
		var t *target
		for _, existing := range targets {
			if existing.to == to {
				t = existing
				break
			}
		}
		if t == nil {
			t = &target{to: to}
			byState[from] = append(targets, t)
		}
		t.runes = append(t.runes, jen.LitRune(e.Symbol))
	}

	states := make([]int, 0, len(byState))
	for s := range byState {
		states = append(states, s)
	}
	sort.Ints(states)

	cases := make([]jen.Code, 0, len(states)+1)
	for _, s := range states {
		inner := make([]jen.Code, 0, len(byState[s])+1)
		for _, t := range byState[s] {
			inner = append(inner, jen.Case(t.runes...).Block(jen.Id(codegen.StateName).Op("=").Lit(t.to)))
		}
		inner = append(inner, jen.Default().Block(ret))
		cases = append(cases, jen.Case(jen.Lit(s)).Block(jen.Switch(jen.Id(codegen.RuneName)).Block(inner...)))
	}
	cases = append(cases, jen.Default().Block(ret))
	g.logger.Log("Transition cases: %d states, %d edges", len(states), len(edges))
	return cases
}
