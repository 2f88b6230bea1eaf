// Package lexengo compiles a set of regular-expression rules, each tagged
// with a token, into a single deterministic automaton that performs
// maximal-munch matching.
//
// Example:
//
//	lx, err := lexengo.Compile([]lexengo.Rule[string]{
//	    {Pattern: "if", Token: "IF"},
//	    {Pattern: "[a-z]+", Token: "IDENT"},
//	    {Pattern: "[ \t\n]+", Token: "WS"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	toks, err := lx.Tokenize("if x", "WS")
//
// When two rules accept the same longest match, the match carries both
// tokens in declaration order, so the first declared rule wins ties.
package lexengo

import (
	"fmt"
	"io"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/compiler"
	"github.com/KromDaniel/lexengo/internal/regex"
)

// Syntax error kinds. Errors returned by Compile wrap one of these when a
// pattern is malformed.
var (
	ErrEmptyPattern          = regex.ErrEmptyPattern
	ErrTrailingEscape        = regex.ErrTrailingEscape
	ErrUnmatchedBracket      = regex.ErrUnmatchedBracket
	ErrDanglingMetacharacter = regex.ErrDanglingMetacharacter
	ErrAlternationAtBoundary = regex.ErrAlternationAtBoundary
	ErrInvalidRange          = regex.ErrInvalidRange
	ErrUnsupportedAnchor     = regex.ErrUnsupportedAnchor
	ErrRepeatTooLarge        = regex.ErrRepeatTooLarge
	ErrInternal              = regex.ErrInternal

	ErrNoRules        = compiler.ErrNoRules
	ErrStateExplosion = automata.ErrStateExplosion
)

// SyntaxError describes a malformed pattern, with a rune offset into it.
type SyntaxError = regex.SyntaxError

// RuleError names the rule whose pattern failed to compile.
type RuleError = compiler.RuleError

// Rule is one pattern and the token it produces.
type Rule[T comparable] struct {
	Pattern string `json:"pattern"`
	Token   T      `json:"token"`
}

// Match is the longest accepted prefix at an offset. Start and End are byte
// offsets. Tokens lists every rule that accepts Text, in declaration order.
// It is a fresh slice owned by the caller.
type Match[T comparable] struct {
	Start  int
	End    int
	Text   string
	Tokens []T
}

// Walk is a match attempt that also reports whether the input ran out
// while a longer match was still possible.
type Walk[T comparable] struct {
	Match     Match[T]
	Matched   bool
	Exhausted bool
}

// Lexer is a compiled rule set. It is immutable and safe for concurrent use.
type Lexer[T comparable] struct {
	rules   []Rule[T]
	skipped []int
	nfa     *automata.NFA[T]
	dfa     *automata.DFA[T]
}

// Compile compiles rules into a Lexer. Rules are tried together; on equal
// match length the earlier rule takes priority.
func Compile[T comparable](rules []Rule[T], opts ...Option) (*Lexer[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	crules := make([]compiler.Rule[T], len(rules))
	for i, r := range rules {
		crules[i] = compiler.Rule[T]{Pattern: r.Pattern, Token: r.Token}
	}
	res, err := compiler.Compile(crules, o.config)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return &Lexer[T]{
		rules:   append([]Rule[T](nil), rules...),
		skipped: res.Skipped,
		nfa:     res.NFA,
		dfa:     res.DFA,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile[T comparable](rules []Rule[T], opts ...Option) *Lexer[T] {
	lx, err := Compile(rules, opts...)
	if err != nil {
		panic(err)
	}
	return lx
}

// Rules returns the rules the lexer was compiled from, including skipped ones.
func (lx *Lexer[T]) Rules() []Rule[T] {
	return append([]Rule[T](nil), lx.rules...)
}

// Skipped returns the indices of rules dropped by an error handler.
func (lx *Lexer[T]) Skipped() []int {
	return append([]int(nil), lx.skipped...)
}

// States returns the number of DFA states.
func (lx *Lexer[T]) States() int {
	return len(lx.dfa.States())
}

// Match returns the longest prefix of input[offset:] accepted by any rule.
// A zero-length match is possible when a rule accepts the empty string.
func (lx *Lexer[T]) Match(input string, offset int) (Match[T], bool) {
	w := lx.Walk(input, offset)
	return w.Match, w.Matched
}

// Walk is like Match but also reports whether more input could have
// extended the match.
func (lx *Lexer[T]) Walk(input string, offset int) Walk[T] {
	return convertWalk(lx.dfa.Walk(input, offset))
}

// WalkBytes is like Walk for a byte slice. Match.Text is a copy, so input
// may be reused afterwards.
func (lx *Lexer[T]) WalkBytes(input []byte, offset int) Walk[T] {
	return convertWalk(lx.dfa.WalkBytes(input, offset))
}

func convertWalk[T comparable](w automata.Walk[T]) Walk[T] {
	return Walk[T]{
		Match: Match[T]{
			Start:  w.Match.Start,
			End:    w.Match.End,
			Text:   w.Match.Text,
			Tokens: w.Match.Tokens,
		},
		Matched:   w.Matched,
		Exhausted: w.Exhausted,
	}
}

// WriteDOT writes the DFA in Graphviz DOT format.
func (lx *Lexer[T]) WriteDOT(w io.Writer) error {
	return automata.WriteDOT(w, lx.dfa)
}

// WriteNFADOT writes the merged NFA the DFA was built from in Graphviz DOT
// format.
func (lx *Lexer[T]) WriteNFADOT(w io.Writer) error {
	return automata.WriteNFADOT(w, lx.nfa)
}
