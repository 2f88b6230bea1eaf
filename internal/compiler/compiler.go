// Package compiler turns lexer rules into a single maximal-munch DFA and
// generates Go source for it.
package compiler

import (
	"errors"
	"fmt"
	"io"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/regex"
)

// ErrNoRules is returned when a rule set has no rule left to compile.
var ErrNoRules = errors.New("no rules to compile")

// Rule is one pattern and the token it produces.
type Rule[T any] struct {
	Pattern string
	Token   T
}

// RuleError reports a rule whose pattern failed to compile.
type RuleError struct {
	Rule    int    // Index of the rule in the rule set
	Pattern string // The rule's pattern
	Err     error  // Usually a *regex.SyntaxError
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Config holds the configuration for rule set compilation.
type Config struct {
	MaxStates  int              // Max DFA states (0 = DefaultMaxStates, negative = no limit)
	FirstState automata.StateID // First state id handed out by the allocator
	Verbose    bool             // Enable verbose logging of each compilation step
	LogOutput  io.Writer        // Where verbose output goes (nil = stderr)

	// OnError decides what happens to a rule that fails to compile. A nil
	// OnError aborts with the *RuleError. Otherwise the rule is skipped when
	// OnError returns nil, and compilation aborts with its error when not.
	OnError func(*RuleError) error
}

// Result is a compiled rule set.
type Result[T any] struct {
	DFA     *automata.DFA[T]
	NFA     *automata.NFA[T]
	Skipped []int // Indices of rules dropped by Config.OnError
}

// Compiler compiles rule sets with a fixed configuration. It holds no
// per-compilation state and may be shared between goroutines. With Verbose
// set, LogOutput must accept concurrent writes.
type Compiler[T any] struct {
	config Config
	logger *Logger
}

// New creates a new compiler instance.
func New[T any](config Config) *Compiler[T] {
	logger := NewLogger(config.Verbose)
	logger.SetOutput(config.LogOutput)
	return &Compiler[T]{
		config: config,
		logger: logger,
	}
}

// Compile is a shorthand for New(config).Compile(rules).
func Compile[T any](rules []Rule[T], config Config) (*Result[T], error) {
	return New[T](config).Compile(rules)
}

// Compile builds one NFA per rule, merges them and determinizes the result.
// Rules are built in order from a single allocator, which is what makes
// ambiguous accept states list their tokens in declaration order.
func (c *Compiler[T]) Compile(rules []Rule[T]) (*Result[T], error) {
	alloc := automata.NewAllocator(c.config.FirstState)
	result := &Result[T]{}

	c.logger.Section("Rules")
	nfas := make([]*automata.NFA[T], 0, len(rules))
	for i, rule := range rules {
		nfa, err := c.compileRule(i, rule, alloc)
		if err != nil {
			rerr := &RuleError{Rule: i, Pattern: rule.Pattern, Err: err}
			if c.config.OnError == nil {
				return nil, rerr
			}
			if err := c.config.OnError(rerr); err != nil {
				return nil, err
			}
			c.logger.Log("Skipping rule %d: %v", i, err)
			result.Skipped = append(result.Skipped, i)
			continue
		}
		nfas = append(nfas, nfa)
	}
	if len(nfas) == 0 {
		return nil, ErrNoRules
	}

	result.NFA = automata.Merge(alloc, nfas...)
	c.logger.Log("Merged NFA: %d states, %d edges", len(result.NFA.States()), len(result.NFA.Edges))

	c.logger.Section("Subset Construction")
	dfa, err := automata.Determinize(alloc, result.NFA, automata.Options{MaxStates: c.maxStates()})
	if err != nil {
		return nil, fmt.Errorf("failed to determinize %d rules: %w", len(nfas), err)
	}
	result.DFA = dfa
	c.logger.Log("DFA states: %d", len(dfa.States()))
	c.logger.Log("DFA transitions: %d", len(dfa.Edges()))
	c.logger.Log("Accepting states: %d", len(dfa.Accepting()))
	return result, nil
}

func (c *Compiler[T]) compileRule(i int, rule Rule[T], alloc *automata.Allocator) (*automata.NFA[T], error) {
	ast, err := regex.Parse(rule.Pattern)
	if err != nil {
		return nil, err
	}
	frag := Thompson(ast, alloc)
	c.logger.Log("Rule %d: %q", i, rule.Pattern)
	detail := c.logger.Indent()
	detail.Log("AST: %s", ast)
	detail.Log("NFA: start %d, end %d, %d edges", frag.Start, frag.End, len(frag.Edges))
	return automata.Tag(frag, rule.Token), nil
}

func (c *Compiler[T]) maxStates() int {
	switch {
	case c.config.MaxStates == 0:
		return DefaultMaxStates
	case c.config.MaxStates < 0:
		return 0
	}
	return c.config.MaxStates
}
