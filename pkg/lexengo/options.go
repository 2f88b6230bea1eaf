package lexengo

import (
	"io"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/compiler"
)

type options struct {
	config compiler.Config
}

func defaultOptions() options {
	return options{}
}

// Option configures Compile.
type Option func(*options)

// WithVerbose logs every compilation step.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.config.Verbose = verbose
	}
}

// WithLogOutput sets where verbose output goes. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.config.LogOutput = w
	}
}

// WithMaxStates bounds the number of DFA states. Zero selects the default
// limit and a negative value removes it.
func WithMaxStates(n int) Option {
	return func(o *options) {
		o.config.MaxStates = n
	}
}

// WithFirstState sets the first automaton state id. Two compilations of the
// same rules with the same first id produce identical automata.
func WithFirstState(id int) Option {
	return func(o *options) {
		o.config.FirstState = automata.StateID(id)
	}
}

// WithErrorHandler decides what happens to a rule whose pattern does not
// compile: returning nil skips the rule, returning an error aborts.
func WithErrorHandler(fn func(*RuleError) error) Option {
	return func(o *options) {
		o.config.OnError = fn
	}
}

// SkipInvalid skips rules whose pattern does not compile instead of
// failing. Skipped rules are reported by Lexer.Skipped and logged in
// verbose mode.
func SkipInvalid() Option {
	return WithErrorHandler(func(*RuleError) error { return nil })
}
