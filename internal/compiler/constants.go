package compiler

// DefaultMaxStates is the DFA state limit used when Config.MaxStates is 0.
// Rule sets for real lexers stay far below it. Patterns that remember a
// position counted from the end trip it: (a|b)*a(a|b){12,12} needs 2^13
// states.
const DefaultMaxStates = 10000

// Generated code defaults.
const (
	// DefaultTypeName names the generated matcher type when none is given.
	DefaultTypeName = "Lexer"

	// GeneratedHeader marks generated files for tools that skip them.
	GeneratedHeader = "Code generated by lexengo. DO NOT EDIT."
)
