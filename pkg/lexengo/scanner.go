package lexengo

import (
	"errors"
	"fmt"
)

// ErrNoMatch is wrapped by *LexicalError.
var ErrNoMatch = errors.New("no rule matches")

// Position locates a token in the input. Line and Column start at 1;
// Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position just after text, assuming text starts at p.
func (p Position) Advance(text string) Position {
	p.Offset += len(text)
	for _, r := range text {
		if r == '\n' {
			p.Line++
			p.Column = 1
			continue
		}
		p.Column++
	}
	return p
}

// StartPosition is the position of the first byte of an input.
func StartPosition() Position {
	return Position{Line: 1, Column: 1}
}

// Token is one maximal-munch match produced while tokenizing.
type Token[T comparable] struct {
	Kind  T   // Token of the highest priority rule that matched
	Kinds []T // Every matching rule's token, in declaration order
	Text  string
	Pos   Position
}

// LexicalError reports input no rule can consume.
type LexicalError struct {
	Pos  Position
	Near string // Up to the next 16 runes of input
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s: %v near %q", e.Pos, ErrNoMatch, e.Near)
}

func (e *LexicalError) Unwrap() error {
	return ErrNoMatch
}

func near(s string) string {
	n := 0
	for i := range s {
		if n == 16 {
			return s[:i]
		}
		n++
	}
	return s
}

// Scanner walks an input one token at a time.
//
//	sc := lx.NewScanner(input, "WS")
//	for sc.Scan() {
//	    fmt.Println(sc.Token())
//	}
//	if err := sc.Err(); err != nil {
//	    ...
//	}
type Scanner[T comparable] struct {
	lx    *Lexer[T]
	input string
	base  int // pos.Offset of input[0]
	pos   Position
	skip  map[T]struct{}
	tok   Token[T]
	err   error
}

// NewScanner returns a scanner over input. Tokens whose Kind is listed in
// skip are consumed without being returned.
func (lx *Lexer[T]) NewScanner(input string, skip ...T) *Scanner[T] {
	return lx.NewScannerAt(input, StartPosition(), skip...)
}

// NewScannerAt is like NewScanner but reports positions relative to start,
// for inputs that are a window into a larger text.
func (lx *Lexer[T]) NewScannerAt(input string, start Position, skip ...T) *Scanner[T] {
	s := &Scanner[T]{lx: lx, input: input, base: start.Offset, pos: start, skip: make(map[T]struct{}, len(skip))}
	for _, k := range skip {
		s.skip[k] = struct{}{}
	}
	return s
}

// Scan advances to the next token. It returns false at the end of the input
// or on error.
func (s *Scanner[T]) Scan() bool {
	for s.err == nil && s.offset() < len(s.input) {
		at := s.offset()
		m, ok := s.lx.Match(s.input, at)
		if !ok || m.End == at {
			// A zero-length match makes no progress; it is treated like no match.
			s.err = &LexicalError{Pos: s.pos, Near: near(s.input[at:])}
			return false
		}
		tok := Token[T]{Kind: m.Tokens[0], Kinds: m.Tokens, Text: m.Text, Pos: s.pos}
		s.pos = s.pos.Advance(m.Text)
		if _, skip := s.skip[tok.Kind]; skip {
			continue
		}
		s.tok = tok
		return true
	}
	return false
}

func (s *Scanner[T]) offset() int {
	return s.pos.Offset - s.base
}

// Token returns the token found by the last successful Scan.
func (s *Scanner[T]) Token() Token[T] {
	return s.tok
}

// Pos returns the position of the next unread byte.
func (s *Scanner[T]) Pos() Position {
	return s.pos
}

// Err returns the error that stopped the scanner, if any.
func (s *Scanner[T]) Err() error {
	return s.err
}

// Tokenize splits input into tokens, dropping those whose Kind is in skip.
func (lx *Lexer[T]) Tokenize(input string, skip ...T) ([]Token[T], error) {
	var toks []Token[T]
	sc := lx.NewScanner(input, skip...)
	for sc.Scan() {
		toks = append(toks, sc.Token())
	}
	return toks, sc.Err()
}
