// Package regex parses lexer rule patterns into an AST.
//
// Supported syntax: escapes (\x for any x), character sets with ranges and
// negation ([a-z0-9], [^"]), groups, the quantifiers * + ? and {m,n},
// concatenation and alternation. Anchors, shorthand classes, POSIX classes,
// lookaround and backreferences are not supported.
package regex

import (
	"fmt"
	"strings"
)

// Unbounded is the Max of a repeat without an upper bound.
const Unbounded = -1

// MaxRepeat is the largest bound accepted in X{m,n}.
const MaxRepeat = 1000

// MaxExpandedSize caps the number of leaf nodes a pattern may expand to once
// every bounded repeat is unrolled. It stops nested repeats such as
// (a{0,1000}){0,1000} that pass MaxRepeat one level at a time.
const MaxExpandedSize = 1 << 16

// MaxASCIIRune is the exclusive upper bound of Alphabet.
const MaxASCIIRune = 128

// Alphabet is the closed universe negated character sets are complemented
// in: every code point below MaxASCIIRune.
func Alphabet() []rune {
	out := make([]rune, MaxASCIIRune)
	for i := range out {
		out[i] = rune(i)
	}
	return out
}

// Node is a parsed pattern. The set of implementations is closed: Literal,
// CharacterSet, Grouping, Repeat, Concatenation and Alternation.
type Node interface {
	fmt.Stringer
	node()
}

// Literal matches one character.
type Literal struct {
	Char rune
}

// CharacterSet matches one character out of Chars, or, when Negated, one
// character of Alphabet that is not in Chars. Chars is sorted and has no
// duplicates.
type CharacterSet struct {
	Chars   []rune
	Negated bool
}

// Members returns the characters the set matches.
func (s *CharacterSet) Members() []rune {
	if !s.Negated {
		return s.Chars
	}
	excluded := make(map[rune]struct{}, len(s.Chars))
	for _, c := range s.Chars {
		excluded[c] = struct{}{}
	}
	var out []rune
	for _, c := range Alphabet() {
		if _, ok := excluded[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Grouping is a parenthesized sub-pattern.
type Grouping struct {
	Inner Node
}

// Repeat matches Inner between Min and Max times. Max is Unbounded for
// * and +.
type Repeat struct {
	Inner Node
	Min   int
	Max   int
}

// Concatenation matches Items in sequence.
type Concatenation struct {
	Items []Node
}

// Alternation matches any one of Branches.
type Alternation struct {
	Branches []Node
}

func (*Literal) node()       {}
func (*CharacterSet) node()  {}
func (*Grouping) node()      {}
func (*Repeat) node()        {}
func (*Concatenation) node() {}
func (*Alternation) node()   {}

func (l *Literal) String() string { return fmt.Sprintf("%q", l.Char) }

func (s *CharacterSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.Negated {
		b.WriteByte('^')
	}
	for _, c := range s.Chars {
		b.WriteRune(c)
	}
	b.WriteByte(']')
	return b.String()
}

func (g *Grouping) String() string { return "(" + g.Inner.String() + ")" }

func (r *Repeat) String() string {
	switch {
	case r.Min == 0 && r.Max == Unbounded:
		return r.Inner.String() + "*"
	case r.Min == 1 && r.Max == Unbounded:
		return r.Inner.String() + "+"
	case r.Min == 0 && r.Max == 1:
		return r.Inner.String() + "?"
	case r.Max == Unbounded:
		return fmt.Sprintf("%s{%d,}", r.Inner, r.Min)
	}
	return fmt.Sprintf("%s{%d,%d}", r.Inner, r.Min, r.Max)
}

func (c *Concatenation) String() string { return joinNodes(c.Items, "") }

func (a *Alternation) String() string { return joinNodes(a.Branches, "|") }

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
