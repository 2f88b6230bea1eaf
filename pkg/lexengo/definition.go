package lexengo

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Definition adapts a Lexer to participle's lexer.Definition, so a compiled
// rule set can drive a participle grammar. Each distinct token becomes a
// symbol named after it; grammars refer to them as @IDENT and so on.
type Definition struct {
	lx      *Lexer[string]
	skip    []string
	symbols map[string]lexer.TokenType
}

var _ lexer.Definition = (*Definition)(nil)
var _ lexer.StringDefinition = (*Definition)(nil)

// NewDefinition returns a participle lexer definition backed by lx. Tokens
// listed in skip never reach the parser.
func NewDefinition(lx *Lexer[string], skip ...string) *Definition {
	d := &Definition{
		lx:      lx,
		skip:    skip,
		symbols: map[string]lexer.TokenType{"EOF": lexer.EOF},
	}
	for _, r := range lx.rules {
		if _, ok := d.symbols[r.Token]; !ok {
			d.symbols[r.Token] = lexer.EOF - lexer.TokenType(len(d.symbols))
		}
	}
	return d
}

// Symbols implements lexer.Definition.
func (d *Definition) Symbols() map[string]lexer.TokenType {
	out := make(map[string]lexer.TokenType, len(d.symbols))
	for k, v := range d.symbols {
		out[k] = v
	}
	return out
}

// Lex implements lexer.Definition. The whole reader is consumed up front.
func (d *Definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return d.LexString(filename, string(src))
}

// LexString implements lexer.StringDefinition.
func (d *Definition) LexString(filename string, input string) (lexer.Lexer, error) {
	return &definitionLexer{
		filename: filename,
		symbols:  d.symbols,
		sc:       d.lx.NewScanner(input, d.skip...),
	}, nil
}

type definitionLexer struct {
	filename string
	symbols  map[string]lexer.TokenType
	sc       *Scanner[string]
}

func (l *definitionLexer) Next() (lexer.Token, error) {
	if l.sc.Scan() {
		tok := l.sc.Token()
		return lexer.Token{
			Type:  l.symbols[tok.Kind],
			Value: tok.Text,
			Pos:   l.position(tok.Pos),
		}, nil
	}
	if err := l.sc.Err(); err != nil {
		return lexer.Token{}, fmt.Errorf("%s:%w", l.filename, err)
	}
	return lexer.EOFToken(l.position(l.sc.Pos())), nil
}

func (l *definitionLexer) position(p Position) lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}
