package lexengo

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"
)

var calcRules = []Rule[string]{
	{Pattern: "let", Token: "LET"},
	{Pattern: "[0-9]+", Token: "NUMBER"},
	{Pattern: "[a-z_][a-z0-9_]*", Token: "IDENT"},
	{Pattern: `\+|-|\*|/|=`, Token: "OP"},
	{Pattern: "[ \t\n]+", Token: "WS"},
}

func kinds(toks []Token[string]) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenize(t *testing.T) {
	lx := MustCompile(calcRules)
	toks, err := lx.Tokenize("let x = 42\n+ y", "WS")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	want := []Token[string]{
		{Kind: "LET", Kinds: []string{"LET", "IDENT"}, Text: "let", Pos: Position{Offset: 0, Line: 1, Column: 1}},
		{Kind: "IDENT", Kinds: []string{"IDENT"}, Text: "x", Pos: Position{Offset: 4, Line: 1, Column: 5}},
		{Kind: "OP", Kinds: []string{"OP"}, Text: "=", Pos: Position{Offset: 6, Line: 1, Column: 7}},
		{Kind: "NUMBER", Kinds: []string{"NUMBER"}, Text: "42", Pos: Position{Offset: 8, Line: 1, Column: 9}},
		{Kind: "OP", Kinds: []string{"OP"}, Text: "+", Pos: Position{Offset: 11, Line: 2, Column: 1}},
		{Kind: "IDENT", Kinds: []string{"IDENT"}, Text: "y", Pos: Position{Offset: 13, Line: 2, Column: 3}},
	}
	if diff, equal := messagediff.PrettyDiff(want, toks); !equal {
		t.Errorf("Tokenize:\n%s", diff)
	}
}

func TestTokenizeKeepsSkippableTokensByDefault(t *testing.T) {
	toks, err := MustCompile(calcRules).Tokenize("a b")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if diff, equal := messagediff.PrettyDiff([]string{"IDENT", "WS", "IDENT"}, kinds(toks)); !equal {
		t.Errorf("kinds:\n%s", diff)
	}
}

func TestLongestMatchBeatsPriority(t *testing.T) {
	toks, err := MustCompile(calcRules).Tokenize("letter", "WS")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Kind != "IDENT" || toks[0].Text != "letter" {
		t.Errorf("Tokenize(letter) = %+v, want one IDENT", toks)
	}
}

func TestTokenKindsOwnedByCaller(t *testing.T) {
	lx := MustCompile([]Rule[string]{{Pattern: "a|b", Token: "A"}, {Pattern: "b", Token: "B"}})

	toks, err := lx.Tokenize("b")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	toks[0].Kinds[0] = "CHANGED"
	m, _ := lx.Match("b", 0)
	m.Tokens[1] = "CHANGED"
	w := lx.WalkBytes([]byte("b"), 0)
	w.Match.Tokens[0] = "CHANGED"

	again, ok := lx.Match("b", 0)
	if !ok {
		t.Fatal("Match(b): no match")
	}
	if diff, equal := messagediff.PrettyDiff([]string{"A", "B"}, again.Tokens); !equal {
		t.Errorf("lexer changed by edits to returned tokens:\n%s", diff)
	}
}

func TestLexicalError(t *testing.T) {
	toks, err := MustCompile(calcRules).Tokenize("x ? y", "WS")
	if len(toks) != 1 {
		t.Errorf("got %d tokens before the error, want 1", len(toks))
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	var lerr *LexicalError
	if !errors.As(err, &lerr) {
		t.Fatalf("err is %T, want *LexicalError", err)
	}
	if diff, equal := messagediff.PrettyDiff(Position{Offset: 2, Line: 1, Column: 3}, lerr.Pos); !equal {
		t.Errorf("position:\n%s", diff)
	}
	if lerr.Near != "? y" {
		t.Errorf("near = %q, want %q", lerr.Near, "? y")
	}
	if got := err.Error(); !strings.HasPrefix(got, "1:3: no rule matches") {
		t.Errorf("Error() = %q", got)
	}
}

func TestZeroLengthMatchIsAnError(t *testing.T) {
	lx := MustCompile([]Rule[string]{{Pattern: "a*", Token: "A"}})

	if m, ok := lx.Match("b", 0); !ok || m.End != 0 {
		t.Errorf("Match(b) = %+v, %v, want empty match", m, ok)
	}
	if _, err := lx.Tokenize("aab"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
	toks, err := lx.Tokenize("")
	if err != nil || len(toks) != 0 {
		t.Errorf("Tokenize(\"\") = %v, %v", toks, err)
	}
}

func TestScannerAt(t *testing.T) {
	lx := MustCompile(calcRules)
	sc := lx.NewScannerAt("b 1", Position{Offset: 100, Line: 5, Column: 7}, "WS")

	var got []Token[string]
	for sc.Scan() {
		got = append(got, sc.Token())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	want := []Token[string]{
		{Kind: "IDENT", Kinds: []string{"IDENT"}, Text: "b", Pos: Position{Offset: 100, Line: 5, Column: 7}},
		{Kind: "NUMBER", Kinds: []string{"NUMBER"}, Text: "1", Pos: Position{Offset: 102, Line: 5, Column: 9}},
	}
	if diff, equal := messagediff.PrettyDiff(want, got); !equal {
		t.Errorf("tokens:\n%s", diff)
	}
	if sc.Pos().Offset != 103 {
		t.Errorf("final offset = %d, want 103", sc.Pos().Offset)
	}
}

func TestPositionAdvance(t *testing.T) {
	tests := []struct {
		text string
		want Position
	}{
		{"", Position{Offset: 0, Line: 1, Column: 1}},
		{"abc", Position{Offset: 3, Line: 1, Column: 4}},
		{"a\nb", Position{Offset: 3, Line: 2, Column: 2}},
		{"é", Position{Offset: 2, Line: 1, Column: 2}},
		{"\n\n", Position{Offset: 2, Line: 3, Column: 1}},
	}
	for _, tt := range tests {
		if got := StartPosition().Advance(tt.text); got != tt.want {
			t.Errorf("Advance(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestWalkReportsExhaustion(t *testing.T) {
	lx := MustCompile([]Rule[string]{{Pattern: "let", Token: "LET"}})
	w := lx.Walk("le", 0)
	if w.Matched || !w.Exhausted {
		t.Errorf("Walk(le) = %+v, want unmatched and exhausted", w)
	}
	w = lx.Walk("let", 0)
	if !w.Matched || w.Exhausted {
		t.Errorf("Walk(let) = %+v, want matched and not exhausted", w)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile([]Rule[string]{
		{Pattern: "a", Token: "A"},
		{Pattern: "[b-a]", Token: "B"},
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
	var rerr *RuleError
	if !errors.As(err, &rerr) || rerr.Rule != 1 {
		t.Errorf("err = %v, want *RuleError for rule 1", err)
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) || serr.Offset != 1 {
		t.Errorf("err = %v, want *SyntaxError at offset 1", err)
	}

	if _, err := Compile[string](nil); !errors.Is(err, ErrNoRules) {
		t.Errorf("Compile(nil) err = %v, want ErrNoRules", err)
	}
}

func TestOptions(t *testing.T) {
	t.Run("SkipInvalid", func(t *testing.T) {
		lx, err := Compile([]Rule[string]{
			{Pattern: "a", Token: "A"},
			{Pattern: "b|", Token: "B"},
			{Pattern: "c", Token: "C"},
		}, SkipInvalid())
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if diff, equal := messagediff.PrettyDiff([]int{1}, lx.Skipped()); !equal {
			t.Errorf("skipped:\n%s", diff)
		}
		if len(lx.Rules()) != 3 {
			t.Errorf("Rules() lost entries: %v", lx.Rules())
		}
	})

	t.Run("WithErrorHandler", func(t *testing.T) {
		var seen []string
		_, err := Compile([]Rule[string]{{Pattern: "(", Token: "A"}, {Pattern: "x", Token: "X"}},
			WithErrorHandler(func(e *RuleError) error {
				seen = append(seen, e.Pattern)
				return nil
			}))
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if len(seen) != 1 || seen[0] != "(" {
			t.Errorf("handler saw %v", seen)
		}
	})

	t.Run("WithVerbose", func(t *testing.T) {
		var buf bytes.Buffer
		if _, err := Compile(calcRules, WithVerbose(true), WithLogOutput(&buf)); err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if !strings.Contains(buf.String(), "[lexengo] === Subset Construction ===") {
			t.Errorf("missing log output:\n%s", buf.String())
		}
	})

	t.Run("WithMaxStates", func(t *testing.T) {
		_, err := Compile([]Rule[string]{{Pattern: "(a|b)*a(a|b){10,10}", Token: "X"}}, WithMaxStates(50))
		if !errors.Is(err, ErrStateExplosion) {
			t.Errorf("err = %v, want ErrStateExplosion", err)
		}
	})

	t.Run("WithFirstState", func(t *testing.T) {
		var a, b bytes.Buffer
		if err := MustCompile(calcRules, WithFirstState(1000)).WriteDOT(&a); err != nil {
			t.Fatal(err)
		}
		if err := MustCompile(calcRules, WithFirstState(1000)).WriteDOT(&b); err != nil {
			t.Fatal(err)
		}
		if a.String() != b.String() {
			t.Errorf("DOT output differs between identical compilations")
		}
		if !strings.Contains(a.String(), "digraph DFA {") {
			t.Errorf("unexpected DOT output:\n%s", a.String())
		}
	})
}

func TestConcurrentTokenize(t *testing.T) {
	lx := MustCompile(calcRules)
	inputs := []string{"let a = 1", "b * 22 - c", "x\ny\nz", "let let let"}
	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			for i := 0; i < 100; i++ {
				if _, err := lx.Tokenize(input, "WS"); err != nil {
					t.Fatalf("Tokenize(%q): %v", input, err)
				}
			}
		})
	}
}

func TestWriteNFADOT(t *testing.T) {
	var buf bytes.Buffer
	if err := MustCompile(calcRules).WriteNFADOT(&buf); err != nil {
		t.Fatalf("WriteNFADOT: %v", err)
	}
	if !strings.Contains(buf.String(), "ε") {
		t.Errorf("NFA output has no epsilon edges:\n%s", buf.String())
	}
}
