package compiler

import (
	"testing"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/regex"
	"github.com/d4l3k/messagediff"
)

const eps = automata.Epsilon

func build(t *testing.T, pattern string) (automata.Fragment, *automata.Allocator) {
	t.Helper()
	ast, err := regex.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	alloc := automata.NewAllocator(0)
	return Thompson(ast, alloc), alloc
}

func TestThompsonFragments(t *testing.T) {
	tests := []struct {
		pattern string
		want    automata.Fragment
		next    automata.StateID
	}{
		{
			pattern: "a",
			want:    automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{{From: 0, To: 1, Symbol: 'a'}}},
			next:    2,
		},
		{
			pattern: "[ab]",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 0, To: 1, Symbol: 'a'},
				{From: 0, To: 1, Symbol: 'b'},
			}},
			next: 2,
		},
		{
			pattern: "ab",
			want: automata.Fragment{Start: 0, End: 3, Edges: []automata.Edge{
				{From: 0, To: 1, Symbol: 'a'},
				{From: 2, To: 3, Symbol: 'b'},
				{From: 1, To: 2, Symbol: eps},
			}},
			next: 4,
		},
		{
			pattern: "a|b",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 2, To: 3, Symbol: 'a'},
				{From: 0, To: 2, Symbol: eps},
				{From: 3, To: 1, Symbol: eps},
				{From: 4, To: 5, Symbol: 'b'},
				{From: 0, To: 4, Symbol: eps},
				{From: 5, To: 1, Symbol: eps},
			}},
			next: 6,
		},
		{
			// No edge leads back into the copy: ? is not a loop.
			pattern: "a?",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 2, To: 3, Symbol: 'a'},
				{From: 0, To: 2, Symbol: eps},
				{From: 3, To: 1, Symbol: eps},
				{From: 0, To: 1, Symbol: eps},
			}},
			next: 4,
		},
		{
			pattern: "a*",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 2, To: 3, Symbol: 'a'},
				{From: 0, To: 2, Symbol: eps},
				{From: 3, To: 1, Symbol: eps},
				{From: 3, To: 2, Symbol: eps},
				{From: 0, To: 1, Symbol: eps},
			}},
			next: 4,
		},
		{
			pattern: "a+",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 2, To: 3, Symbol: 'a'},
				{From: 0, To: 2, Symbol: eps},
				{From: 3, To: 1, Symbol: eps},
				{From: 3, To: 2, Symbol: eps},
			}},
			next: 4,
		},
		{
			pattern: "a{0,0}",
			want:    automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{{From: 0, To: 1, Symbol: eps}}},
			next:    2,
		},
		{
			pattern: "a{2,3}",
			want: automata.Fragment{Start: 0, End: 1, Edges: []automata.Edge{
				{From: 2, To: 3, Symbol: 'a'},
				{From: 0, To: 2, Symbol: eps},
				{From: 4, To: 5, Symbol: 'a'},
				{From: 3, To: 4, Symbol: eps},
				{From: 6, To: 7, Symbol: 'a'},
				{From: 5, To: 6, Symbol: eps},
				{From: 7, To: 1, Symbol: eps},
				{From: 5, To: 1, Symbol: eps},
			}},
			next: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, alloc := build(t, tt.pattern)
			if diff, equal := messagediff.PrettyDiff(tt.want, got); !equal {
				t.Errorf("Thompson(%q):\n%s", tt.pattern, diff)
			}
			if alloc.Peek() != tt.next {
				t.Errorf("next id = %d, want %d", alloc.Peek(), tt.next)
			}
		})
	}
}

func TestThompsonGroupingSharesEndpoints(t *testing.T) {
	plain, _ := build(t, "ab")
	grouped, _ := build(t, "(ab)")
	if diff, equal := messagediff.PrettyDiff(plain, grouped); !equal {
		t.Errorf("grouping changed the fragment:\n%s", diff)
	}
}

func TestThompsonIDsStayInRange(t *testing.T) {
	for _, pattern := range []string{"(a|b){2,4}c*", "[^a-z]+x?", "((ab)*|c){1,3}"} {
		t.Run(pattern, func(t *testing.T) {
			ast := regex.MustParse(pattern)
			alloc := automata.NewAllocator(50)
			f := Thompson(ast, alloc)
			limit := alloc.Peek()
			check := func(id automata.StateID) {
				if id < 50 || id >= limit {
					t.Errorf("state %d outside [50,%d)", id, limit)
				}
			}
			check(f.Start)
			check(f.End)
			for _, e := range f.Edges {
				check(e.From)
				check(e.To)
			}
		})
	}
}

func TestThompsonNegatedSetStaysASCII(t *testing.T) {
	f, _ := build(t, "[^a]")
	if len(f.Edges) != regex.MaxASCIIRune-1 {
		t.Fatalf("got %d edges, want %d", len(f.Edges), regex.MaxASCIIRune-1)
	}
	for _, e := range f.Edges {
		if e.Symbol == 'a' || e.Symbol >= regex.MaxASCIIRune || e.Symbol < 0 {
			t.Errorf("unexpected edge %v", e)
		}
	}
}
