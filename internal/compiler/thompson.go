package compiler

import (
	"fmt"

	"github.com/KromDaniel/lexengo/internal/automata"
	"github.com/KromDaniel/lexengo/internal/regex"
)

// Thompson builds the NFA fragment for n. Every state it creates comes from
// alloc, so fragments built from one allocator never share ids.
//
// Literals, character sets, alternations and repeats get a fresh start/end
// pair. Groupings and concatenations reuse the endpoints of their children.
func Thompson(n regex.Node, alloc *automata.Allocator) automata.Fragment {
	switch n := n.(type) {
	case *regex.Literal:
		s, e := alloc.Pair()
		return automata.Fragment{Start: s, End: e, Edges: []automata.Edge{{From: s, To: e, Symbol: n.Char}}}

	case *regex.CharacterSet:
		s, e := alloc.Pair()
		members := n.Members()
		f := automata.Fragment{Start: s, End: e, Edges: make([]automata.Edge, 0, len(members))}
		for _, c := range members {
			f.Edges = append(f.Edges, automata.Edge{From: s, To: e, Symbol: c})
		}
		return f

	case *regex.Grouping:
		return Thompson(n.Inner, alloc)

	case *regex.Concatenation:
		var f automata.Fragment
		for i, item := range n.Items {
			part := Thompson(item, alloc)
			if i == 0 {
				f = part
				continue
			}
			f.Edges = append(f.Edges, part.Edges...)
			f.Edges = append(f.Edges, epsilon(f.End, part.Start))
			f.End = part.End
		}
		return f

	case *regex.Alternation:
		s, e := alloc.Pair()
		f := automata.Fragment{Start: s, End: e}
		for _, branch := range n.Branches {
			part := Thompson(branch, alloc)
			f.Edges = append(f.Edges, part.Edges...)
			f.Edges = append(f.Edges, epsilon(s, part.Start), epsilon(part.End, e))
		}
		return f

	case *regex.Repeat:
		return repeat(n, alloc)
	}
	panic(fmt.Sprintf("compiler: unknown regex node %T", n))
}

// repeat chains copies of the inner fragment between a fresh start and end.
//
// A bounded repeat {m,n} chains n copies with a bypass to the end after each
// copy k where m <= k < n. An unbounded repeat chains max(m,1) copies and
// loops the last one back on itself. When m is 0 the start also connects
// straight to the end.
func repeat(r *regex.Repeat, alloc *automata.Allocator) automata.Fragment {
	s, e := alloc.Pair()
	f := automata.Fragment{Start: s, End: e}
	link := func(from, to automata.StateID) {
		f.Edges = append(f.Edges, epsilon(from, to))
	}

	if r.Max == 0 {
		link(s, e)
		return f
	}

	copies := r.Max
	if r.Max == regex.Unbounded {
		copies = max(r.Min, 1)
	}

	template := Thompson(r.Inner, alloc)
	chain := make([]automata.Fragment, copies)
	prev := s
	for i := range chain {
		c := template
		if i > 0 {
			c = automata.Clone(template, alloc)
		}
		chain[i] = c
		f.Edges = append(f.Edges, c.Edges...)
		link(prev, c.Start)
		prev = c.End
	}
	link(prev, e)

	if r.Max == regex.Unbounded {
		last := chain[len(chain)-1]
		link(last.End, last.Start)
		if r.Min == 0 {
			link(s, e)
		}
		return f
	}

	for k := r.Min; k < r.Max; k++ {
		if k == 0 {
			link(s, e)
			continue
		}
		link(chain[k-1].End, e)
	}
	return f
}

func epsilon(from, to automata.StateID) automata.Edge {
	return automata.Edge{From: from, To: to, Symbol: automata.Epsilon}
}
