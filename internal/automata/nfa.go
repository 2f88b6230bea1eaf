package automata

import (
	"fmt"
	"sort"
)

// Epsilon is the symbol of a non-consuming edge.
const Epsilon rune = -1

// Edge is an NFA transition. Symbol is Epsilon for epsilon edges.
type Edge struct {
	From   StateID
	To     StateID
	Symbol rune
}

// IsEpsilon reports whether the edge consumes no input.
func (e Edge) IsEpsilon() bool {
	return e.Symbol == Epsilon
}

func (e Edge) String() string {
	if e.IsEpsilon() {
		return fmt.Sprintf("(%d, %d, ε)", e.From, e.To)
	}
	return fmt.Sprintf("(%d, %d, %q)", e.From, e.To, e.Symbol)
}

// Fragment is an untagged automaton with exactly one start and one end
// state, the unit of Thompson's construction.
type Fragment struct {
	Start StateID
	End   StateID
	Edges []Edge
}

// Clone returns a copy of f in which every state id is replaced by a fresh
// id from alloc. The mapping is consistent across Start, End and Edges.
func Clone(f Fragment, alloc *Allocator) Fragment {
	remap := make(map[StateID]StateID)
	fresh := func(old StateID) StateID {
		if id, ok := remap[old]; ok {
			return id
		}
		id := alloc.Next()
		remap[old] = id
		return id
	}

	out := Fragment{
		Start: fresh(f.Start),
		End:   fresh(f.End),
		Edges: make([]Edge, len(f.Edges)),
	}
	for i, e := range f.Edges {
		out.Edges[i] = Edge{From: fresh(e.From), To: fresh(e.To), Symbol: e.Symbol}
	}
	return out
}

// Tag turns a fragment into an NFA whose end state accepts with tok.
func Tag[T any](f Fragment, tok T) *NFA[T] {
	return &NFA[T]{
		Start:     f.Start,
		Accepting: map[StateID][]T{f.End: {tok}},
		Edges:     f.Edges,
	}
}

// NFA is a nondeterministic automaton with token-carrying accepting states.
// An accepting state may carry several tokens once rules are merged.
type NFA[T any] struct {
	Start     StateID
	Accepting map[StateID][]T
	Edges     []Edge
}

// States returns every state id mentioned by n, in ascending order.
func (n *NFA[T]) States() []StateID {
	seen := map[StateID]struct{}{n.Start: {}}
	for id := range n.Accepting {
		seen[id] = struct{}{}
	}
	for _, e := range n.Edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	ids := make([]StateID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Merge unions per-rule NFAs under a fresh start state with an epsilon edge
// to each rule's start. Accepting states keep the tokens they carry.
func Merge[T any](alloc *Allocator, nfas ...*NFA[T]) *NFA[T] {
	merged := &NFA[T]{
		Start:     alloc.Next(),
		Accepting: make(map[StateID][]T),
	}
	for _, n := range nfas {
		merged.Edges = append(merged.Edges, Edge{From: merged.Start, To: n.Start, Symbol: Epsilon})
		merged.Edges = append(merged.Edges, n.Edges...)
		for id, toks := range n.Accepting {
			merged.Accepting[id] = append(merged.Accepting[id], toks...)
		}
	}
	return merged
}
