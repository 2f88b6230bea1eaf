package automata

import (
	"errors"
	"fmt"
	"sort"
)

// ErrStateExplosion is returned when subset construction discovers more
// states than Options.MaxStates allows.
var ErrStateExplosion = errors.New("DFA state limit exceeded")

// Options tunes subset construction.
type Options struct {
	// MaxStates bounds the number of DFA states. Zero means no limit.
	MaxStates int
}

// Determinize converts n into an equivalent DFA by subset construction.
//
// DFA state ids come from alloc and are assigned once every subset has been
// discovered, in discovery order. A DFA state accepts when its subset holds
// an accepting NFA state; its tokens are the members' tokens concatenated in
// ascending NFA state id. Rules compiled one after another from one
// allocator have increasing ids, so this is rule-declaration order.
func Determinize[T any](alloc *Allocator, n *NFA[T], opts Options) (*DFA[T], error) {
	ix := newEdgeIndex(n.Edges)

	type move struct {
		from, to int
		symbol   rune
	}

	start := ix.closure([]StateID{n.Start})
	subsets := [][]StateID{start}
	byKey := map[string]int{subsetKey(start): 0}
	worklist := []int{0}
	var moves []move

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]

		targets := make(map[rune][]StateID)
		for _, s := range subsets[cur] {
			for _, e := range ix.symbol[s] {
				targets[e.Symbol] = append(targets[e.Symbol], e.To)
			}
		}

		symbols := make([]rune, 0, len(targets))
		for c := range targets {
			symbols = append(symbols, c)
		}
		sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

		for _, c := range symbols {
			next := ix.closure(targets[c])
			key := subsetKey(next)
			idx, ok := byKey[key]
			if !ok {
				if opts.MaxStates > 0 && len(subsets) >= opts.MaxStates {
					return nil, fmt.Errorf("%w: more than %d states", ErrStateExplosion, opts.MaxStates)
				}
				idx = len(subsets)
				subsets = append(subsets, next)
				byKey[key] = idx
				worklist = append(worklist, idx)
			}
			moves = append(moves, move{from: cur, to: idx, symbol: c})
		}
	}

	ids := make([]StateID, len(subsets))
	for i := range subsets {
		ids[i] = alloc.Next()
	}

	accepting := make(map[StateID][]T)
	for i, set := range subsets {
		accept := false
		toks := []T{}
		for _, s := range set {
			if t, ok := n.Accepting[s]; ok {
				accept = true
				toks = append(toks, t...)
			}
		}
		if accept {
			accepting[ids[i]] = toks
		}
	}

	edges := make([]DEdge, len(moves))
	for i, m := range moves {
		edges[i] = DEdge{From: ids[m.from], To: ids[m.to], Symbol: m.symbol}
	}

	return NewDFA(ids[0], accepting, edges)
}
