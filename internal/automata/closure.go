package automata

import (
	"sort"
	"strconv"
	"strings"
)

// edgeIndex groups NFA edges by source state.
type edgeIndex struct {
	epsilon map[StateID][]StateID
	symbol  map[StateID][]Edge
}

func newEdgeIndex(edges []Edge) *edgeIndex {
	ix := &edgeIndex{
		epsilon: make(map[StateID][]StateID),
		symbol:  make(map[StateID][]Edge),
	}
	for _, e := range edges {
		if e.IsEpsilon() {
			ix.epsilon[e.From] = append(ix.epsilon[e.From], e.To)
		} else {
			ix.symbol[e.From] = append(ix.symbol[e.From], e)
		}
	}
	return ix
}

// closure returns the sorted epsilon closure of states. It walks an explicit
// stack so deep epsilon chains never grow the call stack.
func (ix *edgeIndex) closure(states []StateID) []StateID {
	seen := make(map[StateID]struct{}, len(states))
	stack := make([]StateID, 0, len(states))
	for _, s := range states {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		stack = append(stack, s)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range ix.epsilon[top] {
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			stack = append(stack, to)
		}
	}

	out := make([]StateID, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EpsilonClosure returns the smallest superset of states closed under the
// epsilon edges in edges, sorted ascending.
func EpsilonClosure(edges []Edge, states []StateID) []StateID {
	return newEdgeIndex(edges).closure(states)
}

// subsetKey identifies a sorted set of NFA states.
func subsetKey(set []StateID) string {
	var b strings.Builder
	for i, s := range set {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(s)))
	}
	return b.String()
}
