package automata

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrNondeterministic is returned by NewDFA when two edges leave the same
// state on the same symbol towards different states.
var ErrNondeterministic = errors.New("conflicting DFA transitions")

// DEdge is a DFA transition.
type DEdge struct {
	From   StateID
	To     StateID
	Symbol rune
}

// DFA is a deterministic automaton whose accepting states carry an ordered
// token list. A DFA is immutable once built and safe for concurrent use.
type DFA[T any] struct {
	start     StateID
	edges     []DEdge
	trans     map[StateID]map[rune]StateID
	accepting map[StateID][]T
}

// NewDFA builds a DFA from its parts. Duplicate edges are collapsed; edges
// that would make a (state, symbol) pair ambiguous are rejected.
func NewDFA[T any](start StateID, accepting map[StateID][]T, edges []DEdge) (*DFA[T], error) {
	d := &DFA[T]{
		start:     start,
		trans:     make(map[StateID]map[rune]StateID),
		accepting: make(map[StateID][]T, len(accepting)),
	}
	for _, e := range edges {
		if e.Symbol < 0 {
			return nil, fmt.Errorf("edge %d -> %d: invalid symbol %d", e.From, e.To, e.Symbol)
		}
		row := d.trans[e.From]
		if row == nil {
			row = make(map[rune]StateID)
			d.trans[e.From] = row
		}
		if to, ok := row[e.Symbol]; ok {
			if to != e.To {
				return nil, fmt.Errorf("%w: state %d on %q goes to %d and %d", ErrNondeterministic, e.From, e.Symbol, to, e.To)
			}
			continue
		}
		row[e.Symbol] = e.To
		d.edges = append(d.edges, e)
	}
	sort.Slice(d.edges, func(i, j int) bool {
		a, b := d.edges[i], d.edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.Symbol < b.Symbol
	})
	for id, toks := range accepting {
		d.accepting[id] = append([]T{}, toks...)
	}
	return d, nil
}

// Start returns the start state.
func (d *DFA[T]) Start() StateID { return d.start }

// Edges returns the transitions sorted by source state and symbol.
func (d *DFA[T]) Edges() []DEdge {
	return append([]DEdge(nil), d.edges...)
}

// Accepting returns a copy of the accepting map.
func (d *DFA[T]) Accepting() map[StateID][]T {
	out := make(map[StateID][]T, len(d.accepting))
	for id, toks := range d.accepting {
		out[id] = append([]T{}, toks...)
	}
	return out
}

// Tokens returns a copy of the tokens of state and whether it accepts.
func (d *DFA[T]) Tokens(state StateID) ([]T, bool) {
	toks, ok := d.accepting[state]
	return append([]T(nil), toks...), ok
}

// Step returns the successor of state on r.
func (d *DFA[T]) Step(state StateID, r rune) (StateID, bool) {
	to, ok := d.trans[state][r]
	return to, ok
}

// States returns every state id, ascending.
func (d *DFA[T]) States() []StateID {
	seen := map[StateID]struct{}{d.start: {}}
	for id := range d.accepting {
		seen[id] = struct{}{}
	}
	for _, e := range d.edges {
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

// Match is the longest accepted prefix found by the matcher. Start and End
// are byte offsets into the input.
type Match[T any] struct {
	Start  int
	End    int
	Text   string
	Tokens []T
}

// Walk is the outcome of running the DFA from an offset.
type Walk[T any] struct {
	Match   Match[T]
	Matched bool
	// Exhausted is set when the walk stopped because the input ended (or
	// ended inside a UTF-8 sequence) while transitions were still possible.
	// A longer match may exist if more input follows.
	Exhausted bool
}

// Walk runs the automaton over input starting at the byte offset, keeping
// the last accepting position reached.
func (d *DFA[T]) Walk(input string, offset int) Walk[T] {
	return walk(d, input, offset, utf8.FullRuneInString, utf8.DecodeRuneInString)
}

// WalkBytes is like Walk for a byte slice. The match text is copied out of
// input.
func (d *DFA[T]) WalkBytes(input []byte, offset int) Walk[T] {
	return walk(d, input, offset, utf8.FullRune, utf8.DecodeRune)
}

func walk[T any, S string | []byte](d *DFA[T], input S, offset int, full func(S) bool, decode func(S) (rune, int)) Walk[T] {
	var w Walk[T]
	if offset < 0 || offset > len(input) {
		return w
	}

	state := d.start
	accept := -1
	if _, ok := d.accepting[state]; ok {
		accept = offset
	}
	last := state

	pos := offset
	for {
		if pos == len(input) || !full(input[pos:]) {
			w.Exhausted = len(d.trans[state]) > 0
			break
		}
		r, size := decode(input[pos:])
		next, ok := d.trans[state][r]
		if !ok {
			break
		}
		state = next
		pos += size
		if _, ok := d.accepting[state]; ok {
			accept, last = pos, state
		}
	}
	if accept >= 0 {
		w.Matched = true
		w.Match = Match[T]{
			Start:  offset,
			End:    accept,
			Text:   string(input[offset:accept]),
			Tokens: append([]T(nil), d.accepting[last]...),
		}
	}
	return w
}

// Match returns the longest prefix of input[offset:] the DFA accepts. A
// zero-length match is returned when only the start state accepts.
func (d *DFA[T]) Match(input string, offset int) (Match[T], bool) {
	w := d.Walk(input, offset)
	return w.Match, w.Matched
}
