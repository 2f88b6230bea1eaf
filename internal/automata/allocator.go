// Package automata implements the NFA and DFA types of a compiled lexer:
// the state allocator, fragment cloning, NFA merging, subset construction
// and the maximal munch matcher.
package automata

// StateID identifies a state of an NFA or DFA.
type StateID int

// Allocator hands out state ids. Every fragment, clone and DFA state of one
// compiled lexer draws from the same allocator, so ids are never reused.
//
// An Allocator is not safe for concurrent use; give each compilation its own.
type Allocator struct {
	next StateID
}

// NewAllocator returns an allocator whose first id is first.
func NewAllocator(first StateID) *Allocator {
	return &Allocator{next: first}
}

// Next returns a fresh state id.
func (a *Allocator) Next() StateID {
	id := a.next
	a.next++
	return id
}

// Pair returns two fresh ids, typically the start and end of a fragment.
func (a *Allocator) Pair() (StateID, StateID) {
	return a.Next(), a.Next()
}

// Peek returns the id the next call to Next will return.
func (a *Allocator) Peek() StateID {
	return a.next
}
