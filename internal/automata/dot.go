package automata

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDOT writes a Graphviz rendering of d. Accepting states are double
// circles labelled with their tokens.
func WriteDOT[T any](w io.Writer, d *DFA[T]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph DFA {")
	fmt.Fprintln(bw, "\trankdir=LR;")
	for _, s := range d.States() {
		if toks, ok := d.accepting[s]; ok {
			fmt.Fprintf(bw, "\ts%d [shape=doublecircle; xlabel=%q];\n", s, fmt.Sprint(toks))
		} else {
			fmt.Fprintf(bw, "\ts%d [shape=circle];\n", s)
		}
	}
	fmt.Fprintf(bw, "\t_start [shape=point]; _start -> s%d;\n", d.start)
	for _, e := range d.edges {
		fmt.Fprintf(bw, "\ts%d -> s%d [label=%s];\n", e.From, e.To, symbolLabel(e.Symbol))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// WriteNFADOT writes a Graphviz rendering of n.
func WriteNFADOT[T any](w io.Writer, n *NFA[T]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph NFA {")
	fmt.Fprintln(bw, "\trankdir=LR;")
	for _, s := range n.States() {
		shape := "circle"
		if _, ok := n.Accepting[s]; ok {
			shape = "doublecircle"
		}
		fmt.Fprintf(bw, "\tn%d [shape=%s];\n", s, shape)
	}
	fmt.Fprintf(bw, "\t_start [shape=point]; _start -> n%d;\n", n.Start)
	for _, e := range n.Edges {
		fmt.Fprintf(bw, "\tn%d -> n%d [label=%s];\n", e.From, e.To, symbolLabel(e.Symbol))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func symbolLabel(r rune) string {
	if r == Epsilon {
		return `"ε"`
	}
	return strconv.Quote(string(r))
}
