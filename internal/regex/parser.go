package regex

import (
	"fmt"
	"sort"
	"strconv"
)

// item is one element of the stream the passes rewrite. Until a pass
// claims it, an item is an unparsed rune (node == nil).
type item struct {
	node Node
	char rune
	pos  int
}

func (it item) is(c rune) bool {
	return it.node == nil && it.char == c
}

// asNode returns the parsed node, turning a leftover rune into a Literal.
func (it item) asNode() Node {
	if it.node != nil {
		return it.node
	}
	return &Literal{Char: it.char}
}

type pass func([]item) ([]item, error)

type parser struct {
	pattern string
}

// Parse parses pattern into an AST. Errors are *SyntaxError values.
func Parse(pattern string) (Node, error) {
	p := &parser{pattern: pattern}
	if pattern == "" {
		return nil, p.errorf(ErrEmptyPattern, -1, "")
	}
	runes := []rune(pattern)
	items := make([]item, len(runes))
	for i, r := range runes {
		items[i] = item{char: r, pos: i}
	}
	n, err := p.run(items)
	if err != nil {
		return nil, err
	}
	if expandedSize(n) > MaxExpandedSize {
		return nil, p.errorf(ErrRepeatTooLarge, -1, fmt.Sprintf("pattern expands to more than %d nodes", MaxExpandedSize))
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(pattern string) Node {
	n, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *parser) errorf(kind error, offset int, detail string) *SyntaxError {
	return &SyntaxError{Pattern: p.pattern, Offset: offset, Kind: kind, Detail: detail}
}

// run applies the passes in order. Group contents go through run again.
func (p *parser) run(items []item) (Node, error) {
	passes := []pass{
		p.escapePass,
		p.characterSetPass,
		p.groupingPass,
		p.repeatPass,
		p.rangeRepeatPass,
		p.concatenationPass,
	}
	var err error
	for _, pass := range passes {
		if items, err = pass(items); err != nil {
			return nil, err
		}
	}
	return p.alternationPass(items)
}

func (p *parser) escapePass(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for i := 0; i < len(items); i++ {
		it := items[i]
		if !it.is('\\') {
			out = append(out, it)
			continue
		}
		if i+1 == len(items) {
			return nil, p.errorf(ErrTrailingEscape, it.pos, "")
		}
		escaped := items[i+1]
		out = append(out, item{node: &Literal{Char: escaped.char}, pos: it.pos})
		i++
	}
	return out, nil
}

func (p *parser) characterSetPass(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch {
		case it.is(']'):
			return nil, p.errorf(ErrUnmatchedBracket, it.pos, "']' without '['")
		case it.is('['):
			end := -1
			for j := i + 1; j < len(items); j++ {
				if items[j].is(']') {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, p.errorf(ErrUnmatchedBracket, it.pos, "'[' without ']'")
			}
			set, err := p.characterSet(items[i+1:end], it.pos)
			if err != nil {
				return nil, err
			}
			out = append(out, item{node: set, pos: it.pos})
			i = end
		default:
			out = append(out, it)
		}
	}
	return out, nil
}

func (p *parser) characterSet(members []item, at int) (*CharacterSet, error) {
	set := &CharacterSet{}
	if len(members) > 0 && members[0].is('^') {
		set.Negated = true
		members = members[1:]
	}
	if len(members) == 0 && !set.Negated {
		return nil, p.errorf(ErrEmptyPattern, at, "empty character set")
	}

	seen := make(map[rune]struct{})
	for i := 0; i < len(members); {
		lo, err := p.setMember(members[i])
		if err != nil {
			return nil, err
		}
		if i+2 < len(members) && members[i+1].is('-') {
			hi, err := p.setMember(members[i+2])
			if err != nil {
				return nil, err
			}
			if lo > hi {
				return nil, p.errorf(ErrInvalidRange, members[i].pos, strconv.QuoteRune(lo)+"-"+strconv.QuoteRune(hi))
			}
			for c := lo; c <= hi; c++ {
				seen[c] = struct{}{}
			}
			i += 3
			continue
		}
		seen[lo] = struct{}{}
		i++
	}

	set.Chars = make([]rune, 0, len(seen))
	for c := range seen {
		set.Chars = append(set.Chars, c)
	}
	sort.Slice(set.Chars, func(i, j int) bool { return set.Chars[i] < set.Chars[j] })
	return set, nil
}

func (p *parser) setMember(it item) (rune, error) {
	if it.node == nil {
		return it.char, nil
	}
	if lit, ok := it.node.(*Literal); ok {
		return lit.Char, nil
	}
	return 0, p.errorf(ErrInternal, it.pos, "character set member is "+it.node.String())
}

func (p *parser) groupingPass(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch {
		case it.is(')'):
			return nil, p.errorf(ErrUnmatchedBracket, it.pos, "')' without '('")
		case it.is('('):
			depth, end := 1, -1
			for j := i + 1; j < len(items) && end < 0; j++ {
				switch {
				case items[j].is('('):
					depth++
				case items[j].is(')'):
					depth--
					if depth == 0 {
						end = j
					}
				}
			}
			if end < 0 {
				return nil, p.errorf(ErrUnmatchedBracket, it.pos, "'(' without ')'")
			}
			if end == i+1 {
				return nil, p.errorf(ErrEmptyPattern, it.pos, "empty group")
			}
			inner, err := p.run(items[i+1 : end])
			if err != nil {
				return nil, err
			}
			out = append(out, item{node: &Grouping{Inner: inner}, pos: it.pos})
			i = end
		default:
			out = append(out, it)
		}
	}
	return out, nil
}

func (p *parser) repeatPass(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for _, it := range items {
		var min, max int
		switch {
		case it.is('*'):
			min, max = 0, Unbounded
		case it.is('+'):
			min, max = 1, Unbounded
		case it.is('?'):
			min, max = 0, 1
		default:
			out = append(out, it)
			continue
		}

		if len(out) == 0 || out[len(out)-1].is('|') {
			return nil, p.errorf(ErrDanglingMetacharacter, it.pos, "'"+string(it.char)+"' has nothing to repeat")
		}
		prev := out[len(out)-1]
		if prev.is('^') || prev.is('$') {
			return nil, p.errorf(ErrUnsupportedAnchor, prev.pos, "")
		}
		out[len(out)-1] = item{node: &Repeat{Inner: prev.asNode(), Min: min, Max: max}, pos: prev.pos}
	}
	return out, nil
}

// rangeRepeatPass rewrites X{m,n}. Anything that does not have exactly
// that shape is left alone and ends up as literal characters. Bounds above
// MaxRepeat are an error.
func (p *parser) rangeRepeatPass(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for i := 0; i < len(items); i++ {
		it := items[i]
		if i+1 < len(items) && items[i+1].is('{') && !isReserved(it) {
			if min, max, end, ok := scanBounds(items, i+2); ok {
				if max > MaxRepeat {
					return nil, p.errorf(ErrRepeatTooLarge, items[i+1].pos, fmt.Sprintf("maximum is %d", MaxRepeat))
				}
				out = append(out, item{node: &Repeat{Inner: it.asNode(), Min: min, Max: max}, pos: it.pos})
				i = end
				continue
			}
		}
		out = append(out, it)
	}
	return out, nil
}

// scanBounds reads "m,n}" starting at items[j] and returns the bounds and
// the index of the closing brace.
func scanBounds(items []item, j int) (min, max, end int, ok bool) {
	min, j, ok = scanNumber(items, j)
	if !ok || j >= len(items) || !items[j].is(',') {
		return 0, 0, 0, false
	}
	max, j, ok = scanNumber(items, j+1)
	if !ok || j >= len(items) || !items[j].is('}') || min > max {
		return 0, 0, 0, false
	}
	return min, max, j, true
}

// scanNumber reads a run of digits. Values above MaxRepeat saturate at
// MaxRepeat+1.
func scanNumber(items []item, j int) (int, int, bool) {
	start, n := j, 0
	for j < len(items) && items[j].node == nil && items[j].char >= '0' && items[j].char <= '9' {
		n = min(n*10+int(items[j].char-'0'), MaxRepeat+1)
		j++
	}
	if j == start {
		return 0, j, false
	}
	return n, j, true
}

// expandedSize counts the leaves of n with bounded repeats unrolled the way
// Thompson construction unrolls them. The count saturates past
// MaxExpandedSize.
func expandedSize(n Node) int {
	switch n := n.(type) {
	case *Grouping:
		return expandedSize(n.Inner)
	case *Repeat:
		copies := max(n.Max, 1)
		if n.Max == Unbounded {
			copies = max(n.Min, 1)
		}
		return min(expandedSize(n.Inner)*copies, MaxExpandedSize+1)
	case *Concatenation:
		return sumSizes(n.Items)
	case *Alternation:
		return sumSizes(n.Branches)
	default:
		return 1
	}
}

func sumSizes(nodes []Node) int {
	total := 0
	for _, c := range nodes {
		total = min(total+expandedSize(c), MaxExpandedSize+1)
	}
	return total
}

// isReserved reports whether it is a top-level character left for the last
// passes.
func isReserved(it item) bool {
	return it.is('|') || it.is('^') || it.is('$')
}

func (p *parser) concatenationPass(items []item) ([]item, error) {
	var out, run []item
	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, item{node: run[0].asNode(), pos: run[0].pos})
		default:
			nodes := make([]Node, len(run))
			for i, it := range run {
				nodes[i] = it.asNode()
			}
			out = append(out, item{node: &Concatenation{Items: nodes}, pos: run[0].pos})
		}
		run = nil
	}
	for _, it := range items {
		if isReserved(it) {
			flush()
			out = append(out, it)
			continue
		}
		run = append(run, it)
	}
	flush()
	return out, nil
}

func (p *parser) alternationPass(items []item) (Node, error) {
	var segments [][]item
	var pipes []int
	var cur []item
	for _, it := range items {
		if it.is('|') {
			segments = append(segments, cur)
			pipes = append(pipes, it.pos)
			cur = nil
			continue
		}
		cur = append(cur, it)
	}
	segments = append(segments, cur)

	branches := make([]Node, 0, len(segments))
	for i, seg := range segments {
		if len(seg) == 0 {
			if len(pipes) == 0 {
				return nil, p.errorf(ErrEmptyPattern, -1, "")
			}
			at := pipes[0]
			if i > 0 {
				at = pipes[i-1]
			}
			return nil, p.errorf(ErrAlternationAtBoundary, at, "")
		}
		for _, it := range seg {
			if it.is('^') || it.is('$') {
				return nil, p.errorf(ErrUnsupportedAnchor, it.pos, "")
			}
		}
		if len(seg) != 1 {
			return nil, p.errorf(ErrInternal, seg[0].pos, "alternation branch did not reduce to one node")
		}
		branches = append(branches, seg[0].asNode())
	}

	if len(branches) == 1 {
		return branches[0], nil
	}
	return &Alternation{Branches: branches}, nil
}
