package regex

import (
	"errors"
	"fmt"
)

// Syntax error kinds. A *SyntaxError unwraps to one of these.
var (
	ErrEmptyPattern          = errors.New("empty pattern")
	ErrTrailingEscape        = errors.New("trailing escape")
	ErrUnmatchedBracket      = errors.New("unmatched bracket")
	ErrDanglingMetacharacter = errors.New("dangling metacharacter")
	ErrAlternationAtBoundary = errors.New("alternation without a branch")
	ErrInvalidRange          = errors.New("invalid character range")
	ErrUnsupportedAnchor     = errors.New("anchors are not supported")
	ErrRepeatTooLarge        = errors.New("repeat count too large")
	ErrInternal              = errors.New("internal invariant violation")
)

// SyntaxError reports why a pattern could not be parsed. Offset counts runes
// from the start of Pattern, or is -1 when no position applies.
type SyntaxError struct {
	Pattern string
	Offset  int
	Kind    error
	Detail  string
}

func (e *SyntaxError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, msg, e.Offset)
	}
	return fmt.Sprintf("pattern %q: %s", e.Pattern, msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}
