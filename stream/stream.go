// Package stream tokenizes arbitrarily large inputs (files, network
// streams) with a compiled lexer, reading them chunk by chunk.
//
// Tokens are delivered via callbacks to avoid buffering results:
//
//	file, _ := os.Open("large.src")
//	defer file.Close()
//
//	err := stream.Tokenize(file, lx, stream.Config{
//	    BufferSize: 1024 * 1024, // 1MB chunks
//	}, func(tok stream.Token[string]) bool {
//	    fmt.Printf("%s %s %q\n", tok.Pos, tok.Kind, tok.Text)
//	    return true // continue
//	}, "WS")
//
// A token that might continue past the end of the current chunk is held
// back until more input arrives, so chunk boundaries never split or
// shorten a match.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/KromDaniel/lexengo/pkg/lexengo"
)

// MinBufferSize is the smallest accepted Config.BufferSize.
const MinBufferSize = 16

// ErrTokenTooLong is returned when a single token would exceed
// Config.MaxTokenLength.
var ErrTokenTooLong = errors.New("stream: token too long")

// Config configures streaming tokenization.
type Config struct {
	// BufferSize is the chunk size for reading from the io.Reader.
	// Default: 64KB (65536).
	// Larger values reduce syscall overhead but use more memory.
	BufferSize int

	// MaxTokenLength limits how many bytes a pending token may span.
	// This prevents unbounded memory growth when a rule such as "[^x]*"
	// keeps matching a very long input.
	//
	// Default: 1MB. Set to -1 for unlimited.
	MaxTokenLength int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:     64 * 1024,   // 64KB
		MaxTokenLength: 1024 * 1024, // 1MB
	}
}

// ErrBufferTooSmall is returned when Config.BufferSize is below
// MinBufferSize.
type ErrBufferTooSmall struct {
	Requested int
	Minimum   int
}

func (e ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("stream: buffer size %d too small (minimum %d)", e.Requested, e.Minimum)
}

// Validate returns an error if the Config is invalid. Zero values are
// valid and select the defaults.
func (c Config) Validate() error {
	if c.BufferSize < 0 || (c.BufferSize > 0 && c.BufferSize < MinBufferSize) {
		return ErrBufferTooSmall{Requested: c.BufferSize, Minimum: MinBufferSize}
	}
	if c.MaxTokenLength < -1 {
		return fmt.Errorf("stream: invalid max token length %d", c.MaxTokenLength)
	}
	return nil
}

// ApplyDefaults returns a Config with defaults applied for any zero values.
func (c Config) ApplyDefaults() Config {
	result := c
	defaults := DefaultConfig()
	if result.BufferSize == 0 {
		result.BufferSize = defaults.BufferSize
	}
	if result.MaxTokenLength == 0 {
		result.MaxTokenLength = defaults.MaxTokenLength
	}
	return result
}

// Token is a token found in a stream.
//
// Pos.Offset is the absolute byte position of the token within the
// entire stream (0-indexed).
type Token[T comparable] struct {
	lexengo.Token[T]

	// ChunkIndex indicates which chunk completed this token (0-indexed).
	// Useful for debugging or progress reporting.
	ChunkIndex int
}

// Tokenize reads r to the end, calling fn for each token whose Kind is not
// listed in skip. Returning false from fn stops tokenization without error.
func Tokenize[T comparable](r io.Reader, lx *lexengo.Lexer[T], cfg Config, fn func(Token[T]) bool, skip ...T) error {
	return TokenizeContext(context.Background(), r, lx, cfg, fn, skip...)
}

// TokenizeContext is like Tokenize but stops with ctx.Err() once ctx is
// done. The context is checked between tokens.
func TokenizeContext[T comparable](ctx context.Context, r io.Reader, lx *lexengo.Lexer[T], cfg Config, fn func(Token[T]) bool, skip ...T) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.ApplyDefaults()
	t := &tokenizer[T]{
		cfg:   cfg,
		r:     r,
		lx:    lx,
		skip:  make(map[T]struct{}, len(skip)),
		buf:   make([]byte, cfg.BufferSize),
		pos:   lexengo.StartPosition(),
		chunk: -1,
	}
	for _, k := range skip {
		t.skip[k] = struct{}{}
	}
	return t.run(ctx, fn)
}

// maxConsecutiveEmptyReads is how many (0, nil) reads are tolerated before
// giving up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

type tokenizer[T comparable] struct {
	cfg  Config
	r    io.Reader
	lx   *lexengo.Lexer[T]
	skip map[T]struct{}

	buf        []byte // buf[start:end] is unconsumed input; buf[start] is at pos
	start, end int
	pos        lexengo.Position
	eof        bool
	chunk      int
}

func (t *tokenizer[T]) run(ctx context.Context, fn func(Token[T]) bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.start == t.end {
			if t.eof {
				return nil
			}
			if err := t.fill(); err != nil {
				return err
			}
			continue
		}

		data := t.buf[t.start:t.end]
		w := t.lx.WalkBytes(data, 0)
		if w.Exhausted && !t.eof {
			if t.cfg.MaxTokenLength < 0 || len(data) < t.cfg.MaxTokenLength {
				if err := t.grow(len(data)); err != nil {
					return err
				}
				continue
			}
			if !w.Matched || w.Match.End == 0 {
				return fmt.Errorf("%s: %w", t.pos, ErrTokenTooLong)
			}
			// The token may continue, but it is cut at the limit.
		}
		if !w.Matched || w.Match.End == 0 {
			return &lexengo.LexicalError{Pos: t.pos, Near: near(data)}
		}

		tok := Token[T]{
			Token: lexengo.Token[T]{
				Kind:  w.Match.Tokens[0],
				Kinds: w.Match.Tokens,
				Text:  w.Match.Text,
				Pos:   t.pos,
			},
			ChunkIndex: t.chunk,
		}
		t.pos = t.pos.Advance(w.Match.Text)
		t.start += w.Match.End
		if _, skip := t.skip[tok.Kind]; skip {
			continue
		}
		if !fn(tok) {
			return nil
		}
	}
}

// grow reads until the pending input has doubled (capped at the token
// length limit) or the reader is drained. A pending token is scanned again
// only after that, so long tokens cost linear time over many small reads.
func (t *tokenizer[T]) grow(pending int) error {
	target := 2 * pending
	if t.cfg.MaxTokenLength >= 0 {
		target = min(target, t.cfg.MaxTokenLength)
	}
	for {
		if err := t.fill(); err != nil {
			return err
		}
		if t.eof || t.end-t.start >= target {
			return nil
		}
	}
}

// fill reads the next chunk of at most BufferSize bytes behind the pending
// input. Consumed bytes are dropped once they fill half the buffer, and the
// buffer doubles when pending input leaves no room.
func (t *tokenizer[T]) fill() error {
	if t.start == t.end {
		t.start, t.end = 0, 0
	}
	if t.start > 0 && t.start >= len(t.buf)/2 {
		t.end = copy(t.buf, t.buf[t.start:t.end])
		t.start = 0
	}
	if len(t.buf)-t.end < t.cfg.BufferSize {
		grown := make([]byte, max(2*len(t.buf), t.end-t.start+t.cfg.BufferSize))
		t.end = copy(grown, t.buf[t.start:t.end])
		t.start = 0
		t.buf = grown
	}

	for empty := 0; empty < maxConsecutiveEmptyReads; empty++ {
		n, err := t.r.Read(t.buf[t.end : t.end+t.cfg.BufferSize])
		if n > 0 {
			t.chunk++
			t.end += n
		}
		switch {
		case err == io.EOF:
			t.eof = true
			return nil
		case err != nil:
			return fmt.Errorf("stream: read failed at offset %d: %w", t.pos.Offset+t.end-t.start, err)
		case n > 0:
			return nil
		}
	}
	return fmt.Errorf("stream: read failed at offset %d: %w", t.pos.Offset+t.end-t.start, io.ErrNoProgress)
}

// near returns up to 16 runes of data for error messages.
func near(data []byte) string {
	n := 0
	for i := 0; i < len(data); n++ {
		if n == 16 {
			return string(data[:i])
		}
		_, size := utf8.DecodeRune(data[i:])
		i += size
	}
	return string(data)
}
