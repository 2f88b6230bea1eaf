package streaming

import (
	"io"
	"math/rand"
)

// PatternedReader generates a token stream: words picked at random from a
// fixed list, each followed by one separator byte.
type PatternedReader struct {
	words   [][]byte
	seps    []byte
	pending []byte
	word    bool  // next item is a word rather than a separator
	pos     int64 // Current position
	limit   int64 // Total bytes to generate
	rng     *rand.Rand
}

// NewPatternedReader creates a reader producing limit bytes of words
// separated by characters from sepChars. Output may stop inside a word, so
// every prefix of a word should still tokenize.
func NewPatternedReader(words []string, sepChars string, limit int64) *PatternedReader {
	r := &PatternedReader{
		words: make([][]byte, len(words)),
		seps:  []byte(sepChars),
		limit: limit,
	}
	for i, w := range words {
		r.words[i] = []byte(w)
	}
	r.Reset()
	return r
}

func (r *PatternedReader) Read(p []byte) (n int, err error) {
	if r.pos >= r.limit {
		return 0, io.EOF
	}

	for n < len(p) && r.pos < r.limit {
		if len(r.pending) == 0 {
			r.next()
		}
		c := copy(p[n:], r.pending)
		if left := r.limit - r.pos; int64(c) > left {
			c = int(left)
		}
		r.pending = r.pending[c:]
		n += c
		r.pos += int64(c)
	}

	return n, nil
}

func (r *PatternedReader) next() {
	if r.word {
		r.pending = r.words[r.rng.Intn(len(r.words))]
	} else {
		r.pending = []byte{r.seps[r.rng.Intn(len(r.seps))]}
	}
	r.word = !r.word
}

// Reset resets the reader to the beginning.
func (r *PatternedReader) Reset() {
	r.pos = 0
	r.pending = nil
	r.word = true
	r.rng = rand.New(rand.NewSource(42)) // Deterministic for reproducibility
}

// ChunkedReader wraps a reader and returns data in fixed-size chunks.
// This simulates slow/fragmented network reads or tests chunk boundary handling.
type ChunkedReader struct {
	reader    io.Reader
	chunkSize int
}

// NewChunkedReader creates a reader that returns at most chunkSize bytes per Read.
func NewChunkedReader(r io.Reader, chunkSize int) *ChunkedReader {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &ChunkedReader{reader: r, chunkSize: chunkSize}
}

func (r *ChunkedReader) Read(p []byte) (n int, err error) {
	maxRead := r.chunkSize
	if len(p) < maxRead {
		maxRead = len(p)
	}
	return r.reader.Read(p[:maxRead])
}

// NewCalcInputGenerator generates arithmetic statements such as
// "let total = 42 + x".
func NewCalcInputGenerator(size int64) *PatternedReader {
	return NewPatternedReader(
		[]string{"let", "total", "x", "lettuce", "42", "1000000", "+", "-", "*", "/", "="},
		" \n\t",
		size,
	)
}

// NewUnicodeInputGenerator generates identifiers with multi-byte runes so
// chunk boundaries fall inside encoded characters.
func NewUnicodeInputGenerator(size int64) *PatternedReader {
	return NewPatternedReader(
		[]string{"héllo", "naïve", "αβγ", "straße", "plain", "7"},
		" \n",
		size,
	)
}
