package streaming

import (
	"bytes"
	"testing"

	"github.com/KromDaniel/lexengo/pkg/lexengo"
	"github.com/KromDaniel/lexengo/stream"
)

var fuzzLexer = lexengo.MustCompile(append(append([]lexengo.Rule[string]{}, calcRules...),
	lexengo.Rule[string]{Pattern: `"[^"]*"`, Token: "STRING"},
	lexengo.Rule[string]{Pattern: "[αβγé]+", Token: "GREEK"},
))

// FuzzStreamingBoundary checks that streamed tokenization agrees with
// in-memory tokenization for any input and read size.
func FuzzStreamingBoundary(f *testing.F) {
	f.Add([]byte("let x = 42"), uint8(1))
	f.Add([]byte(`say "hello world" + 1`), uint8(3))
	f.Add([]byte("αβγ é\nlettuce"), uint8(2))
	f.Add([]byte("\"unterminated"), uint8(5))
	f.Add([]byte("bad ! input"), uint8(4))
	f.Add([]byte{0xce, 0xb1, 0xff, 'a'}, uint8(1))

	f.Fuzz(func(t *testing.T, data []byte, chunkSize uint8) {
		want := inMemory(t, fuzzLexer, data)
		r := NewChunkedReader(bytes.NewReader(data), int(chunkSize))
		compare(t, want, streamed(t, fuzzLexer, r, stream.MinBufferSize))
	})
}

func TestFuzzSanity(t *testing.T) {
	inputs := []string{
		"",
		"let total = x * 1000000",
		`"a b c" "" "x`,
		"αβγ\n\n  é",
		"?",
	}
	for _, input := range inputs {
		for _, chunkSize := range []int{1, 2, 5, 64} {
			want := inMemory(t, fuzzLexer, []byte(input))
			r := NewChunkedReader(bytes.NewReader([]byte(input)), chunkSize)
			compare(t, want, streamed(t, fuzzLexer, r, stream.MinBufferSize))
		}
	}
}
