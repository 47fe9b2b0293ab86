// Package chunker splits text fields into overlapping segments with positional
// metadata. Splitting is a pure function of its inputs: identical text and
// parameters always yield an identical chunk sequence, which is what makes
// re-indexing idempotent.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// Span is one chunk of a source text. Start and End are rune offsets into the
// original (untrimmed) text; End is exclusive.
type Span struct {
	Text  string
	Index int
	Start int
	End   int
}

// Default window parameters, matching the stored chunk layout.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Split cuts text into character windows of at most size runes, consecutive
// windows sharing overlap runes. Blank input yields an empty sequence. Text
// that fits one window yields exactly one chunk covering the whole trimmed
// text.
func Split(text string, size, overlap int) ([]Span, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, domain.ErrValidation)
	}
	// overlap >= size would make windows stop advancing; reject instead of hanging.
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d for size %d: %w", overlap, size, domain.ErrValidation)
	}

	trimmed, lead := trimOffsets(text)
	if trimmed == "" {
		return nil, nil
	}

	runes := []rune(trimmed)
	if len(runes) <= size {
		return []Span{{Text: trimmed, Index: 0, Start: lead, End: lead + len(runes)}}, nil
	}

	step := size - overlap
	spans := make([]Span, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{
			Text:  string(runes[start:end]),
			Index: len(spans),
			Start: lead + start,
			End:   lead + end,
		})
		if end == len(runes) {
			break
		}
	}
	return spans, nil
}

// trimOffsets returns the whitespace-trimmed text and the rune offset of its
// first rune in the original.
func trimOffsets(text string) (string, int) {
	lead := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			break
		}
		lead++
	}
	return strings.TrimSpace(text), lead
}
