package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

func TestSplitWords(t *testing.T) {
	tokens := SplitWords("  hello   world\nagain ")
	require.Len(t, tokens, 3)
	assert.Equal(t, "hello", tokens[0].Text)
	assert.Equal(t, 2, tokens[0].Start)
	assert.Equal(t, "world", tokens[1].Text)
	assert.Equal(t, "again", tokens[2].Text)
}

func TestSplitWords_Empty(t *testing.T) {
	assert.Empty(t, SplitWords(""))
	assert.Empty(t, SplitWords("   \n\t"))
}

func TestNewTokenSplitter_InvalidParams(t *testing.T) {
	_, err := NewTokenSplitter(nil, 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewTokenSplitter(nil, 10, 10, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewTokenSplitter(nil, 10, -1, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTokenSplitter_SingleChunk(t *testing.T) {
	s, err := NewTokenSplitter(nil, 100, 10, 0)
	require.NoError(t, err)

	spans := s.Split("a handful of tokens only")
	require.Len(t, spans, 1)
	assert.Equal(t, "a handful of tokens only", spans[0].Text)
	assert.Equal(t, 0, spans[0].Index)
}

func TestTokenSplitter_Blank(t *testing.T) {
	s, err := NewTokenSplitter(nil, 100, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, s.Split("   "))
}

func TestTokenSplitter_PrefersSentenceBoundary(t *testing.T) {
	s, err := NewTokenSplitter(nil, 10, 2, 5)
	require.NoError(t, err)

	// Sentence ends at token 7 ("seven."), within the lookback window of the
	// 10-token limit; the first chunk must cut there.
	text := "one two three four five six seven. eight nine ten eleven twelve thirteen fourteen fifteen"
	spans := s.Split(text)
	require.Greater(t, len(spans), 1)
	assert.True(t, strings.HasSuffix(spans[0].Text, "seven."), "got %q", spans[0].Text)
}

func TestTokenSplitter_HardCutWithoutBoundary(t *testing.T) {
	s, err := NewTokenSplitter(nil, 5, 1, 3)
	require.NoError(t, err)

	words := make([]string, 12)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	spans := s.Split(strings.Join(words, " "))
	require.Greater(t, len(spans), 1)
	// No sentence boundaries anywhere: first chunk is exactly maxTokens wide.
	assert.Equal(t, "w0 w1 w2 w3 w4", spans[0].Text)
}

func TestTokenSplitter_OverlapCopiesTailTokens(t *testing.T) {
	s, err := NewTokenSplitter(nil, 5, 2, 1)
	require.NoError(t, err)

	words := make([]string, 11)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	spans := s.Split(strings.Join(words, " "))
	require.Greater(t, len(spans), 1)

	// Next chunk starts 2 tokens before the previous cut.
	prevTail := strings.Join(strings.Fields(spans[0].Text)[3:], " ")
	assert.True(t, strings.HasPrefix(spans[1].Text, prevTail), "chunk %q must start with %q", spans[1].Text, prevTail)
}

func TestTokenSplitter_Deterministic(t *testing.T) {
	s, err := NewTokenSplitter(nil, 8, 3, 4)
	require.NoError(t, err)

	text := strings.Repeat("sentences end here. more words follow without end ", 12)
	assert.Equal(t, s.Split(text), s.Split(text))
}
