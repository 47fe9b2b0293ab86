package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// Token is one tokenizer unit with its rune span in the source text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenizer produces offset-carrying tokens for the token-bounded splitter.
// A model tokenizer can be plugged in; SplitWords is the built-in fallback.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) []Token

// Tokenize implements Tokenizer.
func (f TokenizerFunc) Tokenize(text string) []Token { return f(text) }

// SplitWords tokenizes on whitespace, keeping rune offsets.
func SplitWords(text string) []Token {
	runes := []rune(text)
	var tokens []Token
	start := -1
	for pos, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: string(runes[start:pos]), Start: start, End: pos})
				start = -1
			}
		} else if start < 0 {
			start = pos
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: string(runes[start:]), Start: start, End: len(runes)})
	}
	return tokens
}

// TokenSplitter cuts text by token count instead of raw characters. When a
// sentence boundary exists within the lookback window before the size limit
// the cut prefers it; otherwise it falls back to a hard cut at the limit.
// Overlap is a token count copied from the tail of the previous chunk into
// the head of the next.
type TokenSplitter struct {
	tokenizer Tokenizer
	maxTokens int
	overlap   int
	lookback  int
}

// NewTokenSplitter creates a token-bounded splitter. lookback caps how far
// before the token limit a sentence boundary is searched for; 0 picks a
// quarter of maxTokens.
func NewTokenSplitter(tokenizer Tokenizer, maxTokens, overlap, lookback int) (*TokenSplitter, error) {
	if tokenizer == nil {
		tokenizer = TokenizerFunc(SplitWords)
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d: %w", maxTokens, domain.ErrValidation)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("overlap must be in [0, maxTokens), got %d for %d: %w", overlap, maxTokens, domain.ErrValidation)
	}
	if lookback <= 0 {
		lookback = maxTokens / 4
	}
	return &TokenSplitter{tokenizer: tokenizer, maxTokens: maxTokens, overlap: overlap, lookback: lookback}, nil
}

// Split cuts text into token-bounded spans. Offsets are rune positions into
// the original text, taken from the first and last token of each chunk.
func (s *TokenSplitter) Split(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := s.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	runes := []rune(text)
	if len(tokens) <= s.maxTokens {
		return []Span{spanFromTokens(runes, tokens, 0)}
	}

	var spans []Span
	start := 0
	for start < len(tokens) {
		end := start + s.maxTokens
		if end >= len(tokens) {
			end = len(tokens)
		} else if cut := s.sentenceCut(tokens, start, end); cut > start {
			end = cut
		}

		spans = append(spans, spanFromTokens(runes, tokens[start:end], len(spans)))
		if end == len(tokens) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Overlap would stall the window; advance past it.
			next = start + 1
		}
		start = next
	}
	return spans
}

// sentenceCut searches backwards from the token limit for a sentence-ending
// token within the lookback window. Returns the index one past the boundary
// token, or start when no boundary exists.
func (s *TokenSplitter) sentenceCut(tokens []Token, start, limit int) int {
	floor := limit - s.lookback
	if floor < start+1 {
		floor = start + 1
	}
	for i := limit - 1; i >= floor; i-- {
		if endsSentence(tokens[i].Text) {
			return i + 1
		}
	}
	return start
}

func endsSentence(tok string) bool {
	if tok == "" {
		return false
	}
	switch tok[len(tok)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func spanFromTokens(runes []rune, tokens []Token, index int) Span {
	first, last := tokens[0], tokens[len(tokens)-1]
	return Span{
		Text:  string(runes[first.Start:last.End]),
		Index: index,
		Start: first.Start,
		End:   last.End,
	}
}
