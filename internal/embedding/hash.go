package embedding

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"strings"
	"unicode"
)

// Deterministic hash provider: a Model and Tokenizer pair that exercises the
// whole Engine pipeline without any external runtime. Embeddings are stable
// across processes and platforms, with reduced semantic quality — intended for
// local development and tests, selected with provider "hash".

// HashDimensions is the output dimension of the hash model. Matches the
// sentence-transformer dimension used in production so stored chunks stay
// compatible across providers in one deployment.
const HashDimensions = 384

// WordTokenizer maps lowercase alphanumeric words onto a fixed hashed
// vocabulary. The attention mask is all ones: there is no padding.
type WordTokenizer struct {
	VocabSize int
}

const defaultVocabSize = 30522

// Encode implements Tokenizer.
func (t WordTokenizer) Encode(text string) (ids []int, mask []int, err error) {
	vocab := t.VocabSize
	if vocab <= 0 {
		vocab = defaultVocabSize
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	ids = make([]int, 0, len(words))
	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		ids = append(ids, int(h.Sum64()%uint64(vocab))) //nolint:gosec // bounded by vocab
	}
	mask = make([]int, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask, nil
}

// HashModel produces one deterministic pseudo-random vector per token id.
// Identical token sequences always yield identical outputs.
type HashModel struct {
	Dims int
}

// Dimensions implements Model.
func (m HashModel) Dimensions() int {
	if m.Dims > 0 {
		return m.Dims
	}
	return HashDimensions
}

// Forward implements Model.
func (m HashModel) Forward(_ context.Context, ids []int, _ []int) ([][]float32, error) {
	dims := m.Dimensions()
	out := make([][]float32, len(ids))
	for i, id := range ids {
		out[i] = tokenVector(id, dims)
	}
	return out, nil
}

// tokenVector derives a dims-wide vector in [-1, 1) from the token id by
// hashing (id, position) pairs.
func tokenVector(id, dims int) []float32 {
	vec := make([]float32, dims)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(id)) //nolint:gosec // hash input
	for j := range vec {
		binary.LittleEndian.PutUint64(buf[8:], uint64(j)) //nolint:gosec // hash input
		h := fnv.New64a()
		_, _ = h.Write(buf[:])
		// Top 53 bits to a float in [0, 1), shifted to [-1, 1).
		u := h.Sum64() >> 11
		vec[j] = float32(u)/float32(1<<53)*2 - 1
	}
	return vec
}

// NewHashEngine wires the deterministic provider into a ready Engine.
func NewHashEngine(cfg Config) *Engine {
	if cfg.Name == "" {
		cfg.Name = "hash"
	}
	return NewEngine(HashModel{}, WordTokenizer{}, cfg)
}
