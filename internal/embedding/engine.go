// Package embedding turns text into fixed-dimension unit vectors. The Engine
// implements the full inference pipeline over pluggable model and tokenizer
// collaborators; decorators add caching on top of any provider.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/muheun/moaspace-sub000/internal/domain"
	"github.com/muheun/moaspace-sub000/internal/metrics"
)

// Tokenizer converts text into token ids with an attention mask.
type Tokenizer interface {
	Encode(text string) (ids []int, mask []int, err error)
}

// Model runs one forward pass, returning a vector per input token position.
// The runtime behind it is a single shared resource; the Engine bounds
// concurrent calls so it is never invoked more than maxConcurrent at a time.
type Model interface {
	Forward(ctx context.Context, ids []int, mask []int) ([][]float32, error)
	Dimensions() int
}

// Config holds Engine settings.
type Config struct {
	Name          string // provider label for logs and metrics
	MaxSeqLength  int    // token count above which input is truncated
	MaxConcurrent int    // permit pool size for concurrent inference
	Logger        *zap.Logger
}

const (
	defaultMaxSeqLength  = 512
	defaultMaxConcurrent = 4
)

// Engine embeds text: tokenize, truncate to the model's sequence limit, one
// forward pass, mean-pool the valid positions, L2-normalize.
type Engine struct {
	model     Model
	tokenizer Tokenizer
	name      string
	maxSeqLen int
	sem       *semaphore.Weighted
	logger    *zap.Logger
}

// NewEngine creates an embedding engine over the given model and tokenizer.
// Both handles are acquired once at startup and reused for every call.
func NewEngine(model Model, tokenizer Tokenizer, cfg Config) *Engine {
	if cfg.MaxSeqLength <= 0 {
		cfg.MaxSeqLength = defaultMaxSeqLength
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "model"
	}
	return &Engine{
		model:     model,
		tokenizer: tokenizer,
		name:      cfg.Name,
		maxSeqLen: cfg.MaxSeqLength,
		// semaphore.Weighted serves waiters in FIFO order, so a burst of
		// indexing work cannot starve individual callers.
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger: cfg.Logger,
	}
}

// Dimensions returns the model's fixed output dimension.
func (e *Engine) Dimensions() int { return e.model.Dimensions() }

// Embed implements domain.Embedder.
func (e *Engine) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("text is blank: %w", domain.ErrValidation)
	}

	ids, mask, err := e.tokenizer.Encode(text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("tokenize: %w: %w", err, domain.ErrCompute)
	}
	if len(ids) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("no tokens produced: %w", domain.ErrValidation)
	}

	truncated := false
	if len(ids) > e.maxSeqLen {
		truncated = true
		ids = ids[:e.maxSeqLen]
		mask = mask[:e.maxSeqLen]
		metrics.EmbeddingTruncationsTotal.WithLabelValues(e.name).Inc()
		e.logger.Debug("Input truncated to model sequence limit",
			zap.String("provider", e.name),
			zap.Int("max_seq_length", e.maxSeqLen),
		)
	}

	// One permit per forward pass; released on every path.
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("acquire inference permit: %w", err)
	}
	defer e.sem.Release(1)

	start := time.Now()
	hidden, err := e.model.Forward(ctx, ids, mask)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.name, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("model forward: %w: %w", err, domain.ErrCompute)
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.name, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.name).Observe(duration.Seconds())

	pooled, err := meanPool(hidden, mask, e.model.Dimensions())
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	vec, err := Normalize(pooled)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	return domain.EmbeddingResult{Embedding: vec, Tokens: len(ids), Truncated: truncated}, nil
}

// meanPool averages per-token vectors over positions where the attention mask
// is 1.
func meanPool(hidden [][]float32, mask []int, dims int) ([]float32, error) {
	if len(hidden) != len(mask) {
		return nil, fmt.Errorf("model returned %d vectors for %d tokens: %w", len(hidden), len(mask), domain.ErrCompute)
	}

	sum := make([]float32, dims)
	count := 0
	for i, vec := range hidden {
		if mask[i] != 1 {
			continue
		}
		if len(vec) != dims {
			return nil, fmt.Errorf("token vector has %d dims, want %d: %w", len(vec), dims, domain.ErrCompute)
		}
		for j, v := range vec {
			sum[j] += v
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("attention mask has no valid positions: %w", domain.ErrCompute)
	}

	inv := 1 / float32(count)
	for j := range sum {
		sum[j] *= inv
	}
	return sum, nil
}

// Normalize scales a vector to unit Euclidean length. A numerically zero norm
// is a compute error: a zero or NaN vector must never be returned.
func Normalize(vec []float32) ([]float32, error) {
	var sq float64
	for _, v := range vec {
		sq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sq)
	if norm < 1e-12 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("degenerate embedding (norm %g): %w", norm, domain.ErrCompute)
	}

	out := make([]float32, len(vec))
	inv := float32(1 / norm)
	for i, v := range vec {
		out[i] = v * inv
	}
	return out, nil
}
