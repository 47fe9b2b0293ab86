package moavec

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379")(cfg)
	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.addrs)
	}

	WithPassword("secret")(cfg)
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithOpenAI("sk-test", "text-embedding-3-small")(cfg)
	if cfg.openaiKey != "sk-test" || cfg.openaiModel != "text-embedding-3-small" {
		t.Errorf("openai = (%q, %q)", cfg.openaiKey, cfg.openaiModel)
	}

	WithDimensions(768)(cfg)
	if cfg.dimensions != 768 {
		t.Errorf("dimensions = %d, want 768", cfg.dimensions)
	}

	WithChunking(300, 30)(cfg)
	if cfg.chunkSize != 300 || cfg.chunkOverlap != 30 {
		t.Errorf("chunking = (%d, %d), want (300, 30)", cfg.chunkSize, cfg.chunkOverlap)
	}

	WithPipeline(8, 512)(cfg)
	if cfg.workers != 8 || cfg.queueSize != 512 {
		t.Errorf("pipeline = (%d, %d), want (8, 512)", cfg.workers, cfg.queueSize)
	}

	WithSearchLimits(20, 200)(cfg)
	if cfg.defaultLimit != 20 || cfg.maxLimit != 200 {
		t.Errorf("limits = (%d, %d), want (20, 200)", cfg.defaultLimit, cfg.maxLimit)
	}

	WithCacheSize(-1)(cfg)
	if cfg.cacheSize != -1 {
		t.Errorf("cacheSize = %d, want -1", cfg.cacheSize)
	}
}

func TestWithEmbedder(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, nil
		},
	}
	cfg := &clientConfig{}
	WithEmbedder(mock)(cfg)
	if cfg.embedder == nil {
		t.Error("expected non-nil embedder")
	}
}

func TestEmbedderAdapter_Normalizes(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{Embedding: []float32{3, 4}, Tokens: 7}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tokens != 7 {
		t.Errorf("tokens = %d, want 7", result.Tokens)
	}
	if math.Abs(float64(result.Embedding[0])-0.6) > 1e-6 ||
		math.Abs(float64(result.Embedding[1])-0.8) > 1e-6 {
		t.Errorf("embedding = %v, want [0.6 0.8]", result.Embedding)
	}
}

func TestEmbedderAdapter_ZeroVector(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{Embedding: []float32{0, 0, 0}}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	if _, err := adapter.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for zero vector")
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	if _, err := adapter.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestEmbedderAdapter_Dimensions(t *testing.T) {
	adapter := &embedderAdapter{inner: &mockEmbedder{dims: 512}}
	if got := adapter.Dimensions(); got != 512 {
		t.Errorf("dimensions = %d, want 512", got)
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{}
	c.Close()
}

type mockEmbedder struct {
	fn   func(ctx context.Context, text string) (EmbeddingResult, error)
	dims int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
