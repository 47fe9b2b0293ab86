// Package moavec is the embedded SDK: it wires the store, the embedding
// chain and the usecase services in-process, without the HTTP server.
package moavec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muheun/moaspace-sub000/internal/db"
	dbRedis "github.com/muheun/moaspace-sub000/internal/db/redis"
	"github.com/muheun/moaspace-sub000/internal/domain"
	"github.com/muheun/moaspace-sub000/internal/embedding"
	chunkrepo "github.com/muheun/moaspace-sub000/internal/repository/chunk"
	configrepo "github.com/muheun/moaspace-sub000/internal/repository/vectorconfig"
	openaiEmb "github.com/muheun/moaspace-sub000/internal/transport/openai"
	indexinguc "github.com/muheun/moaspace-sub000/internal/usecase/indexing"
	searchuc "github.com/muheun/moaspace-sub000/internal/usecase/search"
	vectorconfiguc "github.com/muheun/moaspace-sub000/internal/usecase/vectorconfig"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
)

// Client is the moavec SDK entry point.
type Client struct {
	store     db.Store
	configSvc *vectorconfiguc.Service
	pipeline  *indexinguc.Service
	searchSvc *searchuc.Service
}

// New creates a moavec Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("moavec: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("moavec: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("moavec: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	chunkRepo := chunkrepo.New(store)
	ctx := context.Background()
	if err := chunkRepo.EnsureIndex(ctx, embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("moavec: ensure chunk index: %w", err)
	}

	configSvc, err := vectorconfiguc.New(configrepo.New(store))
	if err != nil {
		return nil, fmt.Errorf("moavec: create config service: %w", err)
	}

	pipeline := indexinguc.New(chunkRepo, configSvc, embedder, indexinguc.Config{
		Workers:      cfg.workers,
		QueueSize:    cfg.queueSize,
		ChunkSize:    cfg.chunkSize,
		ChunkOverlap: cfg.chunkOverlap,
	}, cfg.logger)
	pipeline.Start()

	searchSvc := searchuc.New(chunkRepo, configSvc, embedder, searchuc.Config{
		DefaultLimit: cfg.defaultLimit,
		MaxLimit:     cfg.maxLimit,
	}, cfg.logger)

	return &Client{
		store:     store,
		configSvc: configSvc,
		pipeline:  pipeline,
		searchSvc: searchSvc,
	}, nil
}

func buildEmbedder(cfg *clientConfig) (domain.Embedder, error) {
	var base domain.Embedder
	switch {
	case cfg.embedder != nil:
		base = &embedderAdapter{inner: cfg.embedder}
	case cfg.openaiKey != "":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openaiKey,
			BaseURL:    cfg.openaiURL,
			Model:      cfg.openaiModel,
			Dimensions: cfg.dimensions,
			Logger:     cfg.logger,
		})
	default:
		base = embedding.NewEngine(
			embedding.HashModel{Dims: cfg.dimensions},
			embedding.WordTokenizer{},
			embedding.Config{Name: "hash", Logger: cfg.logger},
		)
	}

	if cfg.cacheSize < 0 {
		return base, nil
	}
	size := cfg.cacheSize
	if size == 0 {
		size = embedding.DefaultCacheSize
	}
	cached, err := embedding.NewCachedEmbedder(base, size)
	if err != nil {
		return nil, fmt.Errorf("moavec: create embedding cache: %w", err)
	}
	return cached, nil
}

// Close drains the indexing pipeline and releases all resources.
func (c *Client) Close() {
	if c.pipeline != nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		_ = c.pipeline.Stop(ctx)
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Configs returns the vector config management service.
func (c *Client) Configs() *ConfigService {
	return &ConfigService{svc: c.configSvc}
}

// Index queues a record for chunking and embedding. The returned Task
// resolves when the record's fields are written.
func (c *Client) Index(ctx context.Context, rec Record) (*Task, error) {
	h, err := c.pipeline.Index(ctx, recordToDomain(rec))
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &Task{h: h}, nil
}

// Reindex purges the record's chunks synchronously, then queues a rebuild.
func (c *Client) Reindex(ctx context.Context, rec Record) (*Task, error) {
	h, err := c.pipeline.Reindex(ctx, recordToDomain(rec))
	if err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	return &Task{h: h}, nil
}

// DeleteRecord removes all chunks of a record. Returns the number of chunks
// deleted; deleting an unknown record returns zero.
func (c *Client) DeleteRecord(ctx context.Context, namespace, entity, key string) (int, error) {
	n, err := c.pipeline.Delete(ctx, namespace, entity, key)
	if err != nil {
		return 0, fmt.Errorf("delete record: %w", err)
	}
	return n, nil
}

// Search runs a weighted multi-field similarity query.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	results, err := c.searchSvc.Search(ctx, domain.SearchRequest{
		Query:        q.Text,
		Namespace:    q.Namespace,
		Entity:       q.Entity,
		FieldName:    q.Field,
		FieldWeights: q.FieldWeights,
		Limit:        q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := make([]Result, len(results))
	for i := range results {
		out[i] = resultFromDomain(&results[i])
	}
	return out, nil
}

// Task tracks one queued indexing request.
type Task struct {
	h *indexinguc.Handle
}

// Wait blocks until the request is processed or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	return t.h.Wait(ctx)
}

func recordToDomain(rec Record) domain.IndexRequest {
	return domain.IndexRequest{
		Namespace: rec.Namespace,
		Entity:    rec.Entity,
		RecordKey: rec.Key,
		Fields:    rec.Fields,
		Metadata:  rec.Metadata,
	}
}

func resultFromDomain(r *domain.SearchResult) Result {
	return Result{
		Key:        r.RecordKey,
		Field:      r.FieldName,
		ChunkIndex: r.ChunkIndex,
		Snippet:    r.ChunkText,
		Start:      r.Start,
		End:        r.End,
		Score:      r.Score,
		Metadata:   r.Metadata,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal
// domain.Embedder. Vectors are re-normalized for cosine scoring.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Dimensions() int { return a.inner.Dimensions() }

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	vec, err := embedding.Normalize(r.Embedding)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("normalize embedding: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding: vec,
		Tokens:    r.Tokens,
	}, nil
}
