// Package indexing runs the asynchronous chunk-embed-write pipeline. Records
// are queued, picked up by a bounded worker pool, and their configured text
// fields are replaced in the vector index field by field.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muheun/moaspace-sub000/internal/chunker"
	"github.com/muheun/moaspace-sub000/internal/db"
	"github.com/muheun/moaspace-sub000/internal/domain"
	"github.com/muheun/moaspace-sub000/internal/metrics"
)

// Config holds pipeline tuning.
type Config struct {
	Workers      int
	QueueSize    int
	MaxRetries   int // batch write retries after the first attempt
	ChunkSize    int
	ChunkOverlap int
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = chunker.DefaultOverlap
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
}

type task struct {
	req    domain.IndexRequest
	handle *Handle
}

// Service is the asynchronous indexing pipeline.
type Service struct {
	chunks   ChunkRepository
	configs  ConfigReader
	embedder domain.Embedder
	cfg      Config
	logger   *zap.Logger

	queue     chan task
	wg        sync.WaitGroup
	workerCtx context.Context
	cancel    context.CancelFunc

	retryBase time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates the pipeline. Call Start before enqueueing work.
func New(chunks ChunkRepository, configs ConfigReader, embedder domain.Embedder, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		chunks:    chunks,
		configs:   configs,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan task, cfg.QueueSize),
		workerCtx: ctx,
		cancel:    cancel,
		retryBase: time.Second,
	}
}

// Start launches the worker pool.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		for i := 0; i < s.cfg.Workers; i++ {
			s.wg.Add(1)
			go s.worker()
		}
		s.logger.Info("Indexing pipeline started",
			zap.Int("workers", s.cfg.Workers),
			zap.Int("queue_size", s.cfg.QueueSize))
	})
}

// Stop closes the queue and waits for in-flight tasks to drain, up to ctx.
// Tasks still queued are processed; new enqueues fail.
func (s *Service) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		close(s.queue)

		drained := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
			s.logger.Info("Indexing pipeline drained")
		case <-ctx.Done():
			s.cancel()
			<-drained
			err = fmt.Errorf("indexing pipeline shutdown: %w", ctx.Err())
		}
		s.cancel()
	})
	return err
}

// Index queues a record for (re)indexing and returns a completion handle.
// Blocks while the queue is full; ctx bounds the wait.
func (s *Service) Index(ctx context.Context, req domain.IndexRequest) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.enqueue(ctx, req)
}

// Reindex synchronously removes every stored chunk of the record, then queues
// a fresh indexing pass. The record is briefly absent from search rather than
// ever serving stale chunks past the rebuild.
func (s *Service) Reindex(ctx context.Context, req domain.IndexRequest) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.chunks.DeleteByRecord(ctx, req.Namespace, req.Entity, req.RecordKey); err != nil {
		return nil, fmt.Errorf("purge record %s/%s/%s: %w", req.Namespace, req.Entity, req.RecordKey, err)
	}

	return s.enqueue(ctx, req)
}

// Delete synchronously removes every stored chunk of a record. Returns the
// number of chunks removed.
func (s *Service) Delete(ctx context.Context, namespace, entity, recordKey string) (int, error) {
	req := domain.IndexRequest{Namespace: namespace, Entity: entity, RecordKey: recordKey}
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.chunks.DeleteByRecord(ctx, namespace, entity, recordKey)
}

func (s *Service) enqueue(ctx context.Context, req domain.IndexRequest) (h *Handle, err error) {
	defer func() {
		// Sending on a closed queue panics; surface it as a shutdown error.
		if recover() != nil {
			h, err = nil, errors.New("indexing pipeline stopped")
		}
	}()

	h = newHandle()
	select {
	case s.queue <- task{req: req, handle: h}:
		metrics.IndexingQueueDepth.Inc()
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) worker() {
	defer s.wg.Done()
	for t := range s.queue {
		metrics.IndexingQueueDepth.Dec()
		err := s.process(s.workerCtx, t.req)
		if err != nil {
			s.logger.Error("Indexing task failed",
				zap.String("namespace", t.req.Namespace),
				zap.String("entity", t.req.Entity),
				zap.String("record", t.req.RecordKey),
				zap.Error(err))
		}
		t.handle.complete(err)
	}
}

// process rebuilds all configured fields of one record. Fields are isolated:
// one field failing leaves the others' chunks in place.
func (s *Service) process(ctx context.Context, req domain.IndexRequest) error {
	configs, err := s.configs.ListEnabled(ctx, req.Namespace, req.Entity)
	if err != nil {
		metrics.IndexingTasksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load configs %s/%s: %w", req.Namespace, req.Entity, err)
	}
	if len(configs) == 0 {
		metrics.IndexingTasksTotal.WithLabelValues("success").Inc()
		return nil
	}

	fieldErrs := make([]error, len(configs))
	var wg sync.WaitGroup
	for i, cfg := range configs {
		wg.Add(1)
		go func(i int, cfg domain.VectorConfig) {
			defer wg.Done()
			if err := s.processField(ctx, req, cfg); err != nil {
				fieldErrs[i] = fmt.Errorf("field %s: %w", cfg.FieldName(), err)
			}
		}(i, cfg)
	}
	wg.Wait()

	failed := 0
	for _, e := range fieldErrs {
		if e != nil {
			failed++
		}
	}

	switch {
	case failed == 0:
		metrics.IndexingTasksTotal.WithLabelValues("success").Inc()
		return nil
	case failed < len(configs):
		metrics.IndexingTasksTotal.WithLabelValues("partial").Inc()
	default:
		metrics.IndexingTasksTotal.WithLabelValues("error").Inc()
	}
	return errors.Join(fieldErrs...)
}

// processField replaces one field's chunks. The old chunks are removed first
// so a field whose text became blank loses its stale vectors.
func (s *Service) processField(ctx context.Context, req domain.IndexRequest, cfg domain.VectorConfig) error {
	if _, err := s.chunks.DeleteByField(ctx, req.Namespace, req.Entity, req.RecordKey, cfg.FieldName()); err != nil {
		return fmt.Errorf("purge stale chunks: %w", err)
	}

	text := req.Fields[cfg.FieldName()]
	if strings.TrimSpace(text) == "" {
		return nil
	}

	spans, err := chunker.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("chunk text: %w", err)
	}
	if len(spans) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	for i, span := range spans {
		i, span := i, span
		g.Go(func() error {
			result, err := s.embedder.Embed(gctx, span.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", span.Index, err)
			}
			chunks[i] = domain.Chunk{
				Namespace:  req.Namespace,
				Entity:     req.Entity,
				RecordKey:  req.RecordKey,
				FieldName:  cfg.FieldName(),
				ChunkIndex: span.Index,
				Text:       span.Text,
				Vector:     result.Embedding,
				Start:      span.Start,
				End:        span.End,
				Metadata:   req.Metadata,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.writeWithRetry(ctx, chunks); err != nil {
		return fmt.Errorf("write chunks: %w", err)
	}

	metrics.IndexingChunksWrittenTotal.Add(float64(len(chunks)))
	return nil
}

// writeWithRetry retries failed batch writes with exponential backoff. Only
// storage-layer failures are transient; anything else fails immediately.
func (s *Service) writeWithRetry(ctx context.Context, chunks []domain.Chunk) error {
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxRetries), retry.NewExponential(s.retryBase))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.chunks.WriteBatch(ctx, chunks)
		if err == nil {
			return nil
		}
		if !db.IsStorageError(err) {
			return err
		}
		attempt++
		metrics.IndexingRetriesTotal.Inc()
		s.logger.Warn("Chunk batch write failed",
			zap.Int("attempt", attempt),
			zap.Int("chunks", len(chunks)),
			zap.Error(err))
		return retry.RetryableError(err)
	})
}
