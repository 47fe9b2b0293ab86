package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muheun/moaspace-sub000/internal/config"
	"github.com/muheun/moaspace-sub000/internal/db"
	dbRedis "github.com/muheun/moaspace-sub000/internal/db/redis"
	"github.com/muheun/moaspace-sub000/internal/domain"
	"github.com/muheun/moaspace-sub000/internal/embedding"
	logpkg "github.com/muheun/moaspace-sub000/internal/logger"
	"github.com/muheun/moaspace-sub000/internal/metrics"
	chunkrepo "github.com/muheun/moaspace-sub000/internal/repository/chunk"
	"github.com/muheun/moaspace-sub000/internal/repository/embcache"
	configrepo "github.com/muheun/moaspace-sub000/internal/repository/vectorconfig"
	chiTransport "github.com/muheun/moaspace-sub000/internal/transport/chi"
	openaiEmb "github.com/muheun/moaspace-sub000/internal/transport/openai"
	healthuc "github.com/muheun/moaspace-sub000/internal/usecase/health"
	indexinguc "github.com/muheun/moaspace-sub000/internal/usecase/indexing"
	searchuc "github.com/muheun/moaspace-sub000/internal/usecase/search"
	vectorconfiguc "github.com/muheun/moaspace-sub000/internal/usecase/vectorconfig"
	"github.com/muheun/moaspace-sub000/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting moavec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexingMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.String("cache", cfg.Embedding.Cache.Backend),
	)

	chunkRepo := chunkrepo.New(store)
	if err := chunkRepo.EnsureIndex(ctx, embedder.Dimensions()); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}
	configRepo := configrepo.New(store)

	configSvc, err := vectorconfiguc.New(configRepo)
	if err != nil {
		logger.Fatal("Failed to create config service", zap.Error(err))
	}

	pipeline := indexinguc.New(chunkRepo, configSvc, embedder, indexinguc.Config{
		Workers:      cfg.Indexing.Workers,
		QueueSize:    cfg.Indexing.QueueSize,
		MaxRetries:   cfg.Indexing.MaxRetries,
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
	}, logger)
	pipeline.Start()

	searchSvc := searchuc.New(chunkRepo, configSvc, embedder, searchuc.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}, logger)

	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(configSvc, pipeline, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	// HTTP first so no new work is accepted, then drain the pipeline.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during HTTP shutdown", zap.Error(err))
	}
	if err := pipeline.Stop(shutdownCtx); err != nil {
		logger.Error("Error during pipeline shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: provider -> cache decorator.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
	default:
		base = embedding.NewHashEngine(embedding.Config{
			Name:          "hash",
			MaxSeqLength:  cfg.MaxSeqLength,
			MaxConcurrent: cfg.MaxConcurrent,
			Logger:        logger,
		})
	}

	switch cfg.Cache.Backend {
	case "redis":
		return embcache.New(base, store, time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
	case "memory":
		cached, err := embedding.NewCachedEmbedder(base, cfg.Cache.Size)
		if err != nil {
			logger.Fatal("Failed to create embedding cache", zap.Error(err))
		}
		return cached
	default:
		return base
	}
}

// embeddingHealthChecker exposes the embedder's health probe when it has one.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
