package moavec

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder     Embedder
	openaiKey    string
	openaiModel  string
	openaiURL    string
	dimensions   int
	cacheSize    int
	chunkSize    int
	chunkOverlap int
	workers      int
	queueSize    int
	defaultLimit int
	maxLimit     int

	logger *zap.Logger
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithEmbedder plugs a custom embedding provider. Takes precedence over
// WithOpenAI. Without either, a local hash embedder is used.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithOpenAI uses an OpenAI-compatible embeddings API as the provider.
func WithOpenAI(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.openaiKey = apiKey
		c.openaiModel = model
	}
}

// WithOpenAIBaseURL points the OpenAI provider at a compatible endpoint.
func WithOpenAIBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.openaiURL = baseURL
	}
}

// WithDimensions sets the embedding dimension (default 384).
func WithDimensions(dims int) Option {
	return func(c *clientConfig) {
		c.dimensions = dims
	}
}

// WithCacheSize sets the in-memory embedding cache size. Zero keeps the
// default; negative disables caching.
func WithCacheSize(size int) Option {
	return func(c *clientConfig) {
		c.cacheSize = size
	}
}

// WithChunking sets chunk size and overlap in characters.
func WithChunking(size, overlap int) Option {
	return func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	}
}

// WithPipeline sets the indexing worker count and queue capacity.
func WithPipeline(workers, queueSize int) Option {
	return func(c *clientConfig) {
		c.workers = workers
		c.queueSize = queueSize
	}
}

// WithSearchLimits sets the default and maximum search result limits.
func WithSearchLimits(defaultLimit, maxLimit int) Option {
	return func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	}
}

// WithLogger sets the zap logger (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
