package config

import "testing"

func validBase() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := validBase()
	cfg.ApplyDefaults()
	cfg.Embedding.Provider = "bert-local"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown embedding provider")
	}

	expected := `embedding.provider must be "hash" or "openai", got "bert-local"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := validBase()
	cfg.ApplyDefaults()
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without api key")
	}

	cfg.Embedding.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with api key set: %v", err)
	}
}

func TestValidate_InvalidCacheBackend(t *testing.T) {
	cfg := validBase()
	cfg.ApplyDefaults()
	cfg.Embedding.Cache.Backend = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestValidate_OverlapMustBeSmallerThanSize(t *testing.T) {
	cfg := validBase()
	cfg.ApplyDefaults()
	cfg.Chunking.Size = 100
	cfg.Chunking.Overlap = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestValidate_DefaultLimitBoundedByMax(t *testing.T) {
	cfg := validBase()
	cfg.ApplyDefaults()
	cfg.Search.DefaultLimit = 200
	cfg.Search.MaxLimit = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_limit > max_limit")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("expected provider=hash, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.MaxSeqLength != 512 {
		t.Errorf("expected MaxSeqLength=512, got %d", cfg.Embedding.MaxSeqLength)
	}
	if cfg.Embedding.MaxConcurrent != 4 {
		t.Errorf("expected MaxConcurrent=4, got %d", cfg.Embedding.MaxConcurrent)
	}
	if cfg.Embedding.Cache.Backend != "memory" || cfg.Embedding.Cache.Size != 4096 {
		t.Errorf("unexpected cache defaults: %+v", cfg.Embedding.Cache)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Chunking)
	}
	if cfg.Indexing.Workers != 4 || cfg.Indexing.QueueSize != 256 || cfg.Indexing.MaxRetries != 3 {
		t.Errorf("unexpected indexing defaults: %+v", cfg.Indexing)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Storage.KeyPrefix != "moavec:" {
		t.Errorf("expected KeyPrefix='moavec:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Chunking: ChunkingConfig{Size: 1000, Overlap: 100},
		Indexing: IndexingConfig{Workers: 8, QueueSize: 1024, MaxRetries: 5},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 100 {
		t.Errorf("unexpected chunking config: %+v", cfg.Chunking)
	}
	if cfg.Indexing.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Indexing.Workers)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_ExplicitNoOverlap(t *testing.T) {
	cfg := Config{Chunking: ChunkingConfig{Size: 200, Overlap: -1}}
	cfg.ApplyDefaults()

	if cfg.Chunking.Overlap != 0 {
		t.Errorf("expected overlap -1 to mean no overlap, got %d", cfg.Chunking.Overlap)
	}
}
