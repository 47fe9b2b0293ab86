package moavec

import "context"

// Record is the unit of indexing: one entity instance with its plain-text
// fields. Field values are chunked and embedded independently.
type Record struct {
	Namespace string
	Entity    string
	Key       string
	Fields    map[string]string
	Metadata  map[string]string
}

// FieldConfig describes how one text field of an entity type is vectorized.
type FieldConfig struct {
	Namespace  string
	EntityType string
	FieldName  string
	Weight     float64
	Threshold  float64
	Enabled    bool
}

// Query is a weighted multi-field similarity search. Field restricts the
// search to one field; FieldWeights overrides configured weights.
type Query struct {
	Text         string
	Namespace    string
	Entity       string
	Field        string
	FieldWeights map[string]float64
	Limit        int
}

// Result is one ranked record together with its best matching snippet.
type Result struct {
	Key        string
	Field      string
	ChunkIndex int
	Snippet    string
	Start      int
	End        int
	Score      float64
	Metadata   map[string]string
}

// EmbeddingResult is the output of a custom embedding provider.
type EmbeddingResult struct {
	Embedding []float32
	Tokens    int
}

// Embedder plugs a custom embedding provider into the client. Vectors are
// re-normalized by the client, so approximate unit length is fine.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	Dimensions() int
}
