package db

// KNNQuery is the input for vector similarity search. Tags scope the search
// with equality pre-filters (conjunction of TAG matches).
type KNNQuery struct {
	IndexName    string
	Tags         map[string]string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Score is cosine
// similarity in [0, 1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
