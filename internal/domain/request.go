package domain

import "fmt"

// IndexRequest asks the pipeline to (re)build chunks for one record.
// Fields maps field names to raw plain text, built by the domain collaborator —
// the pipeline never introspects domain objects itself.
type IndexRequest struct {
	Namespace string
	Entity    string
	RecordKey string
	Fields    map[string]string
	Metadata  map[string]string
}

// Validate checks the request key triple.
func (r IndexRequest) Validate() error {
	if r.Namespace == "" {
		return fmt.Errorf("namespace is required: %w", ErrValidation)
	}
	if r.Entity == "" {
		return fmt.Errorf("entity is required: %w", ErrValidation)
	}
	if r.RecordKey == "" {
		return fmt.Errorf("record key is required: %w", ErrValidation)
	}
	return nil
}

// SearchRequest is a weighted multi-field similarity query.
// FieldName restricts the search to one field; FieldWeights overrides
// configured weights; when both are empty every configured field is probed.
type SearchRequest struct {
	Query        string
	Namespace    string
	Entity       string
	FieldName    string
	FieldWeights map[string]float64
	Limit        int
}

// Validate checks the request. Entity scoping is mandatory to avoid
// cross-tenant leakage.
func (r SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query is required: %w", ErrValidation)
	}
	if r.Namespace == "" {
		return fmt.Errorf("namespace is required: %w", ErrValidation)
	}
	if r.Entity == "" {
		return fmt.Errorf("entity is required: %w", ErrValidation)
	}
	for f, w := range r.FieldWeights {
		if w <= 0 {
			return fmt.Errorf("field weight for %q must be positive, got %g: %w", f, w, ErrValidation)
		}
	}
	return nil
}

// SearchResult is one ranked record. The chunk fields describe the single
// best-contributing chunk, surfaced as the matched snippet.
type SearchResult struct {
	RecordKey  string
	FieldName  string
	ChunkIndex int
	ChunkText  string
	Start      int
	End        int
	Score      float64
	Metadata   map[string]string
}
