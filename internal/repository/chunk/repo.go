// Package chunk persists text chunks and their embeddings as Redis hashes
// under a single FT vector index.
package chunk

import (
	"context"
	"errors"
	"fmt"

	"github.com/muheun/moaspace-sub000/internal/db"
	"github.com/muheun/moaspace-sub000/internal/domain"
)

// IndexName is the FT index covering every chunk hash.
const IndexName = domain.KeyPrefix + "chunks:idx"

const chunkKeyPrefix = domain.KeyPrefix + "chunk:"

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements chunk storage for the indexing pipeline and search engine.
type Repo struct {
	store store
}

// New creates a chunk repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
// Dimensions must match the embedder's output dimension; a dimension change
// requires dropping the index and reindexing.
func (r *Repo) EnsureIndex(ctx context.Context, dimensions int) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{chunkKeyPrefix},
		Fields: []db.IndexField{
			{Name: "namespace", Type: db.IndexFieldTag},
			{Name: "entity", Type: db.IndexFieldTag},
			{Name: "record", Type: db.IndexFieldTag},
			{Name: "field", Type: db.IndexFieldTag},
			{Name: "chunk_index", Type: db.IndexFieldNumeric},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      dimensions,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// WriteBatch stores all chunks in a single pipelined round-trip.
func (r *Repo) WriteBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		items[i] = db.HashSetItem{
			Key:    chunkKey(c.Namespace, c.Entity, c.RecordKey, c.FieldName, c.ChunkIndex),
			Fields: buildHashFields(c),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d chunks: %w", len(chunks), err)
	}
	return nil
}

// DeleteByRecord removes every chunk of a record across all fields.
// Returns the number of chunks removed.
func (r *Repo) DeleteByRecord(ctx context.Context, namespace, entity, recordKey string) (int, error) {
	pattern := fmt.Sprintf("%s%s:%s:%s:*", chunkKeyPrefix, namespace, entity, recordKey)
	return r.deleteByPattern(ctx, pattern)
}

// DeleteByField removes every chunk of one record field.
// Returns the number of chunks removed.
func (r *Repo) DeleteByField(ctx context.Context, namespace, entity, recordKey, fieldName string) (int, error) {
	pattern := fmt.Sprintf("%s%s:%s:%s:%s:*", chunkKeyPrefix, namespace, entity, recordKey, fieldName)
	return r.deleteByPattern(ctx, pattern)
}

func (r *Repo) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete %d chunks: %w", len(keys), err)
	}
	return len(keys), nil
}

// TopK returns the k nearest chunks for a query vector, scoped to one
// namespace, entity and field. Results arrive best-first.
func (r *Repo) TopK(ctx context.Context, namespace, entity, fieldName string, vector []float32, k int) ([]domain.ChunkHit, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: IndexName,
		Tags: map[string]string{
			"namespace": namespace,
			"entity":    entity,
			"field":     fieldName,
		},
		Vector:       vector,
		K:            k,
		ReturnFields: hitReturnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("knn %s/%s/%s: %w", namespace, entity, fieldName, err)
	}

	hits := make([]domain.ChunkHit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		hits = append(hits, parseHit(entry))
	}
	return hits, nil
}

func chunkKey(namespace, entity, recordKey, fieldName string, index int) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%d", chunkKeyPrefix, namespace, entity, recordKey, fieldName, index)
}
