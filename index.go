package moavec

import (
	"context"
	"fmt"
)

// TypedIndex is a generic, schema-first handle over one (namespace, entity)
// scope. Schema is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	client    *Client
	namespace string
	entity    string
	meta      *schemaMeta
}

// NewIndex creates a typed index handle. T must be a struct with moavec
// tags. Schema is parsed once and cached.
func NewIndex[T any](client *Client, namespace, entity string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %s/%s: %w", namespace, entity, err)
	}
	return &TypedIndex[T]{client: client, namespace: namespace, entity: entity, meta: meta}, nil
}

// Ensure creates an enabled config for every tagged text field (idempotent).
// weights overrides the default weight of 1.0 per field; unknown names are
// ignored.
func (idx *TypedIndex[T]) Ensure(ctx context.Context, weights map[string]float64) error {
	for _, name := range idx.meta.fieldNames() {
		weight := 1.0
		if w, ok := weights[name]; ok {
			weight = w
		}
		_, err := idx.client.Configs().Ensure(ctx, FieldConfig{
			Namespace:  idx.namespace,
			EntityType: idx.entity,
			FieldName:  name,
			Weight:     weight,
			Enabled:    true,
		})
		if err != nil {
			return fmt.Errorf("ensure %s/%s: %w", idx.namespace, idx.entity, err)
		}
	}
	return nil
}

// Upsert replaces the item's chunks: existing ones are purged synchronously,
// the rebuild is queued. The returned Task resolves when indexing completes.
func (idx *TypedIndex[T]) Upsert(ctx context.Context, item T) (*Task, error) {
	rec := idx.meta.toRecord(idx.namespace, idx.entity, item)
	t, err := idx.client.Reindex(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}
	return t, nil
}

// Delete removes an item's chunks by key. Returns the number of chunks
// deleted.
func (idx *TypedIndex[T]) Delete(ctx context.Context, key string) (int, error) {
	return idx.client.DeleteRecord(ctx, idx.namespace, idx.entity, key)
}

// Search returns a fluent search builder scoped to this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}
