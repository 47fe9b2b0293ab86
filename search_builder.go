package moavec

import (
	"context"
	"fmt"
)

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	query   string
	field   string
	weights map[string]float64
	limit   int
}

// Query sets the search text.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// Field restricts the search to a single field.
func (b *SearchBuilder[T]) Field(name string) *SearchBuilder[T] {
	b.field = name
	return b
}

// Weight sets a field's weight for this query. Once any weight is set, only
// the weighted fields are searched.
func (b *SearchBuilder[T]) Weight(field string, weight float64) *SearchBuilder[T] {
	if b.weights == nil {
		b.weights = make(map[string]float64)
	}
	b.weights[field] = weight
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Do executes the search.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]Result, error) {
	results, err := b.idx.client.Search(ctx, b.buildQuery())
	if err != nil {
		return nil, fmt.Errorf("typed search: %w", err)
	}
	return results, nil
}

func (b *SearchBuilder[T]) buildQuery() Query {
	return Query{
		Text:         b.query,
		Namespace:    b.idx.namespace,
		Entity:       b.idx.entity,
		Field:        b.field,
		FieldWeights: b.weights,
		Limit:        b.limit,
	}
}
