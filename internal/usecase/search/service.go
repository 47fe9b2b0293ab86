// Package search ranks records by weighted multi-field vector similarity.
// Each configured field contributes its single best chunk; field scores are
// combined into one record score using configured or per-request weights.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// Config holds search pagination limits.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

func (c *Config) applyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 10
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}
}

// Service handles weighted multi-field similarity search.
type Service struct {
	chunks   ChunkSearcher
	configs  ConfigReader
	embedder domain.Embedder
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service.
func New(chunks ChunkSearcher, configs ConfigReader, embedder domain.Embedder, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{chunks: chunks, configs: configs, embedder: embedder, cfg: cfg, logger: logger}
}

// fieldProbe is one field that will be queried, with its effective weight and
// threshold resolved from config and request overrides.
type fieldProbe struct {
	name      string
	weight    float64
	threshold float64
}

// fieldBest is a record's best chunk for one field.
type fieldBest struct {
	hit   domain.ChunkHit
	probe fieldProbe
}

// Search embeds the query once, probes every selected field, and aggregates
// per-record scores. Results are record-level: one entry per record with the
// best-contributing chunk as the matched snippet.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	probes, err := s.resolveProbes(ctx, req)
	if err != nil {
		return nil, err
	}

	embResult, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch per field: the best chunk of a relevant record may sit
	// below position `limit` in any single field's ranking.
	k := limit * 2

	// Fields are isolated: a field whose retrieval fails contributes nothing,
	// the remaining fields still rank. Only the query embedding above is fatal.
	perField := make(map[string][]domain.ChunkHit, len(probes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, probe := range probes {
		probe := probe
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := s.chunks.TopK(ctx, req.Namespace, req.Entity, probe.name, embResult.Embedding, k)
			if err != nil {
				s.logger.Warn("Field retrieval failed, excluded from ranking",
					zap.String("namespace", req.Namespace),
					zap.String("entity", req.Entity),
					zap.String("field", probe.name),
					zap.Error(err))
				return
			}
			mu.Lock()
			perField[probe.name] = hits
			mu.Unlock()
		}()
	}
	wg.Wait()

	results := aggregate(probes, perField)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].ChunkIndex != results[j].ChunkIndex {
			return results[i].ChunkIndex < results[j].ChunkIndex
		}
		return results[i].RecordKey < results[j].RecordKey
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// resolveProbes selects the fields to query and their effective weights.
// A non-empty weight map defines the target field set: only the weighted
// fields are probed. Unknown fields are rejected so a typo never silently
// drops a field from the query.
func (s *Service) resolveProbes(ctx context.Context, req domain.SearchRequest) ([]fieldProbe, error) {
	configs, err := s.configs.ListEnabled(ctx, req.Namespace, req.Entity)
	if err != nil {
		return nil, fmt.Errorf("load configs %s/%s: %w", req.Namespace, req.Entity, err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no enabled vector configs for %s/%s: %w",
			req.Namespace, req.Entity, domain.ErrValidation)
	}

	byField := make(map[string]domain.VectorConfig, len(configs))
	for _, cfg := range configs {
		byField[cfg.FieldName()] = cfg
	}

	if req.FieldName != "" {
		if _, ok := byField[req.FieldName]; !ok {
			return nil, fmt.Errorf("field %q is not vectorized for %s/%s: %w",
				req.FieldName, req.Namespace, req.Entity, domain.ErrValidation)
		}
	}
	for f := range req.FieldWeights {
		if _, ok := byField[f]; !ok {
			return nil, fmt.Errorf("weight override for unknown field %q: %w", f, domain.ErrValidation)
		}
	}
	if req.FieldName != "" && len(req.FieldWeights) > 0 {
		if _, ok := req.FieldWeights[req.FieldName]; !ok {
			return nil, fmt.Errorf("field %q is not in the weighted field set: %w",
				req.FieldName, domain.ErrValidation)
		}
	}

	probes := make([]fieldProbe, 0, len(configs))
	for _, cfg := range configs {
		if req.FieldName != "" && cfg.FieldName() != req.FieldName {
			continue
		}
		weight := cfg.Weight()
		if w, ok := req.FieldWeights[cfg.FieldName()]; ok {
			weight = w
		} else if len(req.FieldWeights) > 0 {
			continue
		}
		probes = append(probes, fieldProbe{
			name:      cfg.FieldName(),
			weight:    weight,
			threshold: cfg.Threshold(),
		})
	}
	return probes, nil
}

// aggregate folds per-field chunk hits into record-level results. Weights are
// renormalized over the fields a record actually matched in, so a record
// matching only one field is not penalized against the full weight budget.
func aggregate(probes []fieldProbe, perField map[string][]domain.ChunkHit) []domain.SearchResult {
	best := make(map[string]map[string]fieldBest) // recordKey -> field -> best chunk

	for _, probe := range probes {
		for _, hit := range perField[probe.name] {
			byField, ok := best[hit.RecordKey]
			if !ok {
				byField = make(map[string]fieldBest)
				best[hit.RecordKey] = byField
			}
			current, seen := byField[probe.name]
			if !seen || better(hit, current.hit) {
				byField[probe.name] = fieldBest{hit: hit, probe: probe}
			}
		}
	}

	results := make([]domain.SearchResult, 0, len(best))
	for recordKey, byField := range best {
		var weightSum, scoreSum, maxThreshold float64
		var top fieldBest
		var topContribution float64

		for _, fb := range byField {
			contribution := fb.probe.weight * fb.hit.Score
			weightSum += fb.probe.weight
			scoreSum += contribution
			if fb.probe.threshold > maxThreshold {
				maxThreshold = fb.probe.threshold
			}
			if contribution > topContribution ||
				(contribution == topContribution && (top.hit.RecordKey == "" || fb.hit.FieldName < top.hit.FieldName)) {
				top = fb
				topContribution = contribution
			}
		}

		score := scoreSum / weightSum
		if score < maxThreshold {
			continue
		}

		results = append(results, domain.SearchResult{
			RecordKey:  recordKey,
			FieldName:  top.hit.FieldName,
			ChunkIndex: top.hit.ChunkIndex,
			ChunkText:  top.hit.Text,
			Start:      top.hit.Start,
			End:        top.hit.End,
			Score:      score,
			Metadata:   top.hit.Metadata,
		})
	}
	return results
}

// better prefers higher score, then the earlier chunk of the field.
func better(a, b domain.ChunkHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ChunkIndex < b.ChunkIndex
}
