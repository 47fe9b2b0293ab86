package moavec

import (
	"context"
	"errors"
	"fmt"

	"github.com/muheun/moaspace-sub000/internal/domain"
	vectorconfiguc "github.com/muheun/moaspace-sub000/internal/usecase/vectorconfig"
)

// ConfigService manages per-field vector configs.
type ConfigService struct {
	svc *vectorconfiguc.Service
}

// Create stores a new field config. Fails if the key triple already exists.
func (s *ConfigService) Create(ctx context.Context, fc FieldConfig) (FieldConfig, error) {
	cfg, err := s.svc.Create(ctx, fc.Namespace, fc.EntityType, fc.FieldName,
		fc.Weight, fc.Threshold, fc.Enabled)
	if err != nil {
		return FieldConfig{}, fmt.Errorf("create config: %w", err)
	}
	return configFromDomain(cfg), nil
}

// Ensure creates the config if missing and returns the stored one either way.
func (s *ConfigService) Ensure(ctx context.Context, fc FieldConfig) (FieldConfig, error) {
	cfg, err := s.svc.Create(ctx, fc.Namespace, fc.EntityType, fc.FieldName,
		fc.Weight, fc.Threshold, fc.Enabled)
	if err == nil {
		return configFromDomain(cfg), nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return FieldConfig{}, fmt.Errorf("ensure config: %w", err)
	}
	existing, err := s.svc.Get(ctx, fc.Namespace, fc.EntityType, fc.FieldName)
	if err != nil {
		return FieldConfig{}, fmt.Errorf("ensure config: %w", err)
	}
	return configFromDomain(existing), nil
}

// Get returns one config by key triple.
func (s *ConfigService) Get(ctx context.Context, namespace, entityType, fieldName string) (FieldConfig, error) {
	cfg, err := s.svc.Get(ctx, namespace, entityType, fieldName)
	if err != nil {
		return FieldConfig{}, fmt.Errorf("get config: %w", err)
	}
	return configFromDomain(cfg), nil
}

// Update changes the tuning values of an existing config.
func (s *ConfigService) Update(ctx context.Context, fc FieldConfig) (FieldConfig, error) {
	cfg, err := s.svc.Update(ctx, fc.Namespace, fc.EntityType, fc.FieldName,
		fc.Weight, fc.Threshold, fc.Enabled)
	if err != nil {
		return FieldConfig{}, fmt.Errorf("update config: %w", err)
	}
	return configFromDomain(cfg), nil
}

// Delete removes a config. Already-written chunks stay until reindex.
func (s *ConfigService) Delete(ctx context.Context, namespace, entityType, fieldName string) error {
	if err := s.svc.Delete(ctx, namespace, entityType, fieldName); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// List returns all configs for one (namespace, entityType) pair.
func (s *ConfigService) List(ctx context.Context, namespace, entityType string) ([]FieldConfig, error) {
	cfgs, err := s.svc.List(ctx, namespace, entityType)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	out := make([]FieldConfig, len(cfgs))
	for i, c := range cfgs {
		out[i] = configFromDomain(c)
	}
	return out, nil
}

func configFromDomain(c domain.VectorConfig) FieldConfig {
	return FieldConfig{
		Namespace:  c.Namespace(),
		EntityType: c.EntityType(),
		FieldName:  c.FieldName(),
		Weight:     c.Weight(),
		Threshold:  c.Threshold(),
		Enabled:    c.Enabled(),
	}
}
