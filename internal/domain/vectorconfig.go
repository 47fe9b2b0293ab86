package domain

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// VectorConfig controls vectorization of one (namespace, entityType, fieldName)
// triple: whether the field is indexed at all (enabled) and how it is weighted
// and filtered at search time. At most one config exists per key triple.
type VectorConfig struct {
	namespace  string
	entityType string
	fieldName  string
	weight     float64
	threshold  float64
	enabled    bool
	createdAt  int64
	updatedAt  int64
}

const (
	// DefaultWeight is the search weight applied when none is configured.
	DefaultWeight = 1.0
	// DefaultThreshold admits every match.
	DefaultThreshold = 0.0
)

func validateKeyPart(label, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required: %w", label, ErrValidation)
	}
	if len(v) > 64 {
		return fmt.Errorf("%s too long (max 64): %w", label, ErrValidation)
	}
	if !nameRegex.MatchString(v) {
		return fmt.Errorf("%s must be alphanumeric with underscores and hyphens: %w", label, ErrValidation)
	}
	return nil
}

func validateTuning(weight, threshold float64) error {
	if weight <= 0 {
		return fmt.Errorf("weight must be positive, got %g: %w", weight, ErrValidation)
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %g: %w", threshold, ErrValidation)
	}
	return nil
}

// NewVectorConfig validates and creates a VectorConfig.
func NewVectorConfig(namespace, entityType, fieldName string, weight, threshold float64, enabled bool) (VectorConfig, error) {
	if err := validateKeyPart("namespace", namespace); err != nil {
		return VectorConfig{}, err
	}
	if err := validateKeyPart("entity type", entityType); err != nil {
		return VectorConfig{}, err
	}
	if err := validateKeyPart("field name", fieldName); err != nil {
		return VectorConfig{}, err
	}
	if err := validateTuning(weight, threshold); err != nil {
		return VectorConfig{}, err
	}

	now := time.Now().UnixMilli()
	return VectorConfig{
		namespace:  namespace,
		entityType: entityType,
		fieldName:  fieldName,
		weight:     weight,
		threshold:  threshold,
		enabled:    enabled,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructVectorConfig creates a VectorConfig without validation (storage hydration).
func ReconstructVectorConfig(
	namespace, entityType, fieldName string,
	weight, threshold float64, enabled bool,
	createdAt, updatedAt int64,
) VectorConfig {
	return VectorConfig{
		namespace:  namespace,
		entityType: entityType,
		fieldName:  fieldName,
		weight:     weight,
		threshold:  threshold,
		enabled:    enabled,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Update returns a copy with new tuning values. The key triple is immutable.
func (c VectorConfig) Update(weight, threshold float64, enabled bool) (VectorConfig, error) {
	if err := validateTuning(weight, threshold); err != nil {
		return VectorConfig{}, err
	}
	c.weight = weight
	c.threshold = threshold
	c.enabled = enabled
	c.updatedAt = time.Now().UnixMilli()
	return c, nil
}

// Namespace returns the tenancy partition key.
func (c VectorConfig) Namespace() string { return c.namespace }

// EntityType returns the record type this config applies to.
func (c VectorConfig) EntityType() string { return c.entityType }

// FieldName returns the text field this config applies to.
func (c VectorConfig) FieldName() string { return c.fieldName }

// Weight returns the search aggregation weight.
func (c VectorConfig) Weight() float64 { return c.weight }

// Threshold returns the minimum similarity score for search results.
func (c VectorConfig) Threshold() float64 { return c.threshold }

// Enabled reports whether the field is vectorized at all.
func (c VectorConfig) Enabled() bool { return c.enabled }

// CreatedAt returns the creation time in unix milliseconds.
func (c VectorConfig) CreatedAt() int64 { return c.createdAt }

// UpdatedAt returns the last update time in unix milliseconds.
func (c VectorConfig) UpdatedAt() int64 { return c.updatedAt }
