package vectorconfig

import (
	"strconv"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

func buildHashFields(cfg domain.VectorConfig) map[string]string {
	return map[string]string{
		"namespace":   cfg.Namespace(),
		"entity_type": cfg.EntityType(),
		"field_name":  cfg.FieldName(),
		"weight":      strconv.FormatFloat(cfg.Weight(), 'f', -1, 64),
		"threshold":   strconv.FormatFloat(cfg.Threshold(), 'f', -1, 64),
		"enabled":     strconv.FormatBool(cfg.Enabled()),
		"created_at":  strconv.FormatInt(cfg.CreatedAt(), 10),
		"updated_at":  strconv.FormatInt(cfg.UpdatedAt(), 10),
	}
}

func parseConfig(m map[string]string) domain.VectorConfig {
	weight, err := strconv.ParseFloat(m["weight"], 64)
	if err != nil {
		weight = domain.DefaultWeight
	}
	threshold, err := strconv.ParseFloat(m["threshold"], 64)
	if err != nil {
		threshold = domain.DefaultThreshold
	}
	enabled, _ := strconv.ParseBool(m["enabled"])
	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	updatedAt, _ := strconv.ParseInt(m["updated_at"], 10, 64)

	return domain.ReconstructVectorConfig(
		m["namespace"], m["entity_type"], m["field_name"],
		weight, threshold, enabled,
		createdAt, updatedAt,
	)
}
