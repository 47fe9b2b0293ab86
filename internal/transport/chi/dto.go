package chi

import (
	"time"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type indexRequest struct {
	Namespace string            `json:"namespace"`
	Entity    string            `json:"entity"`
	RecordKey string            `json:"record_key"`
	Fields    map[string]string `json:"fields"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Wait      bool              `json:"wait,omitempty"`
}

type indexResponse struct {
	Status string `json:"status"`
}

type deleteRecordResponse struct {
	Deleted int `json:"deleted"`
}

type searchRequest struct {
	Query        string             `json:"query"`
	Namespace    string             `json:"namespace"`
	Entity       string             `json:"entity"`
	Field        string             `json:"field,omitempty"`
	FieldWeights map[string]float64 `json:"field_weights,omitempty"`
	Limit        int                `json:"limit,omitempty"`
}

type searchResultItem struct {
	RecordKey  string            `json:"record_key"`
	Field      string            `json:"field"`
	ChunkIndex int               `json:"chunk_index"`
	ChunkText  string            `json:"chunk_text"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Score      float64           `json:"score"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type createConfigRequest struct {
	Namespace  string  `json:"namespace"`
	EntityType string  `json:"entity_type"`
	FieldName  string  `json:"field_name"`
	Weight     float64 `json:"weight"`
	Threshold  float64 `json:"threshold"`
	Enabled    *bool   `json:"enabled,omitempty"`
}

type updateConfigRequest struct {
	Weight    float64 `json:"weight"`
	Threshold float64 `json:"threshold"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

type configResponse struct {
	Namespace  string    `json:"namespace"`
	EntityType string    `json:"entity_type"`
	FieldName  string    `json:"field_name"`
	Weight     float64   `json:"weight"`
	Threshold  float64   `json:"threshold"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type configListResponse struct {
	Items []configResponse `json:"items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func indexRequestToDomain(req indexRequest) domain.IndexRequest {
	return domain.IndexRequest{
		Namespace: req.Namespace,
		Entity:    req.Entity,
		RecordKey: req.RecordKey,
		Fields:    req.Fields,
		Metadata:  req.Metadata,
	}
}

func searchRequestToDomain(req searchRequest) domain.SearchRequest {
	return domain.SearchRequest{
		Query:        req.Query,
		Namespace:    req.Namespace,
		Entity:       req.Entity,
		FieldName:    req.Field,
		FieldWeights: req.FieldWeights,
		Limit:        req.Limit,
	}
}

func searchResultToDTO(r *domain.SearchResult) searchResultItem {
	return searchResultItem{
		RecordKey:  r.RecordKey,
		Field:      r.FieldName,
		ChunkIndex: r.ChunkIndex,
		ChunkText:  r.ChunkText,
		Start:      r.Start,
		End:        r.End,
		Score:      r.Score,
		Metadata:   r.Metadata,
	}
}

func configToDTO(c domain.VectorConfig) configResponse {
	return configResponse{
		Namespace:  c.Namespace(),
		EntityType: c.EntityType(),
		FieldName:  c.FieldName(),
		Weight:     c.Weight(),
		Threshold:  c.Threshold(),
		Enabled:    c.Enabled(),
		CreatedAt:  time.UnixMilli(c.CreatedAt()).UTC(),
		UpdatedAt:  time.UnixMilli(c.UpdatedAt()).UTC(),
	}
}
