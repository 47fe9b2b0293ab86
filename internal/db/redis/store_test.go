package redis

import (
	"strings"
	"testing"

	"github.com/muheun/moaspace-sub000/internal/db"
)

func TestBuildTagFilters_StableOrderAndEscaping(t *testing.T) {
	got := buildTagFilters(map[string]string{
		"entity":    "post",
		"namespace": "moa-space",
		"field":     "title",
	})
	want := `@entity:{post} @field:{title} @namespace:{moa\-space}`
	if got != want {
		t.Errorf("buildTagFilters = %q, want %q", got, want)
	}
}

func TestBuildTagFilters_Empty(t *testing.T) {
	if got := buildTagFilters(nil); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
}

func TestBuildCreateArgs_FlatVectorIndex(t *testing.T) {
	def := &db.IndexDefinition{
		Name:     "moavec:chunks:idx",
		Prefixes: []string{"moavec:chunk:"},
		Fields: []db.IndexField{
			{Name: "namespace", Type: db.IndexFieldTag},
			{Name: "chunk_index", Type: db.IndexFieldNumeric},
			{Name: "vector", Type: db.IndexFieldVector, VectorDim: 384},
		},
	}

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("buildCreateArgs: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"moavec:chunks:idx ON HASH PREFIX 1 moavec:chunk:",
		"namespace TAG",
		"chunk_index NUMERIC",
		"vector VECTOR FLAT 6 TYPE FLOAT32 DIM 384 DISTANCE_METRIC COSINE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestBuildCreateArgs_InvalidDefinition(t *testing.T) {
	if _, err := buildCreateArgs(&db.IndexDefinition{Name: ""}); err == nil {
		t.Error("expected error for missing index name")
	}

	def := &db.IndexDefinition{
		Name:   "idx",
		Fields: []db.IndexField{{Name: "vector", Type: db.IndexFieldVector}},
	}
	if _, err := buildCreateArgs(def); err == nil {
		t.Error("expected error for vector field without DIM")
	}
}

func TestScoreFromDistance_FullSimilarityRange(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},      // identical vectors
		{0.2, 0.8},  // close
		{1, 0},      // orthogonal
		{1.8, -0.8}, // anti-correlated stays negative
		{2.3, -1},   // float noise past the metric's range
	}
	for _, tc := range cases {
		if got := scoreFromDistance(tc.distance); got != tc.want {
			t.Errorf("scoreFromDistance(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestVectorToBytes_LittleEndianFloat32(t *testing.T) {
	got := vectorToBytes([]float32{1})
	if len(got) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(got))
	}
	// 1.0 as IEEE-754 float32 little-endian
	if got != "\x00\x00\x80\x3f" {
		t.Errorf("unexpected encoding: %x", got)
	}
}
