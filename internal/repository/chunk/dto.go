package chunk

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"

	"github.com/muheun/moaspace-sub000/internal/db"
	"github.com/muheun/moaspace-sub000/internal/domain"
)

// hitReturnFields are the hash fields loaded back on search; the stored
// vector is deliberately excluded.
var hitReturnFields = []string{
	"namespace", "entity", "record", "field",
	"chunk_index", "text", "start", "end", "metadata",
}

// buildHashFields flattens a chunk into hash fields. Field names must match
// the FT index schema.
func buildHashFields(c *domain.Chunk) map[string]string {
	m := map[string]string{
		"namespace":   c.Namespace,
		"entity":      c.Entity,
		"record":      c.RecordKey,
		"field":       c.FieldName,
		"chunk_index": strconv.Itoa(c.ChunkIndex),
		"text":        c.Text,
		"start":       strconv.Itoa(c.Start),
		"end":         strconv.Itoa(c.End),
		"vector":      vectorToBytes(c.Vector),
	}
	if len(c.Metadata) > 0 {
		if data, err := json.Marshal(c.Metadata); err == nil {
			m["metadata"] = string(data)
		}
	}
	return m
}

// parseHit hydrates a search entry back into a scored chunk.
func parseHit(entry db.SearchEntry) domain.ChunkHit {
	f := entry.Fields

	hit := domain.ChunkHit{
		Chunk: domain.Chunk{
			Namespace: f["namespace"],
			Entity:    f["entity"],
			RecordKey: f["record"],
			FieldName: f["field"],
			Text:      f["text"],
		},
		Score: entry.Score,
	}
	hit.ChunkIndex, _ = strconv.Atoi(f["chunk_index"])
	hit.Start, _ = strconv.Atoi(f["start"])
	hit.End, _ = strconv.Atoi(f["end"])

	if raw := f["metadata"]; raw != "" {
		var meta map[string]string
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			hit.Metadata = meta
		}
	}

	return hit
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
