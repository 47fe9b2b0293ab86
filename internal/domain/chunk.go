package domain

// Chunk is one stored segment of a record's text field together with its
// embedding and position in the source text. Chunks are written in bulk by the
// indexing pipeline and never mutated in place: a field's chunks are replaced
// wholesale on reindex or removed on record deletion.
type Chunk struct {
	Namespace  string
	Entity     string
	RecordKey  string
	FieldName  string
	ChunkIndex int
	Text       string
	Vector     []float32
	Start      int
	End        int
	Metadata   map[string]string
}

// ChunkHit is one chunk returned from similarity search. Score is cosine
// similarity in [0, 1]; the stored vector is not loaded back.
type ChunkHit struct {
	Chunk
	Score float64
}
