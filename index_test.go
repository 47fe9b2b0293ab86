package moavec

import (
	"testing"
)

type blogPost struct {
	ID      int    `moavec:"id,key"`
	Title   string `moavec:"title"`
	Body    string `moavec:"body"`
	Author  string `moavec:"author,meta"`
	Draft   bool   `moavec:"-"`
	Ignored string
}

func TestParseSchema_BlogPost(t *testing.T) {
	meta, err := parseSchema[blogPost]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.keyIdx != 0 {
		t.Errorf("keyIdx = %d, want 0", meta.keyIdx)
	}
	names := meta.fieldNames()
	if len(names) != 2 || names[0] != "title" || names[1] != "body" {
		t.Errorf("fieldNames = %v, want [title body]", names)
	}
	if len(meta.metaFields) != 1 || meta.metaFields[0].name != "author" {
		t.Errorf("metaFields = %v, want author", meta.metaFields)
	}
}

func TestParseSchema_PointerType(t *testing.T) {
	if _, err := parseSchema[*blogPost](); err != nil {
		t.Fatalf("pointer type should parse: %v", err)
	}
}

func TestParseSchema_NoKey(t *testing.T) {
	type noKey struct {
		Title string `moavec:"title"`
	}
	if _, err := parseSchema[noKey](); err == nil {
		t.Fatal("expected error for missing key tag")
	}
}

func TestParseSchema_NoTextFields(t *testing.T) {
	type keyOnly struct {
		ID string `moavec:"id,key"`
	}
	if _, err := parseSchema[keyOnly](); err == nil {
		t.Fatal("expected error for missing text fields")
	}
}

func TestParseSchema_DuplicateKey(t *testing.T) {
	type dup struct {
		A string `moavec:"a,key"`
		B string `moavec:"b,key"`
		C string `moavec:"c"`
	}
	if _, err := parseSchema[dup](); err == nil {
		t.Fatal("expected error for duplicate key tag")
	}
}

func TestParseSchema_UnknownModifier(t *testing.T) {
	type bad struct {
		ID    string `moavec:"id,key"`
		Title string `moavec:"title,vector"`
	}
	if _, err := parseSchema[bad](); err == nil {
		t.Fatal("expected error for unknown modifier")
	}
}

func TestParseSchema_NotStruct(t *testing.T) {
	if _, err := parseSchema[int](); err == nil {
		t.Fatal("expected error for non-struct type")
	}
}

func TestToRecord(t *testing.T) {
	meta, err := parseSchema[blogPost]()
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	rec := meta.toRecord("moa-space", "post", blogPost{
		ID:     42,
		Title:  "Redis pipelines",
		Body:   "Pipelining batches commands.",
		Author: "muheun",
	})

	if rec.Namespace != "moa-space" || rec.Entity != "post" {
		t.Errorf("scope = %s/%s", rec.Namespace, rec.Entity)
	}
	if rec.Key != "42" {
		t.Errorf("key = %q, want 42", rec.Key)
	}
	if rec.Fields["title"] != "Redis pipelines" || rec.Fields["body"] != "Pipelining batches commands." {
		t.Errorf("fields = %v", rec.Fields)
	}
	if rec.Metadata["author"] != "muheun" {
		t.Errorf("metadata = %v", rec.Metadata)
	}
}

func TestToRecord_Pointer(t *testing.T) {
	meta, err := parseSchema[blogPost]()
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	rec := meta.toRecord("moa-space", "post", &blogPost{ID: 7, Title: "t", Body: "b"})
	if rec.Key != "7" {
		t.Errorf("key = %q, want 7", rec.Key)
	}
}

func TestSearchBuilder_BuildQuery(t *testing.T) {
	idx := &TypedIndex[blogPost]{namespace: "moa-space", entity: "post"}

	q := idx.Search().
		Query("connection pooling").
		Field("title").
		Weight("title", 2.5).
		Limit(5).
		buildQuery()

	if q.Text != "connection pooling" {
		t.Errorf("text = %q", q.Text)
	}
	if q.Namespace != "moa-space" || q.Entity != "post" {
		t.Errorf("scope = %s/%s", q.Namespace, q.Entity)
	}
	if q.Field != "title" || q.FieldWeights["title"] != 2.5 || q.Limit != 5 {
		t.Errorf("params = %+v", q)
	}
}
