package moavec

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "moavec"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type

	keyIdx int

	// Mapping from struct field index to record field name.
	textFields []fieldMapping
	metaFields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts moavec struct tag metadata.
// Tag format: `moavec:"name"` marks an indexed text field,
// `moavec:"name,key"` the record key, `moavec:"name,meta"` metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("moavec: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, keyIdx: -1}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f.Name, tag); err != nil {
			return nil, err
		}
	}

	if meta.keyIdx == -1 {
		return nil, fmt.Errorf("moavec: no field with `moavec:\"...,key\"` tag in %s", t)
	}
	if len(meta.textFields) == 0 {
		return nil, fmt.Errorf("moavec: no indexed text fields in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's moavec tag.
func applyTag(meta *schemaMeta, idx int, fieldName, tag string) error {
	name, modifier, _ := strings.Cut(tag, ",")

	switch modifier {
	case "key":
		if meta.keyIdx != -1 {
			return fmt.Errorf("moavec: duplicate key tag on field %s", fieldName)
		}
		meta.keyIdx = idx
	case "meta":
		meta.metaFields = append(meta.metaFields, fieldMapping{structIdx: idx, name: name})
	case "":
		meta.textFields = append(meta.textFields, fieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("moavec: unknown modifier %q on field %s", modifier, fieldName)
	}
	return nil
}

// fieldNames returns the indexed text field names in declaration order.
func (m *schemaMeta) fieldNames() []string {
	names := make([]string, len(m.textFields))
	for i, tf := range m.textFields {
		names[i] = tf.name
	}
	return names
}

// toRecord converts a typed struct to a Record using schema metadata.
func (m *schemaMeta) toRecord(namespace, entity string, item any) Record {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	fields := make(map[string]string, len(m.textFields))
	for _, tf := range m.textFields {
		fields[tf.name] = fmt.Sprint(v.Field(tf.structIdx).Interface())
	}

	var metadata map[string]string
	if len(m.metaFields) > 0 {
		metadata = make(map[string]string, len(m.metaFields))
		for _, mf := range m.metaFields {
			metadata[mf.name] = fmt.Sprint(v.Field(mf.structIdx).Interface())
		}
	}

	return Record{
		Namespace: namespace,
		Entity:    entity,
		Key:       fmt.Sprint(v.Field(m.keyIdx).Interface()),
		Fields:    fields,
		Metadata:  metadata,
	}
}
