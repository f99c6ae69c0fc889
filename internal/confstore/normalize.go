package confstore

import (
	"encoding/json"
	"maps"
	"reflect"
	"strings"
)

// Document is a configuration document: string keys mapped to scalars,
// nested documents, or sequences.
type Document map[string]any

// IsEmpty reports whether value counts as an empty field. Text is empty when
// only whitespace remains after trimming, booleans are never empty, and every
// other value is empty when it is nil, numerically zero, or a zero-length
// container.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return false
	case int:
		return v == 0
	case int8:
		return v == 0
	case int16:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint8:
		return v == 0
	case uint16:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return v == 0
	case float64:
		return v == 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Normalize returns a copy of doc with every empty field removed, at any
// nesting depth. Nested documents are normalized first and dropped when
// nothing survives. Sequences are kept as they are, including empty ones;
// only their document elements are normalized, and no element is ever
// removed. doc itself is never modified and the result shares no containers
// with it. Nested documents in the result are plain map[string]any values.
func Normalize(doc Document) Document {
	out := make(Document, len(doc))
	for key, value := range doc {
		if nested, ok := asDocument(value); ok {
			cleaned := Normalize(nested)
			if IsEmpty(cleaned) {
				continue
			}
			out[key] = map[string]any(cleaned)
			continue
		}
		if seq, ok := asSequence(value); ok {
			out[key] = normalizeSequence(seq)
			continue
		}
		if IsEmpty(value) {
			continue
		}
		out[key] = value
	}
	return out
}

// Merge folds docs into a new document, left to right. Only top-level keys
// are merged: a later document replaces an earlier document's value for the
// same key wholesale, nested documents included.
func Merge(docs ...Document) Document {
	out := make(Document)
	for _, doc := range docs {
		maps.Copy(out, doc)
	}
	return out
}

func normalizeSequence(seq []any) []any {
	out := make([]any, len(seq))
	for i, element := range seq {
		if nested, ok := asDocument(element); ok {
			out[i] = map[string]any(Normalize(nested))
			continue
		}
		out[i] = deepCopy(element)
	}
	return out
}

// asDocument recognizes the mapping shapes decoders and callers produce.
func asDocument(value any) (Document, bool) {
	switch v := value.(type) {
	case Document:
		return v, true
	case map[string]any:
		return Document(v), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	doc := make(Document, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		doc[iter.Key().String()] = iter.Value().Interface()
	}
	return doc, true
}

// asSequence recognizes slices and arrays. Byte slices are scalars.
func asSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	seq := make([]any, rv.Len())
	for i := range seq {
		seq[i] = rv.Index(i).Interface()
	}
	return seq, true
}

func deepCopy(value any) any {
	if nested, ok := asDocument(value); ok {
		out := make(map[string]any, len(nested))
		for key, element := range nested {
			out[key] = deepCopy(element)
		}
		return out
	}
	if seq, ok := asSequence(value); ok {
		out := make([]any, len(seq))
		for i, element := range seq {
			out[i] = deepCopy(element)
		}
		return out
	}
	if b, ok := value.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return value
}
