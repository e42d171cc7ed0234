// Package document holds the open document model shared by the store
// backends and the editor service. Documents are schemaless; the only
// structural guarantee is the _id field.
package document

// IDField is present on every stored document and is never renamed,
// removed, or retyped.
const IDField = "_id"

// Document is an open field -> value mapping. Values are the usual JSON
// shapes (string, float64, bool, nil, []any, map[string]any) plus
// whatever richer types a backend decodes to (time.Time, ObjectID).
type Document map[string]any

// ID returns the document id as a string, or "" if unset.
func (d Document) ID() string {
	v, ok := d[IDField]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ Hex() string }); ok {
		return s.Hex()
	}
	return ""
}

// Has reports whether the field is present, including when its value is null.
func (d Document) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Clone returns a shallow copy. Nested values are shared.
func (d Document) Clone() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// WithoutID returns a copy with the _id field stripped, for update paths
// where the id must not be part of the $set.
func (d Document) WithoutID() Document {
	c := d.Clone()
	delete(c, IDField)
	return c
}
