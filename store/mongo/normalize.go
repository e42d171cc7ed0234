package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/schema"
	"github.com/docgrid/docgrid/store"
)

// Documents cross the store boundary in plain Go shapes. Driver types
// (primitive.ObjectID, primitive.DateTime, primitive.A, bson.M) are
// flattened on the way out and reconstructed on the way in so the rest of
// the system never imports the driver.

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]document.Document, error) {
	defer cursor.Close(ctx)
	var docs []document.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, store.TransportError("could not decode document", err)
		}
		docs = append(docs, normalizeDoc(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, store.TransportError("cursor failed", err)
	}
	return docs, nil
}

func normalizeDoc(raw bson.M) document.Document {
	return document.Document(normalizeMap(raw))
}

func normalizeMap(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time()
	case primitive.Timestamp:
		return x.T
	case bson.M:
		return normalizeMap(x)
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}

// toBSON converts an outgoing document. A 24 hex _id becomes a real
// ObjectID so lookups by id keep working; other fields are stored as the
// driver encodes them.
func toBSON(doc document.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == document.IDField {
			if s, ok := v.(string); ok && schema.IsObjectIDHex(s) {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					out[k] = oid
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}
