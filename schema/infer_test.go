package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docgrid/docgrid/document"
)

func docs(ds ...document.Document) []document.Document {
	return ds
}

func TestInferEmptySample(t *testing.T) {
	fields := Infer(nil)
	assert.Empty(t, fields)
}

func TestInferSingleTypeFields(t *testing.T) {
	fields := Infer(docs(
		document.Document{"name": "alice", "age": float64(30), "active": true},
		document.Document{"name": "bob", "age": float64(41), "active": false},
	))
	assert.Equal(t, TypeString, fields["name"])
	assert.Equal(t, TypeNumber, fields["age"])
	assert.Equal(t, TypeBoolean, fields["active"])
}

func TestInferObjectIDAndDate(t *testing.T) {
	fields := Infer(docs(
		document.Document{
			"_id":     "507f1f77bcf86cd799439011",
			"created": "2024-03-01T12:00:00Z",
			"updated": time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	))
	assert.Equal(t, TypeObjectID, fields["_id"])
	assert.Equal(t, TypeDate, fields["created"])
	assert.Equal(t, TypeDate, fields["updated"])
}

func TestInferConflictResolvesByPriority(t *testing.T) {
	// string beats number
	fields := Infer(docs(
		document.Document{"v": float64(1)},
		document.Document{"v": "one"},
	))
	assert.Equal(t, TypeString, fields["v"])

	// number beats boolean
	fields = Infer(docs(
		document.Document{"v": true},
		document.Document{"v": float64(1)},
	))
	assert.Equal(t, TypeNumber, fields["v"])
}

func TestInferExoticConflictFallsBackToFirstObserved(t *testing.T) {
	fields := Infer(docs(
		document.Document{"v": []any{"a"}},
		document.Document{"v": map[string]any{"a": float64(1)}},
	))
	assert.Equal(t, TypeArray, fields["v"])
}

func TestInferAllNullDefaultsToString(t *testing.T) {
	fields := Infer(docs(
		document.Document{"v": nil},
		document.Document{"v": nil},
	))
	assert.Equal(t, TypeString, fields["v"])
}

func TestInferNullIsNotEvidence(t *testing.T) {
	fields := Infer(docs(
		document.Document{"v": nil},
		document.Document{"v": float64(3)},
	))
	assert.Equal(t, TypeNumber, fields["v"])
}

func TestInferAbsentFieldIgnored(t *testing.T) {
	fields := Infer(docs(
		document.Document{"a": "x"},
		document.Document{"b": "y"},
	))
	assert.Equal(t, TypeString, fields["a"])
	assert.Equal(t, TypeString, fields["b"])
}

func TestInferRespectsSampleLimit(t *testing.T) {
	var many []document.Document
	for i := 0; i < SampleLimit; i++ {
		many = append(many, document.Document{"v": "s"})
	}
	// Past the limit this document must not contribute.
	many = append(many, document.Document{"w": float64(1)})

	fields := Infer(many)
	assert.Equal(t, TypeString, fields["v"])
	assert.NotContains(t, fields, "w")
}

func TestDetectValueOrder(t *testing.T) {
	assert.Equal(t, TypeObjectID, DetectValue("507f1f77bcf86cd799439011"))
	assert.Equal(t, TypeDate, DetectValue("2024-03-01"))
	assert.Equal(t, TypeBoolean, DetectValue(true))
	assert.Equal(t, TypeNumber, DetectValue(float64(3.5)))
	assert.Equal(t, TypeNumber, DetectValue(int64(7)))
	assert.Equal(t, TypeString, DetectValue("plain text"))
	assert.Equal(t, TypeArray, DetectValue([]any{1}))
	assert.Equal(t, TypeObject, DetectValue(map[string]any{}))
	assert.Equal(t, TypeUnknown, DetectValue(nil))
}
