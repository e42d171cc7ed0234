package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidatorBSONTypes(t *testing.T) {
	validator := map[string]any{
		"$jsonSchema": map[string]any{
			"bsonType": "object",
			"properties": map[string]any{
				"name":    map[string]any{"bsonType": "string"},
				"age":     map[string]any{"bsonType": "int"},
				"weight":  map[string]any{"bsonType": "double"},
				"count":   map[string]any{"bsonType": "long"},
				"active":  map[string]any{"bsonType": "bool"},
				"born":    map[string]any{"bsonType": "date"},
				"_id":     map[string]any{"bsonType": "objectId"},
				"tags":    map[string]any{"bsonType": "array"},
				"address": map[string]any{"bsonType": "object"},
				"blob":    map[string]any{"bsonType": "binData"},
			},
		},
	}

	fields, ok := ParseValidator(validator)
	require.True(t, ok)
	assert.Equal(t, TypeString, fields["name"])
	assert.Equal(t, TypeNumber, fields["age"])
	assert.Equal(t, TypeNumber, fields["weight"])
	assert.Equal(t, TypeNumber, fields["count"])
	assert.Equal(t, TypeBoolean, fields["active"])
	assert.Equal(t, TypeDate, fields["born"])
	assert.Equal(t, TypeObjectID, fields["_id"])
	assert.Equal(t, TypeArray, fields["tags"])
	assert.Equal(t, TypeObject, fields["address"])
	assert.Equal(t, TypeUnknown, fields["blob"])
}

func TestParseValidatorArrayOfTypesUsesFirst(t *testing.T) {
	validator := map[string]any{
		"$jsonSchema": map[string]any{
			"properties": map[string]any{
				"n": map[string]any{"bsonType": []any{"double", "int", "long"}},
			},
		},
	}
	fields, ok := ParseValidator(validator)
	require.True(t, ok)
	assert.Equal(t, TypeNumber, fields["n"])
}

func TestParseValidatorAbsent(t *testing.T) {
	_, ok := ParseValidator(nil)
	assert.False(t, ok)

	_, ok = ParseValidator(map[string]any{"$expr": map[string]any{}})
	assert.False(t, ok)

	_, ok = ParseValidator(map[string]any{
		"$jsonSchema": map[string]any{"properties": map[string]any{}},
	})
	assert.False(t, ok)
}

func TestBuildParseRoundTrip(t *testing.T) {
	in := map[string]FieldType{
		"_id":    TypeObjectID,
		"name":   TypeString,
		"bonus":  TypeNumber,
		"hired":  TypeDate,
		"active": TypeBoolean,
	}

	out, ok := ParseValidator(BuildValidator(in))
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestBuildValidatorIsPermissive(t *testing.T) {
	v := BuildValidator(map[string]FieldType{"name": TypeString})
	js := v["$jsonSchema"].(map[string]any)
	assert.Equal(t, true, js["additionalProperties"])
}
