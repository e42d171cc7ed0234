// Package schema infers and manipulates the structural schema of a
// schemaless collection: a field name -> type map, either computed from
// sampled documents or parsed from the collection's stored validator.
package schema

// FieldType is the coarse type vocabulary the editor works in.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeObjectID FieldType = "objectId"
	TypeArray    FieldType = "array"
	TypeObject   FieldType = "object"
	TypeUnknown  FieldType = "unknown"
)

// typePriority resolves fields whose sampled values disagree. The first
// type in this order that was observed wins.
var typePriority = []FieldType{TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID, TypeArray, TypeObject, TypeUnknown:
		return true
	}
	return false
}

// FieldDefinition describes one field of a collection for API consumers.
type FieldDefinition struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}
