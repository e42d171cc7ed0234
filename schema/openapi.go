package schema

import "github.com/getkin/kin-openapi/openapi3"

// ToOpenAPI exports a declaration as an OpenAPI object schema, for tooling
// that wants to generate clients against a collection's current shape.
func ToOpenAPI(d Declaration) *openapi3.Schema {
	props := make(map[string]*openapi3.SchemaRef, len(d.Fields))
	for name, t := range d.Fields {
		props[name] = fieldOpenAPISchema(t).NewRef()
	}
	return &openapi3.Schema{
		Type:       openapi3.TypeObject,
		Required:   []string{"_id"},
		Properties: props,
	}
}

func fieldOpenAPISchema(t FieldType) *openapi3.Schema {
	switch t {
	case TypeString:
		return &openapi3.Schema{Type: openapi3.TypeString}
	case TypeNumber:
		return &openapi3.Schema{Type: openapi3.TypeNumber}
	case TypeBoolean:
		return &openapi3.Schema{Type: openapi3.TypeBoolean}
	case TypeDate:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "date-time"}
	case TypeObjectID:
		// 24 hex chars; close enough to a string with a pattern.
		return &openapi3.Schema{Type: openapi3.TypeString, Pattern: "^[0-9a-fA-F]{24}$"}
	case TypeArray:
		return &openapi3.Schema{Type: openapi3.TypeArray}
	case TypeObject:
		return &openapi3.Schema{Type: openapi3.TypeObject}
	}
	return &openapi3.Schema{}
}
