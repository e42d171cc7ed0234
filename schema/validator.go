package schema

// The store keeps the Explicit declaration as a standard $jsonSchema
// validator attached to the collection. We only read and write the
// per-field bsonType constraint; everything else in the validator is
// someone else's business and gets replaced on write.

// bsonTypeToField maps a bsonType constraint to our vocabulary.
func bsonTypeToField(bt string) FieldType {
	switch bt {
	case "string":
		return TypeString
	case "int", "long", "double":
		return TypeNumber
	case "bool":
		return TypeBoolean
	case "date":
		return TypeDate
	case "objectId":
		return TypeObjectID
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	}
	return TypeUnknown
}

// fieldToBSONTypes maps our vocabulary back to the bsonType constraint to
// persist. Numbers accept any numeric width so an int inserted through a
// driver doesn't trip a double-only constraint.
func fieldToBSONTypes(t FieldType) any {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return []any{"double", "int", "long"}
	case TypeBoolean:
		return "bool"
	case TypeDate:
		return "date"
	case TypeObjectID:
		return "objectId"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	}
	return nil
}

// ParseValidator extracts a field -> type map from a stored validator
// document. Returns ok=false when the document carries no usable
// $jsonSchema properties, which callers treat as "no explicit schema",
// never as an error.
func ParseValidator(validator map[string]any) (map[string]FieldType, bool) {
	if validator == nil {
		return nil, false
	}
	js, ok := validator["$jsonSchema"].(map[string]any)
	if !ok {
		return nil, false
	}
	props, ok := js["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return nil, false
	}

	fields := make(map[string]FieldType, len(props))
	for name, raw := range props {
		constraint, ok := raw.(map[string]any)
		if !ok {
			fields[name] = TypeUnknown
			continue
		}
		switch bt := constraint["bsonType"].(type) {
		case string:
			fields[name] = bsonTypeToField(bt)
		case []any:
			// An array of allowed bsonTypes; the first one decides.
			if len(bt) > 0 {
				if s, ok := bt[0].(string); ok {
					fields[name] = bsonTypeToField(s)
					continue
				}
			}
			fields[name] = TypeUnknown
		default:
			fields[name] = TypeUnknown
		}
	}
	return fields, true
}

// BuildValidator produces the permissive $jsonSchema validator for a field
// map. Unknown-typed fields get an unconstrained property so they stay
// declared without rejecting anything.
func BuildValidator(fields map[string]FieldType) map[string]any {
	props := make(map[string]any, len(fields))
	for name, t := range fields {
		constraint := map[string]any{}
		if bt := fieldToBSONTypes(t); bt != nil {
			constraint["bsonType"] = bt
		}
		props[name] = constraint
	}
	return map[string]any{
		"$jsonSchema": map[string]any{
			"bsonType":             "object",
			"properties":           props,
			"additionalProperties": true,
		},
	}
}
