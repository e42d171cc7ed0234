package schema

import (
	"strconv"
	"time"
)

// ConvertValue coerces a raw default value (usually a string off a form,
// but any JSON value is accepted) to the target field type. Values that
// cannot be represented in the target type come back as nil rather than
// an error; a null default is always acceptable for a new field.
func ConvertValue(raw any, t FieldType) any {
	if raw == nil {
		return nil
	}

	switch t {
	case TypeNumber:
		switch x := raw.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		case string:
			if x == "" {
				return nil
			}
			n, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil
			}
			return n
		}
		return nil

	case TypeBoolean:
		switch x := raw.(type) {
		case bool:
			return x
		case string:
			return x == "true" || x == "1" || x == "yes"
		}
		return nil

	case TypeDate:
		switch x := raw.(type) {
		case time.Time:
			return x
		case string:
			if d, ok := parseDateString(x); ok {
				return d
			}
			return nil
		}
		return nil

	case TypeObjectID, TypeString:
		switch x := raw.(type) {
		case string:
			if x == "" {
				return nil
			}
			return x
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(x)
		}
		return nil
	}

	// array / object / unknown defaults pass through untouched.
	return raw
}
