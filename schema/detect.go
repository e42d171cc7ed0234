package schema

import (
	"regexp"
	"time"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Layouts tried when deciding whether a string holds a date. Ordered from
// most to least specific so RFC3339 timestamps don't get truncated.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC822,
}

// IsObjectIDHex reports whether s looks like a 24 hex char ObjectID.
func IsObjectIDHex(s string) bool {
	return objectIDPattern.MatchString(s)
}

func parseDateString(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DetectValue classifies a single document value. Nil is reported as
// TypeUnknown; callers sampling many documents treat it as non-evidence.
//
// Order matters: an ObjectID is also a valid string, and a date can arrive
// as a string, so the more specific checks run first.
func DetectValue(v any) FieldType {
	if v == nil {
		return TypeUnknown
	}

	switch x := v.(type) {
	case string:
		if IsObjectIDHex(x) {
			return TypeObjectID
		}
		if _, ok := parseDateString(x); ok {
			return TypeDate
		}
		return TypeString
	case time.Time:
		return TypeDate
	case bool:
		return TypeBoolean
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	}

	// Backend-specific types are expected to be normalized to the shapes
	// above before they reach us.
	return TypeUnknown
}
