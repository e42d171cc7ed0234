package schema

import "github.com/docgrid/docgrid/document"

// SampleLimit is how many documents Infer looks at. First-N is fine; the
// goal is a usable guess, not a statistically fair sample.
const SampleLimit = 100

// Infer computes a field -> type map from sampled documents.
//
// Null and absent values contribute no evidence. When a field shows more
// than one type across the sample, the conflict resolves by typePriority;
// if none of the priority types were observed (exotic values only), the
// first observed type wins. A field that was only ever null comes out as
// TypeString. An empty sample yields an empty map.
func Infer(samples []document.Document) map[string]FieldType {
	observed := make(map[string][]FieldType)
	seenNull := make(map[string]bool)

	n := len(samples)
	if n > SampleLimit {
		n = SampleLimit
	}
	for _, doc := range samples[:n] {
		for field, value := range doc {
			if value == nil {
				seenNull[field] = true
				if _, ok := observed[field]; !ok {
					observed[field] = nil
				}
				continue
			}
			t := DetectValue(value)
			if !contains(observed[field], t) {
				observed[field] = append(observed[field], t)
			}
		}
	}

	fields := make(map[string]FieldType, len(observed))
	for field, types := range observed {
		fields[field] = resolve(types, seenNull[field])
	}
	return fields
}

func resolve(types []FieldType, sawNull bool) FieldType {
	if len(types) == 0 {
		if sawNull {
			return TypeString
		}
		return TypeUnknown
	}
	if len(types) == 1 {
		return types[0]
	}
	for _, p := range typePriority {
		if contains(types, p) {
			return p
		}
	}
	return types[0]
}

func contains(types []FieldType, t FieldType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
