package document

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// FromJSON parses an arbitrary JSON object body into a Document. The top
// level must be an object; anything else is rejected so a request body of
// `[1,2]` or `"x"` cannot sneak into a collection.
func FromJSON(b []byte) (Document, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("document body must be a JSON object, got %s", v.Type())
	}
	g, err := goValue(v)
	if err != nil {
		return nil, err
	}
	return Document(g.(map[string]any)), nil
}

func goValue(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any)
		var visitErr error
		o.Visit(func(key []byte, child *fastjson.Value) {
			if visitErr != nil {
				return
			}
			g, err := goValue(child)
			if err != nil {
				visitErr = err
				return
			}
			m[string(key)] = g
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return m, nil
	case fastjson.TypeArray:
		vs, err := v.Array()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vs))
		for i, child := range vs {
			g, err := goValue(child)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(sb), nil
	case fastjson.TypeNumber:
		return v.Float64()
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	}
	return nil, fmt.Errorf("unsupported JSON value type %s", v.Type())
}
