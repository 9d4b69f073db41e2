package remote

import "reflect"

// StripNil removes nil-valued fields from maps, recursing through nested
// maps and slices. The store rejects explicit nulls, so every write runs
// its payload through here after sanitization.
func StripNil(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isNil(inner) {
				continue
			}
			out[k] = StripNil(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, inner := range val {
			if isNil(inner) {
				continue
			}
			out = append(out, StripNil(inner))
		}
		return out
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
