package datastore

import (
	"encoding/json"
	"fmt"
	"time"
)

// normalize converts a value into a JSON-safe form before storage.
// Timestamps become RFC3339Nano strings, maps and slices are walked
// recursively, and primitives pass through unchanged. Anything else is
// round-tripped through encoding/json, so types needing a custom stored
// form implement json.Marshaler.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val, nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return val.Format(time.RFC3339Nano), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	default:
		// Structs, json.Marshaler implementors, pointer types.
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, &SerializationError{
				Op:  "normalize",
				Err: fmt.Errorf("value of type %T is not JSON-safe: %w", v, err),
			}
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, &SerializationError{Op: "normalize", Err: err}
		}
		return out, nil
	}
}
