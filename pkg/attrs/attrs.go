// Package attrs holds helpers for slog key-value attribute lists.
package attrs

// NonZero drops key-value pairs whose value is empty: nil, "", or a value
// reporting IsZero or IsNil. A trailing key without a value is dropped.
func NonZero(pairs ...any) []any {
	out := make([]any, 0, len(pairs))
	for i := 0; i < len(pairs)-1; i += 2 {
		if isEmpty(pairs[i+1]) {
			continue
		}
		out = append(out, pairs[i], pairs[i+1])
	}
	return out
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case interface{ IsZero() bool }:
		return val.IsZero()
	case interface{ IsNil() bool }:
		return val.IsNil()
	}
	return false
}
