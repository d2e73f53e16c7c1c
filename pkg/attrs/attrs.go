package attrs

// Extract finds key in a slog-style key/value slice ([k1, v1, k2, v2, ...]) and
// returns its value when it has type T.
func Extract[T any](kv []any, key string) (T, bool) {
	var zero T
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || k != key {
			continue
		}
		v, ok := kv[i+1].(T)
		return v, ok
	}
	return zero, false
}

// ExtractString returns the string stored under key, or "".
func ExtractString(kv []any, key string) string {
	v, _ := Extract[string](kv, key)
	return v
}
