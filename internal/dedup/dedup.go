// Package dedup reconciles freshly fetched rows with rows already stored.
package dedup

// Fresh returns the rows of incoming whose key is absent from existing.
// Duplicates within incoming collapse to their first occurrence and the
// input order is kept.
func Fresh[T any](incoming, existing []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, e := range existing {
		seen[key(e)] = struct{}{}
	}

	out := make([]T, 0, len(incoming))
	for _, r := range incoming {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
