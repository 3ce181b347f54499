package lookup

import "strings"

// ParseIdentifiers splits a free-text blob on commas and newlines, trims each
// token and drops empty ones. Order and duplicates are preserved.
func ParseIdentifiers(blob string) []string {
	fields := strings.FieldsFunc(blob, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return normalize(fields)
}

// normalize trims identifiers and drops empty ones.
func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// DedupeKeys removes keys that compare equal ignoring case. The first
// spelling wins and input order is kept.
func DedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		norm := strings.ToUpper(k)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, k)
	}
	return out
}

// dedupeFirstSeen removes exact duplicates, keeping first occurrences.
func dedupeFirstSeen(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
