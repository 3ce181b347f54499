package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a cached upstream response.
type CacheKey struct {
	// Endpoint is the upstream path (e.g., "/activate-devices")
	Endpoint string

	// QueryParams are the query parameters of the request
	QueryParams url.Values

	// Principal is the fingerprint of the caller's credential headers
	Principal string
}

// String generates a deterministic cache key string.
// Format: glp:endpoint:query1=val1:query2=val2:p=fingerprint
//
// Example:
//
//	glp:activate-devices:limit=2:page=0:serial_number=A,B:p=1f3a...
func (k CacheKey) String() string {
	parts := []string{"glp"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	if k.Principal != "" {
		parts = append(parts, "p="+k.Principal)
	}

	return strings.Join(parts, ":")
}

// Fingerprint hashes pass-through headers into a short stable string.
// Header names are compared case-insensitively; order does not matter.
func Fingerprint(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}

	names := make([]string, 0, len(headers))
	normalized := make(map[string]string, len(headers))
	for name, value := range headers {
		lower := strings.ToLower(strings.TrimSpace(name))
		names = append(names, lower)
		normalized[lower] = value
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(normalized[name]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
