package sanitizer

import "strings"

// NormalizeURL rewrites an organization website to https with a lowercase
// host and no "www." prefix. The path is kept as typed, minus a trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			raw = raw[len(scheme):]
			break
		}
	}

	host, path, _ := strings.Cut(raw, "/")
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host == "" {
		return ""
	}

	normalized := "https://" + host
	if path != "" {
		normalized += "/" + path
	}
	return strings.TrimSuffix(normalized, "/")
}
