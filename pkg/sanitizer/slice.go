package sanitizer

import "strings"

// Dedupe applies normalize to every item and drops empty results and items
// whose key has been seen. The first spelling of each key wins.
func Dedupe(items []string, normalize, key func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := normalize(item)
		if v == "" {
			continue
		}
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeOrganizationTypes cleans the organization checkboxes of a form;
// "Student" and "student" count as one type.
func NormalizeOrganizationTypes(types []string) []string {
	return Dedupe(types, TrimAndNormalize, strings.ToLower)
}
