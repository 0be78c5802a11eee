package services

import (
	"regexp"
	"strings"
)

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// optString returns nil for blank input and a pointer to the trimmed value
// otherwise.
func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// derefString returns "" for nil.
func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ParseTags splits a comma-separated tag list, trims each entry and drops
// empties. Entries that become identical after trimming are kept once;
// entries that differ only by case are kept as typed.
func ParseTags(csv string) []string {
	return cleanTags(strings.Split(csv, ","))
}

// cleanTags trims, drops empties and removes exact duplicates, preserving
// first-seen order.
func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// firstN returns at most n leading elements of s.
func firstN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// normRef maps "", whitespace and "none" to "".
func normRef(id string) string {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, "none") {
		return ""
	}
	return id
}
