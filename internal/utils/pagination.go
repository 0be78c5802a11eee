// Package utils holds paging arithmetic shared by the report and handlers.
package utils

import (
	"strconv"
	"strings"
)

// Count parses a non-negative integer query value such as limit or page.
// Blank, malformed and negative input yields def.
func Count(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// TotalPages returns how many pages of size hold total items. It is 0 for
// an empty set and never negative.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// PageBounds returns the half-open [start, end) slice bounds of the
// 1-based page over n items. Pages past the end yield start == end == n.
func PageBounds(page, size, n int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || n <= 0 {
		return 0, 0
	}
	start = (page - 1) * size
	if start > n {
		start = n
	}
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}
