// Package report implements the filtering and pagination rules of the
// feedback report. The same rules serve the live path (after the database
// has narrowed the candidates) and the demo path (over fixtures), so both
// produce identical pages for identical inputs.
package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/utils"
)

// PageSize is the fixed number of rows per report page.
const PageSize = 10

// AllSources is the source filter value that matches every source.
const AllSources = "all"

// Query is a report filter set. A zero Query matches everything on page 1.
type Query struct {
	Source string `json:"source,omitempty" form:"source"`
	Tag    string `json:"tag,omitempty"    form:"tag"`
	Page   int    `json:"page,omitempty"   form:"page"`
}

// Normalize trims the filters and clamps Page to at least 1.
func (q Query) Normalize() Query {
	q.Source = strings.TrimSpace(q.Source)
	if q.Source == "" {
		q.Source = AllSources
	}
	q.Tag = strings.TrimSpace(q.Tag)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// HasTag reports whether the query filters on analysis tags.
func (q Query) HasTag() bool { return strings.TrimSpace(q.Tag) != "" }

// Page is one slice of a filtered result set.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// Match reports whether fb satisfies q: exact source (or all) and, when a
// tag is given, a case-insensitive substring hit on any analysis tag.
func Match(fb domain.Feedback, q Query) bool {
	q = q.Normalize()
	if q.Source != AllSources && fb.Source != q.Source {
		return false
	}
	if q.Tag == "" {
		return true
	}
	if fb.Analysis == nil {
		return false
	}
	// Casers are stateful and must not be shared across goroutines.
	fold := cases.Fold()
	needle := fold.String(q.Tag)
	for _, tag := range fb.Analysis.Tags {
		if strings.Contains(fold.String(tag), needle) {
			return true
		}
	}
	return false
}

// Filter returns the rows of in matching q, preserving order.
func Filter(in []domain.Feedback, q Query) []domain.Feedback {
	out := make([]domain.Feedback, 0, len(in))
	for _, fb := range in {
		if Match(fb, q) {
			out = append(out, fb)
		}
	}
	return out
}

// Paginate slices already-filtered rows into the requested page.
func Paginate[T any](rows []T, page int) Page[T] {
	if page < 1 {
		page = 1
	}
	start, end := utils.PageBounds(page, PageSize, len(rows))
	items := make([]T, end-start)
	copy(items, rows[start:end])
	return Assemble(items, page, len(rows))
}

// Assemble wraps a page that was sliced elsewhere (for example by a SQL
// range query) given the total number of matches.
func Assemble[T any](items []T, page, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if page < 1 {
		page = 1
	}
	pages := utils.TotalPages(total, PageSize)
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// Offset returns the row offset of page.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// SourceLabel returns a display label for a source value.
func SourceLabel(src string) string {
	if src == "" || src == AllSources {
		return "All sources"
	}
	return cases.Title(language.Und).String(src)
}
