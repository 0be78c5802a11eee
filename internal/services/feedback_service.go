// Package services – FeedbackService
//
// This file implements the FeedbackService, which owns manual feedback entry,
// the paginated feedback report and the LatestItem counters that feedback
// entry keeps up to date.
//
// A manual entry and its LatestItem increment commit in one transaction. The
// increment is a single upsert with server-side arithmetic, so concurrent
// submissions of the same title never lose a count.
package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/observability"
	"github.com/tbourn/feedback-hub/internal/repo"
	"github.com/tbourn/feedback-hub/internal/report"
)

// DefaultLatestItemsWindow is the aggregation window for LatestItems.
const DefaultLatestItemsWindow = 30 * 24 * time.Hour

// maxKeywords caps LatestItem keywords.
const maxKeywords = 5

// FeedbackService implements feedback entry and reporting.
type FeedbackService struct {
	// DB is the database handle used for all feedback operations.
	DB *gorm.DB
	// Window is the LatestItems aggregation window (30 days when zero).
	Window time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

func (s *FeedbackService) window() time.Duration {
	if s.Window > 0 {
		return s.Window
	}
	return DefaultLatestItemsWindow
}

func (s *FeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records a manual feedback entry and bumps the LatestItem counter
// for its title.
//
// Validation:
//   - title is trimmed and must be non-empty (ErrEmptyTitle).
//   - priority must be low, medium or high; empty means medium.
//
// The LatestItem change percentage is recomputed from feedback counts of the
// current and previous windows in the same transaction.
func (s *FeedbackService) Create(ctx context.Context, userID string, in domain.FeedbackInput) (*domain.Feedback, error) {
	tr := observability.Tracer("services/feedback")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	title := normalizeTitle(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	switch priority {
	case "":
		priority = "medium"
	case "low", "medium", "high":
	default:
		return nil, ErrInvalidPriority
	}

	now := s.now()
	fb := &domain.Feedback{
		UserID:          userID,
		Source:          domain.SourceManual,
		Status:          "new",
		Priority:        priority,
		Title:           title,
		Description:     optString(in.Description),
		Tags:            datatypes.JSONSlice[string](cleanTags(in.Tags)),
		CustomerName:    optString(in.CustomerName),
		IntervieweeName: optString(in.IntervieweeName),
		ConversationAt:  in.ConversationAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateFeedback(ctx, tx, fb); err != nil {
			return err
		}
		if err := repo.IncrementLatestItem(ctx, tx, userID, title, domain.SentimentNeutral, firstN(fb.Tags, maxKeywords)); err != nil {
			return err
		}
		w := s.window()
		cur, err := repo.CountFeedbacksByTitle(ctx, tx, userID, title, now.Add(-w), now.Add(time.Second))
		if err != nil {
			return err
		}
		prev, err := repo.CountFeedbacksByTitle(ctx, tx, userID, title, now.Add(-2*w), now.Add(-w))
		if err != nil {
			return err
		}
		return repo.SetLatestItemChange(ctx, tx, userID, title, ChangePercentage(cur, prev))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return fb, nil
}

// Get returns one feedback owned by userID.
func (s *FeedbackService) Get(ctx context.Context, userID, id string) (*domain.Feedback, error) {
	fb, err := repo.GetFeedback(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrFeedbackNotFound)
	}
	return fb, nil
}

// Report returns one page of the feedback report.
//
// Without a tag filter the page is a SQL range query with an exact count.
// With a tag filter SQL narrows the candidates by a text prefilter on the
// stored analysis and report.Filter applies the exact rule before slicing,
// so both paths page identically to the demo path.
func (s *FeedbackService) Report(ctx context.Context, userID string, q report.Query) (report.Page[domain.Feedback], error) {
	tr := observability.Tracer("services/feedback")
	ctx, span := tr.Start(ctx, "Report",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("source", q.Source),
			attribute.Bool("tag_filter", q.HasTag()),
			attribute.Int("page", q.Page),
		),
	)
	defer span.End()

	q = q.Normalize()
	filter := repo.FeedbackFilter{Source: q.Source}

	if !q.HasTag() {
		total, err := repo.CountFeedbacks(ctx, s.DB, userID, filter)
		if err != nil {
			return report.Page[domain.Feedback]{}, err
		}
		if total == 0 {
			return report.Assemble([]domain.Feedback{}, q.Page, 0), nil
		}
		items, err := repo.ListFeedbacksPage(ctx, s.DB, userID, filter, report.Offset(q.Page), report.PageSize)
		if err != nil {
			return report.Page[domain.Feedback]{}, err
		}
		return report.Assemble(items, q.Page, int(total)), nil
	}

	// The prefilter matches the stored JSON text, so it only runs when the
	// needle is spelled the same there and LOWER() can fold it.
	if likeSafe(q.Tag) {
		filter.AnalysisLike = q.Tag
	}
	candidates, err := repo.ListFeedbacksPage(ctx, s.DB, userID, filter, 0, -1)
	if err != nil {
		return report.Page[domain.Feedback]{}, err
	}
	return report.Paginate(report.Filter(candidates, q), q.Page), nil
}

// LatestItems returns the user's LatestItem counters, highest count first.
func (s *FeedbackService) LatestItems(ctx context.Context, userID string) ([]domain.LatestItem, error) {
	return repo.ListLatestItems(ctx, s.DB, userID, 0)
}

// ChangePercentage is the period-over-period delta of cur against prev,
// rounded to the nearest integer. It is 100 when prev is zero and cur is
// not, and 0 when both are zero.
func ChangePercentage(cur, prev int64) int {
	switch {
	case prev == 0 && cur == 0:
		return 0
	case prev == 0:
		return 100
	}
	delta := float64(cur-prev) / float64(prev) * 100
	if delta < 0 {
		return -int(-delta + 0.5)
	}
	return int(delta + 0.5)
}

// likeSafe reports whether s is printable ASCII that encoding/json writes
// verbatim. Non-ASCII defeats SQLite's LOWER(); &, <, >, " and \ are
// escaped inside the analysis column.
func likeSafe(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > unicode.MaxASCII-1 || strings.ContainsRune(`&<>"\`, r) {
			return false
		}
	}
	return true
}
