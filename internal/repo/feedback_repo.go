package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// ErrNotFound is gorm.ErrRecordNotFound, so callers can match either.
var ErrNotFound = gorm.ErrRecordNotFound

// Feedback queries are scoped by user_id and ordered created_at DESC, id DESC
// so offset pages stay stable.

// FeedbackFilter narrows feedback listings. Source "" or "all" matches every
// source. AnalysisLike is a lowercase substring matched against the stored
// analysis JSON; callers must still apply the exact tag match.
type FeedbackFilter struct {
	Source       string
	AnalysisLike string
}

// CreateFeedback inserts fb, assigning an ID and UTC timestamps when unset.
func CreateFeedback(ctx context.Context, db *gorm.DB, fb *domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = now
	}
	if fb.UpdatedAt.IsZero() {
		fb.UpdatedAt = fb.CreatedAt
	}
	return db.WithContext(ctx).Create(fb).Error
}

// GetFeedback fetches a single feedback by id and owner.
func GetFeedback(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Feedback, error) {
	var fb domain.Feedback
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&fb).Error
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// ListFeedbacksSince returns the user's feedback created at or after since,
// most recent first. limit <= 0 means no cap.
func ListFeedbacksSince(ctx context.Context, db *gorm.DB, userID string, since time.Time, limit int) ([]domain.Feedback, error) {
	q := db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at desc").
		Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Feedback
	err := q.Find(&out).Error
	return out, err
}

// ListUnanalyzedFeedbacks returns feedback that topic analysis has not yet
// processed, oldest first.
func ListUnanalyzedFeedbacks(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Feedback, error) {
	q := db.WithContext(ctx).
		Where("user_id = ? AND is_topic_analyzed = ?", userID, false).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Feedback
	err := q.Find(&out).Error
	return out, err
}

// ListFeedbacksByIDs returns the subset of ids owned by userID.
func ListFeedbacksByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.Feedback, error) {
	if len(ids) == 0 {
		return []domain.Feedback{}, nil
	}
	var out []domain.Feedback
	err := db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func filteredFeedbacks(ctx context.Context, db *gorm.DB, userID string, f FeedbackFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Feedback{}).Where("user_id = ?", userID)
	if s := strings.TrimSpace(f.Source); s != "" && s != "all" {
		q = q.Where("source = ?", s)
	}
	if like := strings.TrimSpace(f.AnalysisLike); like != "" {
		q = q.Where(`analysis IS NOT NULL AND LOWER(analysis) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(like))+"%")
	}
	return q
}

// CountFeedbacks returns the number of rows matching f.
func CountFeedbacks(ctx context.Context, db *gorm.DB, userID string, f FeedbackFilter) (int64, error) {
	var total int64
	err := filteredFeedbacks(ctx, db, userID, f).Count(&total).Error
	return total, err
}

// ListFeedbacksPage returns rows matching f in report order. limit < 0
// returns every row from offset on.
func ListFeedbacksPage(ctx context.Context, db *gorm.DB, userID string, f FeedbackFilter, offset, limit int) ([]domain.Feedback, error) {
	q := filteredFeedbacks(ctx, db, userID, f).
		Order("created_at desc").
		Order("id desc")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit >= 0 {
		q = q.Limit(limit)
	}
	var out []domain.Feedback
	err := q.Find(&out).Error
	return out, err
}

// CountFeedbacksByTitle counts the user's feedback with an exact title in
// the half-open window [from, to).
func CountFeedbacksByTitle(ctx context.Context, db *gorm.DB, userID, title string, from, to time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("user_id = ? AND title = ? AND created_at >= ? AND created_at < ?", userID, title, from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}

// CountFeedbacksPerTitle counts the user's feedback per exact title in
// [from, to). Titles without rows are absent from the result.
func CountFeedbacksPerTitle(ctx context.Context, db *gorm.DB, userID string, from, to time.Time) (map[string]int64, error) {
	var rows []struct {
		Title string
		N     int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Select("title, COUNT(*) AS n").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Group("title").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Title] = r.N
	}
	return out, nil
}

// MarkFeedbackAnalyzed attaches analysis and flips is_topic_analyzed.
func MarkFeedbackAnalyzed(ctx context.Context, db *gorm.DB, id, userID string, a *domain.FeedbackAnalysis) error {
	res := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("analysis", "is_topic_analyzed", "updated_at").
		Updates(&domain.Feedback{Analysis: a, IsTopicAnalyzed: true, UpdatedAt: time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally in a LIKE pattern using ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
