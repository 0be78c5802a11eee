// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Insight rows
// and their feedback provenance links.
//
// Status guards live in the WHERE clause (status IS NULL OR status = 'active')
// so that lifecycle transitions are atomic with respect to concurrent callers.
// A guarded update that touches no rows returns RowsAffected = 0; the service
// layer decides whether that means "missing" or "not active".
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/feedback-hub/internal/domain"
)

const activeInsightCond = "(status IS NULL OR status = '' OR status = 'active')"

// CreateInsight inserts in, assigning an ID and UTC timestamp when unset.
func CreateInsight(ctx context.Context, db *gorm.DB, in *domain.Insight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	if in.Tags == nil {
		in.Tags = datatypes.JSONSlice[string]{}
	}
	return db.WithContext(ctx).Create(in).Error
}

// GetInsight fetches an insight by id and owner.
func GetInsight(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Insight, error) {
	var in domain.Insight
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&in).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// ListActiveInsights returns active (or status-less) insights, most recent
// first. A non-nil since restricts to created_at >= since; limit <= 0 means
// no cap.
func ListActiveInsights(ctx context.Context, db *gorm.DB, userID string, since *time.Time, limit int) ([]domain.Insight, error) {
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(activeInsightCond)
	if since != nil {
		q = q.Where("created_at >= ?", since.UTC())
	}
	q = q.Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Insight
	err := q.Find(&out).Error
	return out, err
}

// UpdateActiveInsightTags replaces the tag set of an active insight and
// reports how many rows changed.
func UpdateActiveInsightTags(ctx context.Context, db *gorm.DB, id, userID string, tags []string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Insight{}).
		Where("id = ? AND user_id = ?", id, userID).
		Where(activeInsightCond).
		Update("tags", datatypes.JSONSlice[string](tags))
	return res.RowsAffected, res.Error
}

// TransitionInsight moves an active insight to status and reports how many
// rows changed.
func TransitionInsight(ctx context.Context, db *gorm.DB, id, userID, status string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Insight{}).
		Where("id = ? AND user_id = ?", id, userID).
		Where(activeInsightCond).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// DeleteInsight removes an insight owned by userID together with its links.
func DeleteInsight(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Insight{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("insight_id = ?", id).Delete(&domain.InsightFeedback{}).Error; err != nil {
			return err
		}
		return tx.Where("insight_id = ?", id).Delete(&domain.OpportunityInsight{}).Error
	})
}

// LinkInsightFeedbacks records provenance links, ignoring duplicates.
func LinkInsightFeedbacks(ctx context.Context, db *gorm.DB, insightID string, feedbackIDs []string) error {
	if len(feedbackIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	links := make([]domain.InsightFeedback, 0, len(feedbackIDs))
	for _, fid := range feedbackIDs {
		links = append(links, domain.InsightFeedback{InsightID: insightID, FeedbackID: fid, CreatedAt: now})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// ListFeedbackSources returns, per insight id, the feedback rows linked to
// it, most recent first.
func ListFeedbackSources(ctx context.Context, db *gorm.DB, insightIDs []string) (map[string][]domain.FeedbackSource, error) {
	out := make(map[string][]domain.FeedbackSource, len(insightIDs))
	if len(insightIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		InsightID    string
		ID           string
		Title        string
		Source       string
		CustomerName *string
		CreatedAt    time.Time
	}
	err := db.WithContext(ctx).
		Table("insight_feedbacks AS l").
		Select("l.insight_id, f.id, f.title, f.source, f.customer_name, f.created_at").
		Joins("JOIN feedbacks AS f ON f.id = l.feedback_id").
		Where("l.insight_id IN ?", insightIDs).
		Order("f.created_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		src := domain.FeedbackSource{ID: r.ID, Title: r.Title, Source: r.Source, CreatedAt: r.CreatedAt}
		if r.CustomerName != nil {
			src.CustomerName = *r.CustomerName
		}
		out[r.InsightID] = append(out[r.InsightID], src)
	}
	return out, nil
}
