package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// CreateTopicResults inserts analyze-topics clusters for the user.
func CreateTopicResults(ctx context.Context, db *gorm.DB, userID string, rows []domain.TopicAnalysisResult) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].UserID = userID
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// ListTopicResults returns the user's topic clusters, most recent first.
func ListTopicResults(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.TopicAnalysisResult, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Order("count desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.TopicAnalysisResult
	err := q.Find(&out).Error
	return out, err
}
