// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for LatestItem
// counters.
//
// The per-title counter is maintained with a single
// INSERT ... ON CONFLICT (user_id, title) DO UPDATE statement so concurrent
// submissions of the same title never lose an increment.
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

// ListLatestItems returns the user's items, highest count first.
func ListLatestItems(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.LatestItem, error) {
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("count desc").
		Order("title asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.LatestItem
	err := q.Find(&out).Error
	return out, err
}

// GetLatestItem fetches the item for (userID, title).
func GetLatestItem(ctx context.Context, db *gorm.DB, userID, title string) (*domain.LatestItem, error) {
	var it domain.LatestItem
	if err := db.WithContext(ctx).Where("user_id = ? AND title = ?", userID, title).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ReplaceLatestItems deletes every item of the user and inserts items.
// Callers wrap it in a transaction to make the swap atomic.
func ReplaceLatestItems(ctx context.Context, db *gorm.DB, userID string, items []domain.LatestItem) error {
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.LatestItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].UserID = userID
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		items[i].UpdatedAt = now
		if items[i].Keywords == nil {
			items[i].Keywords = datatypes.JSONSlice[string]{}
		}
	}
	return db.WithContext(ctx).CreateInBatches(&items, 100).Error
}

// IncrementLatestItem inserts a counter row for (userID, title) with count 1,
// or atomically bumps count by one when it already exists.
func IncrementLatestItem(ctx context.Context, db *gorm.DB, userID, title, sentiment string, keywords []string) error {
	now := time.Now().UTC()
	if sentiment == "" {
		sentiment = domain.SentimentNeutral
	}
	if keywords == nil {
		keywords = []string{}
	}
	it := &domain.LatestItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Count:     1,
		Sentiment: sentiment,
		Keywords:  datatypes.JSONSlice[string](keywords),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "title"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count":      gorm.Expr("latest_items.count + 1"),
				"updated_at": now,
			}),
		}).
		Create(it).Error
}

// SetLatestItemChange stores a recomputed change percentage.
func SetLatestItemChange(ctx context.Context, db *gorm.DB, userID, title string, pct int) error {
	return db.WithContext(ctx).
		Model(&domain.LatestItem{}).
		Where("user_id = ? AND title = ?", userID, title).
		Update("change_percentage", pct).Error
}
