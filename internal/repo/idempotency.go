package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// IdempotencyKey names one unsafe operation of one caller: the client's
// Idempotency-Key under a method+path scope.
type IdempotencyKey struct {
	UserID string
	Scope  string
	Key    string
}

func (k IdempotencyKey) blank() bool {
	return strings.TrimSpace(k.Scope) == "" || strings.TrimSpace(k.Key) == ""
}

// LiveIdempotency returns the record for k that is still valid at now.
func LiveIdempotency(ctx context.Context, db *gorm.DB, k IdempotencyKey, now time.Time) (*domain.Idempotency, error) {
	if k.blank() {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where(map[string]any{"user_id": k.UserID, "scope": k.Scope, "key": k.Key}).
		Where("expires_at > ?", now.UTC()).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordIdempotency stores the outcome of k until expires. It reports false
// when another request already recorded the same key; the first outcome wins.
func RecordIdempotency(ctx context.Context, db *gorm.DB, k IdempotencyKey, resourceID string, status int, expires time.Time) (bool, error) {
	rec := domain.Idempotency{
		ID:         uuid.NewString(),
		UserID:     k.UserID,
		Scope:      k.Scope,
		Key:        k.Key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  expires.UTC(),
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PurgeIdempotency deletes records that expired at or before cutoff.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", cutoff.UTC()).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
