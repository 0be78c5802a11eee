// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// organizational taxonomy: Tribes and the Squads they own.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// CreateTribe inserts t.
func CreateTribe(ctx context.Context, db *gorm.DB, t *domain.Tribe) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return db.WithContext(ctx).Create(t).Error
}

// GetTribe fetches a tribe by id and owner.
func GetTribe(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Tribe, error) {
	var t domain.Tribe
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTribes returns the user's tribes ordered by name.
func ListTribes(ctx context.Context, db *gorm.DB, userID string) ([]domain.Tribe, error) {
	var out []domain.Tribe
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("name asc").Find(&out).Error
	return out, err
}

// UpdateTribe writes name and description.
func UpdateTribe(ctx context.Context, db *gorm.DB, t *domain.Tribe) error {
	t.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Tribe{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Select("name", "description", "updated_at").
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTribe removes a tribe. Callers enforce the restrict rule first.
func DeleteTribe(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Tribe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSquad inserts s.
func CreateSquad(ctx context.Context, db *gorm.DB, s *domain.Squad) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	return db.WithContext(ctx).Create(s).Error
}

// GetSquad fetches a squad by id and owner.
func GetSquad(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Squad, error) {
	var s domain.Squad
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSquads returns the user's squads ordered by name, optionally limited
// to one tribe.
func ListSquads(ctx context.Context, db *gorm.DB, userID, tribeID string) ([]domain.Squad, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if tribeID != "" {
		q = q.Where("tribe_id = ?", tribeID)
	}
	var out []domain.Squad
	err := q.Order("name asc").Find(&out).Error
	return out, err
}

// UpdateSquad writes every editable field of s.
func UpdateSquad(ctx context.Context, db *gorm.DB, s *domain.Squad) error {
	s.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Squad{}).
		Where("id = ? AND user_id = ?", s.ID, s.UserID).
		Select("tribe_id", "name", "description", "jira_board_url", "updated_at").
		Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSquad removes a squad.
func DeleteSquad(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Squad{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSquadsByTribe counts squads belonging to tribeID.
func CountSquadsByTribe(ctx context.Context, db *gorm.DB, userID, tribeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Squad{}).
		Where("user_id = ? AND tribe_id = ?", userID, tribeID).
		Count(&n).Error
	return n, err
}
