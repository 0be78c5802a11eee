package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// ListProfiles returns every profile ordered by creation time.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	var out []domain.Profile
	err := db.WithContext(ctx).Order("created_at asc").Find(&out).Error
	return out, err
}

// UpsertProfile creates p or overwrites its mutable fields.
func UpsertProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "avatar_url", "updated_at"}),
		}).
		Create(p).Error
}

// DeleteProfile removes the profile with id.
func DeleteProfile(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
