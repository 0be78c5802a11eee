package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// GetAIConfig returns the user's AI configuration or ErrNotFound.
func GetAIConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.AIConfiguration, error) {
	var c domain.AIConfiguration
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	c.HasAPIKey = c.APIKey != ""
	return &c, nil
}

// UpsertAIConfig stores c as the user's single configuration. An empty
// APIKey leaves the stored key untouched.
func UpsertAIConfig(ctx context.Context, db *gorm.DB, c *domain.AIConfiguration) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	cols := []string{"provider", "model", "is_active", "updated_at"}
	if c.APIKey != "" {
		cols = append(cols, "api_key")
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(c).Error
}
