package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/ai"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// AIConfigService stores the per-user AI provider configuration.
type AIConfigService struct {
	DB *gorm.DB
}

// Get returns the user's configuration, or ErrAIConfigMissing.
func (s *AIConfigService) Get(ctx context.Context, userID string) (*domain.AIConfiguration, error) {
	c, err := repo.GetAIConfig(ctx, s.DB, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrAIConfigMissing)
	}
	return c, nil
}

// Save creates or replaces the user's configuration. An empty model selects
// the provider default; an empty key keeps the stored one.
func (s *AIConfigService) Save(ctx context.Context, userID string, in domain.AIConfigInput) (*domain.AIConfiguration, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if !ai.IsProvider(provider) {
		return nil, ErrInvalidProvider
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = ai.DefaultModel(provider)
	}
	c := &domain.AIConfiguration{
		UserID:   userID,
		Provider: provider,
		Model:    model,
		APIKey:   strings.TrimSpace(in.APIKey),
		IsActive: true,
	}
	if err := repo.UpsertAIConfig(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return repo.GetAIConfig(ctx, s.DB, userID)
}
