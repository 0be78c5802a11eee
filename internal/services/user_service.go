package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// UserService manages account profiles.
type UserService struct {
	DB *gorm.DB
}

// List returns every profile, oldest first.
func (s *UserService) List(ctx context.Context) ([]domain.Profile, error) {
	return repo.ListProfiles(ctx, s.DB)
}

// Upsert creates or overwrites the profile with id.
func (s *UserService) Upsert(ctx context.Context, id string, p domain.Profile) (*domain.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrUserNotFound
	}
	p.ID = id
	p.Email = optString(derefString(p.Email))
	p.FullName = optString(derefString(p.FullName))
	p.AvatarURL = optString(derefString(p.AvatarURL))
	if err := repo.UpsertProfile(ctx, s.DB, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a profile.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return mapNotFound(repo.DeleteProfile(ctx, s.DB, id), ErrUserNotFound)
}
