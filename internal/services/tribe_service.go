// Package services – TribeService
//
// Tribes and squads are reference data used to tag opportunities and
// insights. Deleting a tribe is restricted while squads or opportunities
// still reference it; deleting a squad clears the references to it.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// TribeService manages tribes and squads.
type TribeService struct {
	DB *gorm.DB
}

// ListTribes returns the user's tribes.
func (s *TribeService) ListTribes(ctx context.Context, userID string) ([]domain.Tribe, error) {
	return repo.ListTribes(ctx, s.DB, userID)
}

// CreateTribe inserts a tribe.
func (s *TribeService) CreateTribe(ctx context.Context, userID string, in domain.TribeInput) (*domain.Tribe, error) {
	name := normalizeTitle(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	t := &domain.Tribe{UserID: userID, Name: name, Description: optString(in.Description)}
	if err := repo.CreateTribe(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTribe overwrites name and description.
func (s *TribeService) UpdateTribe(ctx context.Context, userID, id string, in domain.TribeInput) (*domain.Tribe, error) {
	name := normalizeTitle(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	t, err := repo.GetTribe(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrTribeNotFound)
	}
	t.Name, t.Description = name, optString(in.Description)
	if err := repo.UpdateTribe(ctx, s.DB, t); err != nil {
		return nil, mapNotFound(err, ErrTribeNotFound)
	}
	return t, nil
}

// DeleteTribe removes a tribe that no squad or opportunity references.
func (s *TribeService) DeleteTribe(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetTribe(ctx, tx, id, userID); err != nil {
			return mapNotFound(err, ErrTribeNotFound)
		}
		squads, err := repo.CountSquadsByTribe(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		ops, err := repo.CountOpportunitiesByTribe(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if squads > 0 || ops > 0 {
			return ErrTribeInUse
		}
		return mapNotFound(repo.DeleteTribe(ctx, tx, id, userID), ErrTribeNotFound)
	})
}

// ListSquads returns the user's squads, optionally only those of tribeID.
// "none" or an empty tribe id lists every squad.
func (s *TribeService) ListSquads(ctx context.Context, userID, tribeID string) ([]domain.Squad, error) {
	return repo.ListSquads(ctx, s.DB, userID, normRef(tribeID))
}

// CreateSquad inserts a squad under an existing tribe.
func (s *TribeService) CreateSquad(ctx context.Context, userID string, in domain.SquadInput) (*domain.Squad, error) {
	sq, err := s.squadFromInput(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := repo.CreateSquad(ctx, s.DB, sq); err != nil {
		return nil, err
	}
	return sq, nil
}

// UpdateSquad overwrites every editable field of a squad. Moving it to
// another tribe drops it from opportunities and insights that stay with the
// old tribe, so no stored squad points outside its row's tribe.
func (s *TribeService) UpdateSquad(ctx context.Context, userID, id string, in domain.SquadInput) (*domain.Squad, error) {
	if _, err := repo.GetSquad(ctx, s.DB, id, userID); err != nil {
		return nil, mapNotFound(err, ErrSquadNotFound)
	}
	sq, err := s.squadFromInput(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	sq.ID = id
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateSquad(ctx, tx, sq); err != nil {
			return mapNotFound(err, ErrSquadNotFound)
		}
		return repo.ClearSquadRefsOutsideTribe(ctx, tx, userID, id, sq.TribeID)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetSquad(ctx, s.DB, id, userID)
}

// DeleteSquad removes a squad and clears references to it.
func (s *TribeService) DeleteSquad(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ClearSquadRefs(ctx, tx, userID, id); err != nil {
			return err
		}
		return mapNotFound(repo.DeleteSquad(ctx, tx, id, userID), ErrSquadNotFound)
	})
}

func (s *TribeService) squadFromInput(ctx context.Context, userID string, in domain.SquadInput) (*domain.Squad, error) {
	name := normalizeTitle(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	tribeID := normRef(in.TribeID)
	if tribeID == "" {
		return nil, ErrTribeNotFound
	}
	if _, err := repo.GetTribe(ctx, s.DB, tribeID, userID); err != nil {
		return nil, mapNotFound(err, ErrTribeNotFound)
	}
	return &domain.Squad{
		UserID:       userID,
		TribeID:      tribeID,
		Name:         name,
		Description:  optString(in.Description),
		JiraBoardURL: optString(strings.TrimSpace(in.JiraBoardURL)),
	}, nil
}
