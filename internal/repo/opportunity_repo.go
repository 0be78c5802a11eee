// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for roadmap
// Opportunities and their insight provenance links.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// CreateOpportunity inserts op, assigning an ID and UTC timestamps when unset.
func CreateOpportunity(ctx context.Context, db *gorm.DB, op *domain.Opportunity) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if op.CreatedAt.IsZero() {
		op.CreatedAt = now
	}
	if op.UpdatedAt.IsZero() {
		op.UpdatedAt = op.CreatedAt
	}
	if op.Status == "" {
		op.Status = domain.StatusBacklog
	}
	return db.WithContext(ctx).Create(op).Error
}

// GetOpportunity fetches an opportunity by id and owner.
func GetOpportunity(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Opportunity, error) {
	var op domain.Opportunity
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// ListOpportunityViews returns every opportunity of the user joined with the
// names of its tribe and squad, most recent first. A dangling reference
// yields an empty name.
func ListOpportunityViews(ctx context.Context, db *gorm.DB, userID string) ([]domain.OpportunityView, error) {
	var rows []struct {
		domain.Opportunity
		TribeName *string
		SquadName *string
	}
	err := db.WithContext(ctx).
		Table("product_opportunities AS o").
		Select("o.*, t.name AS tribe_name, s.name AS squad_name").
		Joins("LEFT JOIN tribes AS t ON t.id = o.tribe_id").
		Joins("LEFT JOIN squads AS s ON s.id = o.squad_id").
		Where("o.user_id = ?", userID).
		Order("o.created_at desc").
		Order("o.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.OpportunityView, 0, len(rows))
	for _, r := range rows {
		v := domain.OpportunityView{Opportunity: r.Opportunity}
		if r.TribeName != nil {
			v.TribeName = *r.TribeName
		}
		if r.SquadName != nil {
			v.SquadName = *r.SquadName
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateOpportunity writes every editable field of op, including nil
// description/tribe/squad, so clearing a field persists.
func UpdateOpportunity(ctx context.Context, db *gorm.DB, op *domain.Opportunity) error {
	op.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Where("id = ? AND user_id = ?", op.ID, op.UserID).
		Select("title", "description", "status", "tribe_id", "squad_id", "updated_at").
		Updates(op)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOpportunity removes an opportunity owned by userID.
func DeleteOpportunity(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("opportunity_id = ?", id).Delete(&domain.OpportunityInsight{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Opportunity{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// LinkOpportunityInsight records that insightID produced opportunityID.
func LinkOpportunityInsight(ctx context.Context, db *gorm.DB, opportunityID, insightID string) error {
	link := &domain.OpportunityInsight{
		OpportunityID: opportunityID,
		InsightID:     insightID,
		CreatedAt:     time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
}

// ListOpportunityInsights returns the insights linked to an opportunity.
func ListOpportunityInsights(ctx context.Context, db *gorm.DB, opportunityID string) ([]domain.Insight, error) {
	var out []domain.Insight
	err := db.WithContext(ctx).
		Table("insights AS i").
		Select("i.*").
		Joins("JOIN opportunity_insights AS l ON l.insight_id = i.id").
		Where("l.opportunity_id = ?", opportunityID).
		Order("i.created_at desc").
		Scan(&out).Error
	return out, err
}

// CountOpportunitiesByTribe counts the user's opportunities tagged with tribeID.
func CountOpportunitiesByTribe(ctx context.Context, db *gorm.DB, userID, tribeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Where("user_id = ? AND tribe_id = ?", userID, tribeID).
		Count(&n).Error
	return n, err
}

// ClearSquadRefs nullifies squad_id on opportunities and insights that
// reference squadID.
func ClearSquadRefs(ctx context.Context, db *gorm.DB, userID, squadID string) error {
	if err := db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Where("user_id = ? AND squad_id = ?", userID, squadID).
		Update("squad_id", nil).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.Insight{}).
		Where("user_id = ? AND squad_id = ?", userID, squadID).
		Update("squad_id", nil).Error
}

// ClearSquadRefsOutsideTribe clears squad_id on opportunities and insights
// that reference squadID under any tribe other than tribeID.
func ClearSquadRefsOutsideTribe(ctx context.Context, db *gorm.DB, userID, squadID, tribeID string) error {
	for _, m := range []any{&domain.Opportunity{}, &domain.Insight{}} {
		err := db.WithContext(ctx).
			Model(m).
			Where("user_id = ? AND squad_id = ?", userID, squadID).
			Where("tribe_id IS NULL OR tribe_id <> ?", tribeID).
			Update("squad_id", nil).Error
		if err != nil {
			return err
		}
	}
	return nil
}
