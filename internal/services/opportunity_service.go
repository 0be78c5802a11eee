// Package services – OpportunityService
//
// This file implements the roadmap board: opportunity CRUD, grouping into the
// four fixed status columns, the provenance chain back to feedback, and the
// prefilled issue-tracker hand-off URL.
package services

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/config"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/observability"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// OpportunityService implements the roadmap board.
type OpportunityService struct {
	DB           *gorm.DB
	IssueTracker config.IssueTrackerConfig
}

// IsOpportunityStatus reports whether s is one of the board columns.
func IsOpportunityStatus(s string) bool {
	for _, st := range domain.OpportunityStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// List returns every opportunity with tribe/squad names, most recent first.
func (s *OpportunityService) List(ctx context.Context, userID string) ([]domain.OpportunityView, error) {
	return repo.ListOpportunityViews(ctx, s.DB, userID)
}

// Board buckets the opportunity list into the fixed status columns. All
// four columns are always present; rows with unknown statuses are dropped.
func (s *OpportunityService) Board(ctx context.Context, userID string) (domain.Board, error) {
	tr := observability.Tracer("services/opportunities")
	ctx, span := tr.Start(ctx, "Board", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	views, err := repo.ListOpportunityViews(ctx, s.DB, userID)
	if err != nil {
		return domain.Board{}, err
	}
	return GroupBoard(views), nil
}

// GroupBoard buckets views by status in board order, preserving the input
// order inside each column.
func GroupBoard(views []domain.OpportunityView) domain.Board {
	idx := make(map[string]int, len(domain.OpportunityStatuses))
	b := domain.Board{Columns: make([]domain.BoardColumn, len(domain.OpportunityStatuses))}
	for i, st := range domain.OpportunityStatuses {
		idx[st] = i
		b.Columns[i] = domain.BoardColumn{Status: st, Opportunities: []domain.OpportunityView{}}
	}
	for _, v := range views {
		if i, ok := idx[v.Status]; ok {
			b.Columns[i].Opportunities = append(b.Columns[i].Opportunities, v)
		}
	}
	return b
}

// Get returns one opportunity owned by userID.
func (s *OpportunityService) Get(ctx context.Context, userID, id string) (*domain.Opportunity, error) {
	op, err := repo.GetOpportunity(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrOpportunityNotFound)
	}
	return op, nil
}

// Create inserts a backlog opportunity. The title is required; the status
// in the input is ignored.
func (s *OpportunityService) Create(ctx context.Context, userID string, in domain.OpportunityInput) (*domain.Opportunity, error) {
	title := normalizeTitle(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	var op *domain.Opportunity
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tribeID, squadID, err := resolveOrg(ctx, tx, userID, in.OrgRef)
		if err != nil {
			return err
		}
		op = &domain.Opportunity{
			UserID:      userID,
			Title:       title,
			Description: optString(in.Description),
			Status:      domain.StatusBacklog,
			TribeID:     tribeID,
			SquadID:     squadID,
		}
		return repo.CreateOpportunity(ctx, tx, op)
	})
	if err != nil {
		return nil, err
	}
	return op, nil
}

// CreateFromTopic creates a backlog opportunity titled after a topic.
func (s *OpportunityService) CreateFromTopic(ctx context.Context, userID, topic string) (*domain.Opportunity, error) {
	return s.Create(ctx, userID, domain.OpportunityInput{Title: topic})
}

// Update overwrites title, description, status, tribe and squad. An empty
// status keeps the current one; an empty tribe clears both tribe and squad
// references, and a squad given without a tribe is rejected.
func (s *OpportunityService) Update(ctx context.Context, userID, id string, in domain.OpportunityInput) (*domain.Opportunity, error) {
	tr := observability.Tracer("services/opportunities")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("opportunity.id", id)))
	defer span.End()

	title := normalizeTitle(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	status := strings.TrimSpace(in.Status)
	if status != "" && !IsOpportunityStatus(status) {
		return nil, ErrInvalidStatus
	}

	var op *domain.Opportunity
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetOpportunity(ctx, tx, id, userID)
		if err != nil {
			return mapNotFound(err, ErrOpportunityNotFound)
		}
		tribeID, squadID, err := resolveOrg(ctx, tx, userID, in.OrgRef)
		if err != nil {
			return err
		}
		cur.Title = title
		cur.Description = optString(in.Description)
		if status != "" {
			cur.Status = status
		}
		cur.TribeID, cur.SquadID = tribeID, squadID
		if err := repo.UpdateOpportunity(ctx, tx, cur); err != nil {
			return mapNotFound(err, ErrOpportunityNotFound)
		}
		op = cur
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return op, nil
}

// Sources expands the provenance chain opportunity → insights → feedback.
func (s *OpportunityService) Sources(ctx context.Context, userID, id string) ([]domain.InsightSource, error) {
	if _, err := repo.GetOpportunity(ctx, s.DB, id, userID); err != nil {
		return nil, mapNotFound(err, ErrOpportunityNotFound)
	}
	insights, err := repo.ListOpportunityInsights(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(insights))
	for i, in := range insights {
		ids[i] = in.ID
	}
	fb, err := repo.ListFeedbackSources(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InsightSource, 0, len(insights))
	for _, in := range insights {
		lines := fb[in.ID]
		if lines == nil {
			lines = []domain.FeedbackSource{}
		}
		out = append(out, domain.InsightSource{ID: in.ID, Title: in.Title, Feedbacks: lines})
	}
	return out, nil
}

// IssueURL builds the prefilled "create issue" URL for an opportunity.
// The configured tracker wins; otherwise the host of the squad's board URL
// is used. Nothing is stored.
func (s *OpportunityService) IssueURL(ctx context.Context, userID, id string) (string, error) {
	op, err := repo.GetOpportunity(ctx, s.DB, id, userID)
	if err != nil {
		return "", mapNotFound(err, ErrOpportunityNotFound)
	}
	base := strings.TrimRight(s.IssueTracker.BaseURL, "/")
	if base == "" && op.SquadID != nil {
		if sq, err := repo.GetSquad(ctx, s.DB, *op.SquadID, userID); err == nil && sq.JiraBoardURL != nil {
			if u, perr := url.Parse(*sq.JiraBoardURL); perr == nil && u.Scheme != "" && u.Host != "" {
				base = u.Scheme + "://" + u.Host
			}
		}
	}
	if base == "" {
		return "", ErrIssueTrackerDisabled
	}
	issueType := s.IssueTracker.IssueTypeID
	if issueType == "" {
		issueType = "10000"
	}
	q := url.Values{}
	q.Set("issuetype", issueType)
	q.Set("summary", op.Title)
	q.Set("description", derefString(op.Description))
	return base + "/secure/CreateIssue.jspa?" + q.Encode(), nil
}

// resolveOrg validates an optional tribe/squad pair and returns the ids to
// store. The squad must belong to the tribe; a squad without a tribe is
// rejected.
func resolveOrg(ctx context.Context, db *gorm.DB, userID string, ref domain.OrgRef) (tribeID, squadID *string, err error) {
	tribe, squad := normRef(ref.TribeID), normRef(ref.SquadID)
	if tribe == "" {
		if squad != "" {
			return nil, nil, ErrSquadWithoutTribe
		}
		return nil, nil, nil
	}
	if _, err := repo.GetTribe(ctx, db, tribe, userID); err != nil {
		return nil, nil, mapNotFound(err, ErrTribeNotFound)
	}
	if squad == "" {
		return &tribe, nil, nil
	}
	sq, err := repo.GetSquad(ctx, db, squad, userID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrSquadNotFound)
	}
	if sq.TribeID != tribe {
		return nil, nil, ErrSquadTribeMismatch
	}
	return &tribe, &squad, nil
}
