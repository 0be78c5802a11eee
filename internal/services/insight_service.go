// Package services – InsightService
//
// This file implements the insight lifecycle. An insight is active (or has
// no status) until it is rejected or converted; both are terminal. Tag edits
// and transitions are guarded in SQL on the active state, so a concurrent
// transition can never be overwritten.
//
// Conversion creates the Opportunity, the OpportunityInsight link and the
// status change in one transaction. When the status guard matches no row the
// transaction is abandoned; if the opportunity nevertheless survived, it is
// deleted and ErrPartialConversion is reported.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/observability"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// Insight listing windows.
const (
	WindowAll       = "all"
	WindowLastMonth = "lastMonth"
)

// Draft defaults applied by SaveDraft.
const (
	defaultInsightTitle       = "Untitled insight"
	defaultInsightDescription = "No description"
)

// errStatusGuard signals that the converted-status update matched no row.
var errStatusGuard = errors.New("insight status changed concurrently")

// InsightService implements the insight lifecycle.
type InsightService struct {
	DB *gorm.DB

	// RunInTx runs fn atomically. Nil uses a database transaction.
	RunInTx func(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *InsightService) runInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.RunInTx != nil {
		return s.RunInTx(ctx, fn)
	}
	return s.DB.WithContext(ctx).Transaction(fn)
}

func (s *InsightService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ListActive returns active insights, most recent first, each with the
// feedback rows it was derived from. limit <= 0 means no cap; window is
// WindowAll or WindowLastMonth (the default).
func (s *InsightService) ListActive(ctx context.Context, userID string, limit int, window string) ([]domain.InsightView, error) {
	tr := observability.Tracer("services/insights")
	ctx, span := tr.Start(ctx, "ListActive",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("limit", limit),
			attribute.String("window", window),
		),
	)
	defer span.End()

	var since *time.Time
	if window != WindowAll {
		t := s.now().AddDate(0, -1, 0)
		since = &t
	}
	rows, err := repo.ListActiveInsights(ctx, s.DB, userID, since, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	sources, err := repo.ListFeedbackSources(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InsightView, len(rows))
	for i, r := range rows {
		fs := sources[r.ID]
		if fs == nil {
			fs = []domain.FeedbackSource{}
		}
		out[i] = domain.InsightView{Insight: r, Feedbacks: fs}
	}
	return out, nil
}

// Topics renders active insights as discussion topic cards.
func (s *InsightService) Topics(ctx context.Context, userID string) ([]domain.Topic, error) {
	rows, err := repo.ListActiveInsights(ctx, s.DB, userID, nil, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Topic, 0, len(rows))
	for _, in := range rows {
		out = append(out, TopicFromInsight(in))
	}
	return out, nil
}

// TopicFromInsight maps severity to sentiment (error is negative, success is
// positive, anything else neutral) and falls back to the "geral" keyword.
func TopicFromInsight(in domain.Insight) domain.Topic {
	sentiment := domain.SentimentNeutral
	switch in.Severity {
	case domain.SeverityError:
		sentiment = domain.SentimentNegative
	case domain.SeveritySuccess:
		sentiment = domain.SentimentPositive
	}
	kw := []string(in.Tags)
	if len(kw) == 0 {
		kw = []string{"geral"}
	}
	return domain.Topic{
		ID:        in.ID,
		Name:      in.Title,
		Summary:   in.Description,
		Sentiment: sentiment,
		Keywords:  kw,
		CreatedAt: in.CreatedAt,
	}
}

// SaveDraft persists a reviewed draft as a new active insight, linking the
// draft's feedback ids that belong to userID.
func (s *InsightService) SaveDraft(ctx context.Context, userID string, d domain.InsightDraft) (*domain.Insight, error) {
	tr := observability.Tracer("services/insights")
	ctx, span := tr.Start(ctx, "SaveDraft", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	in := insightFromDraft(userID, normalizeDraft(d), s.now())
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		if err := repo.CreateInsight(ctx, tx, in); err != nil {
			return err
		}
		owned, err := repo.ListFeedbacksByIDs(ctx, tx, userID, d.FeedbackIDs)
		if err != nil {
			return err
		}
		ids := make([]string, len(owned))
		for i, f := range owned {
			ids[i] = f.ID
		}
		return repo.LinkInsightFeedbacks(ctx, tx, in.ID, ids)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return in, nil
}

// UpdateTags replaces the tag set of an active insight from a
// comma-separated list.
func (s *InsightService) UpdateTags(ctx context.Context, userID, id, csv string) (*domain.Insight, error) {
	tags := ParseTags(csv)
	n, err := repo.UpdateActiveInsightTags(ctx, s.DB, id, userID, tags)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.whyNotActive(ctx, userID, id)
	}
	in, err := repo.GetInsight(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrInsightNotFound)
	}
	return in, nil
}

// Reject moves an active insight to rejected.
func (s *InsightService) Reject(ctx context.Context, userID, id string) error {
	tr := observability.Tracer("services/insights")
	ctx, span := tr.Start(ctx, "Reject",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("insight.id", id)))
	defer span.End()

	n, err := repo.TransitionInsight(ctx, s.DB, id, userID, domain.InsightRejected)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.whyNotActive(ctx, userID, id)
	}
	observability.InsightTransitions.WithLabelValues(domain.InsightRejected).Inc()
	return nil
}

// Convert turns an active insight into a backlog Opportunity tagged with
// the optional tribe/squad, links the two and marks the insight converted.
func (s *InsightService) Convert(ctx context.Context, userID, id string, org domain.OrgRef) (*domain.Opportunity, error) {
	tr := observability.Tracer("services/insights")
	ctx, span := tr.Start(ctx, "Convert",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("insight.id", id)))
	defer span.End()

	var op *domain.Opportunity
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		in, err := repo.GetInsight(ctx, tx, id, userID)
		if err != nil {
			return mapNotFound(err, ErrInsightNotFound)
		}
		if in.State() != domain.InsightActive {
			return ErrInsightNotActive
		}
		tribeID, squadID, err := resolveOrg(ctx, tx, userID, org)
		if err != nil {
			return err
		}
		desc := in.Description
		op = &domain.Opportunity{
			UserID:      userID,
			Title:       in.Title,
			Description: &desc,
			Status:      domain.StatusBacklog,
			TribeID:     tribeID,
			SquadID:     squadID,
		}
		if err := repo.CreateOpportunity(ctx, tx, op); err != nil {
			return err
		}
		if err := repo.LinkOpportunityInsight(ctx, tx, op.ID, in.ID); err != nil {
			return err
		}
		n, err := repo.TransitionInsight(ctx, tx, in.ID, userID, domain.InsightConverted)
		if err != nil {
			return err
		}
		if n == 0 {
			return errStatusGuard
		}
		return nil
	})
	if err == nil {
		observability.InsightTransitions.WithLabelValues(domain.InsightConverted).Inc()
		return op, nil
	}
	span.RecordError(err)
	if !errors.Is(err, errStatusGuard) || op == nil {
		return nil, err
	}

	// The status guard failed after the opportunity insert. A transaction
	// already discarded it; otherwise compensate.
	if _, gerr := repo.GetOpportunity(ctx, s.DB, op.ID, userID); gerr != nil {
		if isNotFound(gerr) {
			return nil, ErrInsightNotActive
		}
		return nil, gerr
	}
	if derr := repo.DeleteOpportunity(ctx, s.DB, op.ID, userID); derr != nil {
		zerolog.Ctx(ctx).Error().Err(derr).Str("opportunity_id", op.ID).Msg("compensating delete failed")
		return nil, errors.Join(ErrPartialConversion, derr)
	}
	zerolog.Ctx(ctx).Warn().Str("insight_id", id).Str("opportunity_id", op.ID).Msg("conversion compensated")
	return nil, ErrPartialConversion
}

// Delete removes an insight and its provenance links.
func (s *InsightService) Delete(ctx context.Context, userID, id string) error {
	return mapNotFound(repo.DeleteInsight(ctx, s.DB, id, userID), ErrInsightNotFound)
}

// whyNotActive explains a guarded update that touched no row.
func (s *InsightService) whyNotActive(ctx context.Context, userID, id string) error {
	if _, err := repo.GetInsight(ctx, s.DB, id, userID); err != nil {
		return mapNotFound(err, ErrInsightNotFound)
	}
	return ErrInsightNotActive
}

// normalizeDraft applies the draft defaults and coerces unknown type or
// severity values.
func normalizeDraft(d domain.InsightDraft) domain.InsightDraft {
	d.Title = normalizeTitle(d.Title)
	if d.Title == "" {
		d.Title = defaultInsightTitle
	}
	if d.Description = strings.TrimSpace(d.Description); d.Description == "" {
		d.Description = defaultInsightDescription
	}
	switch d.Type {
	case domain.InsightTypeTrend, domain.InsightTypeAlert, domain.InsightTypeOpportunity, domain.InsightTypeOther:
	default:
		d.Type = domain.InsightTypeOther
	}
	switch d.Severity {
	case domain.SeverityInfo, domain.SeverityWarning, domain.SeveritySuccess, domain.SeverityError:
	default:
		d.Severity = domain.SeverityInfo
	}
	d.Tags = cleanTags(d.Tags)
	d.Action = strings.TrimSpace(d.Action)
	return d
}

func insightFromDraft(userID string, d domain.InsightDraft, now time.Time) *domain.Insight {
	active := domain.InsightActive
	return &domain.Insight{
		UserID:      userID,
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		Severity:    d.Severity,
		Action:      optString(d.Action),
		Tags:        datatypes.JSONSlice[string](d.Tags),
		Status:      &active,
		CreatedAt:   now,
	}
}
