// Package services – AggregationService
//
// This file implements the four aggregation functions that turn raw
// feedback into LatestItem counters, AI-generated insights and topic
// clusters. Every function runs its writes in one transaction, so a provider
// or database failure leaves nothing half-written.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/ai"
	"github.com/tbourn/feedback-hub/internal/config"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/observability"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// Function names, as exposed under /functions.
const (
	FnGenerateInsights      = "generate-insights"
	FnGenerateLatestItems   = "generate-latest-items"
	FnAnalyzeTopics         = "analyze-topics"
	FnInsightFromSelection  = "generate-insight-from-selection"
	untitledItem            = "Untitled item"
	maxFunctionFeedbackRows = 100
)

// AggregationService implements the aggregation functions.
type AggregationService struct {
	DB *gorm.DB

	// AI is the server-wide provider used when the user has none stored.
	AI config.AIConfig

	// Providers builds a Completer. Nil uses ai.New.
	Providers func(cfg ai.Config) (ai.Completer, error)

	// Window is the LatestItems aggregation window (30 days when zero).
	Window time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *AggregationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AggregationService) window() time.Duration {
	if s.Window > 0 {
		return s.Window
	}
	return DefaultLatestItemsWindow
}

func track(fn string, err *error) {
	observability.FunctionRuns.WithLabelValues(fn, observability.Outcome(*err)).Inc()
}

// GenerateLatestItems rebuilds the user's LatestItem set from the feedback
// of the current window and returns the number of items written.
func (s *AggregationService) GenerateLatestItems(ctx context.Context, userID string) (n int, err error) {
	defer track(FnGenerateLatestItems, &err)
	tr := observability.Tracer("services/functions")
	ctx, span := tr.Start(ctx, "GenerateLatestItems", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	now, w := s.now(), s.window()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := repo.ListFeedbacksSince(ctx, tx, userID, now.Add(-w), 0)
		if err != nil {
			return err
		}
		prev, err := repo.CountFeedbacksPerTitle(ctx, tx, userID, now.Add(-2*w), now.Add(-w))
		if err != nil {
			return err
		}
		items := AggregateLatestItems(rows, prev)
		n = len(items)
		return repo.ReplaceLatestItems(ctx, tx, userID, items)
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return n, nil
}

// AggregateLatestItems groups rows (most recent first) by exact title.
// Per group: count is the number of rows, sentiment comes from the last row
// visited (neutral without analysis), keywords are the first five distinct
// tags in visit order. prev holds per-title counts of the previous window
// and feeds the change percentage.
func AggregateLatestItems(rows []domain.Feedback, prev map[string]int64) []domain.LatestItem {
	type acc struct {
		count     int
		sentiment string
		keywords  []string
		seen      map[string]struct{}
	}
	order := []string{}
	groups := map[string]*acc{}
	for _, f := range rows {
		title := f.Title
		if title == "" {
			title = untitledItem
		}
		g, ok := groups[title]
		if !ok {
			g = &acc{seen: map[string]struct{}{}}
			groups[title] = g
			order = append(order, title)
		}
		g.count++
		g.sentiment = domain.SentimentNeutral
		if f.Analysis != nil && f.Analysis.Sentiment != "" {
			g.sentiment = f.Analysis.Sentiment
		}
		for _, t := range f.Tags {
			if _, dup := g.seen[t]; dup {
				continue
			}
			g.seen[t] = struct{}{}
			g.keywords = append(g.keywords, t)
		}
	}

	prevByTitle := make(map[string]int64, len(prev))
	for t, c := range prev {
		if t == "" {
			t = untitledItem
		}
		prevByTitle[t] += c
	}

	out := make([]domain.LatestItem, 0, len(order))
	for _, title := range order {
		g := groups[title]
		kw := firstN(g.keywords, maxKeywords)
		if kw == nil {
			kw = []string{}
		}
		out = append(out, domain.LatestItem{
			Title:            title,
			Count:            g.count,
			Sentiment:        g.sentiment,
			ChangePercentage: ChangePercentage(int64(g.count), prevByTitle[title]),
			Keywords:         datatypes.JSONSlice[string](kw),
		})
	}
	return out
}

// GenerateInsights asks the AI provider for insights over the user's recent
// feedback and stores every draft as an active insight linked to the
// feedback it names. It returns the number of insights created.
func (s *AggregationService) GenerateInsights(ctx context.Context, userID string) (n int, err error) {
	defer track(FnGenerateInsights, &err)
	tr := observability.Tracer("services/functions")
	ctx, span := tr.Start(ctx, "GenerateInsights", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
	}()

	c, provider, err := s.completer(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := s.now()
	rows, err := repo.ListFeedbacksSince(ctx, s.DB, userID, now.Add(-s.window()), maxFunctionFeedbackRows)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	prompt, err := feedbackPrompt(insightsInstructions, rows)
	if err != nil {
		return 0, err
	}
	raw, err := s.complete(ctx, c, provider, insightsSystemPrompt, prompt)
	if err != nil {
		return 0, err
	}
	var drafts []domain.InsightDraft
	if err := ai.DecodeJSON(raw, &drafts); err != nil {
		return 0, fmt.Errorf("decode insights: %w", err)
	}

	corpus := make(map[string]struct{}, len(rows))
	for _, f := range rows {
		corpus[f.ID] = struct{}{}
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range drafts {
			in := insightFromDraft(userID, normalizeDraft(d), now)
			if err := repo.CreateInsight(ctx, tx, in); err != nil {
				return err
			}
			ids := make([]string, 0, len(d.FeedbackIDs))
			for _, id := range d.FeedbackIDs {
				if _, ok := corpus[id]; ok {
					ids = append(ids, id)
				}
			}
			if err := repo.LinkInsightFeedbacks(ctx, tx, in.ID, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", userID).Int("insights", len(drafts)).Msg("insights generated")
	return len(drafts), nil
}

// AnalyzeTopics classifies feedback not yet analyzed, attaches the analysis
// to each row and stores the topic clusters.
func (s *AggregationService) AnalyzeTopics(ctx context.Context, userID string) (sum domain.TopicAnalysisSummary, err error) {
	defer track(FnAnalyzeTopics, &err)
	tr := observability.Tracer("services/functions")
	ctx, span := tr.Start(ctx, "AnalyzeTopics", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	c, provider, err := s.completer(ctx, userID)
	if err != nil {
		return sum, err
	}
	rows, err := repo.ListUnanalyzedFeedbacks(ctx, s.DB, userID, maxFunctionFeedbackRows)
	if err != nil || len(rows) == 0 {
		return sum, err
	}
	prompt, err := feedbackPrompt(topicsInstructions, rows)
	if err != nil {
		return sum, err
	}
	raw, err := s.complete(ctx, c, provider, topicsSystemPrompt, prompt)
	if err != nil {
		return sum, err
	}
	var ans topicAnswer
	if err := ai.DecodeJSON(raw, &ans); err != nil {
		return sum, fmt.Errorf("decode topics: %w", err)
	}

	analyses := make(map[string]*domain.FeedbackAnalysis, len(ans.Feedbacks))
	for _, a := range ans.Feedbacks {
		analyses[a.ID] = &domain.FeedbackAnalysis{
			Sentiment: normSentiment(a.Sentiment),
			Summary:   strings.TrimSpace(a.Summary),
			Tags:      cleanTags(a.Tags),
		}
	}
	corpus := make(map[string]struct{}, len(rows))
	for _, f := range rows {
		corpus[f.ID] = struct{}{}
	}
	topics := make([]domain.TopicAnalysisResult, 0, len(ans.Topics))
	for _, t := range ans.Topics {
		name := normalizeTitle(t.Topic)
		if name == "" {
			continue
		}
		ids := make([]string, 0, len(t.FeedbackIDs))
		for _, id := range t.FeedbackIDs {
			if _, ok := corpus[id]; ok {
				ids = append(ids, id)
			}
		}
		topics = append(topics, domain.TopicAnalysisResult{
			Topic:       name,
			Summary:     strings.TrimSpace(t.Summary),
			Sentiment:   normSentiment(t.Sentiment),
			Count:       len(ids),
			Keywords:    datatypes.JSONSlice[string](firstN(cleanTags(t.Keywords), maxKeywords)),
			FeedbackIDs: datatypes.JSONSlice[string](ids),
		})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range rows {
			a := analyses[f.ID]
			if a == nil {
				a = &domain.FeedbackAnalysis{Sentiment: domain.SentimentNeutral, Tags: []string{}}
			}
			if err := repo.MarkFeedbackAnalyzed(ctx, tx, f.ID, userID, a); err != nil {
				return err
			}
		}
		return repo.CreateTopicResults(ctx, tx, userID, topics)
	})
	if err != nil {
		span.RecordError(err)
		return domain.TopicAnalysisSummary{}, err
	}
	return domain.TopicAnalysisSummary{FeedbacksAnalyzed: len(rows), TopicsFound: len(topics)}, nil
}

// GenerateInsightFromSelection drafts one insight from the selected
// feedback. Every id must belong to userID. Nothing is stored.
func (s *AggregationService) GenerateInsightFromSelection(ctx context.Context, userID string, feedbackIDs []string) (d *domain.InsightDraft, err error) {
	defer track(FnInsightFromSelection, &err)

	ids := cleanTags(feedbackIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	rows, err := repo.ListFeedbacksByIDs(ctx, s.DB, userID, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, ErrFeedbackNotFound
	}
	c, provider, err := s.completer(ctx, userID)
	if err != nil {
		return nil, err
	}
	prompt, err := feedbackPrompt(selectionInstructions, rows)
	if err != nil {
		return nil, err
	}
	raw, err := s.complete(ctx, c, provider, insightsSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var out domain.InsightDraft
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("decode insight: %w", err)
	}
	out = normalizeDraft(out)
	out.FeedbackIDs = ids
	return &out, nil
}

// TopicResults lists stored topic clusters, most recent first.
func (s *AggregationService) TopicResults(ctx context.Context, userID string, limit int) ([]domain.TopicAnalysisResult, error) {
	return repo.ListTopicResults(ctx, s.DB, userID, limit)
}

// completer resolves the provider for userID: the stored active
// configuration first, then the server default. A stored configuration
// without a key borrows the server key when the providers match.
func (s *AggregationService) completer(ctx context.Context, userID string) (ai.Completer, string, error) {
	var cfg ai.Config
	stored, err := repo.GetAIConfig(ctx, s.DB, userID)
	switch {
	case err == nil && stored.IsActive:
		cfg = ai.Config{Provider: stored.Provider, Model: stored.Model, APIKey: stored.APIKey, Timeout: s.AI.Timeout}
		if stored.Provider == s.AI.Provider {
			cfg.BaseURL = s.AI.BaseURL
			if cfg.APIKey == "" {
				cfg.APIKey = s.AI.APIKey
			}
		}
	case err != nil && !isNotFound(err):
		return nil, "", err
	case s.AI.Provider != "":
		cfg = ai.Config{Provider: s.AI.Provider, Model: s.AI.Model, APIKey: s.AI.APIKey, BaseURL: s.AI.BaseURL, Timeout: s.AI.Timeout}
	default:
		return nil, "", ErrAIConfigMissing
	}

	build := s.Providers
	if build == nil {
		build = ai.New
	}
	c, err := build(cfg)
	if errors.Is(err, ai.ErrMissingAPIKey) {
		return nil, "", ErrAIConfigMissing
	}
	if err != nil {
		return nil, "", err
	}
	return c, cfg.Provider, nil
}

func (s *AggregationService) complete(ctx context.Context, c ai.Completer, provider, system, prompt string) (string, error) {
	out, err := c.Complete(ctx, system, prompt)
	observability.AIRequests.WithLabelValues(provider, observability.Outcome(err)).Inc()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("provider", provider).Msg("ai request failed")
	}
	return out, err
}
