// Package client is the Go data layer used by feedbackctl. It reaches the
// feedback data through a Backend (the HTTP API, or the in-process demo
// dataset when demo mode is on), caches reads in an LRU keyed by query, and
// drops cached queries after mutations according to one declarative table.
package client

import (
	"context"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// Function names accepted by RunFunction.
const (
	FnGenerateLatestItems = "generate-latest-items"
	FnGenerateInsights    = "generate-insights"
	FnAnalyzeTopics       = "analyze-topics"
)

// FunctionResult is the union of the aggregation function responses.
type FunctionResult struct {
	Message           string `json:"message"`
	ItemsGenerated    int    `json:"items_generated,omitempty"`
	InsightsGenerated int    `json:"insights_generated,omitempty"`
	FeedbacksAnalyzed int    `json:"feedbacks_analyzed,omitempty"`
	TopicsFound       int    `json:"topics_found,omitempty"`
}

// Backend is one way of reaching the feedback data.
type Backend interface {
	Report(ctx context.Context, q report.Query) (report.Page[domain.Feedback], error)
	LatestItems(ctx context.Context) ([]domain.LatestItem, error)
	Insights(ctx context.Context, limit int, window string) ([]domain.InsightView, error)
	Board(ctx context.Context) (domain.Board, error)
	Tribes(ctx context.Context) ([]domain.Tribe, error)

	CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error)
	DraftFromSelection(ctx context.Context, feedbackIDs []string) (*domain.InsightDraft, error)
	SaveInsight(ctx context.Context, d domain.InsightDraft) (*domain.Insight, error)
	UpdateInsightTags(ctx context.Context, id, csv string) (*domain.Insight, error)
	RejectInsight(ctx context.Context, id string) error
	ConvertInsight(ctx context.Context, id string, org domain.OrgRef) (*domain.Opportunity, error)
	CreateOpportunity(ctx context.Context, in domain.OpportunityInput) (*domain.Opportunity, error)
	CreateTribe(ctx context.Context, in domain.TribeInput) (*domain.Tribe, error)
	RunFunction(ctx context.Context, name string) (FunctionResult, error)
}
