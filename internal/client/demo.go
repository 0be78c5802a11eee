package client

import (
	"context"
	"fmt"

	"github.com/tbourn/feedback-hub/internal/demo"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// DemoBackend serves the built-in sample dataset in process. It never opens
// a connection and its mutations persist nothing.
type DemoBackend struct {
	feedback    demo.FeedbackService
	insights    demo.InsightService
	opportunity demo.OpportunityService
	tribes      demo.TribeService
	functions   demo.FunctionService
}

var _ Backend = DemoBackend{}

func (d DemoBackend) Report(ctx context.Context, q report.Query) (report.Page[domain.Feedback], error) {
	return d.feedback.Report(ctx, demo.UserID, q)
}

func (d DemoBackend) LatestItems(ctx context.Context) ([]domain.LatestItem, error) {
	return d.feedback.LatestItems(ctx, demo.UserID)
}

func (d DemoBackend) Insights(ctx context.Context, limit int, window string) ([]domain.InsightView, error) {
	return d.insights.ListActive(ctx, demo.UserID, limit, window)
}

func (d DemoBackend) Board(ctx context.Context) (domain.Board, error) {
	return d.opportunity.Board(ctx, demo.UserID)
}

func (d DemoBackend) Tribes(ctx context.Context) ([]domain.Tribe, error) {
	return d.tribes.ListTribes(ctx, demo.UserID)
}

func (d DemoBackend) CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	return d.feedback.Create(ctx, demo.UserID, in)
}

func (d DemoBackend) DraftFromSelection(ctx context.Context, ids []string) (*domain.InsightDraft, error) {
	return d.functions.GenerateInsightFromSelection(ctx, demo.UserID, ids)
}

func (d DemoBackend) SaveInsight(ctx context.Context, draft domain.InsightDraft) (*domain.Insight, error) {
	return d.insights.SaveDraft(ctx, demo.UserID, draft)
}

func (d DemoBackend) UpdateInsightTags(ctx context.Context, id, csv string) (*domain.Insight, error) {
	return d.insights.UpdateTags(ctx, demo.UserID, id, csv)
}

func (d DemoBackend) RejectInsight(ctx context.Context, id string) error {
	return d.insights.Reject(ctx, demo.UserID, id)
}

func (d DemoBackend) ConvertInsight(ctx context.Context, id string, org domain.OrgRef) (*domain.Opportunity, error) {
	return d.insights.Convert(ctx, demo.UserID, id, org)
}

func (d DemoBackend) CreateOpportunity(ctx context.Context, in domain.OpportunityInput) (*domain.Opportunity, error) {
	return d.opportunity.Create(ctx, demo.UserID, in)
}

func (d DemoBackend) CreateTribe(ctx context.Context, in domain.TribeInput) (*domain.Tribe, error) {
	return d.tribes.CreateTribe(ctx, demo.UserID, in)
}

func (d DemoBackend) RunFunction(ctx context.Context, name string) (FunctionResult, error) {
	switch name {
	case FnGenerateLatestItems:
		n, err := d.functions.GenerateLatestItems(ctx, demo.UserID)
		return FunctionResult{Message: "Últimos itens gerados com sucesso!", ItemsGenerated: n}, err
	case FnGenerateInsights:
		n, err := d.functions.GenerateInsights(ctx, demo.UserID)
		return FunctionResult{Message: "Insights gerados com sucesso!", InsightsGenerated: n}, err
	case FnAnalyzeTopics:
		s, err := d.functions.AnalyzeTopics(ctx, demo.UserID)
		return FunctionResult{
			Message:           "Análise de tópicos concluída!",
			FeedbacksAnalyzed: s.FeedbacksAnalyzed,
			TopicsFound:       s.TopicsFound,
		}, err
	}
	return FunctionResult{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
}
