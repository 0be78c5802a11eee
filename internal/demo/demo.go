// Package demo serves a fixed dataset in place of the live services. Reads
// return fixtures; mutations succeed without storing anything. The same
// types back the server's demo strategy and the client's offline backend,
// so both present identical data.
package demo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tbourn/feedback-hub/internal/ai"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
	"github.com/tbourn/feedback-hub/internal/services"
)

// clock is shared by the demo types; tests may replace it.
var clock = func() time.Time { return time.Now().UTC() }

func newID() string { return "demo-" + uuid.NewString() }

// FeedbackService serves the demo feedback report.
type FeedbackService struct{}

// Create echoes the entry as if it had been stored.
func (FeedbackService) Create(_ context.Context, userID string, in domain.FeedbackInput) (*domain.Feedback, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.ErrEmptyTitle
	}
	now := clock()
	return &domain.Feedback{
		ID: newID(), UserID: userID, Source: domain.SourceManual, Status: "new", Priority: "medium",
		Title: title, Tags: datatypes.JSONSlice[string](in.Tags), CreatedAt: now, UpdatedAt: now,
	}, nil
}

// Get returns one fixture by id.
func (FeedbackService) Get(_ context.Context, _ string, id string) (*domain.Feedback, error) {
	for _, fb := range Feedbacks() {
		if fb.ID == id {
			return &fb, nil
		}
	}
	return nil, services.ErrFeedbackNotFound
}

// Report filters and slices the fixtures in memory.
func (FeedbackService) Report(_ context.Context, _ string, q report.Query) (report.Page[domain.Feedback], error) {
	q = q.Normalize()
	return report.Paginate(report.Filter(Feedbacks(), q), q.Page), nil
}

// LatestItems returns the demo counters.
func (FeedbackService) LatestItems(context.Context, string) ([]domain.LatestItem, error) {
	return LatestItems(clock()), nil
}

// InsightService serves the demo insight lifecycle.
type InsightService struct{}

// ListActive returns the demo insights with their feedback provenance.
func (InsightService) ListActive(_ context.Context, _ string, limit int, _ string) ([]domain.InsightView, error) {
	ins := Insights(clock())
	if limit > 0 && limit < len(ins) {
		ins = ins[:limit]
	}
	out := make([]domain.InsightView, len(ins))
	for i, in := range ins {
		out[i] = domain.InsightView{Insight: in, Feedbacks: feedbackSources(insightFeedbacks[in.ID])}
	}
	return out, nil
}

// Topics renders the demo insights as topic cards.
func (InsightService) Topics(context.Context, string) ([]domain.Topic, error) {
	ins := Insights(clock())
	out := make([]domain.Topic, len(ins))
	for i, in := range ins {
		out[i] = services.TopicFromInsight(in)
	}
	return out, nil
}

// SaveDraft echoes the draft as an active insight.
func (InsightService) SaveDraft(_ context.Context, userID string, d domain.InsightDraft) (*domain.Insight, error) {
	active := domain.InsightActive
	return &domain.Insight{
		ID: newID(), UserID: userID, Title: d.Title, Description: d.Description, Type: d.Type,
		Severity: d.Severity, Tags: datatypes.JSONSlice[string](d.Tags), Status: &active, CreatedAt: clock(),
	}, nil
}

// UpdateTags returns the fixture with the new tags applied.
func (InsightService) UpdateTags(_ context.Context, _ string, id, csv string) (*domain.Insight, error) {
	in, err := findInsight(id)
	if err != nil {
		return nil, err
	}
	in.Tags = datatypes.JSONSlice[string](services.ParseTags(csv))
	return in, nil
}

// Reject succeeds for any known insight.
func (InsightService) Reject(_ context.Context, _ string, id string) error {
	_, err := findInsight(id)
	return err
}

// Convert returns a backlog opportunity built from the fixture.
func (InsightService) Convert(_ context.Context, userID, id string, _ domain.OrgRef) (*domain.Opportunity, error) {
	in, err := findInsight(id)
	if err != nil {
		return nil, err
	}
	now := clock()
	desc := in.Description
	return &domain.Opportunity{
		ID: newID(), UserID: userID, Title: in.Title, Description: &desc,
		Status: domain.StatusBacklog, CreatedAt: now, UpdatedAt: now,
	}, nil
}

// Delete succeeds for any known insight.
func (InsightService) Delete(_ context.Context, _ string, id string) error {
	_, err := findInsight(id)
	return err
}

func findInsight(id string) (*domain.Insight, error) {
	for _, in := range Insights(clock()) {
		if in.ID == id {
			return &in, nil
		}
	}
	return nil, services.ErrInsightNotFound
}

func feedbackSources(ids []string) []domain.FeedbackSource {
	out := []domain.FeedbackSource{}
	for _, fb := range Feedbacks() {
		for _, id := range ids {
			if fb.ID == id {
				src := domain.FeedbackSource{ID: fb.ID, Title: fb.Title, Source: fb.Source, CreatedAt: fb.CreatedAt}
				if fb.CustomerName != nil {
					src.CustomerName = *fb.CustomerName
				}
				out = append(out, src)
			}
		}
	}
	return out
}

// OpportunityService serves the demo roadmap.
type OpportunityService struct{}

// List returns the demo roadmap.
func (OpportunityService) List(context.Context, string) ([]domain.OpportunityView, error) {
	return Opportunities(), nil
}

// Board groups the demo roadmap into columns.
func (OpportunityService) Board(context.Context, string) (domain.Board, error) {
	return services.GroupBoard(Opportunities()), nil
}

// Get returns one demo opportunity.
func (OpportunityService) Get(_ context.Context, _ string, id string) (*domain.Opportunity, error) {
	for _, v := range Opportunities() {
		if v.ID == id {
			op := v.Opportunity
			return &op, nil
		}
	}
	return nil, services.ErrOpportunityNotFound
}

// Create echoes a backlog opportunity.
func (OpportunityService) Create(_ context.Context, userID string, in domain.OpportunityInput) (*domain.Opportunity, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.ErrEmptyTitle
	}
	now := clock()
	op := &domain.Opportunity{ID: newID(), UserID: userID, Title: title, Status: domain.StatusBacklog, CreatedAt: now, UpdatedAt: now}
	if d := strings.TrimSpace(in.Description); d != "" {
		op.Description = &d
	}
	return op, nil
}

// CreateFromTopic echoes a backlog opportunity titled after topic.
func (o OpportunityService) CreateFromTopic(ctx context.Context, userID, topic string) (*domain.Opportunity, error) {
	return o.Create(ctx, userID, domain.OpportunityInput{Title: topic})
}

// Update returns the fixture with the edits applied.
func (o OpportunityService) Update(ctx context.Context, userID, id string, in domain.OpportunityInput) (*domain.Opportunity, error) {
	op, err := o.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		op.Title = t
	}
	if in.Status != "" {
		if !services.IsOpportunityStatus(in.Status) {
			return nil, services.ErrInvalidStatus
		}
		op.Status = in.Status
	}
	op.UpdatedAt = clock()
	return op, nil
}

// Sources returns the demo provenance chain.
func (OpportunityService) Sources(_ context.Context, _ string, id string) ([]domain.InsightSource, error) {
	out := []domain.InsightSource{}
	for _, iid := range opportunityInsights[id] {
		in, err := findInsight(iid)
		if err != nil {
			continue
		}
		out = append(out, domain.InsightSource{ID: in.ID, Title: in.Title, Feedbacks: feedbackSources(insightFeedbacks[in.ID])})
	}
	return out, nil
}

// IssueURL is unavailable in demo mode.
func (OpportunityService) IssueURL(context.Context, string, string) (string, error) {
	return "", services.ErrIssueTrackerDisabled
}

// TribeService serves the demo taxonomy.
type TribeService struct{}

func (TribeService) ListTribes(context.Context, string) ([]domain.Tribe, error) { return Tribes(), nil }

func (TribeService) CreateTribe(_ context.Context, userID string, in domain.TribeInput) (*domain.Tribe, error) {
	now := clock()
	return &domain.Tribe{ID: newID(), UserID: userID, Name: strings.TrimSpace(in.Name), CreatedAt: now, UpdatedAt: now}, nil
}

func (t TribeService) UpdateTribe(ctx context.Context, userID, id string, in domain.TribeInput) (*domain.Tribe, error) {
	tr, err := t.CreateTribe(ctx, userID, in)
	if err == nil {
		tr.ID = id
	}
	return tr, err
}

func (TribeService) DeleteTribe(context.Context, string, string) error { return nil }

// ListSquads returns the demo squads, optionally limited to one tribe.
func (TribeService) ListSquads(_ context.Context, _ string, tribeID string) ([]domain.Squad, error) {
	tribeID = strings.TrimSpace(tribeID)
	out := []domain.Squad{}
	for _, s := range Squads() {
		if tribeID == "" || tribeID == "none" || s.TribeID == tribeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (TribeService) CreateSquad(_ context.Context, userID string, in domain.SquadInput) (*domain.Squad, error) {
	now := clock()
	return &domain.Squad{ID: newID(), UserID: userID, TribeID: in.TribeID, Name: strings.TrimSpace(in.Name), CreatedAt: now, UpdatedAt: now}, nil
}

func (t TribeService) UpdateSquad(ctx context.Context, userID, id string, in domain.SquadInput) (*domain.Squad, error) {
	s, err := t.CreateSquad(ctx, userID, in)
	if err == nil {
		s.ID = id
	}
	return s, err
}

func (TribeService) DeleteSquad(context.Context, string, string) error { return nil }

// FunctionService simulates the aggregation functions.
type FunctionService struct{}

func (FunctionService) GenerateLatestItems(context.Context, string) (int, error) {
	return len(LatestItems(clock())), nil
}

func (FunctionService) GenerateInsights(context.Context, string) (int, error) {
	return len(Insights(clock())), nil
}

func (FunctionService) AnalyzeTopics(context.Context, string) (domain.TopicAnalysisSummary, error) {
	return domain.TopicAnalysisSummary{FeedbacksAnalyzed: len(Feedbacks()), TopicsFound: len(TopicResults(clock()))}, nil
}

// GenerateInsightFromSelection drafts an insight from the selected fixtures.
func (FunctionService) GenerateInsightFromSelection(_ context.Context, _ string, ids []string) (*domain.InsightDraft, error) {
	var titles, kw []string
	var picked []string
	for _, fb := range Feedbacks() {
		for _, id := range ids {
			if fb.ID == id {
				picked = append(picked, id)
				titles = append(titles, fb.Title)
				kw = append(kw, fb.Tags...)
			}
		}
	}
	if len(picked) == 0 {
		return nil, services.ErrEmptySelection
	}
	return &domain.InsightDraft{
		Type:        domain.InsightTypeTrend,
		Severity:    domain.SeverityInfo,
		Title:       "Padrão em " + titles[0],
		Description: strings.Join(titles, "; "),
		Tags:        services.ParseTags(strings.Join(kw, ",")),
		FeedbackIDs: picked,
	}, nil
}

func (FunctionService) TopicResults(_ context.Context, _ string, limit int) ([]domain.TopicAnalysisResult, error) {
	out := TopicResults(clock())
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// AIConfigService serves a fixed configuration.
type AIConfigService struct{}

func (AIConfigService) Get(_ context.Context, userID string) (*domain.AIConfiguration, error) {
	now := clock()
	return &domain.AIConfiguration{
		ID: "demo-ai-config", UserID: userID, Provider: ai.OpenAI, Model: ai.DefaultModel(ai.OpenAI),
		IsActive: true, HasAPIKey: true, CreatedAt: now, UpdatedAt: now,
	}, nil
}

func (AIConfigService) Save(_ context.Context, userID string, in domain.AIConfigInput) (*domain.AIConfiguration, error) {
	p := strings.ToLower(strings.TrimSpace(in.Provider))
	if !ai.IsProvider(p) {
		return nil, services.ErrInvalidProvider
	}
	model := in.Model
	if model == "" {
		model = ai.DefaultModel(p)
	}
	now := clock()
	return &domain.AIConfiguration{
		ID: "demo-ai-config", UserID: userID, Provider: p, Model: model,
		IsActive: true, HasAPIKey: true, CreatedAt: now, UpdatedAt: now,
	}, nil
}

// UserService serves the demo accounts.
type UserService struct{}

func (UserService) List(context.Context) ([]domain.Profile, error) { return Profiles(), nil }

func (UserService) Upsert(_ context.Context, id string, p domain.Profile) (*domain.Profile, error) {
	p.ID = id
	return &p, nil
}

func (UserService) Delete(context.Context, string) error { return nil }
