// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and validate input, pick the data
// strategy for the request (live or demo), call an application service, and
// translate results and service errors into HTTP responses.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/http/middleware"
	"github.com/tbourn/feedback-hub/internal/report"
)

//
// Service contracts (context-aware)
//
// Each contract has a live implementation backed by the database and a demo
// implementation serving fixtures. Implementations must be safe for
// concurrent use and honor the provided context.
//

// FeedbackService covers manual entry, the paginated report and the
// LatestItem counters.
type FeedbackService interface {
	Create(ctx context.Context, userID string, in domain.FeedbackInput) (*domain.Feedback, error)
	Get(ctx context.Context, userID, id string) (*domain.Feedback, error)
	Report(ctx context.Context, userID string, q report.Query) (report.Page[domain.Feedback], error)
	LatestItems(ctx context.Context, userID string) ([]domain.LatestItem, error)
}

// InsightService covers the insight lifecycle.
type InsightService interface {
	ListActive(ctx context.Context, userID string, limit int, window string) ([]domain.InsightView, error)
	Topics(ctx context.Context, userID string) ([]domain.Topic, error)
	SaveDraft(ctx context.Context, userID string, d domain.InsightDraft) (*domain.Insight, error)
	UpdateTags(ctx context.Context, userID, id, csv string) (*domain.Insight, error)
	Reject(ctx context.Context, userID, id string) error
	Convert(ctx context.Context, userID, id string, org domain.OrgRef) (*domain.Opportunity, error)
	Delete(ctx context.Context, userID, id string) error
}

// OpportunityService covers the roadmap board.
type OpportunityService interface {
	List(ctx context.Context, userID string) ([]domain.OpportunityView, error)
	Board(ctx context.Context, userID string) (domain.Board, error)
	Get(ctx context.Context, userID, id string) (*domain.Opportunity, error)
	Create(ctx context.Context, userID string, in domain.OpportunityInput) (*domain.Opportunity, error)
	CreateFromTopic(ctx context.Context, userID, topic string) (*domain.Opportunity, error)
	Update(ctx context.Context, userID, id string, in domain.OpportunityInput) (*domain.Opportunity, error)
	Sources(ctx context.Context, userID, id string) ([]domain.InsightSource, error)
	IssueURL(ctx context.Context, userID, id string) (string, error)
}

// TribeService covers the tribe/squad registry.
type TribeService interface {
	ListTribes(ctx context.Context, userID string) ([]domain.Tribe, error)
	CreateTribe(ctx context.Context, userID string, in domain.TribeInput) (*domain.Tribe, error)
	UpdateTribe(ctx context.Context, userID, id string, in domain.TribeInput) (*domain.Tribe, error)
	DeleteTribe(ctx context.Context, userID, id string) error
	ListSquads(ctx context.Context, userID, tribeID string) ([]domain.Squad, error)
	CreateSquad(ctx context.Context, userID string, in domain.SquadInput) (*domain.Squad, error)
	UpdateSquad(ctx context.Context, userID, id string, in domain.SquadInput) (*domain.Squad, error)
	DeleteSquad(ctx context.Context, userID, id string) error
}

// FunctionService runs the aggregation functions.
type FunctionService interface {
	GenerateLatestItems(ctx context.Context, userID string) (int, error)
	GenerateInsights(ctx context.Context, userID string) (int, error)
	AnalyzeTopics(ctx context.Context, userID string) (domain.TopicAnalysisSummary, error)
	GenerateInsightFromSelection(ctx context.Context, userID string, feedbackIDs []string) (*domain.InsightDraft, error)
	TopicResults(ctx context.Context, userID string, limit int) ([]domain.TopicAnalysisResult, error)
}

// AIConfigService reads and stores the per-user AI provider settings.
type AIConfigService interface {
	Get(ctx context.Context, userID string) (*domain.AIConfiguration, error)
	Save(ctx context.Context, userID string, in domain.AIConfigInput) (*domain.AIConfiguration, error)
}

// UserService administers profiles.
type UserService interface {
	List(ctx context.Context) ([]domain.Profile, error)
	Upsert(ctx context.Context, id string, p domain.Profile) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

// IdempotencyStore records completed unsafe requests so a retried request
// with the same Idempotency-Key returns the original resource.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error)
	Save(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Services is one complete data strategy.
type Services struct {
	Feedback      FeedbackService
	Insights      InsightService
	Opportunities OpportunityService
	Tribes        TribeService
	Functions     FunctionService
	AIConfig      AIConfigService
	Users         UserService
}

// Handlers groups every HTTP endpoint. Requests flagged by the DemoMode
// middleware are served by the demo strategy, all others by the live one.
type Handlers struct {
	live Services
	demo *Services
	idem IdempotencyStore
}

// New constructs Handlers. demo and idem may be nil: without a demo
// strategy every request is live, without a store Idempotency-Key replays
// are not served.
func New(live Services, demo *Services, idem IdempotencyStore) *Handlers {
	registerValidators()
	return &Handlers{live: live, demo: demo, idem: idem}
}

// svc returns the strategy for this request.
func (h *Handlers) svc(c *gin.Context) Services {
	if h.demo != nil && middleware.IsDemo(c) {
		return *h.demo
	}
	return h.live
}

func userID(c *gin.Context) string { return middleware.UserID(c) }
