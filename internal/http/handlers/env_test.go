package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/demo"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/http/middleware"
	"github.com/tbourn/feedback-hub/internal/repo"
	"github.com/tbourn/feedback-hub/internal/repo/repotest"
	"github.com/tbourn/feedback-hub/internal/services"
)

// ---------- test DB + full handler stack ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	return repotest.Open(t, repo.Models()...)
}

func liveServices(db *gorm.DB) Services {
	return Services{
		Feedback:      &services.FeedbackService{DB: db},
		Insights:      &services.InsightService{DB: db},
		Opportunities: &services.OpportunityService{DB: db},
		Tribes:        &services.TribeService{DB: db},
		Functions:     &services.AggregationService{DB: db},
		AIConfig:      &services.AIConfigService{DB: db},
		Users:         &services.UserService{DB: db},
	}
}

func demoServices() *Services {
	return &Services{
		Feedback:      demo.FeedbackService{},
		Insights:      demo.InsightService{},
		Opportunities: demo.OpportunityService{},
		Tribes:        demo.TribeService{},
		Functions:     demo.FunctionService{},
		AIConfig:      demo.AIConfigService{},
		Users:         demo.UserService{},
	}
}

// mount registers every endpoint the way the router does, behind the
// identity, demo and idempotency middleware.
func mount(h *Handlers, idem *services.IdempotencyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DemoMode(false), middleware.Identity(middleware.IdentityOptions{}))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{},
		func(ctx context.Context, userID, scope, key string) (bool, error) {
			rec, err := idem.Lookup(ctx, userID, scope, key)
			return rec != nil, err
		}))

	r.GET("/feedbacks", h.FeedbackReport)
	r.POST("/feedbacks", h.CreateFeedback)
	r.GET("/feedbacks/:id", h.GetFeedback)
	r.GET("/latest-items", h.ListLatestItems)

	r.GET("/insights", h.ListInsights)
	r.POST("/insights", h.SaveInsight)
	r.GET("/insights/topics", h.ListInsightTopics)
	r.PUT("/insights/:id/tags", h.UpdateInsightTags)
	r.POST("/insights/:id/reject", h.RejectInsight)
	r.POST("/insights/:id/convert", h.ConvertInsight)
	r.DELETE("/insights/:id", h.DeleteInsight)

	r.GET("/opportunities", h.ListOpportunities)
	r.GET("/opportunities/board", h.OpportunityBoard)
	r.POST("/opportunities", h.CreateOpportunity)
	r.POST("/opportunities/from-topic", h.CreateOpportunityFromTopic)
	r.PUT("/opportunities/:id", h.UpdateOpportunity)
	r.GET("/opportunities/:id/sources", h.OpportunitySources)
	r.GET("/opportunities/:id/issue-url", h.OpportunityIssueURL)

	r.GET("/tribes", h.ListTribes)
	r.POST("/tribes", h.CreateTribe)
	r.PUT("/tribes/:id", h.UpdateTribe)
	r.DELETE("/tribes/:id", h.DeleteTribe)
	r.GET("/squads", h.ListSquads)
	r.POST("/squads", h.CreateSquad)
	r.PUT("/squads/:id", h.UpdateSquad)
	r.DELETE("/squads/:id", h.DeleteSquad)

	r.GET("/topics", h.ListTopicResults)
	r.POST("/functions/generate-latest-items", h.GenerateLatestItems)
	r.POST("/functions/generate-insights", h.GenerateInsights)
	r.POST("/functions/analyze-topics", h.AnalyzeTopics)
	r.POST("/functions/generate-insight-from-selection", h.GenerateInsightFromSelection)

	r.GET("/ai-config", h.GetAIConfig)
	r.PUT("/ai-config", h.SaveAIConfig)
	r.GET("/users", h.ListUsers)
	r.PUT("/users/:id", h.UpsertUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

type testEnv struct {
	db *gorm.DB
	r  *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newHandlerDB(t)
	idem := &services.IdempotencyService{DB: db, TTL: time.Hour}
	h := New(liveServices(db), demoServices(), idem)
	return &testEnv{db: db, r: mount(h, idem)}
}

// do sends a JSON request as user "u1" unless a header overrides it.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "u1")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return v
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body=%s)", w.Code, status, w.Body.String())
	}
	if code == "" {
		return
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code = %q, want %q", er.Code, code)
	}
}

func seedInsight(t *testing.T, db *gorm.DB, userID, title string) *domain.Insight {
	t.Helper()
	in := &domain.Insight{UserID: userID, Title: title, Description: "d", Type: domain.InsightTypeTrend, Severity: domain.SeverityInfo}
	if err := repo.CreateInsight(context.Background(), db, in); err != nil {
		t.Fatalf("seed insight: %v", err)
	}
	return in
}
