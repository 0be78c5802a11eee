package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/http/middleware"
	"github.com/tbourn/feedback-hub/internal/repo"
)

func seedFeedback(t *testing.T, e *testEnv, userID, title string, at time.Time) *domain.Feedback {
	t.Helper()
	fb := &domain.Feedback{UserID: userID, Source: domain.SourceSlack, Title: title, CreatedAt: at}
	if err := repo.CreateFeedback(context.Background(), e.db, fb); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}
	return fb
}

func TestFunctions_ForeignUserForbidden(t *testing.T) {
	e := newEnv(t)
	paths := []string{
		"/functions/generate-latest-items",
		"/functions/generate-insights",
		"/functions/analyze-topics",
		"/functions/generate-insight-from-selection",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			expectCode(t, e.do(t, http.MethodPost, p, FunctionRequest{UserID: "someone-else"}), http.StatusForbidden, ErrCodeForbidden)
		})
	}
}

func TestGenerateLatestItems_RebuildsCounters(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()
	seedFeedback(t, e, "u1", "Login falha", now.Add(-time.Hour))
	seedFeedback(t, e, "u1", "Login falha", now.Add(-2*time.Hour))
	seedFeedback(t, e, "u1", "Tema escuro", now.Add(-3*time.Hour))
	seedFeedback(t, e, "u2", "Login falha", now.Add(-time.Hour))

	w := e.do(t, http.MethodPost, "/functions/generate-latest-items", FunctionRequest{UserID: "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	res := decode[LatestItemsResult](t, w)
	if res.ItemsGenerated != 2 || res.Message == "" {
		t.Fatalf("result = %+v", res)
	}

	items := decode[[]domain.LatestItem](t, e.do(t, http.MethodGet, "/latest-items", nil))
	counts := map[string]int{}
	for _, it := range items {
		counts[it.Title] = it.Count
	}
	if counts["Login falha"] != 2 || counts["Tema escuro"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestGenerateInsights_WithoutAIConfig(t *testing.T) {
	e := newEnv(t)
	seedFeedback(t, e, "u1", "Erro no Pix", time.Now().UTC().Add(-time.Hour))

	// An empty body is accepted.
	w := e.do(t, http.MethodPost, "/functions/generate-insights", nil)
	expectCode(t, w, http.StatusBadRequest, ErrCodeFunctionFailed)
	if er := decode[ErrorResponse](t, w); !strings.Contains(er.Message, "AI configuration") {
		t.Fatalf("message = %q", er.Message)
	}
	expectCode(t, e.do(t, http.MethodPost, "/functions/analyze-topics", nil), http.StatusBadRequest, ErrCodeFunctionFailed)
}

func TestGenerateInsightFromSelection_Rules(t *testing.T) {
	e := newEnv(t)
	mine := seedFeedback(t, e, "u1", "a", time.Now().UTC())
	theirs := seedFeedback(t, e, "u2", "b", time.Now().UTC())

	expectCode(t, e.do(t, http.MethodPost, "/functions/generate-insight-from-selection", FunctionRequest{}), http.StatusBadRequest, ErrCodeFunctionFailed)
	expectCode(t, e.do(t, http.MethodPost, "/functions/generate-insight-from-selection",
		FunctionRequest{FeedbackIDs: []string{mine.ID, theirs.ID}}), http.StatusBadRequest, ErrCodeFunctionFailed)
}

func TestAIConfig_SaveAndRead(t *testing.T) {
	e := newEnv(t)
	expectCode(t, e.do(t, http.MethodGet, "/ai-config", nil), http.StatusNotFound, ErrCodeAIConfigMissing)
	expectCode(t, e.do(t, http.MethodPut, "/ai-config", AIConfigRequest{Provider: "mistral"}), http.StatusBadRequest, ErrCodeBadRequest)

	w := e.do(t, http.MethodPut, "/ai-config", AIConfigRequest{Provider: "openai", APIKey: "sk-test"})
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "sk-test") {
		t.Fatalf("api key leaked: %s", w.Body.String())
	}

	// Switching provider without a key keeps the stored key.
	e.do(t, http.MethodPut, "/ai-config", AIConfigRequest{Provider: "claude"})
	cfg := decode[domain.AIConfiguration](t, e.do(t, http.MethodGet, "/ai-config", nil))
	if cfg.Provider != "claude" || !cfg.HasAPIKey || cfg.Model == "" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestUsers_UpsertListDelete(t *testing.T) {
	e := newEnv(t)
	expectCode(t, e.do(t, http.MethodPut, "/users/u9", ProfileRequest{Email: "not-an-email"}), http.StatusBadRequest, ErrCodeBadRequest)

	w := e.do(t, http.MethodPut, "/users/u9", ProfileRequest{Email: "ana@example.com", FullName: "Ana"})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert: %d %s", w.Code, w.Body.String())
	}
	p := decode[domain.Profile](t, w)
	if p.AvatarURL != nil || p.Email == nil || *p.Email != "ana@example.com" {
		t.Fatalf("profile = %+v", p)
	}

	if rows := decode[[]domain.Profile](t, e.do(t, http.MethodGet, "/users", nil)); len(rows) != 1 {
		t.Fatalf("users = %+v", rows)
	}
	if w := e.do(t, http.MethodDelete, "/users/u9", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	expectCode(t, e.do(t, http.MethodDelete, "/users/u9", nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestDemoMode_ServesFixturesWithoutWrites(t *testing.T) {
	e := newEnv(t)
	demo := []string{middleware.HeaderDemoMode, "true"}

	w := e.do(t, http.MethodGet, "/feedbacks", nil, demo...)
	if w.Code != http.StatusOK || w.Header().Get(middleware.HeaderDemoMode) != "true" {
		t.Fatalf("demo report: %d %v", w.Code, w.Header())
	}

	w = e.do(t, http.MethodPost, "/feedbacks", CreateFeedbackRequest{Title: "não salvar"}, append(demo, middleware.HeaderIdempotencyKey, "k1")...)
	if w.Code != http.StatusCreated {
		t.Fatalf("demo create: %d %s", w.Code, w.Body.String())
	}
	if fb := decode[domain.Feedback](t, w); !strings.HasPrefix(fb.ID, "demo-") || fb.Title != "não salvar" {
		t.Fatalf("demo create = %+v", fb)
	}

	w = e.do(t, http.MethodPost, "/functions/generate-insights", nil, demo...)
	if w.Code != http.StatusOK || decode[InsightsResult](t, w).InsightsGenerated == 0 {
		t.Fatalf("demo generate: %d %s", w.Code, w.Body.String())
	}

	cfg := decode[domain.AIConfiguration](t, e.do(t, http.MethodGet, "/ai-config", nil, demo...))
	if cfg.ID != "demo-ai-config" {
		t.Fatalf("demo config = %+v", cfg)
	}

	for _, m := range repo.Models() {
		var n int64
		if err := e.db.Model(m).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", m, err)
		}
		if n != 0 {
			t.Fatalf("demo request wrote %d rows to %T", n, m)
		}
	}
}
