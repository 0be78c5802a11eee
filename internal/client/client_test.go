package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/demo"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// --- HTTP backend ---

func newBackend(t *testing.T, h http.HandlerFunc) *HTTPBackend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &HTTPBackend{BaseURL: srv.URL + "/api/v1", UserID: "u1", HTTP: srv.Client(), InitialInterval: time.Millisecond}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPBackend_ReadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, []domain.LatestItem{{Title: "Login", Count: 2}})
	})

	items, err := b.LatestItems(context.Background())
	if err != nil {
		t.Fatalf("LatestItems: %v", err)
	}
	if calls.Load() != 3 || len(items) != 1 || items[0].Count != 2 {
		t.Fatalf("calls=%d items=%+v", calls.Load(), items)
	}
}

func TestHTTPBackend_ReadGivesUpAfterThreeTries(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"code": "unavailable"})
	})

	_, err := b.Tribes(context.Background())
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPBackend_AuthErrorsNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var calls atomic.Int32
		b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("X-Request-ID", "rid-1")
			writeJSON(w, code, map[string]string{"code": "unauthorized", "message": "missing identity"})
		})

		_, err := b.Board(context.Background())
		if !IsAuth(err) {
			t.Fatalf("%d: IsAuth(%v) = false", code, err)
		}
		var ae *APIError
		errors.As(err, &ae)
		if ae.Code != "unauthorized" || ae.RequestID != "rid-1" {
			t.Fatalf("%d: decoded %+v", code, ae)
		}
		if calls.Load() != 1 {
			t.Fatalf("%d: calls = %d, want 1", code, calls.Load())
		}
	}
}

func TestHTTPBackend_NotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "not_found"})
	})
	if _, err := b.Insights(context.Background(), 0, ""); err == nil || IsAuth(err) {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestHTTPBackend_WritesSentOnce(t *testing.T) {
	var calls atomic.Int32
	var got http.Header
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		got = r.Header.Clone()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "internal_error"})
	})

	if _, err := b.CreateFeedback(context.Background(), domain.FeedbackInput{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	if got.Get(headerUserID) != "u1" || got.Get(headerIdempotencyKey) == "" {
		t.Fatalf("headers = %v", got)
	}
}

func TestHTTPBackend_RequestShapes(t *testing.T) {
	var paths []string
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch {
		case r.URL.Path == "/api/v1/feedbacks":
			writeJSON(w, http.StatusOK, report.Page[domain.Feedback]{Page: 2})
		case strings.HasSuffix(r.URL.Path, "/reject"):
			w.WriteHeader(http.StatusNoContent)
		case strings.HasPrefix(r.URL.Path, "/api/v1/functions/"):
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if ids, ok := body["feedback_ids"]; ok {
				writeJSON(w, http.StatusOK, map[string]any{"insight": domain.InsightDraft{Title: "t", FeedbackIDs: toStrings(ids)}})
				return
			}
			writeJSON(w, http.StatusOK, FunctionResult{Message: "ok", ItemsGenerated: 3})
		}
	})
	ctx := context.Background()

	page, err := b.Report(ctx, report.Query{Source: "slack", Tag: " pix ", Page: 2})
	if err != nil || page.Page != 2 {
		t.Fatalf("report: %+v %v", page, err)
	}
	if err := b.RejectInsight(ctx, "i-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	d, err := b.DraftFromSelection(ctx, []string{"f1", "f2"})
	if err != nil || d == nil || len(d.FeedbackIDs) != 2 {
		t.Fatalf("draft: %+v %v", d, err)
	}
	res, err := b.RunFunction(ctx, FnGenerateLatestItems)
	if err != nil || res.ItemsGenerated != 3 {
		t.Fatalf("run: %+v %v", res, err)
	}
	if _, err := b.RunFunction(ctx, "drop-tables"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("unknown function err = %v", err)
	}

	want := []string{
		"GET /api/v1/feedbacks?page=2&source=slack&tag=pix",
		"POST /api/v1/insights/i-1/reject",
		"POST /api/v1/functions/generate-insight-from-selection",
		"POST /api/v1/functions/generate-latest-items",
	}
	if strings.Join(paths, "\n") != strings.Join(want, "\n") {
		t.Fatalf("requests:\n%s", strings.Join(paths, "\n"))
	}
}

func toStrings(v any) []string {
	var out []string
	for _, x := range v.([]any) {
		out = append(out, x.(string))
	}
	return out
}

// --- cache and invalidation ---

type fakeBackend struct {
	Backend // unimplemented methods panic

	mu      sync.Mutex
	calls   map[string]int
	release chan struct{}
	fail    error
}

func newFake() *fakeBackend { return &fakeBackend{calls: map[string]int{}} }

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) LatestItems(ctx context.Context) ([]domain.LatestItem, error) {
	f.hit("latest")
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []domain.LatestItem{{Title: "a", Count: 1}}, nil
}

func (f *fakeBackend) Insights(context.Context, int, string) ([]domain.InsightView, error) {
	f.hit("insights")
	if f.fail != nil {
		return nil, f.fail
	}
	return []domain.InsightView{}, nil
}

func (f *fakeBackend) Board(context.Context) (domain.Board, error) {
	f.hit("board")
	return domain.Board{}, nil
}

func (f *fakeBackend) Tribes(context.Context) ([]domain.Tribe, error) {
	f.hit("tribes")
	return []domain.Tribe{{Name: "Growth"}}, nil
}

func (f *fakeBackend) ConvertInsight(context.Context, string, domain.OrgRef) (*domain.Opportunity, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return &domain.Opportunity{ID: "op-1"}, nil
}

func newClient(t *testing.T, b Backend) *Client {
	t.Helper()
	c, err := New(b, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_CachesReads(t *testing.T) {
	f := newFake()
	c := newClient(t, f)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Tribes(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if f.count("tribes") != 1 {
		t.Fatalf("tribes calls = %d", f.count("tribes"))
	}

	// Different parameters are different entries.
	c.Insights(ctx, 5, "all")
	c.Insights(ctx, 5, "lastMonth")
	c.Insights(ctx, 5, "all")
	if f.count("insights") != 2 {
		t.Fatalf("insights calls = %d", f.count("insights"))
	}
}

func TestClient_ConcurrentReadsShareOneCall(t *testing.T) {
	f := newFake()
	f.release = make(chan struct{})
	c := newClient(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.LatestItems(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	if n := f.count("latest"); n != 1 {
		t.Fatalf("backend calls = %d, want 1", n)
	}
}

func TestClient_CanceledCallerDoesNotFailSharedRead(t *testing.T) {
	f := newFake()
	f.release = make(chan struct{})
	c := newClient(t, f)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.LatestItems(firstCtx)
		firstErr <- err
	}()
	for f.count("latest") == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		items []domain.LatestItem
		err   error
	}
	second := make(chan result, 1)
	go func() {
		items, err := c.LatestItems(context.Background())
		second <- result{items, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("first caller err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(f.release)
	r := <-second
	if r.err != nil || len(r.items) != 1 {
		t.Fatalf("second caller = %v, %v", r.items, r.err)
	}
	if n := f.count("latest"); n != 1 {
		t.Fatalf("backend calls = %d, want 1", n)
	}
}

func TestClient_ErrorsNotCached(t *testing.T) {
	f := newFake()
	f.fail = errors.New("boom")
	c := newClient(t, f)

	if _, err := c.Insights(context.Background(), 0, ""); err == nil {
		t.Fatal("expected error")
	}
	f.fail = nil
	if _, err := c.Insights(context.Background(), 0, ""); err != nil {
		t.Fatal(err)
	}
	if f.count("insights") != 2 {
		t.Fatalf("insights calls = %d", f.count("insights"))
	}
}

func TestClient_WritesInvalidateAffectedQueries(t *testing.T) {
	f := newFake()
	c := newClient(t, f)
	ctx := context.Background()

	c.Insights(ctx, 0, "all")
	c.Insights(ctx, 10, "lastWeek")
	c.Board(ctx)
	c.Tribes(ctx)

	if _, err := c.ConvertInsight(ctx, "i-1", domain.OrgRef{}); err != nil {
		t.Fatal(err)
	}
	c.Insights(ctx, 0, "all")
	c.Insights(ctx, 10, "lastWeek")
	c.Board(ctx)
	c.Tribes(ctx)

	if f.count("insights") != 4 || f.count("board") != 2 || f.count("tribes") != 1 {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestClient_FailedWriteKeepsCache(t *testing.T) {
	f := newFake()
	c := newClient(t, f)
	ctx := context.Background()

	c.Board(ctx)
	f.fail = errors.New("conflict")
	if _, err := c.ConvertInsight(ctx, "i-1", domain.OrgRef{}); err == nil {
		t.Fatal("expected error")
	}
	c.Board(ctx)
	if f.count("board") != 1 {
		t.Fatalf("board calls = %d", f.count("board"))
	}
}

func TestInvalidates_CoversEveryFunction(t *testing.T) {
	for _, fn := range []string{FnGenerateLatestItems, FnGenerateInsights, FnAnalyzeTopics} {
		if len(Invalidates[Mutation(fn)]) == 0 {
			t.Fatalf("no invalidation for %s", fn)
		}
	}
}

// --- state and backend selection ---

func TestState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback-hub", "state.json")

	st, err := LoadState(path)
	if err != nil || st.DemoMode {
		t.Fatalf("missing file: %+v %v", st, err)
	}
	if err := SaveState(path, State{DemoMode: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"feedback-hub-demo-mode": true`) {
		t.Fatalf("file = %s", raw)
	}
	st, err = LoadState(path)
	if err != nil || !st.DemoMode {
		t.Fatalf("reload: %+v %v", st, err)
	}

	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpen_DemoStateUsesFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := SaveState(path, State{DemoMode: true}); err != nil {
		t.Fatal(err)
	}

	// The base URL is unreachable; demo mode must not need it.
	c, st, err := Open(Options{BaseURL: "http://127.0.0.1:1/api/v1", StatePath: path})
	if err != nil || !st.DemoMode || !c.Demo() {
		t.Fatalf("open: demo=%v %v", st.DemoMode, err)
	}
	page, err := c.Report(context.Background(), report.Query{})
	if err != nil || page.Total != len(demo.Feedbacks()) {
		t.Fatalf("demo report: %+v %v", page, err)
	}
	fb, err := c.CreateFeedback(context.Background(), domain.FeedbackInput{Title: "offline"})
	if err != nil || !strings.HasPrefix(fb.ID, "demo-") {
		t.Fatalf("demo create: %+v %v", fb, err)
	}
	res, err := c.RunFunction(context.Background(), FnAnalyzeTopics)
	if err != nil || res.FeedbacksAnalyzed != len(demo.Feedbacks()) {
		t.Fatalf("demo analyze: %+v %v", res, err)
	}
}

func TestOpen_LiveStateUsesHTTP(t *testing.T) {
	c, st, err := Open(Options{BaseURL: "http://localhost", StatePath: filepath.Join(t.TempDir(), "none.json")})
	if err != nil || st.DemoMode || c.Demo() {
		t.Fatalf("open: %+v demo=%v %v", st, c.Demo(), err)
	}
}
