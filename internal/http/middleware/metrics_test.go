package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Labels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DemoMode(false), Metrics())
	r.GET("/feedbacks/:id", func(c *gin.Context) { c.String(http.StatusOK, "{}") })

	live := httpReqs.WithLabelValues("GET", "/feedbacks/:id", "200", "live")
	demo := httpReqs.WithLabelValues("GET", "/feedbacks/:id", "200", "demo")
	missing := httpReqs.WithLabelValues("GET", "unmatched", "404", "live")
	baseLive, baseDemo, baseMissing := testutil.ToFloat64(live), testutil.ToFloat64(demo), testutil.ToFloat64(missing)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feedbacks/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feedbacks/b", nil))

	req := httptest.NewRequest(http.MethodGet, "/feedbacks/c", nil)
	req.Header.Set(HeaderDemoMode, "1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	if got := testutil.ToFloat64(live) - baseLive; got != 2 {
		t.Fatalf("live requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(demo) - baseDemo; got != 1 {
		t.Fatalf("demo requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(missing) - baseMissing; got != 1 {
		t.Fatalf("unmatched requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v", got)
	}
}
