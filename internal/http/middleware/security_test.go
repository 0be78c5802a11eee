package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.GET("/api/v1/feedbacks", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/ai-config", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := securityRouter(SecurityOptions{NoStorePaths: []string{"/api/v1/ai-config"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/feedbacks", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %v", h)
	}
	vary := strings.Join(h.Values("Vary"), ",")
	for _, want := range []string{HeaderUserID, HeaderDemoMode, "Cookie"} {
		if !strings.Contains(vary, want) {
			t.Fatalf("Vary %q lacks %s", vary, want)
		}
	}
	if h.Get("Cache-Control") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("unexpected optional headers: %v", h)
	}
}

func TestSecurityHeaders_NoStorePaths(t *testing.T) {
	r := securityRouter(SecurityOptions{NoStorePaths: []string{"/api/v1/ai-config"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai-config", nil))
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("Pragma") != "no-cache" {
		t.Fatalf("settings response cacheable: %v", w.Header())
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	r := securityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour})

	cases := []struct {
		name string
		req  func() *http.Request
		want string
	}{
		{"plain http", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/feedbacks", nil)
		}, ""},
		{"tls", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/feedbacks", nil)
			req.TLS = &tls.ConnectionState{}
			return req
		}, "max-age=3600; includeSubDomains"},
		{"forwarded https", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/feedbacks", nil)
			req.Header.Set("X-Forwarded-Proto", "HTTPS")
			return req
		}, "max-age=3600; includeSubDomains"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tc.req())
			if got := w.Header().Get("Strict-Transport-Security"); got != tc.want {
				t.Fatalf("HSTS = %q, want %q", got, tc.want)
			}
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedbacks", nil)
	req.TLS = &tls.ConnectionState{}
	securityRouter(SecurityOptions{EnableHSTS: true}).ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains" {
		t.Fatalf("default max-age: %q", got)
	}
}
