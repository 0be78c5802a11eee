package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type lookupCall struct{ user, scope, key string }

// idemSeen is what the handler behind the validator observed.
type idemSeen struct {
	replay, bypass bool
	key            string
}

func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup, pre ...gin.HandlerFunc) (*gin.Engine, *idemSeen) {
	gin.SetMode(gin.TestMode)
	seen := &idemSeen{}
	r := gin.New()
	r.Use(pre...)
	r.Use(IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		seen.replay, seen.bypass = IsReplay(c), IsRateBypass(c)
		seen.key, _ = GetIdempotencyKey(c)
		c.Status(http.StatusCreated)
	}
	r.POST("/feedbacks", h)
	r.POST("/insights/:id/convert", h)
	r.GET("/feedbacks", h)
	return r, seen
}

func postWithKey(r http.Handler, path, key string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set(HeaderIdempotencyKey, key)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"default cap", IdempotencyOptions{}, strings.Repeat("k", defaultMaxKeyLen+1)},
		{"bad chars", IdempotencyOptions{}, "has space"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := idemRouter(tc.opts, nil)
			w := postWithKey(r, "/feedbacks", tc.key)
			var body map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if w.Code != http.StatusBadRequest || body["code"] != "bad_idempotency_key" {
				t.Fatalf("got %d %v", w.Code, body)
			}
		})
	}
}

func TestIdempotencyValidator_MissAndHit(t *testing.T) {
	var calls []lookupCall
	stored := map[lookupCall]bool{{"u9", "POST /insights/i42/convert", "conv-1"}: true}
	lookup := func(_ context.Context, user, scope, key string) (bool, error) {
		c := lookupCall{user, scope, key}
		calls = append(calls, c)
		return stored[c], nil
	}
	setUser := func(c *gin.Context) { c.Set(ctxKeyUserID, "u9"); c.Next() }
	r, seen := idemRouter(IdempotencyOptions{}, lookup, setUser)

	postWithKey(r, "/feedbacks", "conv-1")
	if seen.replay || seen.bypass || seen.key != "conv-1" {
		t.Fatalf("miss: %+v", *seen)
	}

	// Same key on another resource is another operation.
	postWithKey(r, "/insights/i7/convert", "conv-1")
	if seen.replay {
		t.Fatal("key leaked across resources")
	}

	postWithKey(r, "/insights/i42/convert", "conv-1")
	if !seen.replay || !seen.bypass {
		t.Fatalf("hit: %+v", *seen)
	}
	if len(calls) != 3 || calls[0].user != "u9" {
		t.Fatalf("lookups = %+v", calls)
	}
}

func TestIdempotencyValidator_AnonymousCallerScope(t *testing.T) {
	var user string
	r, _ := idemRouter(IdempotencyOptions{}, func(_ context.Context, u, _, _ string) (bool, error) {
		user = u
		return false, nil
	})
	postWithKey(r, "/feedbacks", "k1")
	if user != AnonymousUser {
		t.Fatalf("lookup user = %q", user)
	}
}

func TestIdempotencyValidator_LookupErrorIsMiss(t *testing.T) {
	r, seen := idemRouter(IdempotencyOptions{}, func(context.Context, string, string, string) (bool, error) {
		return false, errors.New("db down")
	})
	if w := postWithKey(r, "/feedbacks", "k1"); w.Code != http.StatusCreated || seen.replay {
		t.Fatalf("code=%d replay=%v", w.Code, seen.replay)
	}
}

func TestIdempotencyValidator_SkipsSafeMethodsAndDemo(t *testing.T) {
	called := false
	lookup := func(context.Context, string, string, string) (bool, error) {
		called = true
		return true, nil
	}

	r, seen := idemRouter(IdempotencyOptions{}, lookup)
	req := httptest.NewRequest(http.MethodGet, "/feedbacks", nil)
	req.Header.Set(HeaderIdempotencyKey, "not valid but ignored")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated || seen.key != "" || called {
		t.Fatalf("GET: code=%d key=%q called=%v", w.Code, seen.key, called)
	}

	r, seen = idemRouter(IdempotencyOptions{}, lookup, DemoMode(false))
	if w := postWithKey(r, "/feedbacks", "k1", HeaderDemoMode, "true"); w.Code != http.StatusCreated || seen.replay || called {
		t.Fatalf("demo: code=%d replay=%v called=%v", w.Code, seen.replay, called)
	}
}

func TestIdempotencyAccessors_WrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ctxKeyIdemKey, 123)
	c.Set(ctxKeyIdemReplay, "yes")
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatal("non-string key or non-bool flag must read as absent")
	}
}
