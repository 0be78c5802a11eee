// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves who is calling and which data strategy serves them:
//   - DemoMode() flags requests that must be answered from fixtures
//     (X-Demo-Mode header, demo cookie, or server-wide configuration).
//   - Identity() trusts the X-User-ID header set by the upstream auth
//     gateway and stores it under the "userID" context key.
//
// Identity must run after DemoMode so that demo requests are never rejected
// for a missing identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the caller identity asserted by the auth gateway.
	HeaderUserID = "X-User-ID"
	// HeaderDemoMode opts a single request into demo data.
	HeaderDemoMode = "X-Demo-Mode"
	// DemoCookie is the cookie name shared with browser clients.
	DemoCookie = "feedback-hub-demo-mode"

	// AnonymousUser owns rows written without identity (REQUIRE_AUTH=false).
	AnonymousUser = "demo-user"

	ctxKeyUserID = "userID"
	ctxKeyDemo   = "demo"
)

// DemoMode marks the request as a demo request when forced is true or the
// client asked for it.
func DemoMode(forced bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		demo := forced || isTrue(c.GetHeader(HeaderDemoMode))
		if !demo {
			if v, err := c.Cookie(DemoCookie); err == nil {
				demo = isTrue(v)
			}
		}
		if demo {
			c.Set(ctxKeyDemo, true)
			c.Header(HeaderDemoMode, "true")
		}
		c.Next()
	}
}

// IsDemo reports whether DemoMode flagged this request.
func IsDemo(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyDemo)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdentityOptions configures Identity.
type IdentityOptions struct {
	// Require rejects anonymous non-demo requests with 401.
	Require bool
	// SkipPaths are served without identity (health, metrics, docs).
	SkipPaths []string
}

// Identity copies X-User-ID into the Gin context. With opts.Require set,
// a request without identity is aborted with 401 unless it is a demo request.
func Identity(opts IdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
			c.Set(ctxKeyUserID, uid)
			c.Next()
			return
		}
		// Preflight requests never carry the header.
		if !opts.Require || IsDemo(c) || c.Request.Method == http.MethodOptions || skipped(c.Request.URL.Path, opts.SkipPaths) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "unauthorized",
			"message":    "missing " + HeaderUserID + " header",
		})
	}
}

// UserID returns the caller identity, reading the header when Identity did
// not run, and AnonymousUser when there is none.
func UserID(c *gin.Context) string {
	if uid := c.GetString(ctxKeyUserID); uid != "" {
		return uid
	}
	if c.Request != nil {
		if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
			return uid
		}
	}
	return AnonymousUser
}

func skipped(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
