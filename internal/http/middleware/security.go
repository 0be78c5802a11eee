package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests. Only
	// enable it when TLS terminates in front of every hop.
	EnableHSTS bool
	HSTSMaxAge time.Duration // 180 days when <= 0
	// NoStorePaths are route prefixes whose responses must never be cached,
	// such as the AI settings that echo provider keys.
	NoStorePaths []string
}

// SecurityHeaders adds the API's response hardening headers.
//
// Responses also vary on the identity and demo inputs: the same URL returns
// another user's rows or the fixture set depending on X-User-ID, X-Demo-Mode
// and the demo cookie, so shared caches must key on them.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
		h.Add("Vary", HeaderUserID+", "+HeaderDemoMode+", Cookie")

		if skipped(c.Request.URL.Path, opt.NoStorePaths) {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// isHTTPS reports TLS on the connection or as declared by the proxy.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
