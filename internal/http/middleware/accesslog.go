package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Feedback titles and customer names reach query strings through report
// filters, so anything that looks like contact data is scrubbed.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redact replaces UUIDs, e-mail addresses and phone numbers in s. UUIDs go
// first so the phone pattern never eats their digit groups.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// MaskHeaders are masked on top of Authorization, Cookie and Set-Cookie.
	MaskHeaders []string
	// QuietPaths log at debug level (probes, scrapes).
	QuietPaths []string
}

// AccessLog installs the request-scoped logger (request_id, user_id, demo)
// for handlers and services, then writes one "http_request" line per request
// with the query and header values scrubbed by Redact. Bodies are never
// logged.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	masked := map[string]bool{"authorization": true, "cookie": true, "set-cookie": true}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = true
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("user_id", c.GetString(ctxKeyUserID)).
			Bool("demo", IsDemo(c)).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		case skipped(c.Request.URL.Path, opts.QuietPaths):
			ev = l.Debug()
		default:
			ev = l.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}

		headers := zerolog.Dict()
		for k, vv := range c.Request.Header {
			if masked[strings.ToLower(k)] {
				headers.Str(k, "[REDACTED]")
				continue
			}
			headers.Str(k, Redact(strings.Join(vv, ", ")))
		}

		ev.Str("method", c.Request.Method).
			Str("route", route).
			Str("query", Redact(c.Request.URL.RawQuery)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Dict("headers", headers).
			Msg("http_request")
	}
}
