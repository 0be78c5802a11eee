package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets a client retry a create without creating twice.
// Feedback creation and insight conversion honor it.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultMaxKeyLen = 200
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~:-]+$`)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a completed request with the same user, scope and
// key was found. Handlers decide how to serve it.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyOptions bounds accepted keys. Zero values select a 200 byte cap
// and the token pattern [A-Za-z0-9._~:-].
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a live record exists for the triple.
// Expiry is the store's concern.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string) (bool, error)

// IdempotencyScope binds a key to one operation on one resource, for
// example "POST /api/v1/insights/42/convert".
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

// IdempotencyValidator accepts the Idempotency-Key of unsafe requests and
// flags replays so the rate limiter lets them through. Safe methods ignore
// the header. Demo requests persist nothing, so they are never replays. A
// failed lookup is logged and treated as a miss.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxKeyLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid " + HeaderIdempotencyKey + " header",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil && !IsDemo(c) {
			found, err := lookup(c.Request.Context(), UserID(c), IdempotencyScope(c), key)
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Str("key", key).Msg("idempotency lookup failed")
			}
			if found {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
