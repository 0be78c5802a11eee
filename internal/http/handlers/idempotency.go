package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/http/middleware"
)

// HeaderReplayed marks a response served from an earlier request with the
// same Idempotency-Key.
const HeaderReplayed = "Idempotent-Replayed"

// replay serves the resource created by an earlier request with the same
// Idempotency-Key and reports whether a response was written. load fetches
// the resource by id; when it fails the request is processed normally.
func (h *Handlers) replay(c *gin.Context, load func(id string) (any, error)) bool {
	if h.idem == nil || !middleware.IsReplay(c) || middleware.IsDemo(c) {
		return false
	}
	key, _ := middleware.GetIdempotencyKey(c)
	rec, err := h.idem.Lookup(c.Request.Context(), userID(c), middleware.IdempotencyScope(c), key)
	if err != nil || rec == nil {
		return false
	}
	v, err := load(rec.ResourceID)
	if err != nil {
		return false
	}
	c.Header(HeaderReplayed, "true")
	ok(c, rec.Status, v)
	return true
}

// remember stores the outcome of a completed unsafe request. Failures are
// logged and never change the response.
func (h *Handlers) remember(c *gin.Context, resourceID string, status int) {
	if h.idem == nil || middleware.IsDemo(c) {
		return
	}
	key, has := middleware.GetIdempotencyKey(c)
	if !has {
		return
	}
	if err := h.idem.Save(c.Request.Context(), userID(c), middleware.IdempotencyScope(c), key, resourceID, status); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("key", key).Msg("idempotency record not saved")
	}
}
