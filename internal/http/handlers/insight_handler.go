// Insight HTTP handlers.
//
// This file exposes the insight lifecycle:
//   - GET    /insights               (active insights with provenance)
//   - POST   /insights               (save a reviewed draft)
//   - GET    /insights/topics        (active insights as topic cards)
//   - PUT    /insights/{id}/tags     (replace tags of an active insight)
//   - POST   /insights/{id}/reject
//   - POST   /insights/{id}/convert  (Idempotency-Key support)
//   - DELETE /insights/{id}
//
// Rejected and converted insights are terminal; edits and transitions on
// them answer 409 insight_not_active.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/services"
	"github.com/tbourn/feedback-hub/internal/utils"
)

// SaveInsightRequest is a reviewed insight draft.
type SaveInsightRequest struct {
	Type        string   `json:"type" binding:"omitempty,oneof=trend alert opportunity other" example:"alert"`
	Severity    string   `json:"severity" binding:"omitempty,oneof=info warning success error" example:"error"`
	Title       string   `json:"title" binding:"max=255" example:"Falhas no checkout"`
	Description string   `json:"description" example:"Clientes relatam erro ao pagar"`
	Action      string   `json:"action,omitempty" example:"Revisar integração de pagamento"`
	Tags        []string `json:"tags" binding:"max=20"`
	FeedbackIDs []string `json:"feedback_ids,omitempty" binding:"max=100"`
}

// UpdateTagsRequest carries a comma-separated tag list.
type UpdateTagsRequest struct {
	Tags string `json:"tags" example:"checkout, pagamento"`
}

// ListInsights godoc
// @ID          listInsights
// @Summary     List active insights
// @Description Returns active insights, newest first, each with the feedback rows it was derived from.
// @Tags        Insights
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"                   example(user123)
// @Param       limit      query   int     false "Maximum rows (0 = all)"    minimum(0) example(10)
// @Param       window     query   string  false "lastMonth (default) or all" Enums(lastMonth, all)
// @Success     200  {array}   domain.InsightView
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights [get]
func (h *Handlers) ListInsights(c *gin.Context) {
	limit := utils.Count(c.Query("limit"), 0)
	window := c.DefaultQuery("window", services.WindowLastMonth)
	if window != services.WindowAll {
		window = services.WindowLastMonth
	}
	rows, err := h.svc(c).Insights.ListActive(c.Request.Context(), userID(c), limit, window)
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.InsightView{}
	}
	ok(c, http.StatusOK, rows)
}

// SaveInsight godoc
// @ID          saveInsight
// @Summary     Save a reviewed draft
// @Description Persists a reviewed draft (typically from generate-insight-from-selection) as a new active insight.
// @Tags        Insights
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.SaveInsightRequest true "Draft"
// @Success     201  {object}  domain.Insight
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights [post]
func (h *Handlers) SaveInsight(c *gin.Context) {
	var req SaveInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "invalid insight draft")
		return
	}
	in, err := h.svc(c).Insights.SaveDraft(c.Request.Context(), userID(c), domain.InsightDraft{
		Type:        req.Type,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		Action:      req.Action,
		Tags:        req.Tags,
		FeedbackIDs: req.FeedbackIDs,
	})
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, in)
}

// ListInsightTopics godoc
// @ID          listInsightTopics
// @Summary     Insights as discussion topics
// @Tags        Insights
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {array}   domain.Topic
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights/topics [get]
func (h *Handlers) ListInsightTopics(c *gin.Context) {
	topics, err := h.svc(c).Insights.Topics(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if topics == nil {
		topics = []domain.Topic{}
	}
	ok(c, http.StatusOK, topics)
}

// UpdateInsightTags godoc
// @ID          updateInsightTags
// @Summary     Replace insight tags
// @Description Splits the comma-separated list, trims, drops empties and replaces the tag set. Only active insights can be edited.
// @Tags        Insights
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"     example(user123)
// @Param       id         path    string  true  "Insight ID"
// @Param       body       body    handlers.UpdateTagsRequest true "Tags"
// @Success     200  {object}  domain.Insight
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object}  handlers.ErrorResponse "Insight not found"
// @Failure     409  {object}  handlers.ErrorResponse "Insight not active"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights/{id}/tags [put]
func (h *Handlers) UpdateInsightTags(c *gin.Context) {
	var req UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "invalid JSON body")
		return
	}
	in, err := h.svc(c).Insights.UpdateTags(c.Request.Context(), userID(c), c.Param("id"), req.Tags)
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, in)
}

// RejectInsight godoc
// @ID          rejectInsight
// @Summary     Reject an insight
// @Tags        Insights
// @Param       X-User-ID  header  string  false "User ID"     example(user123)
// @Param       id         path    string  true  "Insight ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Insight not found"
// @Failure     409  {object}  handlers.ErrorResponse "Insight not active"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights/{id}/reject [post]
func (h *Handlers) RejectInsight(c *gin.Context) {
	if err := h.svc(c).Insights.Reject(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ConvertInsight godoc
// @ID          convertInsight
// @Summary     Convert an insight into an opportunity
// @Description Creates a backlog opportunity from an active insight, links them and marks the insight converted, atomically. A repeated Idempotency-Key returns the original opportunity.
// @Tags        Insights
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "User ID"          example(user123)
// @Param       Idempotency-Key  header  string  false "Replay protection"
// @Param       id               path    string  true  "Insight ID"
// @Param       body             body    domain.OrgRef false "Optional tribe and squad"
// @Success     201  {object}  domain.Opportunity
// @Failure     400  {object}  handlers.ErrorResponse "Invalid tribe/squad"
// @Failure     404  {object}  handlers.ErrorResponse "Insight, tribe or squad not found"
// @Failure     409  {object}  handlers.ErrorResponse "Insight not active"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error or partial_failure"
// @Router      /insights/{id}/convert [post]
func (h *Handlers) ConvertInsight(c *gin.Context) {
	s := h.svc(c)
	uid := userID(c)
	if h.replay(c, func(id string) (any, error) { return s.Opportunities.Get(c.Request.Context(), uid, id) }) {
		return
	}

	var org domain.OrgRef
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&org); err != nil {
			badBody(c, err, "invalid JSON body")
			return
		}
	}
	op, err := s.Insights.Convert(c.Request.Context(), uid, c.Param("id"), org)
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	h.remember(c, op.ID, http.StatusCreated)
	ok(c, http.StatusCreated, op)
}

// DeleteInsight godoc
// @ID          deleteInsight
// @Summary     Delete an insight
// @Tags        Insights
// @Param       X-User-ID  header  string  false "User ID"     example(user123)
// @Param       id         path    string  true  "Insight ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Insight not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /insights/{id} [delete]
func (h *Handlers) DeleteInsight(c *gin.Context) {
	if err := h.svc(c).Insights.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
