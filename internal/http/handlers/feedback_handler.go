// Feedback HTTP handlers.
//
// This file exposes the feedback endpoints:
//   - GET  /feedbacks       (report page, ETag support)
//   - POST /feedbacks       (manual entry, Idempotency-Key support)
//   - GET  /feedbacks/{id}
//   - GET  /latest-items    (title counters)
package handlers

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// CreateFeedbackRequest is the JSON payload of a manual feedback entry.
type CreateFeedbackRequest struct {
	Title           string     `json:"title" binding:"required,max=255" example:"Bug no checkout"`
	Description     string     `json:"description,omitempty" example:"Pagamento falha ao aplicar cupom"`
	Priority        string     `json:"priority,omitempty" binding:"omitempty,oneof=low medium high" example:"high"`
	Tags            []string   `json:"tags,omitempty" binding:"max=20,dive,max=64"`
	CustomerName    string     `json:"customer_name,omitempty" binding:"max=255" example:"ACME Ltda"`
	IntervieweeName string     `json:"interviewee_name,omitempty" binding:"max=255"`
	ConversationAt  *time.Time `json:"conversation_at,omitempty"`
}

// ReportQuery is the query string of the feedback report.
type ReportQuery struct {
	Source string `form:"source" binding:"omitempty,feedback_source" example:"intercom"`
	Tag    string `form:"tag" binding:"max=64" example:"checkout"`
	Page   int    `form:"page" binding:"omitempty,min=1" example:"1"`
}

// FeedbackReport godoc
// @ID          feedbackReport
// @Summary     Feedback report (paginated)
// @Description Returns one page (10 rows) of the user's feedback, newest first, filtered by source and analysis tag. Supports weak ETag via If-None-Match.
// @Tags        Feedback
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID"                     example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"fb-1a2b3c\")
// @Param       source         query   string  false "Source filter or all"        example(intercom)
// @Param       tag            query   string  false "Case-insensitive tag substring" example(checkout)
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
//
// @Success     200  {object}  report.Page[domain.Feedback]
// @Header      200  {string}  ETag  "Weak ETag for current page"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid filter"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /feedbacks [get]
func (h *Handlers) FeedbackReport(c *gin.Context) {
	var rq ReportQuery
	if err := c.ShouldBindQuery(&rq); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid report filter")
		return
	}
	q := report.Query{Source: rq.Source, Tag: rq.Tag, Page: rq.Page}.Normalize()

	uid := userID(c)
	page, err := h.svc(c).Feedback.Report(c.Request.Context(), uid, q)
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}

	etag := reportETag(uid, q, page)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}
	ok(c, http.StatusOK, page)
}

// reportETag fingerprints the filter and the rows of a page.
func reportETag(uid string, q report.Query, p report.Page[domain.Feedback]) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d", uid, q.Source, strings.ToLower(q.Tag), q.Page, p.Total)
	for _, fb := range p.Items {
		fmt.Fprintf(h, "|%s:%d", fb.ID, fb.UpdatedAt.UnixNano())
	}
	return fmt.Sprintf(`W/"fb-%x"`, h.Sum64())
}

// CreateFeedback godoc
// @ID          createFeedback
// @Summary     Submit manual feedback
// @Description Records a manual feedback entry and bumps the LatestItem counter for its title in the same transaction. A repeated Idempotency-Key returns the original entry.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID"          example(user123)
// @Param       Idempotency-Key  header  string  false "Replay protection" example(fb-20240101-1)
// @Param       body             body    handlers.CreateFeedbackRequest true "Feedback payload"
//
// @Success     201  {object}  domain.Feedback
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /feedbacks [post]
func (h *Handlers) CreateFeedback(c *gin.Context) {
	svc := h.svc(c).Feedback
	uid := userID(c)
	if h.replay(c, func(id string) (any, error) { return svc.Get(c.Request.Context(), uid, id) }) {
		return
	}

	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		badBody(c, err, "title required (1–255 chars)")
		return
	}

	fb, err := svc.Create(c.Request.Context(), uid, domain.FeedbackInput{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		Tags:            req.Tags,
		CustomerName:    req.CustomerName,
		IntervieweeName: req.IntervieweeName,
		ConversationAt:  req.ConversationAt,
	})
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	h.remember(c, fb.ID, http.StatusCreated)
	ok(c, http.StatusCreated, fb)
}

// GetFeedback godoc
// @ID          getFeedback
// @Summary     Get one feedback entry
// @Tags        Feedback
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"     example(user123)
// @Param       id         path    string  true  "Feedback ID"
// @Success     200  {object}  domain.Feedback
// @Failure     404  {object}  handlers.ErrorResponse "Feedback not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /feedbacks/{id} [get]
func (h *Handlers) GetFeedback(c *gin.Context) {
	fb, err := h.svc(c).Feedback.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, fb)
}

// ListLatestItems godoc
// @ID          listLatestItems
// @Summary     Latest feedback items
// @Description Returns the per-title counters ordered by count.
// @Tags        Feedback
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {array}   domain.LatestItem
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /latest-items [get]
func (h *Handlers) ListLatestItems(c *gin.Context) {
	items, err := h.svc(c).Feedback.LatestItems(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.LatestItem{}
	}
	ok(c, http.StatusOK, items)
}
