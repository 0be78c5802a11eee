// Opportunity HTTP handlers.
//
// This file exposes the roadmap:
//   - GET  /opportunities
//   - GET  /opportunities/board          (fixed status columns)
//   - POST /opportunities                (always lands in backlog)
//   - POST /opportunities/from-topic
//   - PUT  /opportunities/{id}
//   - GET  /opportunities/{id}/sources   (insight → feedback provenance)
//   - GET  /opportunities/{id}/issue-url (prefilled issue tracker link)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// CreateOpportunityRequest is the payload of a new opportunity.
type CreateOpportunityRequest struct {
	Title       string `json:"title" binding:"required,max=255" example:"Simplificar checkout"`
	Description string `json:"description,omitempty"`
	TribeID     string `json:"tribe_id,omitempty"`
	SquadID     string `json:"squad_id,omitempty"`
}

// UpdateOpportunityRequest replaces every editable field. An empty status
// keeps the current column.
type UpdateOpportunityRequest struct {
	Title       string `json:"title" binding:"required,max=255" example:"Simplificar checkout"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" binding:"omitempty,opportunity_status" example:"em_andamento"`
	TribeID     string `json:"tribe_id,omitempty"`
	SquadID     string `json:"squad_id,omitempty"`
}

// FromTopicRequest names the topic an opportunity is created from.
type FromTopicRequest struct {
	Topic string `json:"topic" binding:"required,max=255" example:"Lentidão no app"`
}

// IssueURLResponse carries the prefilled issue tracker link.
type IssueURLResponse struct {
	URL string `json:"url" example:"https://acme.atlassian.net/secure/CreateIssue.jspa?issuetype=10000&summary=Simplificar+checkout"`
}

// ListOpportunities godoc
// @ID          listOpportunities
// @Summary     List opportunities
// @Tags        Opportunities
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {array}   domain.OpportunityView
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities [get]
func (h *Handlers) ListOpportunities(c *gin.Context) {
	rows, err := h.svc(c).Opportunities.List(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.OpportunityView{}
	}
	ok(c, http.StatusOK, rows)
}

// OpportunityBoard godoc
// @ID          opportunityBoard
// @Summary     Roadmap board
// @Description Opportunities grouped into backlog, próximo, em_andamento and concluído. All four columns are always present.
// @Tags        Opportunities
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {object}  domain.Board
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities/board [get]
func (h *Handlers) OpportunityBoard(c *gin.Context) {
	b, err := h.svc(c).Opportunities.Board(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, b)
}

// CreateOpportunity godoc
// @ID          createOpportunity
// @Summary     Create an opportunity
// @Tags        Opportunities
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.CreateOpportunityRequest true "Opportunity"
// @Success     201  {object}  domain.Opportunity
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload or tribe/squad"
// @Failure     404  {object}  handlers.ErrorResponse "Tribe or squad not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities [post]
func (h *Handlers) CreateOpportunity(c *gin.Context) {
	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "title required (1–255 chars)")
		return
	}
	op, err := h.svc(c).Opportunities.Create(c.Request.Context(), userID(c), domain.OpportunityInput{
		Title:       req.Title,
		Description: req.Description,
		OrgRef:      domain.OrgRef{TribeID: req.TribeID, SquadID: req.SquadID},
	})
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, op)
}

// CreateOpportunityFromTopic godoc
// @ID          createOpportunityFromTopic
// @Summary     Create an opportunity from a topic
// @Tags        Opportunities
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.FromTopicRequest true "Topic"
// @Success     201  {object}  domain.Opportunity
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities/from-topic [post]
func (h *Handlers) CreateOpportunityFromTopic(c *gin.Context) {
	var req FromTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "topic required")
		return
	}
	op, err := h.svc(c).Opportunities.CreateFromTopic(c.Request.Context(), userID(c), req.Topic)
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, op)
}

// UpdateOpportunity godoc
// @ID          updateOpportunity
// @Summary     Update an opportunity
// @Description Full-field update. The squad must belong to the selected tribe; clearing the tribe clears the squad.
// @Tags        Opportunities
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"         example(user123)
// @Param       id         path    string  true  "Opportunity ID"
// @Param       body       body    handlers.UpdateOpportunityRequest true "Fields"
// @Success     200  {object}  domain.Opportunity
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload, status or tribe/squad"
// @Failure     404  {object}  handlers.ErrorResponse "Opportunity, tribe or squad not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{id} [put]
func (h *Handlers) UpdateOpportunity(c *gin.Context) {
	var req UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "title required; status must be a board column")
		return
	}
	op, err := h.svc(c).Opportunities.Update(c.Request.Context(), userID(c), c.Param("id"), domain.OpportunityInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		OrgRef:      domain.OrgRef{TribeID: req.TribeID, SquadID: req.SquadID},
	})
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, op)
}

// OpportunitySources godoc
// @ID          opportunitySources
// @Summary     Provenance of an opportunity
// @Description Insights that produced the opportunity, each with its source feedback.
// @Tags        Opportunities
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"         example(user123)
// @Param       id         path    string  true  "Opportunity ID"
// @Success     200  {array}   domain.InsightSource
// @Failure     404  {object}  handlers.ErrorResponse "Opportunity not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{id}/sources [get]
func (h *Handlers) OpportunitySources(c *gin.Context) {
	src, err := h.svc(c).Opportunities.Sources(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	if src == nil {
		src = []domain.InsightSource{}
	}
	ok(c, http.StatusOK, src)
}

// OpportunityIssueURL godoc
// @ID          opportunityIssueURL
// @Summary     Prefilled issue tracker link
// @Description Builds a create-issue URL for the opportunity. Nothing is stored.
// @Tags        Opportunities
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"         example(user123)
// @Param       id         path    string  true  "Opportunity ID"
// @Success     200  {object}  handlers.IssueURLResponse
// @Failure     404  {object}  handlers.ErrorResponse "Opportunity not found"
// @Failure     409  {object}  handlers.ErrorResponse "Issue tracker not configured"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{id}/issue-url [get]
func (h *Handlers) OpportunityIssueURL(c *gin.Context) {
	u, err := h.svc(c).Opportunities.IssueURL(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, IssueURLResponse{URL: u})
}
