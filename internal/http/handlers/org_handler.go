// Tribe and squad HTTP handlers.
//
//   - GET|POST   /tribes ; PUT|DELETE /tribes/{id}
//   - GET|POST   /squads ; PUT|DELETE /squads/{id}   (GET accepts ?tribe_id=)
//
// Deleting a tribe that still has squads or opportunities answers 409
// tribe_in_use. Deleting a squad clears it from opportunities and insights.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// TribeRequest is the payload of a tribe create or update.
type TribeRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"Growth"`
	Description string `json:"description,omitempty"`
}

// SquadRequest is the payload of a squad create or update.
type SquadRequest struct {
	TribeID      string `json:"tribe_id" binding:"required" example:"9f1c2a8e-4e0b-4d8e-9d7a-2f1e7b6c5a40"`
	Name         string `json:"name" binding:"required,max=255" example:"Checkout"`
	Description  string `json:"description,omitempty"`
	JiraBoardURL string `json:"jira_board_url,omitempty" binding:"omitempty,url,max=512" example:"https://acme.atlassian.net/jira/software/projects/CHK/boards/7"`
}

func (r TribeRequest) input() domain.TribeInput {
	return domain.TribeInput{Name: r.Name, Description: r.Description}
}

func (r SquadRequest) input() domain.SquadInput {
	return domain.SquadInput{TribeID: r.TribeID, Name: r.Name, Description: r.Description, JiraBoardURL: r.JiraBoardURL}
}

// ListTribes godoc
// @ID          listTribes
// @Summary     List tribes
// @Tags        Tribes
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {array}   domain.Tribe
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /tribes [get]
func (h *Handlers) ListTribes(c *gin.Context) {
	rows, err := h.svc(c).Tribes.ListTribes(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.Tribe{}
	}
	ok(c, http.StatusOK, rows)
}

// CreateTribe godoc
// @ID          createTribe
// @Summary     Create a tribe
// @Tags        Tribes
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.TribeRequest true "Tribe"
// @Success     201  {object}  domain.Tribe
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /tribes [post]
func (h *Handlers) CreateTribe(c *gin.Context) {
	var req TribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "name required (1–255 chars)")
		return
	}
	t, err := h.svc(c).Tribes.CreateTribe(c.Request.Context(), userID(c), req.input())
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, t)
}

// UpdateTribe godoc
// @ID          updateTribe
// @Summary     Update a tribe
// @Tags        Tribes
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"   example(user123)
// @Param       id         path    string  true  "Tribe ID"
// @Param       body       body    handlers.TribeRequest true "Tribe"
// @Success     200  {object}  domain.Tribe
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object}  handlers.ErrorResponse "Tribe not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /tribes/{id} [put]
func (h *Handlers) UpdateTribe(c *gin.Context) {
	var req TribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "name required (1–255 chars)")
		return
	}
	t, err := h.svc(c).Tribes.UpdateTribe(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTribe godoc
// @ID          deleteTribe
// @Summary     Delete a tribe
// @Tags        Tribes
// @Param       X-User-ID  header  string  false "User ID"   example(user123)
// @Param       id         path    string  true  "Tribe ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Tribe not found"
// @Failure     409  {object}  handlers.ErrorResponse "Tribe in use"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /tribes/{id} [delete]
func (h *Handlers) DeleteTribe(c *gin.Context) {
	if err := h.svc(c).Tribes.DeleteTribe(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListSquads godoc
// @ID          listSquads
// @Summary     List squads
// @Tags        Squads
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"          example(user123)
// @Param       tribe_id   query   string  false "Only this tribe"
// @Success     200  {array}   domain.Squad
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /squads [get]
func (h *Handlers) ListSquads(c *gin.Context) {
	rows, err := h.svc(c).Tribes.ListSquads(c.Request.Context(), userID(c), c.Query("tribe_id"))
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.Squad{}
	}
	ok(c, http.StatusOK, rows)
}

// CreateSquad godoc
// @ID          createSquad
// @Summary     Create a squad
// @Tags        Squads
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.SquadRequest true "Squad"
// @Success     201  {object}  domain.Squad
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object}  handlers.ErrorResponse "Tribe not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /squads [post]
func (h *Handlers) CreateSquad(c *gin.Context) {
	var req SquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "tribe_id and name required")
		return
	}
	sq, err := h.svc(c).Tribes.CreateSquad(c.Request.Context(), userID(c), req.input())
	if err != nil {
		serviceError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, sq)
}

// UpdateSquad godoc
// @ID          updateSquad
// @Summary     Update a squad
// @Tags        Squads
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"   example(user123)
// @Param       id         path    string  true  "Squad ID"
// @Param       body       body    handlers.SquadRequest true "Squad"
// @Success     200  {object}  domain.Squad
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object}  handlers.ErrorResponse "Squad or tribe not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /squads/{id} [put]
func (h *Handlers) UpdateSquad(c *gin.Context) {
	var req SquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "tribe_id and name required")
		return
	}
	sq, err := h.svc(c).Tribes.UpdateSquad(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, sq)
}

// DeleteSquad godoc
// @ID          deleteSquad
// @Summary     Delete a squad
// @Tags        Squads
// @Param       X-User-ID  header  string  false "User ID"   example(user123)
// @Param       id         path    string  true  "Squad ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Squad not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /squads/{id} [delete]
func (h *Handlers) DeleteSquad(c *gin.Context) {
	if err := h.svc(c).Tribes.DeleteSquad(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
