// Settings HTTP handlers: per-user AI configuration and profile
// administration.
//
//   - GET|PUT /ai-config
//   - GET     /users
//   - PUT     /users/{id}
//   - DELETE  /users/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// AIConfigRequest stores the caller's AI provider. An empty api_key keeps
// the stored key.
type AIConfigRequest struct {
	Provider string `json:"provider" binding:"required,oneof=openai google claude deepseek" example:"openai"`
	Model    string `json:"model,omitempty" binding:"max=128" example:"gpt-4o-mini"`
	APIKey   string `json:"api_key,omitempty" binding:"max=512"`
}

// ProfileRequest is the editable part of a profile.
type ProfileRequest struct {
	Email     string `json:"email,omitempty" binding:"omitempty,email,max=255" example:"ana@example.com"`
	FullName  string `json:"full_name,omitempty" binding:"max=255" example:"Ana Souza"`
	AvatarURL string `json:"avatar_url,omitempty" binding:"omitempty,url,max=512"`
}

// GetAIConfig godoc
// @ID          getAIConfig
// @Summary     Current AI configuration
// @Description The API key is never returned; has_api_key tells whether one is stored.
// @Tags        Settings
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {object}  domain.AIConfiguration
// @Failure     404  {object}  handlers.ErrorResponse "No configuration"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /ai-config [get]
func (h *Handlers) GetAIConfig(c *gin.Context) {
	cfg, err := h.svc(c).AIConfig.Get(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cfg)
}

// SaveAIConfig godoc
// @ID          saveAIConfig
// @Summary     Store AI configuration
// @Tags        Settings
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.AIConfigRequest true "Provider settings"
// @Success     200  {object}  domain.AIConfiguration
// @Failure     400  {object}  handlers.ErrorResponse "Invalid provider"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /ai-config [put]
func (h *Handlers) SaveAIConfig(c *gin.Context) {
	var req AIConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "provider must be one of openai, google, claude, deepseek")
		return
	}
	cfg, err := h.svc(c).AIConfig.Save(c.Request.Context(), userID(c), domain.AIConfigInput{
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cfg)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List profiles
// @Tags        Users
// @Produce     json
// @Success     200  {array}   domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	rows, err := h.svc(c).Users.List(c.Request.Context())
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.Profile{}
	}
	ok(c, http.StatusOK, rows)
}

// UpsertUser godoc
// @ID          upsertUser
// @Summary     Create or update a profile
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "User ID"
// @Param       body  body  handlers.ProfileRequest true "Profile"
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [put]
func (h *Handlers) UpsertUser(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err, "invalid profile")
		return
	}
	p, err := h.svc(c).Users.Upsert(c.Request.Context(), c.Param("id"), domain.Profile{
		Email:     &req.Email,
		FullName:  &req.FullName,
		AvatarURL: &req.AvatarURL,
	})
	if err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete a profile
// @Tags        Users
// @Param       id  path  string  true  "User ID"
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.svc(c).Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
