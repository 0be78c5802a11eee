// Aggregation function HTTP handlers.
//
//   - POST /functions/generate-latest-items
//   - POST /functions/generate-insights
//   - POST /functions/analyze-topics
//   - POST /functions/generate-insight-from-selection
//   - GET  /topics    (stored topic analysis results)
//
// Every function runs for the authenticated user; a body user_id naming
// someone else is refused with 403. Any other failure answers 400
// function_failed and nothing is committed.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/http/middleware"
	"github.com/tbourn/feedback-hub/internal/services"
	"github.com/tbourn/feedback-hub/internal/utils"
)

// FunctionRequest is the body shared by every function.
type FunctionRequest struct {
	UserID      string   `json:"user_id,omitempty"`
	FeedbackIDs []string `json:"feedback_ids,omitempty" binding:"max=100"`
}

// LatestItemsResult is the generate-latest-items response.
type LatestItemsResult struct {
	Message        string `json:"message" example:"Últimos itens gerados com sucesso!"`
	ItemsGenerated int    `json:"items_generated" example:"12"`
}

// InsightsResult is the generate-insights response.
type InsightsResult struct {
	Message           string `json:"message"`
	InsightsGenerated int    `json:"insights_generated" example:"4"`
}

// TopicsResult is the analyze-topics response.
type TopicsResult struct {
	Message           string `json:"message"`
	FeedbacksAnalyzed int    `json:"feedbacks_analyzed" example:"37"`
	TopicsFound       int    `json:"topics_found" example:"5"`
}

// SelectionResult carries an unsaved draft for review.
type SelectionResult struct {
	Insight *domain.InsightDraft `json:"insight"`
}

// functionRequest binds the optional body and enforces that functions only
// run for the caller. It writes the error response and returns false when
// the request must stop.
func functionRequest(c *gin.Context) (FunctionRequest, bool) {
	var req FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badBody(c, err, "invalid JSON body")
		return req, false
	}
	uid := userID(c)
	if u := strings.TrimSpace(req.UserID); u != "" && u != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, services.ErrForbiddenUser.Error())
		return req, false
	}
	req.UserID = uid
	return req, true
}

func functionError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrForbiddenUser) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		return
	}
	middleware.LoggerFrom(c).Warn().Err(err).Str("function", c.FullPath()).Msg("function failed")
	fail(c, http.StatusBadRequest, ErrCodeFunctionFailed, err.Error())
}

// GenerateLatestItems godoc
// @ID          generateLatestItems
// @Summary     Rebuild latest items
// @Description Groups the last 30 days of feedback by title and replaces the user's LatestItems atomically.
// @Tags        Functions
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.FunctionRequest false "Optional user_id (must match caller)"
// @Success     200  {object}  handlers.LatestItemsResult
// @Failure     400  {object}  handlers.ErrorResponse "Function failed"
// @Failure     403  {object}  handlers.ErrorResponse "Another user's data"
// @Router      /functions/generate-latest-items [post]
func (h *Handlers) GenerateLatestItems(c *gin.Context) {
	req, proceed := functionRequest(c)
	if !proceed {
		return
	}
	n, err := h.svc(c).Functions.GenerateLatestItems(c.Request.Context(), req.UserID)
	if err != nil {
		functionError(c, err)
		return
	}
	ok(c, http.StatusOK, LatestItemsResult{Message: "Últimos itens gerados com sucesso!", ItemsGenerated: n})
}

// GenerateInsights godoc
// @ID          generateInsights
// @Summary     Generate insights with AI
// @Description Sends up to 100 recent feedback rows to the configured AI provider and stores the returned insights with their provenance.
// @Tags        Functions
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.FunctionRequest false "Optional user_id (must match caller)"
// @Success     200  {object}  handlers.InsightsResult
// @Failure     400  {object}  handlers.ErrorResponse "Function failed (e.g. AI configuration not found)"
// @Failure     403  {object}  handlers.ErrorResponse "Another user's data"
// @Router      /functions/generate-insights [post]
func (h *Handlers) GenerateInsights(c *gin.Context) {
	req, proceed := functionRequest(c)
	if !proceed {
		return
	}
	n, err := h.svc(c).Functions.GenerateInsights(c.Request.Context(), req.UserID)
	if err != nil {
		functionError(c, err)
		return
	}
	ok(c, http.StatusOK, InsightsResult{Message: "Insights gerados com sucesso!", InsightsGenerated: n})
}

// AnalyzeTopics godoc
// @ID          analyzeTopics
// @Summary     Analyze feedback topics with AI
// @Description Attaches sentiment/summary/tags to unanalyzed feedback and stores topic clusters.
// @Tags        Functions
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.FunctionRequest false "Optional user_id (must match caller)"
// @Success     200  {object}  handlers.TopicsResult
// @Failure     400  {object}  handlers.ErrorResponse "Function failed"
// @Failure     403  {object}  handlers.ErrorResponse "Another user's data"
// @Router      /functions/analyze-topics [post]
func (h *Handlers) AnalyzeTopics(c *gin.Context) {
	req, proceed := functionRequest(c)
	if !proceed {
		return
	}
	sum, err := h.svc(c).Functions.AnalyzeTopics(c.Request.Context(), req.UserID)
	if err != nil {
		functionError(c, err)
		return
	}
	ok(c, http.StatusOK, TopicsResult{
		Message:           "Análise de tópicos concluída!",
		FeedbacksAnalyzed: sum.FeedbacksAnalyzed,
		TopicsFound:       sum.TopicsFound,
	})
}

// GenerateInsightFromSelection godoc
// @ID          generateInsightFromSelection
// @Summary     Draft one insight from selected feedback
// @Description Returns a draft for review; nothing is stored. Save it with POST /insights.
// @Tags        Functions
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.FunctionRequest true "feedback_ids (non-empty, owned by caller)"
// @Success     200  {object}  handlers.SelectionResult
// @Failure     400  {object}  handlers.ErrorResponse "Function failed (empty or foreign selection)"
// @Failure     403  {object}  handlers.ErrorResponse "Another user's data"
// @Router      /functions/generate-insight-from-selection [post]
func (h *Handlers) GenerateInsightFromSelection(c *gin.Context) {
	req, proceed := functionRequest(c)
	if !proceed {
		return
	}
	d, err := h.svc(c).Functions.GenerateInsightFromSelection(c.Request.Context(), req.UserID, req.FeedbackIDs)
	if err != nil {
		functionError(c, err)
		return
	}
	ok(c, http.StatusOK, SelectionResult{Insight: d})
}

// ListTopicResults godoc
// @ID          listTopicResults
// @Summary     Topic analysis results
// @Tags        Functions
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"                 example(user123)
// @Param       limit      query   int     false "Maximum rows (0 = all)"  minimum(0)
// @Success     200  {array}   domain.TopicAnalysisResult
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /topics [get]
func (h *Handlers) ListTopicResults(c *gin.Context) {
	limit := utils.Count(c.Query("limit"), 0)
	rows, err := h.svc(c).Functions.TopicResults(c.Request.Context(), userID(c), limit)
	if err != nil {
		serviceError(c, err, ErrCodeListFailed)
		return
	}
	if rows == nil {
		rows = []domain.TopicAnalysisResult{}
	}
	ok(c, http.StatusOK, rows)
}
