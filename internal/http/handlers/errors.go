package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/services"
)

// Error codes sent in the "code" field of every error envelope. Clients
// branch on these; the message is for humans and may change.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation       = "validation_failed"
	ErrCodeInsightNotActive = "insight_not_active"
	ErrCodeTribeInUse       = "tribe_in_use"
	ErrCodePartialFailure   = "partial_failure"
	ErrCodeFunctionFailed   = "function_failed"
	ErrCodeIssueTrackerOff  = "issue_tracker_disabled"
	ErrCodeAIConfigMissing  = "ai_config_missing"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeBodyTooLarge     = "body_too_large"
)

var notFoundErrs = []error{
	services.ErrFeedbackNotFound,
	services.ErrInsightNotFound,
	services.ErrOpportunityNotFound,
	services.ErrTribeNotFound,
	services.ErrSquadNotFound,
	services.ErrUserNotFound,
}

var validationErrs = []error{
	services.ErrEmptyTitle,
	services.ErrEmptyName,
	services.ErrInvalidStatus,
	services.ErrInvalidPriority,
	services.ErrSquadWithoutTribe,
	services.ErrSquadTribeMismatch,
	services.ErrEmptySelection,
	services.ErrInvalidProvider,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// serviceError maps a service error onto the error envelope. Errors without
// a dedicated mapping become 500 with fallbackCode.
func serviceError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case isAny(err, notFoundErrs):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case isAny(err, validationErrs):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrInsightNotActive):
		fail(c, http.StatusConflict, ErrCodeInsightNotActive, err.Error())
	case errors.Is(err, services.ErrTribeInUse):
		fail(c, http.StatusConflict, ErrCodeTribeInUse, err.Error())
	case errors.Is(err, services.ErrIssueTrackerDisabled):
		fail(c, http.StatusConflict, ErrCodeIssueTrackerOff, err.Error())
	case errors.Is(err, services.ErrAIConfigMissing):
		fail(c, http.StatusNotFound, ErrCodeAIConfigMissing, err.Error())
	case errors.Is(err, services.ErrForbiddenUser):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrPartialConversion):
		fail(c, http.StatusInternalServerError, ErrCodePartialFailure, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// badBody answers a request whose JSON body could not be bound. Bodies cut
// off by the router's size cap get 413 instead of msg.
func badBody(c *gin.Context, err error, msg string) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge, "request body too large")
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
}
