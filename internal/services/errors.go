// Package services defines the business logic for feedback, insights,
// opportunities, the organizational taxonomy and the aggregation functions.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/repo"
)

// Not-found errors.
var (
	ErrFeedbackNotFound    = errors.New("feedback not found")
	ErrInsightNotFound     = errors.New("insight not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrTribeNotFound       = errors.New("tribe not found")
	ErrSquadNotFound       = errors.New("squad not found")
	ErrUserNotFound        = errors.New("user not found")
)

// Validation errors.
var (
	// ErrEmptyTitle is returned when a feedback or opportunity has no title.
	ErrEmptyTitle = errors.New("title is required")

	// ErrEmptyName is returned when a tribe or squad has no name.
	ErrEmptyName = errors.New("name is required")

	// ErrInvalidStatus is returned for an opportunity status outside the
	// four board columns.
	ErrInvalidStatus = errors.New("invalid opportunity status")

	// ErrInvalidPriority is returned for a feedback priority outside low,
	// medium and high.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrSquadWithoutTribe is returned when a squad is chosen with no tribe.
	ErrSquadWithoutTribe = errors.New("a squad requires a tribe")

	// ErrSquadTribeMismatch is returned when the squad belongs to another tribe.
	ErrSquadTribeMismatch = errors.New("squad does not belong to the selected tribe")

	// ErrEmptySelection is returned when generate-insight-from-selection
	// receives no usable feedback ids.
	ErrEmptySelection = errors.New("no feedback selected")

	// ErrInvalidProvider is returned for an unsupported AI provider.
	ErrInvalidProvider = errors.New("invalid AI provider")
)

// State and conflict errors.
var (
	// ErrInsightNotActive is returned when a tag edit or transition targets a
	// rejected or converted insight.
	ErrInsightNotActive = errors.New("insight is not active")

	// ErrTribeInUse is returned when deleting a tribe that still has squads
	// or opportunities.
	ErrTribeInUse = errors.New("tribe still has squads or opportunities")

	// ErrPartialConversion is returned when an opportunity was created but
	// the insight could not be marked converted and the opportunity had to be
	// removed again.
	ErrPartialConversion = errors.New("conversion partially failed; opportunity was rolled back")
)

// Function and integration errors.
var (
	// ErrAIConfigMissing is returned when neither the user nor the server has
	// an AI provider configured.
	ErrAIConfigMissing = errors.New("AI configuration not found")

	// ErrForbiddenUser is returned when a function is invoked for another user.
	ErrForbiddenUser = errors.New("cannot run functions for another user")

	// ErrIssueTrackerDisabled is returned when no issue tracker URL is known.
	ErrIssueTrackerDisabled = errors.New("issue tracker not configured")
)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// mapNotFound returns target when err is a not-found error, err otherwise.
func mapNotFound(err, target error) error {
	if err != nil && isNotFound(err) {
		return target
	}
	return err
}
