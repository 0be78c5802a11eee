package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
	"github.com/tbourn/feedback-hub/internal/services"
)

var validatorsOnce sync.Once

// registerValidators adds the domain tags used in binding:"..." rules:
//
//	opportunity_status  one of the four board columns
//	feedback_source     a known source, or "all" for report filters
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn().Msg("gin validator engine is not go-playground; custom tags disabled")
			return
		}
		_ = v.RegisterValidation("opportunity_status", func(fl validator.FieldLevel) bool {
			return services.IsOpportunityStatus(fl.Field().String())
		})
		_ = v.RegisterValidation("feedback_source", func(fl validator.FieldLevel) bool {
			return isFeedbackSource(fl.Field().String())
		})
	})
}

func isFeedbackSource(s string) bool {
	if s == report.AllSources {
		return true
	}
	for _, src := range domain.Sources {
		if s == src {
			return true
		}
	}
	return false
}
