package repo

import (
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/repo/repotest"
)

// newTestDB migrates every model unless explicit ones are given.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	if len(migrate) == 0 {
		migrate = Models()
	}
	return repotest.Open(t, migrate...)
}

func strptr(s string) *string { return &s }
