package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
	"github.com/tbourn/feedback-hub/internal/repo/repotest"
)

// newTestDB opens a fresh in-memory database with every table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return repotest.Open(t, repo.Models()...)
}

// seedFeedback inserts one feedback row created at the given time.
func seedFeedback(t *testing.T, db *gorm.DB, userID, title string, at time.Time, tags ...string) *domain.Feedback {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	fb := &domain.Feedback{
		UserID:    userID,
		Source:    domain.SourceManual,
		Status:    "new",
		Priority:  "medium",
		Title:     title,
		Tags:      datatypes.JSONSlice[string](tags),
		CreatedAt: at.UTC(),
	}
	if err := repo.CreateFeedback(context.Background(), db, fb); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}
	return fb
}

// seedInsight inserts an active insight.
func seedInsight(t *testing.T, db *gorm.DB, userID, title string) *domain.Insight {
	t.Helper()
	in := insightFromDraft(userID, normalizeDraft(domain.InsightDraft{Title: title, Description: "d"}), time.Now().UTC())
	if err := repo.CreateInsight(context.Background(), db, in); err != nil {
		t.Fatalf("seed insight: %v", err)
	}
	return in
}

func seedTribe(t *testing.T, db *gorm.DB, userID, name string) *domain.Tribe {
	t.Helper()
	tr := &domain.Tribe{UserID: userID, Name: name}
	if err := repo.CreateTribe(context.Background(), db, tr); err != nil {
		t.Fatalf("seed tribe: %v", err)
	}
	return tr
}

func seedSquad(t *testing.T, db *gorm.DB, userID, tribeID, name string, board *string) *domain.Squad {
	t.Helper()
	sq := &domain.Squad{UserID: userID, TribeID: tribeID, Name: name, JiraBoardURL: board}
	if err := repo.CreateSquad(context.Background(), db, sq); err != nil {
		t.Fatalf("seed squad: %v", err)
	}
	return sq
}

func strptr(s string) *string { return &s }
