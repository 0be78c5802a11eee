package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo/repotest"
)

func TestCreateFeedback_AssignsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	fb := &domain.Feedback{UserID: "u1", Title: "Bug no checkout"}
	if err := CreateFeedback(ctx, db, fb); err != nil {
		t.Fatalf("create: %v", err)
	}
	if fb.ID == "" || fb.CreatedAt.IsZero() || !fb.UpdatedAt.Equal(fb.CreatedAt) {
		t.Fatalf("expected id and timestamps, got %+v", fb)
	}

	got, err := GetFeedback(ctx, db, fb.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Source != domain.SourceManual || got.Status != "new" {
		t.Fatalf("defaults not applied: %+v", got)
	}

	if _, err := GetFeedback(ctx, db, fb.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestCreateFeedback_NoTable(t *testing.T) {
	db := repotest.Open(t)
	if err := CreateFeedback(context.Background(), db, &domain.Feedback{UserID: "u1", Title: "x"}); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestListFeedbacksPage_OrderSourceAndLike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mk := func(id, src string, off time.Duration, tags ...string) {
		fb := &domain.Feedback{ID: id, UserID: "u1", Source: src, Title: id, CreatedAt: base.Add(off)}
		if len(tags) > 0 {
			fb.Analysis = &domain.FeedbackAnalysis{Sentiment: domain.SentimentNegative, Tags: tags}
		}
		if err := CreateFeedback(ctx, db, fb); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	mk("a", domain.SourceManual, 1*time.Hour, "pagamento")
	mk("b", domain.SourceJira, 2*time.Hour, "ux")
	mk("c", domain.SourceManual, 3*time.Hour)
	mk("d", domain.SourceManual, 3*time.Hour, "Pagamento-Cartao")

	all, err := ListFeedbacksPage(ctx, db, "u1", FeedbackFilter{Source: "all"}, 0, -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// created_at DESC, id DESC on ties.
	want := []string{"d", "c", "b", "a"}
	if len(all) != len(want) {
		t.Fatalf("got %d rows; want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("row %d = %s; want %s", i, all[i].ID, id)
		}
	}

	n, err := CountFeedbacks(ctx, db, "u1", FeedbackFilter{Source: domain.SourceManual})
	if err != nil || n != 3 {
		t.Fatalf("count manual = %d, %v; want 3", n, err)
	}

	page, err := ListFeedbacksPage(ctx, db, "u1", FeedbackFilter{Source: domain.SourceManual}, 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != "c" {
		t.Fatalf("offset page = %+v, %v", page, err)
	}

	liked, err := ListFeedbacksPage(ctx, db, "u1", FeedbackFilter{AnalysisLike: "PAGAMENTO"}, 0, -1)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if len(liked) != 2 || liked[0].ID != "d" || liked[1].ID != "a" {
		t.Fatalf("like rows = %+v", liked)
	}
}

func TestListFeedbacksSince_And_CountPerTitle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, off := range []time.Duration{-time.Hour, -2 * time.Hour, -40 * 24 * time.Hour} {
		fb := &domain.Feedback{UserID: "u1", Title: "Bug no checkout", CreatedAt: now.Add(off)}
		if err := CreateFeedback(ctx, db, fb); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	if err := CreateFeedback(ctx, db, &domain.Feedback{UserID: "u1", Title: "Outro", CreatedAt: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	since := now.Add(-30 * 24 * time.Hour)
	rows, err := ListFeedbacksSince(ctx, db, "u1", since, 0)
	if err != nil || len(rows) != 3 {
		t.Fatalf("since rows = %d, %v; want 3", len(rows), err)
	}
	if rows[0].Title != "Outro" {
		t.Fatalf("expected most recent first, got %q", rows[0].Title)
	}

	n, err := CountFeedbacksByTitle(ctx, db, "u1", "Bug no checkout", since, now.Add(time.Second))
	if err != nil || n != 2 {
		t.Fatalf("count by title = %d, %v; want 2", n, err)
	}

	per, err := CountFeedbacksPerTitle(ctx, db, "u1", since.Add(-30*24*time.Hour), since)
	if err != nil {
		t.Fatalf("per title: %v", err)
	}
	if per["Bug no checkout"] != 1 || len(per) != 1 {
		t.Fatalf("previous window counts = %v", per)
	}
}

func TestUnanalyzed_And_MarkAnalyzed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, id := range []string{"f1", "f2"} {
		if err := CreateFeedback(ctx, db, &domain.Feedback{ID: id, UserID: "u1", Title: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rows, err := ListUnanalyzedFeedbacks(ctx, db, "u1", 10)
	if err != nil || len(rows) != 2 || rows[0].ID != "f1" {
		t.Fatalf("unanalyzed = %+v, %v", rows, err)
	}

	a := &domain.FeedbackAnalysis{Sentiment: domain.SentimentPositive, Summary: "ok", Tags: []string{"ux"}}
	if err := MarkFeedbackAnalyzed(ctx, db, "f1", "u1", a); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := MarkFeedbackAnalyzed(ctx, db, "nope", "u1", a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := GetFeedback(ctx, db, "f1", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsTopicAnalyzed || got.Analysis == nil || got.Analysis.Tags[0] != "ux" {
		t.Fatalf("analysis not stored: %+v", got)
	}

	rows, _ = ListUnanalyzedFeedbacks(ctx, db, "u1", 10)
	if len(rows) != 1 || rows[0].ID != "f2" {
		t.Fatalf("after mark: %+v", rows)
	}

	byIDs, err := ListFeedbacksByIDs(ctx, db, "u1", []string{"f1", "f2", "foreign"})
	if err != nil || len(byIDs) != 2 {
		t.Fatalf("by ids = %d, %v", len(byIDs), err)
	}
	empty, err := ListFeedbacksByIDs(ctx, db, "u1", nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids = %v, %v", empty, err)
	}
}

func TestListFeedbacksPage_AnalysisLikeIsLiteral(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for id, tag := range map[string]string{"a": "dark_mode", "b": "darkXmode", "c": "100%", "d": "1000", "e": `C:\path`} {
		fb := &domain.Feedback{ID: id, UserID: "u1", Title: id, Analysis: &domain.FeedbackAnalysis{Sentiment: "neutral", Tags: []string{tag}}}
		if err := CreateFeedback(ctx, db, fb); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	for needle, want := range map[string]string{"dark_mode": "a", "100%": "c"} {
		rows, err := ListFeedbacksPage(ctx, db, "u1", FeedbackFilter{AnalysisLike: needle}, 0, -1)
		if err != nil {
			t.Fatalf("%s: %v", needle, err)
		}
		if len(rows) != 1 || rows[0].ID != want {
			t.Fatalf("%s matched %d rows, want only %s", needle, len(rows), want)
		}
	}

	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("escapeLike = %q", got)
	}
}
