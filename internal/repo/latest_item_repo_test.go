package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
)

func TestIncrementLatestItem_UpsertCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := IncrementLatestItem(ctx, db, "u1", "Bug no checkout", "", nil); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	it, err := GetLatestItem(ctx, db, "u1", "Bug no checkout")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if it.Count != 3 || it.Sentiment != domain.SentimentNeutral {
		t.Fatalf("item = %+v", it)
	}

	var n int64
	db.Model(&domain.LatestItem{}).Where("user_id = ?", "u1").Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one row, got %d", n)
	}
}

func TestIncrementLatestItem_Concurrent_NoLostUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := IncrementLatestItem(ctx, db, "u1", "Same", "", nil); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	it, err := GetLatestItem(ctx, db, "u1", "Same")
	if err != nil || it.Count != 8 {
		t.Fatalf("count = %+v, %v; want 8", it, err)
	}
}

func TestReplaceLatestItems_InTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := IncrementLatestItem(ctx, db, "u1", "stale", "", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := IncrementLatestItem(ctx, db, "u2", "keep", "", nil); err != nil {
		t.Fatalf("seed other user: %v", err)
	}

	items := []domain.LatestItem{
		{Title: "A", Count: 5, Sentiment: domain.SentimentNegative, Keywords: []string{"x"}},
		{Title: "B", Count: 2, Sentiment: domain.SentimentPositive},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceLatestItems(ctx, tx, "u1", items)
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := ListLatestItems(ctx, db, "u1", 0)
	if err != nil || len(got) != 2 || got[0].Title != "A" || got[1].Title != "B" {
		t.Fatalf("items = %+v, %v", got, err)
	}
	if _, err := GetLatestItem(ctx, db, "u1", "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale item should be gone: %v", err)
	}
	if _, err := GetLatestItem(ctx, db, "u2", "keep"); err != nil {
		t.Fatalf("other user's item must survive: %v", err)
	}

	if err := SetLatestItemChange(ctx, db, "u1", "A", -25); err != nil {
		t.Fatalf("set change: %v", err)
	}
	a, _ := GetLatestItem(ctx, db, "u1", "A")
	if a.ChangePercentage != -25 {
		t.Fatalf("change = %d", a.ChangePercentage)
	}
}

func TestReplaceLatestItems_DuplicateTitleRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	items := []domain.LatestItem{{Title: "A", Count: 1}, {Title: "A", Count: 1}}
	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceLatestItems(ctx, tx, "u1", items)
	})
	if err == nil {
		t.Fatalf("expected unique violation")
	}
}
