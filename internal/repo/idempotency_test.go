package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo/repotest"
)

func TestLiveIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now().UTC()
	create := IdempotencyKey{UserID: "u1", Scope: "POST /api/v1/feedbacks", Key: "k1"}

	if ok, err := RecordIdempotency(ctx, db, create, "f1", 201, now.Add(time.Hour)); err != nil || !ok {
		t.Fatalf("record: ok=%v err=%v", ok, err)
	}
	stale := IdempotencyKey{UserID: "u1", Scope: create.Scope, Key: "stale"}
	if _, err := RecordIdempotency(ctx, db, stale, "f0", 201, now.Add(-time.Minute)); err != nil {
		t.Fatalf("record stale: %v", err)
	}

	rec, err := LiveIdempotency(ctx, db, create, now)
	if err != nil || rec.ResourceID != "f1" || rec.Status != 201 {
		t.Fatalf("live = %+v, %v", rec, err)
	}

	misses := map[string]IdempotencyKey{
		"blank scope": {UserID: "u1", Scope: "  ", Key: "k1"},
		"blank key":   {UserID: "u1", Scope: create.Scope},
		"expired":     stale,
		"other user":  {UserID: "u2", Scope: create.Scope, Key: "k1"},
		"other scope": {UserID: "u1", Scope: "POST /api/v1/tribes", Key: "k1"},
	}
	for name, k := range misses {
		if rec, err := LiveIdempotency(ctx, db, k, now); rec != nil || err != ErrNotFound {
			t.Errorf("%s: (%v, %v), want ErrNotFound", name, rec, err)
		}
	}
}

func TestRecordIdempotency_FirstOutcomeWins(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	k := IdempotencyKey{UserID: "u1", Scope: "POST /api/v1/insights/i1/convert", Key: "k1"}
	exp := time.Now().Add(time.Hour)

	if ok, _ := RecordIdempotency(ctx, db, k, "o1", 201, exp); !ok {
		t.Fatal("first record rejected")
	}
	ok, err := RecordIdempotency(ctx, db, k, "o2", 201, exp)
	if err != nil || ok {
		t.Fatalf("second record: ok=%v err=%v", ok, err)
	}
	rec, _ := LiveIdempotency(ctx, db, k, time.Now())
	if rec == nil || rec.ResourceID != "o1" {
		t.Fatalf("stored = %+v", rec)
	}
}

func TestRecordIdempotency_NoTable(t *testing.T) {
	k := IdempotencyKey{UserID: "u1", Scope: "POST /x", Key: "k"}
	if _, err := RecordIdempotency(context.Background(), repotest.Open(t), k, "f1", 201, time.Now()); err == nil {
		t.Fatal("expected error without table")
	}
}

func TestPurgeIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now()
	for key, exp := range map[string]time.Time{"old": now.Add(-time.Minute), "older": now.Add(-time.Hour), "new": now.Add(time.Hour)} {
		if _, err := RecordIdempotency(ctx, db, IdempotencyKey{UserID: "u1", Scope: "POST /x", Key: key}, "r", 201, exp); err != nil {
			t.Fatal(err)
		}
	}
	n, err := PurgeIdempotency(ctx, db, now)
	if err != nil || n != 2 {
		t.Fatalf("purged %d, err=%v", n, err)
	}
}
