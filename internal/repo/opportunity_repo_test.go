package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/domain"
)

func TestOpportunityViews_JoinNames(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tribe := &domain.Tribe{UserID: "u1", Name: "Pagamentos"}
	if err := CreateTribe(ctx, db, tribe); err != nil {
		t.Fatalf("tribe: %v", err)
	}
	squad := &domain.Squad{UserID: "u1", TribeID: tribe.ID, Name: "Checkout"}
	if err := CreateSquad(ctx, db, squad); err != nil {
		t.Fatalf("squad: %v", err)
	}

	now := time.Now().UTC()
	tagged := &domain.Opportunity{UserID: "u1", Title: "Tagged", TribeID: &tribe.ID, SquadID: &squad.ID, CreatedAt: now}
	plain := &domain.Opportunity{UserID: "u1", Title: "Plain", CreatedAt: now.Add(-time.Hour)}
	for _, op := range []*domain.Opportunity{tagged, plain} {
		if err := CreateOpportunity(ctx, db, op); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if tagged.Status != domain.StatusBacklog {
		t.Fatalf("default status = %q", tagged.Status)
	}

	views, err := ListOpportunityViews(ctx, db, "u1")
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views", len(views))
	}
	if views[0].Title != "Tagged" || views[0].TribeName != "Pagamentos" || views[0].SquadName != "Checkout" {
		t.Fatalf("tagged view = %+v", views[0])
	}
	if views[1].TribeName != "" || views[1].SquadName != "" {
		t.Fatalf("plain view should have no names: %+v", views[1])
	}
}

func TestUpdateOpportunity_ClearsTribe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tribe := &domain.Tribe{UserID: "u1", Name: "T"}
	if err := CreateTribe(ctx, db, tribe); err != nil {
		t.Fatalf("tribe: %v", err)
	}
	op := &domain.Opportunity{UserID: "u1", Title: "X", TribeID: &tribe.ID}
	if err := CreateOpportunity(ctx, db, op); err != nil {
		t.Fatalf("create: %v", err)
	}

	op.TribeID = nil
	op.Status = domain.StatusInProgress
	if err := UpdateOpportunity(ctx, db, op); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := GetOpportunity(ctx, db, op.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TribeID != nil || got.Status != domain.StatusInProgress {
		t.Fatalf("after update: %+v", got)
	}

	views, _ := ListOpportunityViews(ctx, db, "u1")
	if views[0].TribeName != "" {
		t.Fatalf("tribe badge should be gone: %+v", views[0])
	}

	missing := &domain.Opportunity{ID: "nope", UserID: "u1", Title: "x", Status: domain.StatusBacklog}
	if err := UpdateOpportunity(ctx, db, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpportunityInsightLinks_AndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	in := &domain.Insight{UserID: "u1", Title: "I", Description: "d"}
	if err := CreateInsight(ctx, db, in); err != nil {
		t.Fatalf("insight: %v", err)
	}
	op := &domain.Opportunity{UserID: "u1", Title: "I"}
	if err := CreateOpportunity(ctx, db, op); err != nil {
		t.Fatalf("opportunity: %v", err)
	}
	if err := LinkOpportunityInsight(ctx, db, op.ID, in.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	ins, err := ListOpportunityInsights(ctx, db, op.ID)
	if err != nil || len(ins) != 1 || ins[0].ID != in.ID {
		t.Fatalf("linked insights = %+v, %v", ins, err)
	}

	if err := DeleteOpportunity(ctx, db, op.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteOpportunity(ctx, db, op.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestClearSquadRefs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sq := "s1"
	op := &domain.Opportunity{UserID: "u1", Title: "X", SquadID: &sq}
	if err := CreateOpportunity(ctx, db, op); err != nil {
		t.Fatalf("create: %v", err)
	}
	in := &domain.Insight{UserID: "u1", Title: "I", Description: "d", SquadID: &sq}
	if err := CreateInsight(ctx, db, in); err != nil {
		t.Fatalf("insight: %v", err)
	}
	if err := ClearSquadRefs(ctx, db, "u1", "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := GetOpportunity(ctx, db, op.ID, "u1")
	if got.SquadID != nil {
		t.Fatalf("squad ref kept on opportunity: %v", *got.SquadID)
	}
	gi, _ := GetInsight(ctx, db, in.ID, "u1")
	if gi.SquadID != nil {
		t.Fatalf("squad ref kept on insight: %v", *gi.SquadID)
	}
}
