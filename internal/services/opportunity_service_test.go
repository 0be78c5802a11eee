package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/feedback-hub/internal/config"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
)

func TestOpportunity_Create_AlwaysBacklog(t *testing.T) {
	svc := &OpportunityService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", domain.OpportunityInput{Title: " "}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	op, err := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "Dark mode", Status: domain.StatusDone})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if op.Status != domain.StatusBacklog {
		t.Fatalf("status = %s", op.Status)
	}
	fromTopic, err := svc.CreateFromTopic(ctx, "u1", "Pix payments")
	if err != nil || fromTopic.Title != "Pix payments" || fromTopic.Status != domain.StatusBacklog {
		t.Fatalf("from topic = %+v, %v", fromTopic, err)
	}
}

func TestOpportunity_Board_FixedColumns(t *testing.T) {
	db := newTestDB(t)
	svc := &OpportunityService{DB: db}
	ctx := context.Background()

	a, _ := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "A"})
	b, _ := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "B"})
	if _, err := svc.Update(ctx, "u1", b.ID, domain.OpportunityInput{Title: "B", Status: domain.StatusInProgress}); err != nil {
		t.Fatalf("update: %v", err)
	}
	// Rows with an unknown status never reach a column.
	db.Model(&domain.Opportunity{}).Where("id = ?", a.ID).Update("status", "archived")

	board, err := svc.Board(ctx, "u1")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board.Columns) != 4 {
		t.Fatalf("columns = %d", len(board.Columns))
	}
	total := 0
	for i, col := range board.Columns {
		if col.Status != domain.OpportunityStatuses[i] {
			t.Fatalf("column %d = %s", i, col.Status)
		}
		if col.Opportunities == nil {
			t.Fatalf("column %s has nil slice", col.Status)
		}
		total += len(col.Opportunities)
	}
	if total != 1 || len(board.Columns[2].Opportunities) != 1 || board.Columns[2].Opportunities[0].ID != b.ID {
		t.Fatalf("board = %+v", board)
	}
}

func TestOpportunity_Update_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := &OpportunityService{DB: db}
	ctx := context.Background()
	op, _ := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "A"})

	if _, err := svc.Update(ctx, "u1", op.ID, domain.OpportunityInput{Title: "A", Status: "done"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.Update(ctx, "u1", op.ID, domain.OpportunityInput{Title: ""}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := svc.Update(ctx, "u1", "missing", domain.OpportunityInput{Title: "x"}); !errors.Is(err, ErrOpportunityNotFound) {
		t.Fatalf("expected ErrOpportunityNotFound, got %v", err)
	}
	got, err := svc.Update(ctx, "u1", op.ID, domain.OpportunityInput{Title: "A2"})
	if err != nil || got.Status != domain.StatusBacklog || got.Title != "A2" {
		t.Fatalf("empty status should keep current: %+v, %v", got, err)
	}
}

func TestOpportunity_Update_TribeToNoneClearsBadge(t *testing.T) {
	db := newTestDB(t)
	svc := &OpportunityService{DB: db}
	ctx := context.Background()
	tribe := seedTribe(t, db, "u1", "Growth")
	squad := seedSquad(t, db, "u1", tribe.ID, "Onboarding", nil)

	op, err := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "O", OrgRef: domain.OrgRef{TribeID: tribe.ID, SquadID: squad.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	views, _ := svc.List(ctx, "u1")
	if len(views) != 1 || views[0].TribeName != "Growth" || views[0].SquadName != "Onboarding" {
		t.Fatalf("views = %+v", views)
	}

	if _, err := svc.Update(ctx, "u1", op.ID, domain.OpportunityInput{Title: "O", OrgRef: domain.OrgRef{TribeID: "none", SquadID: squad.ID}}); !errors.Is(err, ErrSquadWithoutTribe) {
		t.Fatalf("expected ErrSquadWithoutTribe, got %v", err)
	}
	got, err := svc.Update(ctx, "u1", op.ID, domain.OpportunityInput{Title: "O", OrgRef: domain.OrgRef{TribeID: "none"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.TribeID != nil || got.SquadID != nil {
		t.Fatalf("refs not cleared: %+v", got)
	}
	views, _ = svc.List(ctx, "u1")
	if views[0].TribeName != "" || views[0].SquadName != "" {
		t.Fatalf("badge still shown: %+v", views[0])
	}
}

func TestOpportunity_Sources_ProvenanceChain(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	isvc := &InsightService{DB: db}
	osvc := &OpportunityService{DB: db}

	f1 := seedFeedback(t, db, "u1", "f1", time.Now().Add(-time.Minute))
	f2 := seedFeedback(t, db, "u1", "f2", time.Now())
	in, err := isvc.SaveDraft(ctx, "u1", domain.InsightDraft{Title: "I", FeedbackIDs: []string{f1.ID, f2.ID}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	op, err := isvc.Convert(ctx, "u1", in.ID, domain.OrgRef{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	src, err := osvc.Sources(ctx, "u1", op.ID)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(src) != 1 || src[0].ID != in.ID || len(src[0].Feedbacks) != 2 || src[0].Feedbacks[0].ID != f2.ID {
		t.Fatalf("sources = %+v", src)
	}
	if _, err := osvc.Sources(ctx, "u2", op.ID); !errors.Is(err, ErrOpportunityNotFound) {
		t.Fatalf("foreign sources: %v", err)
	}
}

func TestOpportunity_IssueURL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tribe := seedTribe(t, db, "u1", "T")
	squad := seedSquad(t, db, "u1", tribe.ID, "S", strptr("https://acme.atlassian.net/jira/software/projects/PAY/boards/7"))

	svc := &OpportunityService{DB: db}
	plain, _ := svc.Create(ctx, "u1", domain.OpportunityInput{Title: "No squad"})
	if _, err := svc.IssueURL(ctx, "u1", plain.ID); !errors.Is(err, ErrIssueTrackerDisabled) {
		t.Fatalf("expected ErrIssueTrackerDisabled, got %v", err)
	}

	op, _ := svc.Create(ctx, "u1", domain.OpportunityInput{
		Title:       "Pix & boleto",
		Description: "Support both",
		OrgRef:      domain.OrgRef{TribeID: tribe.ID, SquadID: squad.ID},
	})
	raw, err := svc.IssueURL(ctx, "u1", op.ID)
	if err != nil {
		t.Fatalf("issue url: %v", err)
	}
	if !strings.HasPrefix(raw, "https://acme.atlassian.net/secure/CreateIssue.jspa?") {
		t.Fatalf("url = %s", raw)
	}
	u, _ := url.Parse(raw)
	if u.Query().Get("summary") != "Pix & boleto" || u.Query().Get("description") != "Support both" || u.Query().Get("issuetype") != "10000" {
		t.Fatalf("query = %v", u.Query())
	}

	svc.IssueTracker = config.IssueTrackerConfig{BaseURL: "https://tracker.example.com/", IssueTypeID: "10001"}
	raw, _ = svc.IssueURL(ctx, "u1", plain.ID)
	if !strings.HasPrefix(raw, "https://tracker.example.com/secure/CreateIssue.jspa?") || !strings.Contains(raw, "issuetype=10001") {
		t.Fatalf("configured url = %s", raw)
	}
	// A configured tracker also wins over the squad's board host.
	raw, _ = svc.IssueURL(ctx, "u1", op.ID)
	if !strings.HasPrefix(raw, "https://tracker.example.com/secure/CreateIssue.jspa?") {
		t.Fatalf("squad board overrode configured tracker: %s", raw)
	}
}

func TestGroupBoard_PreservesOrderWithinColumn(t *testing.T) {
	views := []domain.OpportunityView{
		{Opportunity: domain.Opportunity{ID: "1", Status: domain.StatusNext}},
		{Opportunity: domain.Opportunity{ID: "2", Status: domain.StatusBacklog}},
		{Opportunity: domain.Opportunity{ID: "3", Status: domain.StatusNext}},
	}
	b := GroupBoard(views)
	next := b.Columns[1].Opportunities
	if len(next) != 2 || next[0].ID != "1" || next[1].ID != "3" {
		t.Fatalf("próximo column = %+v", next)
	}
}

func TestOpportunity_Get(t *testing.T) {
	db := newTestDB(t)
	svc := &OpportunityService{DB: db}
	op, _ := svc.Create(context.Background(), "u1", domain.OpportunityInput{Title: "A"})
	if _, err := svc.Get(context.Background(), "u2", op.ID); !errors.Is(err, ErrOpportunityNotFound) {
		t.Fatalf("foreign get: %v", err)
	}
	if _, err := repo.GetOpportunity(context.Background(), db, op.ID, "u1"); err != nil {
		t.Fatalf("get: %v", err)
	}
}
