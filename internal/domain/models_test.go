package domain

import (
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/repo/repotest"
)

// newDomainDB enforces foreign keys so cascades run.
func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := repotest.WithForeignKeys(t, repotest.Open(t))
	if err := db.AutoMigrate(
		&Feedback{}, &Insight{}, &InsightFeedback{}, &Opportunity{}, &OpportunityInsight{},
		&LatestItem{}, &TopicAnalysisResult{}, &Tribe{}, &Squad{}, &Profile{}, &AIConfiguration{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Feedback{}).TableName():            "feedbacks",
		(Insight{}).TableName():             "insights",
		(InsightFeedback{}).TableName():     "insight_feedbacks",
		(Opportunity{}).TableName():         "product_opportunities",
		(OpportunityInsight{}).TableName():  "opportunity_insights",
		(LatestItem{}).TableName():          "latest_items",
		(TopicAnalysisResult{}).TableName(): "topic_analysis_results",
		(Tribe{}).TableName():               "tribes",
		(Squad{}).TableName():               "squads",
		(Profile{}).TableName():             "profiles",
		(AIConfiguration{}).TableName():     "ai_configurations",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestInsightState(t *testing.T) {
	if s := (Insight{}).State(); s != InsightActive {
		t.Fatalf("nil status: got %q", s)
	}
	empty := ""
	if s := (Insight{Status: &empty}).State(); s != InsightActive {
		t.Fatalf("empty status: got %q", s)
	}
	rej := InsightRejected
	if s := (Insight{Status: &rej}).State(); s != InsightRejected {
		t.Fatalf("rejected status: got %q", s)
	}
}

func TestFeedback_JSONColumns_RoundTrip(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	fb := &Feedback{
		ID: "f1", UserID: "u1", Source: SourceManual, Status: "new", Priority: "high",
		Title: "Bug no checkout", Tags: []string{"bug", "checkout"},
		Analysis:  &FeedbackAnalysis{Sentiment: SentimentNegative, Tags: []string{"pagamento"}},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Create(fb).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	plain := &Feedback{ID: "f2", UserID: "u1", Title: "No analysis", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(plain).Error; err != nil {
		t.Fatalf("insert plain: %v", err)
	}

	var got Feedback
	if err := db.First(&got, "id = ?", "f1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "checkout" {
		t.Fatalf("tags not preserved: %#v", got.Tags)
	}
	if got.Analysis == nil || got.Analysis.Sentiment != SentimentNegative || got.Analysis.Tags[0] != "pagamento" {
		t.Fatalf("analysis not preserved: %#v", got.Analysis)
	}

	var got2 Feedback
	if err := db.First(&got2, "id = ?", "f2").Error; err != nil {
		t.Fatalf("load plain: %v", err)
	}
	if got2.Analysis != nil {
		t.Fatalf("expected nil analysis, got %#v", got2.Analysis)
	}
	if got2.Source != SourceManual || got2.Status != "new" || got2.Priority != "medium" {
		t.Fatalf("defaults not applied: %+v", got2)
	}
}

func TestLatestItem_UniquePerUserTitle(t *testing.T) {
	db := newDomainDB(t)
	a := &LatestItem{ID: "l1", UserID: "u1", Title: "Bug", Count: 1}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	dup := &LatestItem{ID: "l2", UserID: "u1", Title: "Bug", Count: 1}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation on (user_id, title)")
	}
	other := &LatestItem{ID: "l3", UserID: "u2", Title: "Bug", Count: 1}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("same title for another user should be allowed: %v", err)
	}
}

func TestInsightLinks_CascadeOnDelete(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	if err := db.Create(&Feedback{ID: "f1", UserID: "u1", Title: "t", CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if err := db.Create(&Insight{ID: "i1", UserID: "u1", Title: "t", Description: "d", CreatedAt: now}).Error; err != nil {
		t.Fatalf("insight: %v", err)
	}
	if err := db.Create(&InsightFeedback{InsightID: "i1", FeedbackID: "f1", CreatedAt: now}).Error; err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := db.Delete(&Insight{}, "id = ?", "i1").Error; err != nil {
		t.Fatalf("delete insight: %v", err)
	}
	var n int64
	db.Model(&InsightFeedback{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected link cascade delete, got %d rows", n)
	}
}

func TestAIConfiguration_APIKeyNotSerialized(t *testing.T) {
	b, err := json.Marshal(AIConfiguration{Provider: ProviderOpenAI, APIKey: "sk-secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) == "" || contains(string(b), "sk-secret") {
		t.Fatalf("api key leaked: %s", b)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
