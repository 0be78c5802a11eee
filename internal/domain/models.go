// Package domain defines the persistence models for feedback, insights,
// roadmap opportunities and the organizational taxonomy (tribes/squads).
// These types are mapped with GORM and shared by the repository, service,
// demo and client layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback sources.
const (
	SourceManual   = "manual"
	SourceJira     = "jira"
	SourceNotion   = "notion"
	SourceZapier   = "zapier"
	SourceIntercom = "intercom"
	SourceZendesk  = "zendesk"
	SourceSlack    = "slack"
	SourceEmail    = "email"
	SourceOther    = "other"
)

// Sources lists every accepted feedback source.
var Sources = []string{
	SourceManual, SourceJira, SourceNotion, SourceZapier, SourceIntercom,
	SourceZendesk, SourceSlack, SourceEmail, SourceOther,
}

// Sentiments.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// FeedbackAnalysis is the structured analysis attached to a Feedback row by
// the topic analysis function.
type FeedbackAnalysis struct {
	Sentiment string   `json:"sentiment"`
	Summary   string   `json:"summary,omitempty"`
	Tags      []string `json:"tags"`
}

// Feedback is a single piece of raw customer input.
//
// Fields:
//   - Source: one of Sources.
//   - Status: new|in_progress|resolved|archived (defaults to new).
//   - Priority: low|medium|high (defaults to medium).
//   - Tags: free-form, ordered.
//   - Analysis: optional structured analysis stored as JSON text.
//   - IsTopicAnalyzed: set once analyze-topics processed the row.
type Feedback struct {
	ID                string                      `json:"id"                   gorm:"type:char(36);primaryKey"`
	UserID            string                      `json:"user_id"              gorm:"type:varchar(64);not null;index:idx_feedback_user_created,priority:1"`
	Source            string                      `json:"source"               gorm:"type:varchar(32);not null;default:'manual';index"`
	Status            string                      `json:"status"               gorm:"type:varchar(32);not null;default:'new'"`
	Priority          string                      `json:"priority"             gorm:"type:varchar(16);not null;default:'medium'"`
	Title             string                      `json:"title"                gorm:"type:varchar(255);not null"`
	Description       *string                     `json:"description,omitempty" gorm:"type:text"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	CustomerName      *string                     `json:"customer_name,omitempty"    gorm:"type:varchar(255)"`
	IntervieweeName   *string                     `json:"interviewee_name,omitempty" gorm:"type:varchar(255)"`
	ConversationAt    *time.Time                  `json:"conversation_at,omitempty"`
	Analysis          *FeedbackAnalysis           `json:"analysis,omitempty"   gorm:"type:text;serializer:json"`
	ExternalID        *string                     `json:"external_id,omitempty" gorm:"type:varchar(128)"`
	ExternalCreatedAt *time.Time                  `json:"external_created_at,omitempty"`
	ExternalUpdatedAt *time.Time                  `json:"external_updated_at,omitempty"`
	IsTopicAnalyzed   bool                        `json:"is_topic_analyzed"    gorm:"not null;default:false"`
	CreatedAt         time.Time                   `json:"created_at"           gorm:"index:idx_feedback_user_created,priority:2"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedbacks" }

// Insight types, severities and lifecycle states.
const (
	InsightTypeTrend       = "trend"
	InsightTypeAlert       = "alert"
	InsightTypeOpportunity = "opportunity"
	InsightTypeOther       = "other"

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
	SeverityError   = "error"

	InsightActive    = "active"
	InsightRejected  = "rejected"
	InsightConverted = "converted"
)

// Insight is an AI- or human-curated summary derived from feedback.
// A nil Status is treated as active.
type Insight struct {
	ID          string                      `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string                      `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_insight_user_created,priority:1"`
	Title       string                      `json:"title"       gorm:"type:varchar(255);not null"`
	Description string                      `json:"description" gorm:"type:text;not null"`
	Type        string                      `json:"type"        gorm:"type:varchar(32);not null;default:'other'"`
	Severity    string                      `json:"severity"    gorm:"type:varchar(16);not null;default:'info'"`
	Action      *string                     `json:"action,omitempty" gorm:"type:text"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Status      *string                     `json:"status,omitempty" gorm:"type:varchar(16);index"`
	TribeID     *string                     `json:"tribe_id,omitempty" gorm:"type:char(36)"`
	SquadID     *string                     `json:"squad_id,omitempty" gorm:"type:char(36)"`
	CreatedAt   time.Time                   `json:"created_at"  gorm:"index:idx_insight_user_created,priority:2"`
}

// TableName returns the database table name for Insight.
func (Insight) TableName() string { return "insights" }

// State returns the effective lifecycle state.
func (i Insight) State() string {
	if i.Status == nil || *i.Status == "" {
		return InsightActive
	}
	return *i.Status
}

// InsightFeedback links an Insight to a Feedback row it was derived from.
type InsightFeedback struct {
	InsightID  string    `json:"insight_id"  gorm:"type:char(36);primaryKey"`
	FeedbackID string    `json:"feedback_id" gorm:"type:char(36);primaryKey;index"`
	CreatedAt  time.Time `json:"created_at"`

	Insight  Insight  `json:"-" gorm:"foreignKey:InsightID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Feedback Feedback `json:"-" gorm:"foreignKey:FeedbackID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for InsightFeedback.
func (InsightFeedback) TableName() string { return "insight_feedbacks" }

// Opportunity pipeline statuses in board order.
const (
	StatusBacklog    = "backlog"
	StatusNext       = "próximo"
	StatusInProgress = "em_andamento"
	StatusDone       = "concluído"
)

// OpportunityStatuses is the fixed board column order.
var OpportunityStatuses = []string{StatusBacklog, StatusNext, StatusInProgress, StatusDone}

// Opportunity is a roadmap candidate.
type Opportunity struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_opp_user_created,priority:1"`
	Title       string    `json:"title"       gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Status      string    `json:"status"      gorm:"type:varchar(32);not null;default:'backlog'"`
	TribeID     *string   `json:"tribe_id,omitempty" gorm:"type:char(36);index"`
	SquadID     *string   `json:"squad_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index:idx_opp_user_created,priority:2"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Opportunity.
func (Opportunity) TableName() string { return "product_opportunities" }

// OpportunityInsight links an Opportunity to the Insight that produced it.
type OpportunityInsight struct {
	OpportunityID string    `json:"opportunity_id" gorm:"type:char(36);primaryKey"`
	InsightID     string    `json:"insight_id"     gorm:"type:char(36);primaryKey;index"`
	CreatedAt     time.Time `json:"created_at"`

	Opportunity Opportunity `json:"-" gorm:"foreignKey:OpportunityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Insight     Insight     `json:"-" gorm:"foreignKey:InsightID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OpportunityInsight.
func (OpportunityInsight) TableName() string { return "opportunity_insights" }

// LatestItem is a rolling per-title mention counter.
// At most one row exists per (user_id, title).
type LatestItem struct {
	ID               string                      `json:"id"                gorm:"type:char(36);primaryKey"`
	UserID           string                      `json:"user_id"           gorm:"type:varchar(64);not null;uniqueIndex:ux_latest_user_title,priority:1"`
	Title            string                      `json:"title"             gorm:"type:varchar(255);not null;uniqueIndex:ux_latest_user_title,priority:2"`
	Count            int                         `json:"count"             gorm:"not null;default:1"`
	Sentiment        string                      `json:"sentiment"         gorm:"type:varchar(16);not null;default:'neutral'"`
	ChangePercentage int                         `json:"change_percentage" gorm:"not null;default:0"`
	Keywords         datatypes.JSONSlice[string] `json:"keywords"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for LatestItem.
func (LatestItem) TableName() string { return "latest_items" }

// TopicAnalysisResult is one topic cluster produced by analyze-topics.
type TopicAnalysisResult struct {
	ID          string                      `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string                      `json:"user_id"      gorm:"type:varchar(64);not null;index"`
	Topic       string                      `json:"topic"        gorm:"type:varchar(255);not null"`
	Summary     string                      `json:"summary"      gorm:"type:text"`
	Sentiment   string                      `json:"sentiment"    gorm:"type:varchar(16);not null;default:'neutral'"`
	Count       int                         `json:"count"        gorm:"not null;default:0"`
	Keywords    datatypes.JSONSlice[string] `json:"keywords"`
	FeedbackIDs datatypes.JSONSlice[string] `json:"feedback_ids"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// TableName returns the database table name for TopicAnalysisResult.
func (TopicAnalysisResult) TableName() string { return "topic_analysis_results" }

// Tribe is a top-level organizational unit.
type Tribe struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;index"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Tribe.
func (Tribe) TableName() string { return "tribes" }

// Squad belongs to exactly one Tribe.
type Squad struct {
	ID           string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"     gorm:"type:varchar(64);not null;index"`
	TribeID      string    `json:"tribe_id"    gorm:"type:char(36);not null;index"`
	Name         string    `json:"name"        gorm:"type:varchar(255);not null"`
	Description  *string   `json:"description,omitempty"    gorm:"type:text"`
	JiraBoardURL *string   `json:"jira_board_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Squad.
func (Squad) TableName() string { return "squads" }

// Profile is the public account record of a user.
type Profile struct {
	ID        string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	Email     *string   `json:"email,omitempty"      gorm:"type:varchar(255)"`
	FullName  *string   `json:"full_name,omitempty"  gorm:"type:varchar(255)"`
	AvatarURL *string   `json:"avatar_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// AI providers.
const (
	ProviderOpenAI   = "openai"
	ProviderGoogle   = "google"
	ProviderClaude   = "claude"
	ProviderDeepSeek = "deepseek"
)

// AIConfiguration is the per-user AI provider setup. APIKey is never
// serialized back to clients.
type AIConfiguration struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Provider  string    `json:"provider"  gorm:"type:varchar(32);not null"`
	Model     string    `json:"model"     gorm:"type:varchar(128);not null"`
	APIKey    string    `json:"-"         gorm:"type:text"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	HasAPIKey bool      `json:"has_api_key" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for AIConfiguration.
func (AIConfiguration) TableName() string { return "ai_configurations" }
