package domain

import "time"

// InsightDraft is an unpersisted insight returned for human review.
type InsightDraft struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action,omitempty"`
	Tags        []string `json:"tags"`
	FeedbackIDs []string `json:"feedback_ids,omitempty"`
}

// OpportunityView is an Opportunity joined with its tribe/squad names.
// Empty names mean no badge is shown.
type OpportunityView struct {
	Opportunity
	TribeName string `json:"tribe_name,omitempty"`
	SquadName string `json:"squad_name,omitempty"`
}

// BoardColumn is one status column of the roadmap board.
type BoardColumn struct {
	Status        string            `json:"status"`
	Opportunities []OpportunityView `json:"opportunities"`
}

// Board is the roadmap grouped into the fixed status columns.
type Board struct {
	Columns []BoardColumn `json:"columns"`
}

// FeedbackSource is one provenance line under an insight.
type FeedbackSource struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	CustomerName string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// InsightSource is an insight that produced an opportunity, with the
// feedback rows that produced the insight.
type InsightSource struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Feedbacks []FeedbackSource `json:"feedbacks"`
}

// Topic is an active insight rendered as a discussion card.
type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	Sentiment string    `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicAnalysisSummary reports what analyze-topics did.
type TopicAnalysisSummary struct {
	FeedbacksAnalyzed int `json:"feedbacks_analyzed"`
	TopicsFound       int `json:"topics_found"`
}

// FeedbackInput is the payload of a manual feedback entry.
type FeedbackInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	CustomerName    string     `json:"customer_name,omitempty"`
	IntervieweeName string     `json:"interviewee_name,omitempty"`
	ConversationAt  *time.Time `json:"conversation_at,omitempty"`
}

// OrgRef optionally tags a row with a tribe and squad. Empty strings and
// "none" mean unset.
type OrgRef struct {
	TribeID string `json:"tribe_id,omitempty"`
	SquadID string `json:"squad_id,omitempty"`
}

// OpportunityInput carries the editable fields of an opportunity.
type OpportunityInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	OrgRef
}

// TribeInput carries the editable fields of a tribe.
type TribeInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SquadInput carries the editable fields of a squad.
type SquadInput struct {
	TribeID      string `json:"tribe_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	JiraBoardURL string `json:"jira_board_url,omitempty"`
}

// AIConfigInput carries the editable fields of an AI configuration. An
// empty APIKey keeps the stored key.
type AIConfigInput struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// InsightView is an Insight with the feedback rows it was derived from.
type InsightView struct {
	Insight
	Feedbacks []FeedbackSource `json:"feedbacks"`
}
