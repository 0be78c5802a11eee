package services

import (
	"encoding/json"
	"strings"

	"github.com/tbourn/feedback-hub/internal/domain"
)

const insightsSystemPrompt = `You are a product analyst. You read customer feedback and produce actionable product insights.
Answer with JSON only, no prose.`

const insightsInstructions = `Analyze the feedback below and return a JSON array of insights. Each insight is an object with:
  "type": one of "trend", "alert", "opportunity", "other"
  "severity": one of "info", "warning", "success", "error"
  "title": short title
  "description": one or two sentences
  "action": suggested next step
  "tags": list of short keywords
  "feedback_ids": ids of the feedback entries the insight is based on
Return between 1 and 5 insights.`

const selectionInstructions = `Analyze the feedback below and return exactly ONE insight as a JSON object with:
  "type": one of "trend", "alert", "opportunity", "other"
  "severity": one of "info", "warning", "success", "error"
  "title", "description", "action", "tags"`

const topicsSystemPrompt = `You are a customer research assistant. You classify feedback and group it into discussion topics.
Answer with JSON only, no prose.`

const topicsInstructions = `For the feedback below return a JSON object with two keys:
  "feedbacks": one entry per feedback {"id", "sentiment" (positive|negative|neutral), "summary", "tags"}
  "topics": topic clusters {"topic", "summary", "sentiment", "keywords", "feedback_ids"}`

// promptFeedback is the compact feedback shape sent to providers.
type promptFeedback struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags,omitempty"`
}

func feedbackPrompt(instructions string, rows []domain.Feedback) (string, error) {
	items := make([]promptFeedback, len(rows))
	for i, f := range rows {
		items[i] = promptFeedback{
			ID:          f.ID,
			Title:       f.Title,
			Description: derefString(f.Description),
			Source:      f.Source,
			Tags:        []string(f.Tags),
		}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nFeedback:\n")
	sb.Write(b)
	return sb.String(), nil
}

// topicAnswer is the decoded analyze-topics response.
type topicAnswer struct {
	Feedbacks []struct {
		ID        string   `json:"id"`
		Sentiment string   `json:"sentiment"`
		Summary   string   `json:"summary"`
		Tags      []string `json:"tags"`
	} `json:"feedbacks"`
	Topics []struct {
		Topic       string   `json:"topic"`
		Summary     string   `json:"summary"`
		Sentiment   string   `json:"sentiment"`
		Keywords    []string `json:"keywords"`
		FeedbackIDs []string `json:"feedback_ids"`
	} `json:"topics"`
}

func normSentiment(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case domain.SentimentPositive, domain.SentimentNegative:
		return s
	default:
		return domain.SentimentNeutral
	}
}
