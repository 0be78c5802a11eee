package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

const (
	headerUserID         = "X-User-ID"
	headerIdempotencyKey = "Idempotency-Key"

	defaultMaxTries        uint = 3
	defaultInitialInterval      = 200 * time.Millisecond
)

// HTTPBackend talks to the feedback-hub API. Reads are retried with
// exponential backoff; writes are sent exactly once.
type HTTPBackend struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8080/api/v1.
	BaseURL string
	UserID  string
	HTTP    *http.Client

	// MaxTries bounds read attempts. Zero means 3.
	MaxTries uint
	// InitialInterval is the first retry delay. Zero means 200ms.
	InitialInterval time.Duration
}

var _ Backend = (*HTTPBackend)(nil)

func (b *HTTPBackend) client() *http.Client {
	if b.HTTP != nil {
		return b.HTTP
	}
	return http.DefaultClient
}

// read issues a GET with retries. Auth errors and other client errors end
// the loop immediately.
func (b *HTTPBackend) read(ctx context.Context, path string, q url.Values, out any) error {
	tries := b.MaxTries
	if tries == 0 {
		tries = defaultMaxTries
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = defaultInitialInterval
	if b.InitialInterval > 0 {
		eb.InitialInterval = b.InitialInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := b.do(ctx, http.MethodGet, path, q, nil, "", out)
		if err != nil && (IsAuth(err) || !retryable(err)) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(tries))
	return err
}

// write sends a mutating request once. A non-empty idemKey is forwarded on
// the routes the server replays (feedback create and insight convert).
func (b *HTTPBackend) write(ctx context.Context, method, path string, body any, idemKey string, out any) error {
	return b.do(ctx, method, path, nil, body, idemKey, out)
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, q url.Values, body any, idemKey string, out any) error {
	u := strings.TrimRight(b.BaseURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.UserID != "" {
		req.Header.Set(headerUserID, b.UserID)
	}
	if idemKey != "" {
		req.Header.Set(headerIdempotencyKey, idemKey)
	}

	resp, err := b.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		ae := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(ae)
		if ae.RequestID == "" {
			ae.RequestID = resp.Header.Get("X-Request-ID")
		}
		return ae
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (b *HTTPBackend) Report(ctx context.Context, q report.Query) (report.Page[domain.Feedback], error) {
	q = q.Normalize()
	v := url.Values{}
	v.Set("source", q.Source)
	if q.HasTag() {
		v.Set("tag", q.Tag)
	}
	v.Set("page", strconv.Itoa(q.Page))

	var page report.Page[domain.Feedback]
	err := b.read(ctx, "/feedbacks", v, &page)
	return page, err
}

func (b *HTTPBackend) LatestItems(ctx context.Context) ([]domain.LatestItem, error) {
	var rows []domain.LatestItem
	err := b.read(ctx, "/latest-items", nil, &rows)
	return rows, err
}

func (b *HTTPBackend) Insights(ctx context.Context, limit int, window string) ([]domain.InsightView, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if window != "" {
		v.Set("window", window)
	}
	var rows []domain.InsightView
	err := b.read(ctx, "/insights", v, &rows)
	return rows, err
}

func (b *HTTPBackend) Board(ctx context.Context) (domain.Board, error) {
	var board domain.Board
	err := b.read(ctx, "/opportunities/board", nil, &board)
	return board, err
}

func (b *HTTPBackend) Tribes(ctx context.Context) ([]domain.Tribe, error) {
	var rows []domain.Tribe
	err := b.read(ctx, "/tribes", nil, &rows)
	return rows, err
}

func (b *HTTPBackend) CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := b.write(ctx, http.MethodPost, "/feedbacks", in, uuid.NewString(), &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (b *HTTPBackend) DraftFromSelection(ctx context.Context, feedbackIDs []string) (*domain.InsightDraft, error) {
	var res struct {
		Insight *domain.InsightDraft `json:"insight"`
	}
	body := map[string]any{"feedback_ids": feedbackIDs}
	if err := b.write(ctx, http.MethodPost, "/functions/generate-insight-from-selection", body, "", &res); err != nil {
		return nil, err
	}
	return res.Insight, nil
}

func (b *HTTPBackend) SaveInsight(ctx context.Context, d domain.InsightDraft) (*domain.Insight, error) {
	var in domain.Insight
	if err := b.write(ctx, http.MethodPost, "/insights", d, "", &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (b *HTTPBackend) UpdateInsightTags(ctx context.Context, id, csv string) (*domain.Insight, error) {
	var in domain.Insight
	path := "/insights/" + url.PathEscape(id) + "/tags"
	if err := b.write(ctx, http.MethodPut, path, map[string]string{"tags": csv}, "", &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (b *HTTPBackend) RejectInsight(ctx context.Context, id string) error {
	return b.write(ctx, http.MethodPost, "/insights/"+url.PathEscape(id)+"/reject", nil, "", nil)
}

func (b *HTTPBackend) ConvertInsight(ctx context.Context, id string, org domain.OrgRef) (*domain.Opportunity, error) {
	var op domain.Opportunity
	path := "/insights/" + url.PathEscape(id) + "/convert"
	if err := b.write(ctx, http.MethodPost, path, org, uuid.NewString(), &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (b *HTTPBackend) CreateOpportunity(ctx context.Context, in domain.OpportunityInput) (*domain.Opportunity, error) {
	var op domain.Opportunity
	if err := b.write(ctx, http.MethodPost, "/opportunities", in, "", &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (b *HTTPBackend) CreateTribe(ctx context.Context, in domain.TribeInput) (*domain.Tribe, error) {
	var t domain.Tribe
	if err := b.write(ctx, http.MethodPost, "/tribes", in, "", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (b *HTTPBackend) RunFunction(ctx context.Context, name string) (FunctionResult, error) {
	var res FunctionResult
	switch name {
	case FnGenerateLatestItems, FnGenerateInsights, FnAnalyzeTopics:
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	err := b.write(ctx, http.MethodPost, "/functions/"+name, nil, "", &res)
	return res, err
}
