package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// DefaultCacheSize bounds the number of cached query results.
const DefaultCacheSize = 128

// Client caches reads from a Backend and invalidates them on writes.
// Identical concurrent reads share one backend call.
type Client struct {
	backend Backend
	demo    bool
	cache   *lru.Cache[string, any]
	flight  singleflight.Group
}

// New wraps b with a query cache of the given size (DefaultCacheSize when
// size <= 0).
func New(b Backend, size int) (*Client, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	_, isDemo := b.(DemoBackend)
	return &Client{backend: b, demo: isDemo, cache: cache}, nil
}

// Options selects and configures the backend opened by Open.
type Options struct {
	BaseURL   string
	UserID    string
	StatePath string
	CacheSize int
	HTTP      *http.Client
}

// Open loads the persisted state and returns a client backed by the demo
// dataset when demo mode is on, or by the HTTP API otherwise.
func Open(opts Options) (*Client, State, error) {
	st, err := LoadState(opts.StatePath)
	if err != nil {
		return nil, st, err
	}
	var b Backend = &HTTPBackend{BaseURL: opts.BaseURL, UserID: opts.UserID, HTTP: opts.HTTP}
	if st.DemoMode {
		b = DemoBackend{}
	}
	c, err := New(b, opts.CacheSize)
	return c, st, err
}

// Demo reports whether the client serves the sample dataset.
func (c *Client) Demo() bool { return c.demo }

func cacheKey(k QueryKey, params ...string) string {
	if len(params) == 0 {
		return string(k)
	}
	return string(k) + "?" + strings.Join(params, "&")
}

// cached returns the entry under key, loading it at most once across
// concurrent callers. The shared load runs detached from any one caller's
// cancellation; each caller stops waiting when its own ctx is done.
// Errors are never cached.
func cached[T any](ctx context.Context, c *Client, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		res, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, res)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

// invalidate drops every cached entry of the queries m makes stale.
func (c *Client) invalidate(m Mutation) {
	for _, q := range Invalidates[m] {
		prefix := string(q) + "?"
		for _, k := range c.cache.Keys() {
			if k == string(q) || strings.HasPrefix(k, prefix) {
				c.cache.Remove(k)
			}
		}
	}
}

// Purge empties the cache.
func (c *Client) Purge() { c.cache.Purge() }

func (c *Client) Report(ctx context.Context, q report.Query) (report.Page[domain.Feedback], error) {
	q = q.Normalize()
	key := cacheKey(QueryFeedbacks, "source="+q.Source, "tag="+q.Tag, "page="+strconv.Itoa(q.Page))
	return cached(ctx, c, key, func(ctx context.Context) (report.Page[domain.Feedback], error) { return c.backend.Report(ctx, q) })
}

func (c *Client) LatestItems(ctx context.Context) ([]domain.LatestItem, error) {
	return cached(ctx, c, cacheKey(QueryLatestItems), func(ctx context.Context) ([]domain.LatestItem, error) { return c.backend.LatestItems(ctx) })
}

func (c *Client) Insights(ctx context.Context, limit int, window string) ([]domain.InsightView, error) {
	key := cacheKey(QueryInsights, "limit="+strconv.Itoa(limit), "window="+window)
	return cached(ctx, c, key, func(ctx context.Context) ([]domain.InsightView, error) { return c.backend.Insights(ctx, limit, window) })
}

func (c *Client) Board(ctx context.Context) (domain.Board, error) {
	return cached(ctx, c, cacheKey(QueryOpportunities, "board"), func(ctx context.Context) (domain.Board, error) { return c.backend.Board(ctx) })
}

func (c *Client) Tribes(ctx context.Context) ([]domain.Tribe, error) {
	return cached(ctx, c, cacheKey(QueryTribes), func(ctx context.Context) ([]domain.Tribe, error) { return c.backend.Tribes(ctx) })
}

// DraftFromSelection asks for an unsaved draft. Nothing is stored, so no
// query is invalidated.
func (c *Client) DraftFromSelection(ctx context.Context, ids []string) (*domain.InsightDraft, error) {
	return c.backend.DraftFromSelection(ctx, ids)
}

func (c *Client) CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	fb, err := c.backend.CreateFeedback(ctx, in)
	if err == nil {
		c.invalidate(MutCreateFeedback)
	}
	return fb, err
}

func (c *Client) SaveInsight(ctx context.Context, d domain.InsightDraft) (*domain.Insight, error) {
	in, err := c.backend.SaveInsight(ctx, d)
	if err == nil {
		c.invalidate(MutSaveInsight)
	}
	return in, err
}

func (c *Client) UpdateInsightTags(ctx context.Context, id, csv string) (*domain.Insight, error) {
	in, err := c.backend.UpdateInsightTags(ctx, id, csv)
	if err == nil {
		c.invalidate(MutUpdateInsightTags)
	}
	return in, err
}

func (c *Client) RejectInsight(ctx context.Context, id string) error {
	err := c.backend.RejectInsight(ctx, id)
	if err == nil {
		c.invalidate(MutRejectInsight)
	}
	return err
}

func (c *Client) ConvertInsight(ctx context.Context, id string, org domain.OrgRef) (*domain.Opportunity, error) {
	op, err := c.backend.ConvertInsight(ctx, id, org)
	if err == nil {
		c.invalidate(MutConvertInsight)
	}
	return op, err
}

func (c *Client) CreateOpportunity(ctx context.Context, in domain.OpportunityInput) (*domain.Opportunity, error) {
	op, err := c.backend.CreateOpportunity(ctx, in)
	if err == nil {
		c.invalidate(MutCreateOpportunity)
	}
	return op, err
}

func (c *Client) CreateTribe(ctx context.Context, in domain.TribeInput) (*domain.Tribe, error) {
	t, err := c.backend.CreateTribe(ctx, in)
	if err == nil {
		c.invalidate(MutCreateTribe)
	}
	return t, err
}

func (c *Client) RunFunction(ctx context.Context, name string) (FunctionResult, error) {
	res, err := c.backend.RunFunction(ctx, name)
	if err == nil {
		c.invalidate(Mutation(name))
	}
	return res, err
}
