package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/repo"
)

// IdempotencyService records completed unsafe requests so that a retried
// request with the same Idempotency-Key replays the original result.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// Lookup returns the live record for (userID, scope, key), or nil.
func (s *IdempotencyService) Lookup(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error) {
	rec, err := repo.LiveIdempotency(ctx, s.DB, repo.IdempotencyKey{UserID: userID, Scope: scope, Key: key}, time.Now().UTC())
	if isNotFound(err) {
		return nil, nil
	}
	return rec, err
}

// Save records the outcome of a completed request. A concurrent duplicate
// is not an error.
func (s *IdempotencyService) Save(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	k := repo.IdempotencyKey{UserID: userID, Scope: scope, Key: key}
	_, err := repo.RecordIdempotency(ctx, s.DB, k, resourceID, status, time.Now().Add(ttl))
	return err
}

// Purge deletes expired records.
func (s *IdempotencyService) Purge(ctx context.Context) (int64, error) {
	return repo.PurgeIdempotency(ctx, s.DB, time.Now().UTC())
}

// RunPurger calls Purge every interval until ctx is done. Failures are
// logged and retried on the next tick.
func (s *IdempotencyService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("idempotency records purged")
			}
		}
	}
}
