// Package repo is the GORM persistence layer: one file per aggregate plus
// the bootstrap in this file. Every query takes the request context so the
// OpenTelemetry plugin can attach it to the caller's span.
package repo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/feedback-hub/internal/config"
	"github.com/tbourn/feedback-hub/internal/domain"
)

// SlowQuery is the threshold above which statements are logged at warn.
const SlowQuery = 200 * time.Millisecond

// sqlitePragmas run on every pooled connection, not just the first one.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Open connects to the configured backend, routes GORM's logging through
// zerolog and registers the tracing plugin.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		db, err = OpenSQLite(cfg.Path)
	case "postgres":
		db, err = OpenPostgres(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported DB driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLiteDSN appends the connection pragmas to a database path.
func SQLiteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// OpenSQLite opens or creates the database file. The parent directory must
// exist; the driver's own error for that case is unhelpful.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), &gorm.Config{Logger: zerologGorm{}})
	if err != nil {
		return nil, err
	}
	setPool(db, 10)
	return db, nil
}

// OpenPostgres opens a Postgres database through pgx.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: zerologGorm{}})
	if err != nil {
		return nil, err
	}
	setPool(db, 25)
	return db, nil
}

func setPool(db *gorm.DB, n int) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(n)
		sqlDB.SetMaxIdleConns(n)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&domain.Profile{},
		&domain.Tribe{},
		&domain.Squad{},
		&domain.Feedback{},
		&domain.Insight{},
		&domain.InsightFeedback{},
		&domain.Opportunity{},
		&domain.OpportunityInsight{},
		&domain.LatestItem{},
		&domain.TopicAnalysisResult{},
		&domain.AIConfiguration{},
		&domain.Idempotency{},
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// zerologGorm sends GORM's messages to the request logger when the context
// carries one. Statements are traced at debug, slow ones and failures are
// warnings. Not-found lookups are expected and stay at debug.
type zerologGorm struct{}

func (zerologGorm) LogMode(logger.LogLevel) logger.Interface { return zerologGorm{} }

func (zerologGorm) Info(ctx context.Context, msg string, args ...any) {
	ctxLogger(ctx).Info().Msgf(msg, args...)
}

func (zerologGorm) Warn(ctx context.Context, msg string, args ...any) {
	ctxLogger(ctx).Warn().Msgf(msg, args...)
}

func (zerologGorm) Error(ctx context.Context, msg string, args ...any) {
	ctxLogger(ctx).Error().Msgf(msg, args...)
}

func (zerologGorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	l := ctxLogger(ctx)
	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		ev = l.Warn().Err(err)
	case elapsed > SlowQuery:
		ev = l.Warn().Bool("slow", true)
	default:
		ev = l.Debug()
	}
	if !ev.Enabled() {
		return
	}
	sql, rows := fc()
	ev.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("gorm")
}

// ctxLogger is zerolog.Ctx without its disabled-logger fallback.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
