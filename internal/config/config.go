// Package config reads the server's settings from the environment (optionally
// seeded from a .env file by the caller), applies defaults and validates the
// result before anything is started.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lists browser origins allowed to call the API. Empty means any
// origin, without credentials.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// OTELConfig configures trace export.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG
}

// DBConfig selects the storage backend.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH (sqlite)
	URL    string // DATABASE_URL (postgres DSN)
}

// AIConfig is the server-wide fallback used when a user has no stored
// AI configuration. An empty Provider disables the fallback.
type AIConfig struct {
	Provider string        // AI_PROVIDER: openai|google|claude|deepseek
	Model    string        // AI_MODEL (provider default when empty)
	APIKey   string        // AI_API_KEY
	BaseURL  string        // AI_BASE_URL (override, mostly for tests/proxies)
	Timeout  time.Duration // AI_TIMEOUT
}

// IssueTrackerConfig drives the prefilled "create issue" hand-off URL.
type IssueTrackerConfig struct {
	BaseURL     string // ISSUE_TRACKER_URL (e.g. https://acme.atlassian.net)
	IssueTypeID string // ISSUE_TYPE_ID
}

// Config is the complete server configuration.
type Config struct {
	// HTTP server
	Port              string // PORT
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // covers the slowest /functions call
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string // routes mount here, default /api/v1

	DB                DBConfig
	DemoMode          bool          // DEMO_MODE: every request gets fixtures
	RequireAuth       bool          // REQUIRE_AUTH: 401 without X-User-ID
	LatestItemsWindow time.Duration // LATEST_ITEMS_WINDOW
	AI                AIConfig
	IssueTracker      IssueTrackerConfig

	RateRPS           float64 // RATE_RPS per caller
	RateBurst         int     // RATE_BURST
	FunctionRateRPS   float64 // FUNCTION_RATE_RPS, AI-backed /functions routes
	FunctionRateBurst int     // FUNCTION_RATE_BURST

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration // IDEMPOTENCY_TTL

	OTEL OTELConfig
}

// Load builds a Config from the environment. Malformed numbers, booleans
// and durations fall back to their defaults; values that parse but make no
// sense are reported together in one error.
func Load() (Config, error) {
	cfg := Config{
		Port:              envString("PORT", "8080"),
		ReadTimeout:       envDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: envDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       envDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(envString("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(envString("LOG_LEVEL", "info")),
		LogPretty:      envBool("LOG_PRETTY", false),
		SwaggerEnabled: envBool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(envString("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver: strings.ToLower(envString("DB_DRIVER", "sqlite")),
			Path:   envString("DB_PATH", "feedback-hub.db"),
			URL:    envString("DATABASE_URL", ""),
		},
		DemoMode:          envBool("DEMO_MODE", false),
		RequireAuth:       envBool("REQUIRE_AUTH", false),
		LatestItemsWindow: envDuration("LATEST_ITEMS_WINDOW", 30*24*time.Hour),
		AI: AIConfig{
			Provider: strings.ToLower(envString("AI_PROVIDER", "")),
			Model:    envString("AI_MODEL", ""),
			APIKey:   envString("AI_API_KEY", ""),
			BaseURL:  envString("AI_BASE_URL", ""),
			Timeout:  envDuration("AI_TIMEOUT", 60*time.Second),
		},
		IssueTracker: IssueTrackerConfig{
			BaseURL:     strings.TrimRight(envString("ISSUE_TRACKER_URL", ""), "/"),
			IssueTypeID: envString("ISSUE_TYPE_ID", "10000"),
		},

		RateRPS:           envFloat("RATE_RPS", 5),
		RateBurst:         envInt("RATE_BURST", 10),
		FunctionRateRPS:   envFloat("FUNCTION_RATE_RPS", 0.2),
		FunctionRateBurst: envInt("FUNCTION_RATE_BURST", 3),

		CORS: CORSConfig{AllowedOrigins: splitCSV(envString("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: envString("OTEL_SERVICE_NAME", "feedback-hub"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(oneOf(cfg.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"),
		"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	check(strings.TrimSpace(cfg.Port) != "", "PORT must not be empty")
	check(cfg.ReadTimeout > 0 && cfg.ReadHeaderTimeout > 0 && cfg.WriteTimeout > 0 && cfg.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(cfg.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch cfg.DB.Driver {
	case "sqlite":
		check(strings.TrimSpace(cfg.DB.Path) != "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(cfg.DB.URL) != "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		check(false, "DB_DRIVER must be one of: sqlite, postgres (got %q)", cfg.DB.Driver)
	}

	check(oneOf(cfg.AI.Provider, "", "openai", "google", "claude", "deepseek"),
		"AI_PROVIDER must be one of: openai, google, claude, deepseek (got %q)", cfg.AI.Provider)
	check(cfg.AI.Timeout > 0, "AI_TIMEOUT must be > 0")
	check(cfg.AI.Timeout < cfg.WriteTimeout || cfg.WriteTimeout <= 0,
		"AI_TIMEOUT (%s) must be shorter than WRITE_TIMEOUT (%s)", cfg.AI.Timeout, cfg.WriteTimeout)
	check(cfg.LatestItemsWindow > 0, "LATEST_ITEMS_WINDOW must be > 0")

	check(cfg.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(cfg.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(cfg.FunctionRateRPS >= 0 && cfg.FunctionRateRPS <= cfg.RateRPS, "FUNCTION_RATE_RPS must be in [0, RATE_RPS]")
	check(cfg.FunctionRateBurst >= 1, "FUNCTION_RATE_BURST must be >= 1")

	check(cfg.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(cfg.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(cfg.OTEL.SampleRatio >= 0 && cfg.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// env returns parse(value) for a set, non-empty variable and def otherwise,
// including when parse fails.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return out
}

func envString(key, def string) string {
	return env(key, def, func(s string) (string, error) { return s, nil })
}

func envInt(key string, def int) int { return env(key, def, strconv.Atoi) }

func envFloat(key string, def float64) float64 {
	return env(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envDuration(key string, def time.Duration) time.Duration {
	return env(key, def, time.ParseDuration)
}

func envBool(key string, def bool) bool {
	return env(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash;
// blank means root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
