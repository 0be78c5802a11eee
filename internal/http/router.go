// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, identity and demo mode, logging/redaction,
// panic recovery, metrics, compression, CORS, security headers, idempotency,
// and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → identity → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/feedback-hub/docs"
	"github.com/tbourn/feedback-hub/internal/config"
	"github.com/tbourn/feedback-hub/internal/demo"
	"github.com/tbourn/feedback-hub/internal/http/handlers"
	"github.com/tbourn/feedback-hub/internal/http/middleware"
	"github.com/tbourn/feedback-hub/internal/services"
)

// Paths served without identity.
var publicPaths = []string{"/health", "/metrics", "/swagger"}

// corsHeaders are the request headers browsers may send cross-origin.
var corsHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization",
	middleware.HeaderUserID, middleware.HeaderDemoMode, middleware.HeaderIdempotencyKey, "If-None-Match",
}

// corsExpose are the response headers readable cross-origin.
var corsExpose = []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderDemoMode, handlers.HeaderReplayed}

// LiveServices builds the database-backed service set from configuration.
func LiveServices(db *gorm.DB, cfg config.Config) handlers.Services {
	return handlers.Services{
		Feedback:      &services.FeedbackService{DB: db, Window: cfg.LatestItemsWindow},
		Insights:      &services.InsightService{DB: db},
		Opportunities: &services.OpportunityService{DB: db, IssueTracker: cfg.IssueTracker},
		Tribes:        &services.TribeService{DB: db},
		Functions:     &services.AggregationService{DB: db, AI: cfg.AI, Window: cfg.LatestItemsWindow},
		AIConfig:      &services.AIConfigService{DB: db},
		Users:         &services.UserService{DB: db},
	}
}

// DemoServices returns the fixture-backed service set used for demo
// requests. Nothing it does touches the database.
func DemoServices() handlers.Services {
	return handlers.Services{
		Feedback:      demo.FeedbackService{},
		Insights:      demo.InsightService{},
		Opportunities: demo.OpportunityService{},
		Tribes:        demo.TribeService{},
		Functions:     demo.FunctionService{},
		AIConfig:      demo.AIConfigService{},
		Users:         demo.UserService{},
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity and demo
// mode, idempotency and rate limiting, CORS and security headers, health,
// metrics and Swagger endpoints, and then mounts the versioned public API
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Demo mode and identity (X-Demo-Mode / X-User-ID)
//  4. AccessLog: request-scoped logger, scrubbed access lines
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Gzip
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP, bypass on replay)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Who is calling, and against which data set
	r.Use(middleware.DemoMode(cfg.DemoMode))
	r.Use(middleware.Identity(middleware.IdentityOptions{
		Require:   cfg.RequireAuth,
		SkipPaths: publicPaths,
	}))

	// 4) Structured logging with redaction
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{"X-API-Key"},
		QuietPaths:  []string{"/health", "/metrics"},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Compress JSON responses; metrics are scraped uncompressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) Idempotency validation (before rate limiting)
	idem := &services.IdempotencyService{DB: db, TTL: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scope, key string) (bool, error) {
			rec, err := idem.Lookup(ctx, userID, scope, key)
			return rec != nil, err
		},
	))

	// 10) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter("api", middleware.LimitPolicy{RPS: cfg.RateRPS, Burst: cfg.RateBurst})
	r.Use(rl.Handler())

	// 11) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  corsHeaders,
			ExposeHeaders: corsExpose,
			// The demo cookie must travel with cross-origin requests.
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStorePaths: []string{
			path.Join(cfg.APIBasePath, "ai-config"),
			path.Join(cfg.APIBasePath, "users"),
		},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db, fixtures for demo requests
	demoSet := DemoServices()
	h := handlers.New(LiveServices(db, cfg), &demoSet, idem)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Feedback
		api.GET("/feedbacks", h.FeedbackReport)
		api.POST("/feedbacks", h.CreateFeedback)
		api.GET("/feedbacks/:id", h.GetFeedback)
		api.GET("/latest-items", h.ListLatestItems)

		// Insights
		api.GET("/insights", h.ListInsights)
		api.POST("/insights", h.SaveInsight)
		api.GET("/insights/topics", h.ListInsightTopics)
		api.PUT("/insights/:id/tags", h.UpdateInsightTags)
		api.POST("/insights/:id/reject", h.RejectInsight)
		api.POST("/insights/:id/convert", h.ConvertInsight)
		api.DELETE("/insights/:id", h.DeleteInsight)

		// Roadmap
		api.GET("/opportunities", h.ListOpportunities)
		api.GET("/opportunities/board", h.OpportunityBoard)
		api.POST("/opportunities", h.CreateOpportunity)
		api.POST("/opportunities/from-topic", h.CreateOpportunityFromTopic)
		api.PUT("/opportunities/:id", h.UpdateOpportunity)
		api.GET("/opportunities/:id/sources", h.OpportunitySources)
		api.GET("/opportunities/:id/issue-url", h.OpportunityIssueURL)

		// Organization
		api.GET("/tribes", h.ListTribes)
		api.POST("/tribes", h.CreateTribe)
		api.PUT("/tribes/:id", h.UpdateTribe)
		api.DELETE("/tribes/:id", h.DeleteTribe)
		api.GET("/squads", h.ListSquads)
		api.POST("/squads", h.CreateSquad)
		api.PUT("/squads/:id", h.UpdateSquad)
		api.DELETE("/squads/:id", h.DeleteSquad)

		// Aggregation functions
		api.GET("/topics", h.ListTopicResults)
		fnLimit := middleware.NewRateLimiter("functions", middleware.LimitPolicy{RPS: cfg.FunctionRateRPS, Burst: cfg.FunctionRateBurst})
		fn := api.Group("/functions", fnLimit.Handler())
		fn.POST("/generate-latest-items", h.GenerateLatestItems)
		fn.POST("/generate-insights", h.GenerateInsights)
		fn.POST("/analyze-topics", h.AnalyzeTopics)
		fn.POST("/generate-insight-from-selection", h.GenerateInsightFromSelection)

		// Settings
		api.GET("/ai-config", h.GetAIConfig)
		api.PUT("/ai-config", h.SaveAIConfig)
		api.GET("/users", h.ListUsers)
		api.PUT("/users/:id", h.UpsertUser)
		api.DELETE("/users/:id", h.DeleteUser)
	}
}

// limitBody makes body reads past maxBytes fail with *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
