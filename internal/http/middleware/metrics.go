package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values are bounded: route is the registered Gin pattern, or
// "unmatched" for 404s, and mode is "demo" or "live".
var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbackhub_http_requests_total",
			Help: "HTTP requests by method, route, status and data mode.",
		},
		[]string{"method", "route", "status", "mode"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "feedbackhub_http_request_duration_seconds",
			Help: "HTTP request latency by method and route.",
			// /functions routes wait on AI providers for tens of seconds.
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feedbackhub_http_requests_inflight",
		Help: "HTTP requests currently being served.",
	})

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedbackhub_http_response_size_bytes",
			Help:    "HTTP response body size by route.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// Metrics records the feedbackhub_http_* collectors. Install it after
// DemoMode so the mode label is known.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		mode := "live"
		if IsDemo(c) {
			mode = "demo"
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status()), mode).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(route).Observe(float64(size))
		}
	}
}
