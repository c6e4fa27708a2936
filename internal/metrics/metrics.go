package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meta_solidaria",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meta_solidaria",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	donationsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meta_solidaria",
			Subsystem: "progress",
			Name:      "donations_recorded_total",
			Help:      "Total number of progress entries appended.",
		},
	)

	invitationRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meta_solidaria",
			Subsystem: "invitations",
			Name:      "redemptions_total",
			Help:      "Invitation redemption attempts by outcome.",
		},
		[]string{"outcome"},
	)

	analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meta_solidaria",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "External analysis calls by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		donationsRecorded,
		invitationRedemptions,
		analysisRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// DonationRecorded increments the progress entry counter.
func DonationRecorded() {
	donationsRecorded.Inc()
}

// InvitationRedeemed records a redemption attempt outcome
// (consumed, rejected, conflict).
func InvitationRedeemed(outcome string) {
	invitationRedemptions.WithLabelValues(outcome).Inc()
}

// AnalysisRequest records an external analysis call outcome
// (ok, rate_limited, error).
func AnalysisRequest(outcome string) {
	analysisRequests.WithLabelValues(outcome).Inc()
}
