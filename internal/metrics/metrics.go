// Package metrics provides Prometheus instrumentation for the roulette
// attestation and risk services.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkroulette",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zkroulette",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CommitmentsCreatedTotal counts minted bet commitments.
	CommitmentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zkroulette",
		Name:      "commitments_created_total",
		Help:      "Total bet commitments minted.",
	})

	// CommitmentsExpiredTotal counts commitments removed by the TTL sweeper.
	CommitmentsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zkroulette",
		Name:      "commitments_expired_total",
		Help:      "Total commitments removed by the expiry sweeper.",
	})

	// AttestationsIssuedTotal counts issued challenge-response attestations.
	AttestationsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zkroulette",
		Name:      "attestations_issued_total",
		Help:      "Total attestations issued.",
	})

	// AttestationVerificationsTotal counts verification outcomes.
	AttestationVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkroulette",
			Name:      "attestation_verifications_total",
			Help:      "Total attestation verifications by result (ok, rejected).",
		},
		[]string{"result"},
	)

	// SpinsTotal counts settled spins folded into the posterior model.
	SpinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zkroulette",
		Name:      "spins_total",
		Help:      "Total settled spins recorded.",
	})

	// RiskGateDecisionsTotal counts pre-bet risk gate outcomes by level.
	RiskGateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkroulette",
			Name:      "risk_gate_decisions_total",
			Help:      "Total pre-bet risk gate decisions by risk level.",
		},
		[]string{"level"},
	)

	// RateLimitedRequestsTotal counts requests rejected by the bet limiter.
	RateLimitedRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zkroulette",
		Name:      "rate_limited_requests_total",
		Help:      "Total bet preparations rejected by the per-player rate limiter.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zkroulette",
		Name:      "active_websocket_clients",
		Help:      "Number of currently connected WebSocket clients.",
	})

	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zkroulette",
		Name:      "goroutines",
		Help:      "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CommitmentsCreatedTotal,
		CommitmentsExpiredTotal,
		AttestationsIssuedTotal,
		AttestationVerificationsTotal,
		SpinsTotal,
		RiskGateDecisionsTotal,
		RateLimitedRequestsTotal,
		ActiveWebSocketClients,
		GoroutineCount,
	)
}

// StartRuntimeCollector periodically samples the goroutine count. Call in a
// goroutine; exits when ctx is done.
func StartRuntimeCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
