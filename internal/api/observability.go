package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "familynest_admin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "familynest_admin", Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	adminActionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "familynest_admin", Name: "admin_actions_total", Help: "Mutating admin actions by kind"},
		[]string{"action"},
	)
	loginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "familynest_admin", Name: "login_attempts_total", Help: "Login attempts by outcome"},
		[]string{"outcome"},
	)
	sweptNotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "familynest_admin", Name: "swept_notifications_total", Help: "Notifications deactivated by the sweeper"},
	)
)

func init() {
	prometheus.MustRegister(reqDuration, reqTotal, adminActionTotal, loginTotal, sweptNotificationsTotal)
}

// MetricsMiddleware records basic HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		observer := reqDuration.WithLabelValues(c.Request.Method, path, status)
		// attach exemplar with trace_id if present
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			if eo, ok := observer.(prometheus.ExemplarObserver); ok {
				eo.ObserveWithExemplar(dur, prometheus.Labels{"trace_id": sc.TraceID().String()})
			} else {
				observer.Observe(dur)
			}
		} else {
			observer.Observe(dur)
		}
		reqTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// RecordAdminAction increments the mutation counter for audit dashboards.
func RecordAdminAction(action string) {
	adminActionTotal.WithLabelValues(action).Inc()
}

// RecordLogin increments the login counter by outcome.
func RecordLogin(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	loginTotal.WithLabelValues(outcome).Inc()
}
