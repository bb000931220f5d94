package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry. It records HTTP traffic
// and notification outcomes.
type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	decisionsTotal  *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_decisions_total",
			Help: "Notification gating decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_emails_total",
			Help: "Notification email outcomes",
		}, []string{"outcome"}),
	}
	c.registry.MustRegister(c.requestsTotal, c.requestDuration, c.decisionsTotal, c.emailsTotal)
	return c
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordDecision(allowed bool, reason string) {
	outcome := "skipped"
	if allowed {
		outcome = "allowed"
	}
	c.decisionsTotal.WithLabelValues(outcome, reason).Inc()
}

func (c *Collector) RecordEmail(outcome string) {
	c.emailsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
