package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is a no-op.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	baixas       *prometheus.CounterVec
	stockAlerts  *prometheus.GaugeVec
	alertScans   prometheus.Histogram
	cacheLookups *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lab_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		baixas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_stock_withdrawals_total",
			Help: "Stock withdrawals (baixas) by outcome.",
		}, []string{"outcome"}),
		stockAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lab_stock_alerts",
			Help: "Current stock alerts by derived status.",
		}, []string{"status"}),
		alertScans: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lab_alert_scan_duration_seconds",
			Help:    "Duration of stock alert scans.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_cache_lookups_total",
			Help: "Cache lookups by key and result.",
		}, []string{"key", "result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.baixas, m.stockAlerts, m.alertScans, m.cacheLookups)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncBaixa counts a withdrawal; outcome is "ok" or an error code.
func (m *Metrics) IncBaixa(outcome string) {
	if m == nil || m.baixas == nil {
		return
	}
	m.baixas.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// SetStockAlerts replaces the alert gauge with counts per status.
func (m *Metrics) SetStockAlerts(counts map[string]int) {
	if m == nil || m.stockAlerts == nil {
		return
	}
	m.stockAlerts.Reset()
	for status, n := range counts {
		m.stockAlerts.WithLabelValues(status).Set(float64(n))
	}
}

func (m *Metrics) ObserveAlertScan(elapsed time.Duration) {
	if m == nil || m.alertScans == nil {
		return
	}
	m.alertScans.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheLookup(key string, hit bool) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(normalizeLabel(key), result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
