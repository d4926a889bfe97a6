// Package monitoring watches stock levels and pushes new alerts to
// websocket subscribers.
package monitoring

import (
	"context"
	"sync"
	"time"

	"lab-backend/internal/catalog"
	"lab-backend/internal/logger"
	"lab-backend/internal/metrics"
	"lab-backend/internal/models"
)

const DefaultInterval = 5 * time.Minute

const (
	EventSnapshot = "snapshot"
	EventNew      = "novos"
)

// Event is the websocket message.
type Event struct {
	Type   string              `json:"tipo"`
	Alerts []models.StockAlert `json:"alertas"`
}

// AlertSource is implemented by services.MaterialService.
type AlertSource interface {
	Alerts(ctx context.Context) ([]models.StockAlert, error)
}

// StockMonitor rescans on a fixed interval and whenever Trigger is called.
// An alert is pushed once per condition: it is new when its Key was absent
// from the previous scan.
type StockMonitor struct {
	source   AlertSource
	interval time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
	hub      *Hub

	mu      sync.RWMutex
	current []models.StockAlert
	seen    map[string]struct{}

	trigger chan struct{}
}

func NewStockMonitor(source AlertSource, interval time.Duration, hub *Hub, m *metrics.Metrics, log *logger.Logger) *StockMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockMonitor{
		source:   source,
		interval: interval,
		log:      log.Component("monitor"),
		metrics:  m,
		hub:      hub,
		seen:     map[string]struct{}{},
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a scan without blocking. Requests made while one is
// already pending are merged.
func (m *StockMonitor) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Run scans until ctx is cancelled.
func (m *StockMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.scanAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.trigger:
		}
		m.scanAndLog(ctx)
	}
}

func (m *StockMonitor) scanAndLog(ctx context.Context) {
	fresh, err := m.Scan(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Error(ctx, "stock alert scan failed", err)
		}
		return
	}
	if len(fresh) > 0 {
		m.log.Info(m.log.WithField(ctx, "new_alerts", len(fresh)), "stock alerts raised")
	}
}

// Scan refreshes the current alert set, broadcasts the alerts that were not
// present in the previous scan and returns them.
func (m *StockMonitor) Scan(ctx context.Context) ([]models.StockAlert, error) {
	start := time.Now()
	alerts, err := m.source.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveAlertScan(time.Since(start))

	seen := make(map[string]struct{}, len(alerts))
	counts := make(map[string]int, len(catalog.Statuses))
	var fresh []models.StockAlert

	m.mu.Lock()
	for _, a := range alerts {
		key := a.Key()
		seen[key] = struct{}{}
		counts[a.Status]++
		if _, ok := m.seen[key]; !ok {
			fresh = append(fresh, a)
		}
	}
	m.seen = seen
	m.current = alerts
	m.mu.Unlock()

	m.metrics.SetStockAlerts(counts)
	if len(fresh) > 0 && m.hub != nil {
		m.hub.Broadcast(Event{Type: EventNew, Alerts: fresh})
	}
	return fresh, nil
}

// Current returns the alerts of the latest scan.
func (m *StockMonitor) Current() []models.StockAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.StockAlert, len(m.current))
	copy(out, m.current)
	return out
}
