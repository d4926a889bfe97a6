package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

// Pinger is anything with a cheap reachability check: the pgx pool, the
// redis cache client, the document store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db        Pinger
	optional  map[string]Pinger
	startedAt time.Time
	version   string
}

type HealthStatus struct {
	Status     string                     `json:"status"`
	Database   ComponentHealth            `json:"database"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Version    string                     `json:"version,omitempty"`
	Host       *HostStats                 `json:"host,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
	Goroutines    int     `json:"goroutines"`
}

// NewHealthChecker takes the database and any optional dependencies by
// name. A nil optional pinger is reported as disabled.
func NewHealthChecker(db Pinger, version string, optional map[string]Pinger) *HealthChecker {
	return &HealthChecker{db: db, optional: optional, startedAt: time.Now(), version: version}
}

// CheckBasic is the liveness view: the process answers and the database
// is reachable.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.db)
	status := StatusHealthy
	if dbHealth.Status != StatusHealthy {
		status = StatusUnhealthy
	}
	return HealthStatus{Status: status, Database: dbHealth}
}

// CheckReady also requires every configured optional dependency.
func (h *HealthChecker) CheckReady(ctx context.Context) HealthStatus {
	st := h.CheckBasic(ctx)
	st.Components = make(map[string]ComponentHealth, len(h.optional))
	for name, p := range h.optional {
		c := check(ctx, p)
		st.Components[name] = c
		if c.Status == StatusUnhealthy {
			st.Status = StatusUnhealthy
		}
	}
	return st
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) HealthStatus {
	st := h.CheckReady(ctx)
	st.Uptime = formatUptime(time.Since(h.startedAt))
	st.Version = h.version
	st.Host = collectHost(ctx)
	return st
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: StatusDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	c := ComponentHealth{Status: StatusHealthy, ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status = StatusUnhealthy
		c.Error = err.Error()
	}
	return c
}

func collectHost(ctx context.Context) *HostStats {
	stats := &HostStats{Goroutines: runtime.NumGoroutine()}
	if percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}
	return stats
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds())
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
