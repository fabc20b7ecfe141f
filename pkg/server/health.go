package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"portfolioos/pkg/logger"
	"portfolioos/pkg/router"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// HealthHandler returns a liveness handler.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
}

// ReadyHandler returns 200 when every named check passes and 503 otherwise.
func ReadyHandler(checks map[string]Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			router.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"failed": failed,
			})
			return
		}
		router.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}

// Gauge reports a current count, such as live desktop sessions.
type Gauge func() int

// Snapshot is the body served by MetricsHandler.
type Snapshot struct {
	Uptime     string         `json:"uptime"`
	Goroutines int            `json:"goroutines"`
	HeapAlloc  uint64         `json:"heapAlloc"`
	Gauges     map[string]int `json:"gauges,omitempty"`
	Host       *HostStats     `json:"host,omitempty"`
}

// HostStats describes the machine the server runs on.
type HostStats struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	Uptime        string  `json:"uptime"`
	MemoryTotal   uint64  `json:"memoryTotal"`
	MemoryUsed    uint64  `json:"memoryUsed"`
	MemoryPercent float64 `json:"memoryPercent"`
	Load1         float64 `json:"load1,omitempty"`
}

// Metrics collects process and host statistics.
type Metrics struct {
	started time.Time
	gauges  map[string]Gauge
	log     *logger.Logger
}

// NewMetrics creates a collector. Uptime is measured from now.
func NewMetrics(log *logger.Logger) *Metrics {
	if log == nil {
		log = logger.Nop()
	}
	return &Metrics{started: time.Now(), gauges: map[string]Gauge{}, log: log}
}

// Gauge registers a named gauge. It is not safe to call concurrently with
// Collect.
func (m *Metrics) Gauge(name string, g Gauge) {
	m.gauges[name] = g
}

// Collect gathers a snapshot. Host statistics are best effort; on failure
// they are omitted and the error is logged.
func (m *Metrics) Collect(ctx context.Context) Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := Snapshot{
		Uptime:     time.Since(m.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
	}
	if len(m.gauges) > 0 {
		snap.Gauges = make(map[string]int, len(m.gauges))
		for name, g := range m.gauges {
			snap.Gauges[name] = g()
		}
	}

	hs, err := m.hostStats(ctx)
	if err != nil {
		m.log.Debug("Host statistics unavailable", "error", err.Error())
	} else {
		snap.Host = hs
	}
	return snap
}

func (m *Metrics) hostStats(ctx context.Context) (*HostStats, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	hs := &HostStats{
		Hostname:      info.Hostname,
		Platform:      info.Platform,
		Uptime:        (time.Duration(info.Uptime) * time.Second).String(),
		MemoryTotal:   vm.Total,
		MemoryUsed:    vm.Used,
		MemoryPercent: vm.UsedPercent,
	}
	// Load average is not available on Windows.
	if avg, err := load.AvgWithContext(ctx); err == nil {
		hs.Load1 = avg.Load1
	}
	return hs, nil
}

// MetricsHandler serves m.Collect as JSON.
func MetricsHandler(m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.WriteJSON(w, http.StatusOK, m.Collect(r.Context()))
	})
}
