package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics holds request counters for the running process. Counters are
// atomics; the per-endpoint maps take the mutex.
type Metrics struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	maxLatencyMs   int64

	startTime time.Time

	mu                sync.Mutex
	endpointCounts    map[string]int64
	endpointLatencies map[string]int64
	statusCodes       map[int]int64
}

func New() *Metrics {
	return &Metrics{
		startTime:         time.Now(),
		endpointCounts:    make(map[string]int64),
		endpointLatencies: make(map[string]int64),
		statusCodes:       make(map[int]int64),
	}
}

// Middleware tracks request count, latency, active connections and error
// rates per endpoint.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			start := time.Now()

			err := next(c)

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.activeRequests, -1)
			atomic.AddInt64(&m.totalRequests, 1)
			atomic.AddInt64(&m.totalLatencyMs, latencyMs)

			// Lock-free CAS loop for the max.
			for {
				current := atomic.LoadInt64(&m.maxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.maxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.endpointCounts[endpoint]++
			m.endpointLatencies[endpoint] += latencyMs
			m.statusCodes[statusCode]++
			m.mu.Unlock()

			if statusCode >= http.StatusBadRequest {
				atomic.AddInt64(&m.totalErrors, 1)
			}

			return err
		}
	}
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	errCount := atomic.LoadInt64(&m.totalErrors)
	totalLatency := atomic.LoadInt64(&m.totalLatencyMs)

	snap := Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.activeRequests),
		TotalErrors:    errCount,
		MaxLatencyMs:   atomic.LoadInt64(&m.maxLatencyMs),
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
	}

	if total > 0 {
		snap.AvgLatencyMs = float64(totalLatency) / float64(total)
		snap.ErrorRate = float64(errCount) / float64(total) * 100
	}

	m.mu.Lock()
	snap.EndpointCounts = make(map[string]int64, len(m.endpointCounts))
	snap.EndpointAvgMs = make(map[string]int64, len(m.endpointLatencies))
	for endpoint, count := range m.endpointCounts {
		snap.EndpointCounts[endpoint] = count
		if count > 0 {
			snap.EndpointAvgMs[endpoint] = m.endpointLatencies[endpoint] / count
		}
	}
	snap.StatusCodes = make(map[int]int64, len(m.statusCodes))
	for code, count := range m.statusCodes {
		snap.StatusCodes[code] = count
	}
	m.mu.Unlock()

	return snap
}

// Handler serves the current snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
