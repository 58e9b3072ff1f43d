package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics keeps in-process request counters. It is created once at startup and
// shared through the middleware, not through package globals.
type Metrics struct {
	mu            sync.RWMutex
	requestCount  int64
	errorCount    int64
	activeCount   int64
	statusCodes   map[string]int64
	endpoints     map[string]int64
	totalDuration time.Duration
	startTime     time.Time
	lastRequest   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeCount++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		m.mu.Lock()
		m.activeCount--
		m.requestCount++
		m.totalDuration += duration
		m.lastRequest = time.Now()
		m.statusCodes[strconv.Itoa(status)]++
		m.endpoints[c.Request.Method+" "+c.FullPath()]++
		if status >= 500 {
			m.errorCount++
		}
		m.mu.Unlock()
	}
}

func (m *Metrics) Handler(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgDuration time.Duration
	if m.requestCount > 0 {
		avgDuration = m.totalDuration / time.Duration(m.requestCount)
	}

	c.JSON(http.StatusOK, gin.H{
		"request_count":           m.requestCount,
		"error_count":             m.errorCount,
		"active_requests":         m.activeCount,
		"avg_request_duration_ms": avgDuration.Milliseconds(),
		"status_codes":            m.statusCodes,
		"endpoint_calls":          m.endpoints,
		"start_time":              m.startTime,
		"last_request":            m.lastRequest,
		"goroutines":              runtime.NumGoroutine(),
		"heap_alloc_bytes":        memStats.HeapAlloc,
	})
}

type HealthCheckFunc func(ctx context.Context) error

// HealthChecker runs registered dependency probes on demand.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheckFunc
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]HealthCheckFunc)}
}

func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *HealthChecker) Handler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	status := http.StatusOK
	results := make(map[string]string, len(checks))
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[name] = "ok"
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": results,
	})
}
