package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ReportsTotal       uint64
	StartTime          time.Time

	mu            sync.Mutex
	facetFailures map[string]map[conversation.FailureReason]uint64
}

var globalMetrics = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{
		StartTime:     time.Now(),
		facetFailures: map[string]map[conversation.FailureReason]uint64{},
	}
}

func IncrementRequests() { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }
func IncrementInProgress() { atomic.AddUint64(&globalMetrics.RequestsInProgress, 1) }
func DecrementInProgress() { atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0)) }
func IncrementSuccess() { atomic.AddUint64(&globalMetrics.RequestsSuccess, 1) }
func IncrementFailed() { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }
func IncrementReports() { atomic.AddUint64(&globalMetrics.ReportsTotal, 1) }

// IncrementFacetFailure counts a failed facet by name and reason.
func IncrementFacetFailure(facet string, reason conversation.FailureReason) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	byReason, ok := globalMetrics.facetFailures[facet]
	if !ok {
		byReason = map[conversation.FailureReason]uint64{}
		globalMetrics.facetFailures[facet] = byReason
	}
	byReason[reason]++
}

// Recorder feeds report counters from the orchestrator into the global metrics.
type Recorder struct{}

func (Recorder) ReportBuilt() { IncrementReports() }

func (Recorder) FacetFailed(facet string, reason conversation.FailureReason) {
	IncrementFacetFailure(facet, reason)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	globalMetrics.mu.Lock()
	failures := make(map[string]map[conversation.FailureReason]uint64, len(globalMetrics.facetFailures))
	for facet, byReason := range globalMetrics.facetFailures {
		cp := make(map[conversation.FailureReason]uint64, len(byReason))
		for r, n := range byReason {
			cp[r] = n
		}
		failures[facet] = cp
	}
	globalMetrics.mu.Unlock()

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"reports_total":        atomic.LoadUint64(&globalMetrics.ReportsTotal),
		"facet_failures":       failures,
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
