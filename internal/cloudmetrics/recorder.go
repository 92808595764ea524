package cloudmetrics

import (
	"strings"
	"sync"
)

type Recorder interface {
	RecordInsightsServed(tenantID, endpoint string)
	RecordEngineError(tenantID, operation string)
}

type recorder struct {
	metrics *metrics
}

type noopRecorder struct{}

func (noopRecorder) RecordInsightsServed(string, string) {}
func (noopRecorder) RecordEngineError(string, string)    {}

var (
	activeRecorder Recorder = noopRecorder{}
	recorderMu     sync.RWMutex
)

func setRecorder(rec Recorder) {
	if rec == nil {
		return
	}
	recorderMu.Lock()
	activeRecorder = rec
	recorderMu.Unlock()
}

func currentRecorder() Recorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return activeRecorder
}

// RecordInsightsServed counts a successful insights payload. It is a no-op
// until cloud metrics are enabled.
func RecordInsightsServed(tenantID, endpoint string) {
	currentRecorder().RecordInsightsServed(tenantID, endpoint)
}

func RecordEngineError(tenantID, operation string) {
	currentRecorder().RecordEngineError(tenantID, operation)
}

func (r *recorder) RecordInsightsServed(tenantID, endpoint string) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.insightsServed.WithLabelValues(normalizeLabel(tenantID), normalizeLabel(endpoint)).Inc()
}

func (r *recorder) RecordEngineError(tenantID, operation string) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.engineErrors.WithLabelValues(normalizeLabel(tenantID), normalizeLabel(strings.ToLower(operation))).Inc()
}
