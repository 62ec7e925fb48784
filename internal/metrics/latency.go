package metrics

import (
	"sync"
	"time"
)

// Latency summarises the calls made to one upstream endpoint
type Latency struct {
	Calls       uint64    `json:"calls"`
	Errors      uint64    `json:"errors"`
	ErrorRate   float64   `json:"error_rate"`
	EWMAms      float64   `json:"ewma_ms"`
	LastMS      float64   `json:"last_ms"`
	LastAt      time.Time `json:"last_at"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at"`
}

type LatencyTracker struct {
	mu        sync.RWMutex
	alpha     float64
	endpoints map[string]*Latency
}

// NewLatencyTracker falls back to alpha 0.2 outside (0, 1)
func NewLatencyTracker(alpha float64) *LatencyTracker {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.2
	}
	return &LatencyTracker{
		alpha:     alpha,
		endpoints: map[string]*Latency{},
	}
}

// Observe records one call; a non-nil err counts it as failed
func (t *LatencyTracker) Observe(endpoint string, rtt time.Duration, err error) {
	ms := max(float64(rtt)/float64(time.Millisecond), 0)
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	l, seen := t.endpoints[endpoint]
	switch {
	case !seen:
		l = &Latency{EWMAms: ms}
		t.endpoints[endpoint] = l
	default:
		l.EWMAms += t.alpha * (ms - l.EWMAms)
	}

	l.Calls++
	l.LastMS = ms
	l.LastAt = now
	if err != nil {
		l.Errors++
		l.LastError = err.Error()
		l.LastErrorAt = now
	}
	l.ErrorRate = float64(l.Errors) / float64(l.Calls)
}

func (t *LatencyTracker) Get(endpoint string) (Latency, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if l, ok := t.endpoints[endpoint]; ok {
		return *l, true
	}
	return Latency{}, false
}

// Snapshot copies every endpoint summary for /api/info
func (t *LatencyTracker) Snapshot() map[string]Latency {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Latency, len(t.endpoints))
	for k, v := range t.endpoints {
		out[k] = *v
	}
	return out
}
