package logger

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Log categories for events that repeat on every poll tick while an
// upstream stays broken.
const (
	CategoryPollFailure   = "poll_failure"
	CategoryUpstreamError = "upstream_error"
	CategoryTokenRefresh  = "token_refresh"
)

// SampledLogger rate-limits log lines per category: within each window it
// lets the first burst messages through and counts the rest, then reports
// the suppressed count on the next line that passes.
type SampledLogger struct {
	base     Logger
	mu       sync.Mutex
	samplers map[string]*sampler
	now      func() time.Time
}

type sampler struct {
	window     time.Duration
	burst      int
	windowFrom time.Time
	passed     int
	dropped    int64
	total      int64
}

// SamplerStats is a snapshot of one category's counters.
type SamplerStats struct {
	Name    string `json:"name"`
	Total   int64  `json:"total"`
	Dropped int64  `json:"dropped"`
}

// NewSampledLogger creates a sampled logger over base with no categories.
func NewSampledLogger(base Logger) *SampledLogger {
	return &SampledLogger{
		base:     base,
		samplers: make(map[string]*sampler),
		now:      time.Now,
	}
}

// WithSampler configures a category. Categories without a sampler always log.
func (s *SampledLogger) WithSampler(category string, window time.Duration, burst int) *SampledLogger {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samplers[category] = &sampler{window: window, burst: burst}
	return s
}

// allow reports whether a message may pass and how many were suppressed
// since the last one that did.
func (s *SampledLogger) allow(category string) (bool, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sm, ok := s.samplers[category]
	if !ok {
		return true, 0
	}

	sm.total++
	now := s.now()
	if now.Sub(sm.windowFrom) >= sm.window {
		sm.windowFrom = now
		sm.passed = 0
	}

	if sm.passed >= sm.burst {
		sm.dropped++
		return false, 0
	}

	sm.passed++
	suppressed := sm.dropped
	sm.dropped = 0
	return true, suppressed
}

// Logf logs msg under category at level if the category's sampler allows it.
func (s *SampledLogger) Logf(level logrus.Level, category string, fields map[string]interface{}, msg string) {
	ok, suppressed := s.allow(category)
	if !ok {
		return
	}

	out := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["category"] = category
	if suppressed > 0 {
		out["suppressed"] = suppressed
	}
	s.base.WithFields(out).Log(level, msg)
}

// Stats returns counters for every configured category.
func (s *SampledLogger) Stats() map[string]SamplerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]SamplerStats, len(s.samplers))
	for name, sm := range s.samplers {
		stats[name] = SamplerStats{Name: name, Total: sm.total, Dropped: sm.dropped}
	}
	return stats
}

// NewPollLogger returns a sampled logger preconfigured for the status pollers:
// at most three identical failure lines per minute per poller.
func NewPollLogger(base Logger) *SampledLogger {
	return NewSampledLogger(base).
		WithSampler(CategoryPollFailure, time.Minute, 3).
		WithSampler(CategoryUpstreamError, time.Minute, 5).
		WithSampler(CategoryTokenRefresh, 10*time.Second, 1)
}
