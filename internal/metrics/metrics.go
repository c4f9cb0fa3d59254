package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll cycle outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeFetchError   = "fetch_error"
	OutcomeMalformed    = "malformed"
	OutcomeMissingField = "missing_field"
	OutcomeUnknownSlot  = "unknown_slot"
	OutcomeCanceled     = "canceled"
)

var (
	// Display poller metrics
	pollCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedash_poll_cycles_total",
		Help: "Total poll cycles by poller and outcome",
	}, []string{"poller", "outcome"})

	pollCycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "livedash_poll_cycle_duration_seconds",
		Help:    "Duration of one poll cycle from request to last slot write",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"poller"})

	slotWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedash_slot_writes_total",
		Help: "Total display slot writes by poller",
	}, []string{"poller"})

	pollersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livedash_pollers_active",
		Help: "Number of running pollers",
	})

	// Upstream API metrics
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedash_upstream_requests_total",
		Help: "Total upstream API requests by api and HTTP status",
	}, []string{"api", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "livedash_upstream_request_duration_seconds",
		Help:    "Upstream API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"api"})

	tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedash_token_refreshes_total",
		Help: "Total OAuth token refresh attempts by result",
	}, []string{"result"})
)

// RecordPollCycle counts a finished cycle and its duration.
func RecordPollCycle(poller, outcome string, seconds float64) {
	pollCyclesTotal.WithLabelValues(poller, outcome).Inc()
	pollCycleDuration.WithLabelValues(poller).Observe(seconds)
}

// IncrementSlotWrites counts a successful slot write.
func IncrementSlotWrites(poller string) {
	slotWritesTotal.WithLabelValues(poller).Inc()
}

// IncrementActivePollers marks a poller as running.
func IncrementActivePollers() {
	pollersActive.Inc()
}

// DecrementActivePollers marks a poller as stopped.
func DecrementActivePollers() {
	pollersActive.Dec()
}

// RecordUpstreamRequest counts one upstream call. A status of 0 means the
// request never got a response.
func RecordUpstreamRequest(api string, status int, seconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequestsTotal.WithLabelValues(api, label).Inc()
	upstreamRequestDuration.WithLabelValues(api).Observe(seconds)
}

// IncrementTokenRefresh counts a refresh attempt; result is "success" or
// "failure".
func IncrementTokenRefresh(result string) {
	tokenRefreshesTotal.WithLabelValues(result).Inc()
}
