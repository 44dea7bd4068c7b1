// Package metrics exposes polling session activity as Prometheus metrics.
//
// A [Collector] is fed with session events and keeps per-session series
// labelled by session ID and display name. Series of a cancelled session are
// deleted so that short-lived sessions do not accumulate.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/livepoll/internal/poller"
)

const namespace = "livepoll"

// Collector turns session events into Prometheus metrics.
type Collector struct {
	requests  *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.GaugeVec
	nextDelay *prometheus.GaugeVec
	active    prometheus.Gauge

	mu   sync.Mutex
	live map[string]struct{}
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, fmt.Errorf("metrics: registerer is nil")
	}

	c := &Collector{
		live: make(map[string]struct{}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of poll requests issued",
			},
			[]string{"session", "name"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Total number of settled poll requests by outcome",
			},
			[]string{"session", "name", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time from request to settlement in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 30, 120},
			},
			[]string{"session", "name", "outcome"},
		),
		failures: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "consecutive_failures",
				Help:      "Consecutive failures since the last success",
			},
			[]string{"session", "name"},
		),
		nextDelay: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "next_delay_seconds",
				Help:      "Delay before the next scheduled request in seconds",
			},
			[]string{"session", "name"},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of live polling sessions",
			},
		),
	}

	for _, col := range []prometheus.Collector{c.requests, c.outcomes, c.duration, c.failures, c.nextDelay, c.active} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

// Observe records a session event. It satisfies [poller.Observer].
func (c *Collector) Observe(ev poller.Event) {
	id, name := ev.Session.ID, ev.Session.Name

	switch ev.Kind {
	case poller.EventStarted:
		if c.track(id) {
			c.active.Inc()
		}
		c.failures.WithLabelValues(id, name).Set(0)
	case poller.EventRequest:
		c.requests.WithLabelValues(id, name).Inc()
	case poller.EventSuccess, poller.EventFailure, poller.EventTimeout:
		outcome := string(ev.Kind)
		c.outcomes.WithLabelValues(id, name, outcome).Inc()
		c.duration.WithLabelValues(id, name, outcome).Observe(ev.Session.LastLatency.Seconds())
		c.failures.WithLabelValues(id, name).Set(float64(ev.Session.ConsecutiveFailures))
	case poller.EventScheduled:
		c.nextDelay.WithLabelValues(id, name).Set(ev.Delay.Seconds())
	case poller.EventCancelled:
		// a session cancelled before it started was never counted
		if c.untrack(id) {
			c.active.Dec()
		}
		match := prometheus.Labels{"session": id}
		c.requests.DeletePartialMatch(match)
		c.outcomes.DeletePartialMatch(match)
		c.duration.DeletePartialMatch(match)
		c.failures.DeletePartialMatch(match)
		c.nextDelay.DeletePartialMatch(match)
	}
}

// track marks a session live. It reports false if it already was.
func (c *Collector) track(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live[id]; ok {
		return false
	}
	c.live[id] = struct{}{}
	return true
}

// untrack forgets a session. It reports false if it was not live.
func (c *Collector) untrack(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live[id]; !ok {
		return false
	}
	delete(c.live, id)
	return true
}
