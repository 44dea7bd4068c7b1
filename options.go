package livepoll

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// pollerConfig holds mutable state during Poller construction.
type pollerConfig struct {
	transport   Transport
	clock       Clock
	maxSessions int
	logger      *slog.Logger
	registerer  prometheus.Registerer
	hooks       []func(Event)
}

// Option is a function that configures a [Poller] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithLogger], [WithTransport], [WithClock],
// [WithMaxSessions], [WithRegisterer], [WithEventHook].
type Option func(*pollerConfig) error

// WithLogger sets a custom [slog.Logger] for the Poller and its sessions.
//
// If not specified, [slog.Default] is used. Successful polls log at Debug;
// failures and timeouts log at Warn.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *pollerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTransport replaces the default HTTP client.
//
// The transport is shared by all sessions of the Poller. Its Supported
// method is the capability check behind [Poller.TransportSupported].
//
// Returns an error if the transport is nil.
func WithTransport(t Transport) Option {
	return func(cfg *pollerConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithClock replaces the wall clock that drives watchdogs and backoff timers.
//
// Returns an error if the clock is nil.
func WithClock(c Clock) Option {
	return func(cfg *pollerConfig) error {
		if c == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithMaxSessions caps the number of live sessions.
//
// [Poller.Start] returns [ErrTooManySessions] once the cap is reached.
// Zero, the default, means no cap.
//
// Returns an error if n is negative.
func WithMaxSessions(n int) Option {
	return func(cfg *pollerConfig) error {
		if n < 0 {
			return errors.New("max sessions cannot be negative")
		}
		cfg.maxSessions = n
		return nil
	}
}

// WithRegisterer enables Prometheus metrics on the given registerer.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	p, err := livepoll.New(livepoll.WithRegisterer(reg))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Returns an error if the registerer is nil.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *pollerConfig) error {
		if reg == nil {
			return errors.New("registerer cannot be nil")
		}
		cfg.registerer = reg
		return nil
	}
}

// WithEventHook registers a function to be called on every session transition.
//
// Multiple hooks may be registered; they execute in registration order.
//
// IMPORTANT: Hooks must be non-blocking. They run on the session's goroutine
// and delay its next transition. Panics within hooks are recovered and logged.
// Events of one session reach hooks one at a time, and the cancelled event is
// always the last. A hook must not cancel the session it is observing
// synchronously; start a goroutine for that.
//
// Nil hooks are silently ignored.
func WithEventHook(hook func(Event)) Option {
	return func(cfg *pollerConfig) error {
		if hook == nil {
			return nil
		}
		cfg.hooks = append(cfg.hooks, hook)
		return nil
	}
}
