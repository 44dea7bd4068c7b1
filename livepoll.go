package livepoll

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/livepoll/internal/metrics"
	"github.com/jpalmerr/livepoll/internal/poller"
)

// Poller owns a set of polling sessions and their shared transport.
//
// A Poller plays the role of the host that created the sessions. It is
// created using [New] with functional options, sessions are added with
// [Poller.Start], and everything is torn down by [Poller.Close].
//
// The typical lifecycle is:
//
//	p, err := livepoll.New(livepoll.WithLogger(logger))
//	if err != nil {
//	    slog.Error("failed to create poller", "error", err)
//	    os.Exit(1)
//	}
//	defer p.Close()
//
//	_, err = p.Start("https://console.local/ajaxstatus", func(body []byte, ex livepoll.Exchange) bool {
//	    if body == nil {
//	        return true // timed out, still polling
//	    }
//	    render(body)
//	    return true
//	}, 2*time.Minute, 2*time.Second)
//
// All methods are safe for concurrent use.
type Poller struct {
	group   *poller.Group
	metrics *metrics.Collector
	hooks   []func(Event)
	logger  *slog.Logger
}

// New creates a new [Poller] with the given options.
//
// Defaults:
//   - Transport: pooled HTTP client
//   - Clock: wall clock
//   - Max sessions: unlimited
//   - Logger: [slog.Default]
//   - Metrics: disabled unless [WithRegisterer] is given
//
// Returns an error if any option is invalid or metric registration fails.
func New(opts ...Option) (*Poller, error) {
	cfg := &pollerConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := cfg.transport
	if transport == nil {
		transport = poller.NewClient()
	}

	p := &Poller{
		hooks:  cfg.hooks,
		logger: logger,
	}

	observers := make([]poller.Observer, 0, 2)
	if cfg.registerer != nil {
		collector, err := metrics.New(cfg.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		p.metrics = collector
		observers = append(observers, collector.Observe)
	}
	if len(p.hooks) > 0 {
		observers = append(observers, p.dispatch)
	}

	p.group = poller.NewGroup(transport, cfg.clock, cfg.maxSessions, poller.Observers(observers...), logger)
	return p, nil
}

// Start begins polling uri and returns the new session.
//
// The first request is issued immediately. Each request waits at most
// maxWait for a response (zero disables the limit). After a success the
// next request follows baseInterval later; after failures the delay grows
// as described by [NextDelay]. The callback receives each successful body,
// or nil when a request timed out; non-2xx responses and network errors
// are not delivered to the callback.
//
// Start returns [ErrInvalidURI] for a URI that is not absolute http(s),
// [ErrInvalidDuration] for negative durations, [ErrTransportUnavailable]
// when the transport probe fails, [ErrTooManySessions] at the session cap,
// and [ErrPollerClosed] after [Poller.Close].
func (p *Poller) Start(uri string, cb Callback, maxWait, baseInterval time.Duration, opts ...SessionOption) (*Session, error) {
	if err := validateURI(uri); err != nil {
		return nil, err
	}
	if maxWait < 0 {
		return nil, fmt.Errorf("%w: max wait %s is negative", ErrInvalidDuration, maxWait)
	}
	if baseInterval < 0 {
		return nil, fmt.Errorf("%w: interval %s is negative", ErrInvalidDuration, baseInterval)
	}
	if cb == nil {
		return nil, errors.New("callback cannot be nil")
	}

	scfg := &sessionConfig{headers: make(map[string]string)}
	for _, opt := range opts {
		if err := opt(scfg); err != nil {
			return nil, err
		}
	}

	s, err := p.group.Start(poller.SessionConfig{
		Name:         scfg.name,
		URI:          uri,
		Headers:      scfg.headers,
		MaxWait:      maxWait,
		BaseInterval: baseInterval,
		Callback:     cb,
	})
	if err != nil {
		return nil, err
	}
	return &Session{s: s}, nil
}

// StartContinuous begins polling uri back to back: each request follows the
// previous successful one after the minimum delay.
func (p *Poller) StartContinuous(uri string, cb Callback, maxWait time.Duration, opts ...SessionOption) (*Session, error) {
	return p.Start(uri, cb, maxWait, 0, opts...)
}

// Cancel stops a session. It is equivalent to [Session.Cancel] and accepts nil.
func (p *Poller) Cancel(s *Session) {
	if s == nil {
		return
	}
	s.Cancel()
}

// Close cancels every session and releases idle transport connections.
// New sessions are refused afterwards. Close is idempotent.
func (p *Poller) Close() {
	p.group.Close()
}

// TransportSupported reports whether the configured transport can issue
// requests. [Poller.Start] fails with [ErrTransportUnavailable] otherwise.
func (p *Poller) TransportSupported() bool {
	return p.group.Supported()
}

// Sessions returns the live sessions in start order.
func (p *Poller) Sessions() []*Session {
	live := p.group.Sessions()
	out := make([]*Session, len(live))
	for i, s := range live {
		out[i] = &Session{s: s}
	}
	return out
}

// Lookup returns the live session with the given ID.
func (p *Poller) Lookup(id string) (*Session, bool) {
	s, ok := p.group.Lookup(id)
	if !ok {
		return nil, false
	}
	return &Session{s: s}, true
}

// Snapshots returns a snapshot of every live session in start order.
func (p *Poller) Snapshots() []SessionSnapshot {
	live := p.group.Sessions()
	out := make([]SessionSnapshot, len(live))
	for i, s := range live {
		out[i] = s.Snapshot()
	}
	return out
}

// dispatch fans a session event out to the registered hooks.
func (p *Poller) dispatch(ev Event) {
	for _, hook := range p.hooks {
		invokeHookSafe(hook, ev, p.logger)
	}
}

// invokeHookSafe calls an event hook with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeHookSafe(hook func(Event), ev Event, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event hook panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"event", string(ev.Kind),
				"session_id", ev.Session.ID,
				"stack", string(debug.Stack()),
			)
		}
	}()
	hook(ev)
}

// validateURI accepts absolute http and https URIs with a host.
func validateURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURI, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidURI, uri)
	}
	return nil
}
