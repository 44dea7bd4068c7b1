package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/livepoll/internal/clock"
)

// SessionConfig is the fixed configuration of one polling session.
type SessionConfig struct {
	// ID identifies the session. A random UUID is used if empty.
	ID string

	// Name is the display name used in logs and metrics. Defaults to URI.
	Name string

	// URI is the status resource fetched with GET.
	URI string

	// Headers are sent with every request.
	Headers map[string]string

	// MaxWait bounds a single request; zero disables the watchdog.
	MaxWait time.Duration

	// BaseInterval is the minimum delay between requests.
	BaseInterval time.Duration

	// Callback receives each successful body, or nil on timeout.
	Callback Callback
}

// Session is one continuously repeating poll of a single URI.
//
// A session keeps at most one request outstanding. Every request carries an
// attempt number; a transport completion or watchdog expiry whose attempt is
// no longer outstanding is discarded, which is how aborted and superseded
// requests are ignored. All transitions are serialized by mu, while the
// callback and observers run with mu released. Observer calls are serialized
// by emitMu, and nothing is observed after the cancelled event.
type Session struct {
	cfg       SessionConfig
	transport Transport
	clock     clock.Clock
	observe   Observer
	logger    *slog.Logger
	onDone    func(*Session)

	emitMu     sync.Mutex
	emitClosed bool

	mu        sync.Mutex
	state     State
	failures  int
	attempt   uint64
	inflight  bool
	abort     context.CancelFunc
	watchdog  clock.Timer
	pending   clock.Timer
	issuedAt  time.Time
	nextDelay time.Duration

	lastOutcome    EventKind
	lastStatusCode int
	lastLatency    time.Duration
	lastError      error
	lastCheckedAt  time.Time
}

// NewSession creates an idle session. Nothing is requested until the
// session is started by its [Group].
func NewSession(cfg SessionConfig, transport Transport, clk clock.Clock, observe Observer, logger *slog.Logger) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.URI
	}
	if clk == nil {
		clk = clock.Real()
	}
	if observe == nil {
		observe = func(Event) {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		cfg:       cfg,
		transport: transport,
		clock:     clk,
		observe:   observe,
		logger:    logger.With("session_id", cfg.ID, "session", cfg.Name, "uri", cfg.URI),
		state:     StateIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.cfg.ID
}

// Name returns the session display name.
func (s *Session) Name() string {
	return s.cfg.Name
}

// URI returns the polled resource.
func (s *Session) URI() string {
	return s.cfg.URI
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConsecutiveFailures returns the number of failures since the last success.
func (s *Session) ConsecutiveFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// NextDelay returns the delay used for the most recently scheduled request.
func (s *Session) NextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextDelay
}

// Snapshot returns a copy of the session's current fields.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Cancel aborts any in-flight request, stops both timers and moves the
// session to [StateAborted]. No further requests are issued and no further
// callbacks run once Cancel returns, except a callback already executing.
// Cancel waits for an observer call in progress so that the cancelled event
// is the last one observed. Cancel is idempotent and safe to call from
// within the callback, but not from an observer of the same session.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateAborted {
		s.mu.Unlock()
		return
	}
	s.state = StateAborted
	s.inflight = false
	if s.abort != nil {
		s.abort()
		s.abort = nil
	}
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("session cancelled")
	s.emit(Event{Kind: EventCancelled}, snap)

	if s.onDone != nil {
		s.onDone(s)
	}
}

// start emits the started event and issues the first request immediately.
func (s *Session) start() {
	s.mu.Lock()
	if s.state == StateAborted {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("session started",
		"max_wait", s.cfg.MaxWait.String(),
		"base_interval", s.cfg.BaseInterval.String(),
	)
	s.emit(Event{Kind: EventStarted}, snap)
	s.issue()
}

// issue sends the next request and arms the watchdog.
func (s *Session) issue() {
	s.mu.Lock()
	if s.state == StateAborted || s.inflight {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.attempt++
	attempt := s.attempt
	s.inflight = true
	s.state = StateAwaiting
	s.issuedAt = s.clock.Now()
	ctx, cancel := context.WithCancel(context.Background())
	s.abort = cancel
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventRequest, Attempt: attempt}, snap)

	s.mu.Lock()
	if s.attempt != attempt || !s.inflight {
		// cancelled while the request event was delivered
		s.mu.Unlock()
		return
	}
	if s.cfg.MaxWait > 0 {
		s.watchdog = s.clock.AfterFunc(s.cfg.MaxWait, func() { s.expire(attempt) })
	}
	s.mu.Unlock()

	go func() {
		resp := s.transport.Get(ctx, s.cfg.URI, s.cfg.Headers)
		s.complete(attempt, resp)
	}()
}

// complete handles a transport completion for the given attempt.
func (s *Session) complete(attempt uint64, resp Response) {
	s.mu.Lock()
	if !s.settleLocked(attempt) {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	ex := Exchange{
		SessionID:  s.cfg.ID,
		URI:        s.cfg.URI,
		Attempt:    attempt,
		StatusCode: resp.StatusCode,
		Latency:    now.Sub(s.issuedAt),
	}

	kind := EventSuccess
	if resp.OK() {
		s.failures = 0
	} else {
		kind = EventFailure
		s.failures++
		ex.Err = resp.Error
		if ex.Err == nil {
			ex.Err = fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
		}
	}
	ex.Failures = s.failures
	s.recordLocked(kind, ex, now)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: kind, Attempt: attempt, Err: ex.Err}, snap)

	if kind == EventSuccess {
		s.logger.Debug("poll succeeded",
			"attempt", attempt,
			"status_code", resp.StatusCode,
			"latency_ms", ex.Latency.Milliseconds(),
		)
		body := resp.Body
		if body == nil {
			body = []byte{}
		}
		if !s.cancelled() {
			s.deliver(body, ex)
		}
	} else {
		s.logger.Warn("poll failed",
			"attempt", attempt,
			"status_code", resp.StatusCode,
			"failures", ex.Failures,
			"error", ex.Err.Error(),
		)
	}

	s.scheduleNext()
}

// expire handles a watchdog expiry for the given attempt.
func (s *Session) expire(attempt uint64) {
	s.mu.Lock()
	if !s.settleLocked(attempt) {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	s.failures++
	ex := Exchange{
		SessionID: s.cfg.ID,
		URI:       s.cfg.URI,
		Attempt:   attempt,
		Latency:   now.Sub(s.issuedAt),
		TimedOut:  true,
		Failures:  s.failures,
		Err:       fmt.Errorf("%w after %s", ErrRequestTimeout, s.cfg.MaxWait),
	}
	s.recordLocked(EventTimeout, ex, now)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventTimeout, Attempt: attempt, Err: ex.Err}, snap)
	s.logger.Warn("poll timed out",
		"attempt", attempt,
		"failures", ex.Failures,
		"max_wait", s.cfg.MaxWait.String(),
	)

	if !s.cancelled() {
		s.deliver(nil, ex)
	}
	s.scheduleNext()
}

// settleLocked closes the outstanding attempt. It reports false when the
// attempt is stale, already settled, or the session was cancelled.
func (s *Session) settleLocked(attempt uint64) bool {
	if s.state == StateAborted || !s.inflight || s.attempt != attempt {
		return false
	}
	s.inflight = false
	s.state = StateIdle
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
	if s.abort != nil {
		s.abort()
		s.abort = nil
	}
	return true
}

// scheduleNext arms the timer for the next request using the backoff tiers.
func (s *Session) scheduleNext() {
	s.mu.Lock()
	if s.state == StateAborted || s.inflight || s.pending != nil {
		s.mu.Unlock()
		return
	}
	delay := NextDelay(s.failures, s.cfg.BaseInterval)
	s.nextDelay = delay
	s.pending = s.clock.AfterFunc(delay, s.issue)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventScheduled, Delay: delay}, snap)
}

// deliver invokes the callback with panic recovery.
// A panicking callback is logged with a correlation ID and polling continues.
func (s *Session) deliver(body []byte, ex Exchange) {
	if s.cfg.Callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("callback panic",
				"correlation_id", correlationID,
				"attempt", ex.Attempt,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	_ = s.cfg.Callback(body, ex)
}

// cancelled reports whether the session was cancelled. The outcome paths
// check it after emitting, since Cancel may run while observers do.
func (s *Session) cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAborted
}

// emit delivers ev to the observer. Events emitted after the cancelled
// event are dropped.
func (s *Session) emit(ev Event, snap Snapshot) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	if s.emitClosed {
		return
	}
	if ev.Kind == EventCancelled {
		s.emitClosed = true
	}
	ev.At = s.clock.Now()
	ev.Session = snap
	s.observe(ev)
}

func (s *Session) recordLocked(kind EventKind, ex Exchange, at time.Time) {
	s.lastOutcome = kind
	s.lastStatusCode = ex.StatusCode
	s.lastLatency = ex.Latency
	s.lastError = ex.Err
	s.lastCheckedAt = at
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:                  s.cfg.ID,
		Name:                s.cfg.Name,
		URI:                 s.cfg.URI,
		State:               s.state,
		ConsecutiveFailures: s.failures,
		Attempts:            s.attempt,
		MaxWait:             s.cfg.MaxWait,
		BaseInterval:        s.cfg.BaseInterval,
		NextDelay:           s.nextDelay,
		LastOutcome:         s.lastOutcome,
		LastStatusCode:      s.lastStatusCode,
		LastLatency:         s.lastLatency,
		LastError:           s.lastError,
		LastCheckedAt:       s.lastCheckedAt,
	}
}
