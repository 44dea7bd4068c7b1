package livepoll

import (
	"time"

	"github.com/jpalmerr/livepoll/internal/clock"
	"github.com/jpalmerr/livepoll/internal/poller"
)

// State is the lifecycle state of a [Session].
type State = poller.State

const (
	// StateIdle means no request is outstanding.
	StateIdle = poller.StateIdle

	// StateAwaiting means a request is in flight.
	StateAwaiting = poller.StateAwaiting

	// StateAborted is terminal: the session was cancelled.
	StateAborted = poller.StateAborted
)

// Exchange describes one settled request cycle. It is passed to the
// [Callback] together with the body.
type Exchange = poller.Exchange

// Callback receives each successful response body, or nil when the request
// timed out. A successful response with an empty body yields an empty,
// non-nil slice. The return value is reserved and currently ignored.
//
// Callbacks of one session never overlap. A callback may call
// [Session.Cancel] on its own session.
type Callback = poller.Callback

// SessionSnapshot is a point-in-time copy of a session's fields.
type SessionSnapshot = poller.Snapshot

// Transport performs the GET requests of a [Poller].
type Transport = poller.Transport

// Response is the result of one [Transport] request.
type Response = poller.Response

// Clock schedules the timers of a [Poller].
type Clock = clock.Clock

// Session is one continuously repeating poll of a single URI, created by
// [Poller.Start].
type Session struct {
	s *poller.Session
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.s.ID() }

// Name returns the display name. It defaults to the URI.
func (s *Session) Name() string { return s.s.Name() }

// URI returns the polled resource.
func (s *Session) URI() string { return s.s.URI() }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.s.State() }

// ConsecutiveFailures returns the number of failures and timeouts since the
// last success.
func (s *Session) ConsecutiveFailures() int { return s.s.ConsecutiveFailures() }

// NextDelay returns the delay used for the most recently scheduled request.
func (s *Session) NextDelay() time.Duration { return s.s.NextDelay() }

// Snapshot returns a copy of the session's current fields.
func (s *Session) Snapshot() SessionSnapshot { return s.s.Snapshot() }

// Cancel aborts any in-flight request and stops the session. Once Cancel
// returns, the callback is not invoked again and event hooks have received
// [EventCancelled] as their last event for this session. Cancel waits for a
// hook call in progress. It is idempotent and safe to call from within the
// callback, but not from an event hook of the same session.
func (s *Session) Cancel() { s.s.Cancel() }

// NextDelay returns the delay before the next request of a session with the
// given consecutive failure count and base interval.
//
// The delay is the largest of baseInterval, 50ms, and the backoff tier:
// 5s from 5 consecutive failures and 15s from 10.
func NextDelay(failures int, baseInterval time.Duration) time.Duration {
	return poller.NextDelay(failures, baseInterval)
}
