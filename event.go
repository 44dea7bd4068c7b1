package livepoll

import "github.com/jpalmerr/livepoll/internal/poller"

// Event reports a single session transition together with the session
// snapshot taken right after it. Events are delivered to hooks registered
// with [WithEventHook].
type Event = poller.Event

// EventKind identifies a session transition.
type EventKind = poller.EventKind

const (
	// EventStarted is emitted once when a session is created.
	EventStarted = poller.EventStarted

	// EventRequest is emitted when a GET is issued.
	EventRequest = poller.EventRequest

	// EventSuccess is emitted for a 2xx response.
	EventSuccess = poller.EventSuccess

	// EventFailure is emitted for a non-2xx response or a transport error.
	EventFailure = poller.EventFailure

	// EventTimeout is emitted when a request exceeded its max wait.
	EventTimeout = poller.EventTimeout

	// EventScheduled is emitted when the next request is armed; Delay is set.
	EventScheduled = poller.EventScheduled

	// EventCancelled is emitted once when the session stops.
	EventCancelled = poller.EventCancelled
)
