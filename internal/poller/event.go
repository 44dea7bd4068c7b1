package poller

import "time"

// State is the lifecycle state of a [Session].
type State string

const (
	// StateIdle means no request is outstanding; the next one may be scheduled.
	StateIdle State = "idle"

	// StateAwaiting means a request is in flight and the watchdog is armed.
	StateAwaiting State = "awaiting-response"

	// StateAborted is terminal: the session was cancelled.
	StateAborted State = "aborted"
)

// EventKind identifies a session transition.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventRequest   EventKind = "request"
	EventSuccess   EventKind = "success"
	EventFailure   EventKind = "failure"
	EventTimeout   EventKind = "timeout"
	EventScheduled EventKind = "scheduled"
	EventCancelled EventKind = "cancelled"
)

// Snapshot is a point-in-time copy of a session's fields.
type Snapshot struct {
	ID                  string
	Name                string
	URI                 string
	State               State
	ConsecutiveFailures int
	Attempts            uint64
	MaxWait             time.Duration
	BaseInterval        time.Duration
	NextDelay           time.Duration

	// LastOutcome is the kind of the most recent settled request
	// (success, failure or timeout); empty before the first one settles.
	LastOutcome    EventKind
	LastStatusCode int
	LastLatency    time.Duration
	LastError      error
	LastCheckedAt  time.Time
}

// Event reports a single session transition together with the session
// snapshot taken right after it.
type Event struct {
	Kind    EventKind
	At      time.Time
	Attempt uint64

	// Delay is set on scheduled events.
	Delay time.Duration

	// Err is set on failure and timeout events.
	Err error

	Session Snapshot
}

// Observer receives session events. Observers run outside the session's
// state lock and must not block for long; they delay the session's next
// transition. Calls for one session never overlap and end with
// [EventCancelled]. An observer must not call [Session.Cancel] on the session
// it is observing.
type Observer func(Event)

// Exchange describes one request cycle handed to a [Callback].
type Exchange struct {
	SessionID  string
	URI        string
	Attempt    uint64
	StatusCode int
	Latency    time.Duration

	// TimedOut is true when the watchdog aborted the request; the callback
	// body is nil in that case.
	TimedOut bool

	// Failures is the consecutive failure count after this exchange settled.
	Failures int

	Err error
}

// Callback receives each successful body, or nil on timeout.
// The return value is reserved and currently ignored.
type Callback func(body []byte, ex Exchange) bool

// Observers fans an event out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	active := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	return func(ev Event) {
		for _, o := range active {
			o(ev)
		}
	}
}
