package poller

import "errors"

var (
	// ErrTransportUnavailable is returned by [Group.Start] when the transport
	// capability probe fails.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrRequestFailed marks a request that completed with a non-2xx status.
	ErrRequestFailed = errors.New("request failed")

	// ErrRequestTimeout marks a request aborted by the session watchdog.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrTooManySessions is returned when a group is at its session cap.
	ErrTooManySessions = errors.New("too many polling sessions")

	// ErrGroupClosed is returned when starting a session on a closed group.
	ErrGroupClosed = errors.New("polling group closed")
)
