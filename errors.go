package livepoll

import (
	"errors"

	"github.com/jpalmerr/livepoll/internal/poller"
)

var (
	// ErrTransportUnavailable is returned by [Poller.Start] when the
	// transport cannot issue requests.
	ErrTransportUnavailable = poller.ErrTransportUnavailable

	// ErrRequestFailed is carried by failure events for non-2xx responses.
	ErrRequestFailed = poller.ErrRequestFailed

	// ErrRequestTimeout is carried by timeout events and exchanges.
	ErrRequestTimeout = poller.ErrRequestTimeout

	// ErrTooManySessions is returned by [Poller.Start] at the session cap.
	ErrTooManySessions = poller.ErrTooManySessions

	// ErrPollerClosed is returned by [Poller.Start] after [Poller.Close].
	ErrPollerClosed = poller.ErrGroupClosed

	// ErrInvalidURI is returned for URIs that are not absolute http(s).
	ErrInvalidURI = errors.New("invalid uri")

	// ErrInvalidDuration is returned for negative wait or interval values.
	ErrInvalidDuration = errors.New("invalid duration")
)
