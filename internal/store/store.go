package store

import "time"

// SessionStatus is the latest known state of one polling session.
//
// SessionStatus is the storage representation used by the relay's REST API
// and SSE stream. It is decoupled from the poller's types so that the JSON
// shape can evolve independently.
type SessionStatus struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// Name is the session's display name.
	Name string `json:"name"`

	// URI is the polled resource.
	URI string `json:"uri"`

	// State is "idle", "awaiting-response" or "aborted".
	State string `json:"state"`

	// Event is the kind of the transition that produced this status.
	Event string `json:"event"`

	// ConsecutiveFailures counts failures and timeouts since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// Attempts is the number of requests issued so far.
	Attempts uint64 `json:"attempts"`

	// NextDelayMs is the delay before the next request in milliseconds.
	NextDelayMs int64 `json:"next_delay_ms"`

	// LastOutcome is "success", "failure" or "timeout"; empty before the
	// first request settles.
	LastOutcome string `json:"last_outcome,omitempty"`

	// LastStatusCode is the HTTP status of the last settled request.
	LastStatusCode int `json:"last_status_code,omitempty"`

	// ResponseTimeMs is the latency of the last settled request.
	ResponseTimeMs int64 `json:"response_time_ms"`

	// CheckedAt is when the last request settled.
	CheckedAt time.Time `json:"checked_at"`

	// Error contains the last failure message; nil after a success.
	Error *string `json:"error"`
}

// Store defines the interface for storing and subscribing to session status.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows updates to be pushed to connected clients (e.g., via
// Server-Sent Events).
type Store interface {
	// Update stores a status and notifies all subscribers.
	// Statuses are keyed by ID, so later updates replace earlier ones.
	Update(status SessionStatus)

	// Remove deletes the status with the given ID. Subscribers are not
	// notified; the final aborted status is published by Update.
	Remove(id string)

	// GetAll returns all stored statuses ordered by name, then ID.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []SessionStatus

	// Subscribe returns a channel that receives status updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan SessionStatus

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan SessionStatus)
}
