package main

import (
	"github.com/jpalmerr/livepoll"
	"github.com/jpalmerr/livepoll/internal/store"
)

// relayHook returns an event hook that mirrors session state into st.
//
// Request and scheduled events are included so relay clients see the
// awaiting-response state and the next delay. A cancelled session's final
// aborted status is published to subscribers before it is removed.
func relayHook(st store.Store) func(livepoll.Event) {
	return func(ev livepoll.Event) {
		st.Update(statusFromEvent(ev))
		if ev.Kind == livepoll.EventCancelled {
			st.Remove(ev.Session.ID)
		}
	}
}

// statusFromEvent converts an event's session snapshot to its relay form.
func statusFromEvent(ev livepoll.Event) store.SessionStatus {
	snap := ev.Session
	status := store.SessionStatus{
		ID:                  snap.ID,
		Name:                snap.Name,
		URI:                 snap.URI,
		State:               string(snap.State),
		Event:               string(ev.Kind),
		ConsecutiveFailures: snap.ConsecutiveFailures,
		Attempts:            snap.Attempts,
		NextDelayMs:         snap.NextDelay.Milliseconds(),
		LastOutcome:         string(snap.LastOutcome),
		LastStatusCode:      snap.LastStatusCode,
		ResponseTimeMs:      snap.LastLatency.Milliseconds(),
		CheckedAt:           snap.LastCheckedAt,
	}
	if snap.LastError != nil {
		msg := snap.LastError.Error()
		status.Error = &msg
	}
	return status
}
