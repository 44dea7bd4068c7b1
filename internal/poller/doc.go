// Package poller implements the continuous polling client behind livepoll.
//
// This package is internal to livepoll. It owns the request lifecycle of each
// polling session: issuing a GET, bounding it with a watchdog, classifying the
// outcome, and scheduling the next request with failure-based backoff.
//
// The main components are:
//
//   - [Session]: State machine for one repeating poll of a single URI
//   - [Group]: Owner of the sessions of one host scope, with teardown
//   - [Client]: HTTP [Transport] with connection pooling and size limits
//   - [NextDelay]: Backoff tiers applied after consecutive failures
//   - [Event]: Transition notifications consumed by metrics and the store
//
// Users of the livepoll library should not need to interact with this
// package directly. Configuration is done through the livepoll package.
package poller
