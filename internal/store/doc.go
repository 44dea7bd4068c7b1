// Package store keeps the latest status of every polling session and
// publishes changes to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [SessionStatus]: JSON representation of a session's latest state
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers miss updates rather than block polling).
package store
