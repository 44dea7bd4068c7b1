package store

import (
	"sort"
	"sync"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Statuses are keyed by session ID. Subscribers receive updates via buffered
// channels; sends are non-blocking, so an update is dropped for a subscriber
// whose buffer is full rather than stalling the session that produced it.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]SessionStatus

	subMu       sync.RWMutex
	subscribers map[chan SessionStatus]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses:    make(map[string]SessionStatus),
		subscribers: make(map[chan SessionStatus]struct{}),
	}
}

// Update stores a [SessionStatus] and notifies all subscribers.
func (m *MemoryStore) Update(status SessionStatus) {
	m.mu.Lock()
	m.statuses[status.ID] = status
	m.mu.Unlock()

	m.notifySubscribers(status)
}

// Remove deletes the status stored under id. Unknown IDs are ignored.
func (m *MemoryStore) Remove(id string) {
	m.mu.Lock()
	delete(m.statuses, id)
	m.mu.Unlock()
}

// GetAll returns a snapshot of all stored statuses ordered by name, then ID.
func (m *MemoryStore) GetAll() []SessionStatus {
	m.mu.RLock()
	results := make([]SessionStatus, 0, len(m.statuses))
	for _, status := range m.statuses {
		results = append(results, status)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Subscribe creates a new subscription and returns a channel for receiving
// updates. Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan SessionStatus {
	ch := make(chan SessionStatus, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan SessionStatus) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the status to all active subscribers without
// blocking.
func (m *MemoryStore) notifySubscribers(status SessionStatus) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- status:
		default:
			// subscriber is slow, drop the message
		}
	}
}
