package poller

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jpalmerr/livepoll/internal/clock"
)

// Group owns the polling sessions of one host scope.
//
// A Group plays the role of the page that created the sessions: it enforces
// an optional cap on live sessions and tears all of them down on
// [Group.Close]. Sessions remove themselves from the group when cancelled.
//
// All methods are safe for concurrent use.
type Group struct {
	transport   Transport
	clock       clock.Clock
	observe     Observer
	logger      *slog.Logger
	maxSessions int

	mu       sync.Mutex
	sessions []*Session
	closed   bool
}

// NewGroup creates a [Group].
//
// Parameters:
//   - transport: Transport shared by every session in the group
//   - clk: Clock driving watchdogs and backoff timers
//   - maxSessions: Maximum number of live sessions; zero means no limit
//   - observe: Receives every session event (may be nil)
//   - logger: Logger for session events
func NewGroup(transport Transport, clk clock.Clock, maxSessions int, observe Observer, logger *slog.Logger) *Group {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Group{
		transport:   transport,
		clock:       clk,
		observe:     observe,
		logger:      logger,
		maxSessions: maxSessions,
	}
}

// Supported reports whether the group's transport can issue requests.
func (g *Group) Supported() bool {
	return g.transport != nil && g.transport.Supported()
}

// Start creates a session and issues its first request immediately.
//
// Start returns [ErrTransportUnavailable] if the transport probe fails,
// [ErrGroupClosed] after [Group.Close], and [ErrTooManySessions] when the
// group is at its cap.
func (g *Group) Start(cfg SessionConfig) (*Session, error) {
	if !g.Supported() {
		return nil, ErrTransportUnavailable
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrGroupClosed
	}
	if g.maxSessions > 0 && len(g.sessions) >= g.maxSessions {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, g.maxSessions)
	}
	s := NewSession(cfg, g.transport, g.clock, g.observe, g.logger)
	s.onDone = g.remove
	g.sessions = append(g.sessions, s)
	g.mu.Unlock()

	s.start()
	return s, nil
}

// Sessions returns the live sessions in start order.
func (g *Group) Sessions() []*Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([]*Session, len(g.sessions))
	copy(cp, g.sessions)
	return cp
}

// Lookup returns the live session with the given ID.
func (g *Group) Lookup(id string) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range g.sessions {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Close cancels every live session, refuses new ones, and releases idle
// transport connections. Close is idempotent.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	sessions := make([]*Session, len(g.sessions))
	copy(sessions, g.sessions)
	g.mu.Unlock()

	for _, s := range sessions {
		s.Cancel()
	}

	if closer, ok := g.transport.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (g *Group) remove(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, live := range g.sessions {
		if live == s {
			g.sessions = append(g.sessions[:i], g.sessions[i+1:]...)
			return
		}
	}
}
