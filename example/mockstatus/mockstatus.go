// Package mockstatus serves a flapping status resource for trying livepoll
// locally.
//
// The handler cycles through three modes, each lasting a fixed period:
// healthy (200 with a JSON body), failing (503), and hanging (no response
// until the client gives up).
package mockstatus

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Mode is the behaviour of the status resource at a point in time.
type Mode string

const (
	ModeHealthy Mode = "healthy"
	ModeFailing Mode = "failing"
	ModeHanging Mode = "hanging"
)

var cycle = []Mode{ModeHealthy, ModeFailing, ModeHanging}

// Handler is an http.Handler whose mode advances every period.
type Handler struct {
	period time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	idx      int
	changeAt time.Time
	served   int
}

// NewHandler creates a [Handler] starting in [ModeHealthy].
func NewHandler(period time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{period: period, logger: logger, now: time.Now}
	h.changeAt = h.now().Add(period)
	return h
}

// Mode returns the current mode, advancing it if its period has elapsed.
func (h *Handler) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.advanceLocked()
}

func (h *Handler) advanceLocked() Mode {
	now := h.now()
	for !now.Before(h.changeAt) {
		from := cycle[h.idx]
		h.idx = (h.idx + 1) % len(cycle)
		h.changeAt = h.changeAt.Add(h.period)
		h.logger.Info("mode change", "from", from, "to", cycle[h.idx])
	}
	return cycle[h.idx]
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	mode := h.advanceLocked()
	h.served++
	served := h.served
	h.mu.Unlock()

	switch mode {
	case ModeHanging:
		// held until the client aborts
		<-r.Context().Done()
		return

	case ModeFailing:
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		return
	}

	// simulate small latency variance
	time.Sleep(time.Duration(10+rand.Intn(40)) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	resp := map[string]any{
		"state":     "running",
		"requests":  served,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
