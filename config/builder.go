package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/livepoll"
)

// CallbackFactory returns the callback for one configured session.
type CallbackFactory func(sc SessionConfig) livepoll.Callback

// PollerOptions converts top-level settings into SDK options.
func PollerOptions(cfg *Config) []livepoll.Option {
	var opts []livepoll.Option
	if cfg.MaxSessions > 0 {
		opts = append(opts, livepoll.WithMaxSessions(cfg.MaxSessions))
	}
	return opts
}

// StartSessions starts every configured session on p.
//
// Sessions are started in file order. If any session fails to start, the
// ones already started are cancelled and the error is returned.
func StartSessions(p *livepoll.Poller, cfg *Config, callbacks CallbackFactory) ([]*livepoll.Session, error) {
	sessions := make([]*livepoll.Session, 0, len(cfg.Sessions))
	for i, sc := range cfg.Sessions {
		s, err := startSession(p, sc, callbacks(sc))
		if err != nil {
			for _, started := range sessions {
				started.Cancel()
			}
			return nil, fmt.Errorf("sessions[%d] (%s): %w", i, sc.Name, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// startSession converts a single SessionConfig into a running session.
func startSession(p *livepoll.Poller, sc SessionConfig, cb livepoll.Callback) (*livepoll.Session, error) {
	opts := []livepoll.SessionOption{livepoll.WithName(sc.Name)}
	if len(sc.Headers) > 0 {
		opts = append(opts, livepoll.WithHeaders(mapToKeyValuePairs(sc.Headers)...))
	}

	var maxWait, interval Duration
	if sc.MaxWait != nil {
		maxWait = *sc.MaxWait
	}
	if sc.Interval != nil {
		interval = *sc.Interval
	}

	return p.Start(sc.URI, cb, maxWait.Duration(), interval.Duration(), opts...)
}

// mapToKeyValuePairs converts a map to a slice of key-value pairs sorted by key.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
