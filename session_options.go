package livepoll

import "errors"

// sessionConfig holds mutable state during session construction.
type sessionConfig struct {
	name    string
	headers map[string]string
}

// SessionOption configures a single session started by [Poller.Start].
//
// Built-in options: [WithName], [WithHeaders].
type SessionOption func(*sessionConfig) error

// WithName sets the session display name used in logs, metrics and the
// relay API. Defaults to the URI.
//
// Returns an error if the name is empty.
func WithName(name string) SessionOption {
	return func(cfg *sessionConfig) error {
		if name == "" {
			return errors.New("session name cannot be empty")
		}
		cfg.name = name
		return nil
	}
}

// WithHeaders adds HTTP headers sent with every request of the session.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	s, err := p.Start(uri, cb, 2*time.Minute, 2*time.Second,
//	    livepoll.WithHeaders("Cookie", "session=abc"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) SessionOption {
	return func(cfg *sessionConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
