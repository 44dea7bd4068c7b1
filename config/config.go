// Package config provides YAML configuration parsing for livepoll.
//
// This package enables running livepoll as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	lifetime: 30m
//	max_sessions: 8
//	max_wait: 2m
//	interval: 2s
//
//	relay:
//	  port: 8080
//
//	sessions:
//	  - name: console
//	    uri: ${CONSOLE_URL:-http://localhost:8081}/ajaxstatus
//	    headers:
//	      Authorization: Bearer ${CONSOLE_TOKEN}
//	  - name: backups
//	    uri: http://localhost:8081/ajaxstatus?page=backups
//	    interval: 10s
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxWait is the request watchdog applied when max_wait is absent.
	DefaultMaxWait = 120 * time.Second

	// DefaultLifetime bounds how long watch runs when lifetime is absent.
	DefaultLifetime = 30 * time.Minute

	// DefaultRelayPort is used when a relay section omits the port.
	DefaultRelayPort = 8080
)

// Config is the root configuration structure for livepoll.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Lifetime stops all sessions after the given duration.
	// Defaults to 30m. An explicit "0s" polls until interrupted.
	Lifetime *Duration `yaml:"lifetime"`

	// MaxSessions caps concurrently running sessions. Zero is unlimited.
	MaxSessions int `yaml:"max_sessions"`

	// MaxWait is the default request watchdog for every session.
	// Defaults to 120s. Zero disables the watchdog.
	MaxWait *Duration `yaml:"max_wait"`

	// Interval is the default delay after a successful response.
	// Defaults to 0, which polls back to back.
	Interval *Duration `yaml:"interval"`

	// Relay enables the HTTP status relay when present.
	Relay *RelayConfig `yaml:"relay"`

	// Sessions defines the resources to poll.
	Sessions []SessionConfig `yaml:"sessions"`
}

// RelayConfig configures the REST/SSE status relay.
type RelayConfig struct {
	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`
}

// SessionConfig defines a single polling session.
type SessionConfig struct {
	// Name is the display name. Defaults to the URI.
	Name string `yaml:"name"`

	// URI is the status resource to poll.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URI string `yaml:"uri"`

	// MaxWait overrides the top-level max_wait.
	MaxWait *Duration `yaml:"max_wait"`

	// Interval overrides the top-level interval.
	Interval *Duration `yaml:"interval"`

	// Headers are sent with every request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// durationPtr returns a pointer to d, for filling defaults.
func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// LifetimeDuration returns the resolved lifetime. Zero means unbounded.
func (c *Config) LifetimeDuration() time.Duration {
	if c.Lifetime == nil {
		return DefaultLifetime
	}
	return c.Lifetime.Duration()
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part, present only when a default was given
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return sub[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in session URIs and header values.
// Defaults are applied for max_wait (120s), interval (0), relay port
// (8080), and per-session values inherited from the top level.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.MaxWait == nil {
		cfg.MaxWait = durationPtr(DefaultMaxWait)
	}
	if cfg.Interval == nil {
		cfg.Interval = durationPtr(0)
	}
	if cfg.Relay != nil && cfg.Relay.Port == 0 {
		cfg.Relay.Port = DefaultRelayPort
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables, fills per-session
// defaults, and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Lifetime != nil && c.Lifetime.Duration() < 0 {
		return fmt.Errorf("lifetime cannot be negative, got %s", c.Lifetime.Duration())
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max_sessions cannot be negative, got %d", c.MaxSessions)
	}
	if c.MaxWait.Duration() < 0 {
		return fmt.Errorf("max_wait cannot be negative, got %s", c.MaxWait.Duration())
	}
	if c.Interval.Duration() < 0 {
		return fmt.Errorf("interval cannot be negative, got %s", c.Interval.Duration())
	}
	if c.Relay != nil && (c.Relay.Port < 0 || c.Relay.Port > 65535) {
		return fmt.Errorf("relay.port must be between 1 and 65535, got %d", c.Relay.Port)
	}

	if len(c.Sessions) == 0 {
		return errors.New("at least one session must be defined")
	}
	if c.MaxSessions > 0 && len(c.Sessions) > c.MaxSessions {
		return fmt.Errorf("%d sessions defined but max_sessions is %d", len(c.Sessions), c.MaxSessions)
	}

	names := make(map[string]int, len(c.Sessions))
	for i := range c.Sessions {
		sc := &c.Sessions[i]

		if sc.URI == "" {
			return fmt.Errorf("sessions[%d]: uri is required", i)
		}
		expanded, err := expandEnvVars(sc.URI)
		if err != nil {
			return fmt.Errorf("sessions[%d]: uri: %w", i, err)
		}
		sc.URI = expanded

		if sc.Name == "" {
			sc.Name = sc.URI
		}
		if prev, dup := names[sc.Name]; dup {
			return fmt.Errorf("sessions[%d] (%s): duplicate name, first used by sessions[%d]", i, sc.Name, prev)
		}
		names[sc.Name] = i

		parsedURI, err := url.Parse(sc.URI)
		if err != nil {
			return fmt.Errorf("sessions[%d] (%s): invalid uri: %w", i, sc.Name, err)
		}
		if parsedURI.Scheme == "" {
			return fmt.Errorf("sessions[%d] (%s): uri must have a scheme (http:// or https://)", i, sc.Name)
		}
		if parsedURI.Scheme != "http" && parsedURI.Scheme != "https" {
			return fmt.Errorf("sessions[%d] (%s): uri scheme must be http or https, got %q", i, sc.Name, parsedURI.Scheme)
		}
		if parsedURI.Host == "" {
			return fmt.Errorf("sessions[%d] (%s): uri must have a host", i, sc.Name)
		}

		for k, v := range sc.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("sessions[%d] (%s): headers[%s]: %w", i, sc.Name, k, err)
			}
			sc.Headers[k] = expanded
		}

		if sc.MaxWait == nil {
			sc.MaxWait = durationPtr(c.MaxWait.Duration())
		} else if sc.MaxWait.Duration() < 0 {
			return fmt.Errorf("sessions[%d] (%s): max_wait cannot be negative, got %s",
				i, sc.Name, sc.MaxWait.Duration())
		}

		if sc.Interval == nil {
			sc.Interval = durationPtr(c.Interval.Duration())
		} else if sc.Interval.Duration() < 0 {
			return fmt.Errorf("sessions[%d] (%s): interval cannot be negative, got %s",
				i, sc.Name, sc.Interval.Duration())
		}
	}

	return nil
}
