package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/livepoll"
	"github.com/jpalmerr/livepoll/config"
	"github.com/jpalmerr/livepoll/internal/server"
	"github.com/jpalmerr/livepoll/internal/store"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// watchCmd polls the configured sessions until interrupted or the lifetime
// elapses.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the configured sessions",
	Long: `Poll every session defined in the configuration file.

The command will:
  - Load configuration from the specified YAML file
  - Start one polling session per configured URI
  - Optionally serve session status over the relay (REST, SSE, /metrics)
  - Optionally print every successful response body to stdout

Polling stops on Ctrl+C, SIGTERM, or when the configured lifetime elapses.
Logs are written to stderr as JSON.

Example:
  livepoll watch -c livepoll.yaml
  livepoll watch -c livepoll.yaml --print-body`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	watchCmd.Flags().Bool("print-body", false, "print each successful response body to stdout")
	watchCmd.Flags().BoolP("verbose", "v", false, "log every request at debug level")
	_ = watchCmd.MarkFlagRequired("config")
}

// watchOptions carries the command-line settings for [watch].
type watchOptions struct {
	logger    *slog.Logger
	out       io.Writer
	printBody bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(os.Stderr, verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	printBody, _ := cmd.Flags().GetBool("print-body")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cfg, watchOptions{
		logger:    logger,
		out:       cmd.OutOrStdout(),
		printBody: printBody,
	})
}

// watch runs every configured session until ctx is done or the configured
// lifetime elapses, then closes the poller.
func watch(ctx context.Context, cfg *config.Config, opts watchOptions) error {
	logger := opts.logger

	if lifetime := cfg.LifetimeDuration(); lifetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lifetime)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	st := store.NewMemoryStore()

	pollerOpts := append(config.PollerOptions(cfg),
		livepoll.WithLogger(logger),
		livepoll.WithRegisterer(reg),
		livepoll.WithEventHook(relayHook(st)),
	)
	p, err := livepoll.New(pollerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}
	defer p.Close()

	if !p.TransportSupported() {
		return livepoll.ErrTransportUnavailable
	}

	if cfg.Relay != nil {
		srv := server.NewServer(st, cfg.Relay.Port, reg, logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start relay: %w", err)
		}
	}

	callbacks := bodyPrinter(opts.out, logger, opts.printBody)
	sessions, err := config.StartSessions(p, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("failed to start sessions: %w", err)
	}

	logger.Info("watching",
		"sessions", len(sessions),
		"lifetime", cfg.LifetimeDuration().String(),
		"relay", cfg.Relay != nil,
	)

	<-ctx.Done()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Info("lifetime elapsed, stopping sessions")
	} else {
		logger.Info("interrupted, stopping sessions")
	}
	p.Close()
	logger.Info("shutdown complete")
	return nil
}

// syncWriter serializes writes from concurrent session callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// bodyPrinter returns the callback factory used by watch. With printBody
// enabled, each successful body is written to out prefixed by the session
// name; timeouts are logged.
func bodyPrinter(out io.Writer, logger *slog.Logger, printBody bool) config.CallbackFactory {
	w := &syncWriter{w: out}
	return func(sc config.SessionConfig) livepoll.Callback {
		name := sc.Name
		return func(body []byte, ex livepoll.Exchange) bool {
			if body == nil {
				logger.Info("status unavailable, still polling",
					"session", name,
					"attempt", ex.Attempt,
					"failures", ex.Failures,
				)
				return true
			}
			if printBody {
				fmt.Fprintf(w, "[%s] %s\n", name, body)
			}
			return true
		}
	}
}
