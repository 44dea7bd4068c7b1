package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/livepoll"
	"github.com/jpalmerr/livepoll/example/mockstatus"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// start mock server (see mockstatus)
	mux := http.NewServeMux()
	mux.Handle("GET /ajaxstatus", mockstatus.NewHandler(15*time.Second, logger))
	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			logger.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	p, err := livepoll.New(
		livepoll.WithLogger(logger),
		livepoll.WithEventHook(func(ev livepoll.Event) {
			if ev.Kind == livepoll.EventScheduled {
				logger.Info("next request",
					"session", ev.Session.Name,
					"delay", ev.Delay.String(),
					"failures", ev.Session.ConsecutiveFailures,
				)
			}
		}),
	)
	if err != nil {
		logger.Error("failed to create poller", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	_, err = p.Start("http://localhost:8081/ajaxstatus", func(body []byte, ex livepoll.Exchange) bool {
		if body == nil {
			fmt.Printf("attempt %d: no response within max wait (%d failures)\n", ex.Attempt, ex.Failures)
			return true
		}
		fmt.Printf("attempt %d: %s", ex.Attempt, body)
		return true
	}, 3*time.Second, 2*time.Second, livepoll.WithName("console"))
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  livepoll demo")
	fmt.Println()
	fmt.Println("  Polling http://localhost:8081/ajaxstatus every 2s.")
	fmt.Println("  The mock cycles healthy → failing → hanging every 15s;")
	fmt.Println("  watch the delay stretch to 5s and 15s and snap back.")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("stopping")
}
