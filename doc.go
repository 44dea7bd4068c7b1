// Package livepoll keeps a view of a remote status resource up to date by
// polling it continuously over HTTP.
//
// A [Poller] owns any number of sessions. Each session repeatedly GETs one
// URI, keeps at most one request outstanding, bounds every request with a
// watchdog, and backs off when the resource keeps failing. Successful bodies
// are handed to a callback; a timed-out request reaches the callback as a nil
// body so the caller can show that the view is stale.
//
// # Quick Start
//
//	p, _ := livepoll.New()
//	defer p.Close()
//
//	p.Start("https://console.local/ajaxstatus", func(body []byte, ex livepoll.Exchange) bool {
//	    if body == nil {
//	        markStale()
//	        return true
//	    }
//	    render(body)
//	    return true
//	}, 2*time.Minute, 2*time.Second)
//
// # Scheduling
//
// The first request is issued immediately. After a 2xx response the next one
// follows the base interval later. Non-2xx responses, network errors and
// timeouts count as consecutive failures and stretch the delay:
//
//   - fewer than 5 failures: the base interval
//   - 5 to 9 failures: at least 5 seconds
//   - 10 or more failures: at least 15 seconds
//
// No delay is ever shorter than 50 milliseconds. See [NextDelay].
//
// # Configuration
//
// Poller options:
//
//	p, err := livepoll.New(
//	    livepoll.WithLogger(logger),
//	    livepoll.WithMaxSessions(2),
//	    livepoll.WithRegisterer(prometheus.NewRegistry()),
//	    livepoll.WithEventHook(func(ev livepoll.Event) { ... }),
//	)
//
// Session options:
//
//	p.Start(uri, cb, maxWait, interval,
//	    livepoll.WithName("console"),
//	    livepoll.WithHeaders("Cookie", "sid=abc"),
//	)
//
// # Architecture
//
// livepoll consists of several internal packages (under internal/):
//
//   - internal/poller: Session state machine, backoff and HTTP transport
//   - internal/clock: Wall and fake clocks for timers
//   - internal/metrics: Prometheus collectors fed from session events
//   - internal/store: Latest session snapshots with pub/sub
//   - internal/server: Relay HTTP server with REST, SSE and /metrics
//
// The internal packages are not part of the public API and may change
// without notice. The cmd/livepoll binary drives a Poller from a YAML file.
package livepoll
