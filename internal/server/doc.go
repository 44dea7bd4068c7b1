// Package server provides the relay HTTP server used by the livepoll CLI.
//
// The relay exposes the status of running polling sessions:
//
//   - REST API: JSON at "/api/sessions" and "/api/sessions/{id}"
//   - Server-Sent Events: Live status updates at "/api/sse"
//   - Metrics: Prometheus exposition at "/metrics"
//   - Health: "/health" liveness probe
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
