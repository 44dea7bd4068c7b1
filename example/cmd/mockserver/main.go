// Standalone mock status server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/livepoll watch -c example/livepoll.yaml --print-body
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/livepoll/example/mockstatus"
)

func main() {
	fmt.Println("Mock status server starting on :8081")
	fmt.Println("/ajaxstatus cycles every 20s: healthy → failing → hanging")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	mux := http.NewServeMux()
	mux.Handle("GET /ajaxstatus", mockstatus.NewHandler(20*time.Second, slog.Default()))

	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
