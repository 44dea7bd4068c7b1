package poller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"
)

// TestClient_ConnectionReuse verifies that the HTTP client reuses connections
// when making sequential requests to the same host. A session polls the same
// console repeatedly, so keep-alives must be active.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5

	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Get(ctx, server.URL, nil)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

func TestClient_Get(t *testing.T) {
	var gotMethod, gotHeader, gotCache string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Console-Session")
		gotCache = r.Header.Get("Cache-Control")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("line1\nline2"))
	}))
	defer server.Close()

	resp := NewClient().Get(context.Background(), server.URL, map[string]string{"X-Console-Session": "abc"})
	if resp.Error != nil {
		t.Fatalf("Get() error = %v", resp.Error)
	}
	if !resp.OK() {
		t.Errorf("OK() = false, want true")
	}
	if string(resp.Body) != "line1\nline2" {
		t.Errorf("Body = %q, want %q", resp.Body, "line1\nline2")
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET", gotMethod)
	}
	if gotHeader != "abc" {
		t.Errorf("X-Console-Session = %q, want %q", gotHeader, "abc")
	}
	if gotCache != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", gotCache)
	}
}

func TestClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp := NewClient().Get(context.Background(), server.URL, nil)
	if resp.Error != nil {
		t.Fatalf("Get() error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if resp.OK() {
		t.Error("OK() = true for 503, want false")
	}
}

// TestClient_BodyLimit verifies that bodies are truncated at 1MB.
func TestClient_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxResponseBodySize+4096))
	}))
	defer server.Close()

	resp := NewClient().Get(context.Background(), server.URL, nil)
	if resp.Error != nil {
		t.Fatalf("Get() error = %v", resp.Error)
	}
	if len(resp.Body) != maxResponseBodySize {
		t.Errorf("len(Body) = %d, want %d", len(resp.Body), maxResponseBodySize)
	}
}

// TestClient_AbortViaContext verifies that cancelling the context aborts an
// in-flight request, which is how the session watchdog stops a request.
func TestClient_AbortViaContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Response, 1)
	go func() {
		done <- NewClient().Get(ctx, server.URL, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case resp := <-done:
		if !errors.Is(resp.Error, context.Canceled) {
			t.Errorf("Error = %v, want context.Canceled", resp.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Get() did not return after cancel")
	}
}

func TestClient_InvalidURI(t *testing.T) {
	resp := NewClient().Get(context.Background(), "http://[::1", nil)
	if resp.Error == nil {
		t.Fatal("Get() error = nil, want error for malformed URI")
	}
	if !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Errorf("Error = %v, want 'failed to create request'", resp.Error)
	}
}

func TestClient_Supported(t *testing.T) {
	if !NewClient().Supported() {
		t.Error("NewClient().Supported() = false, want true")
	}

	var nilClient *Client
	if nilClient.Supported() {
		t.Error("nil Client Supported() = true, want false")
	}

	unsupported := NewClientWithHTTP(nil)
	if unsupported.Supported() {
		t.Error("NewClientWithHTTP(nil).Supported() = true, want false")
	}
	resp := unsupported.Get(context.Background(), "http://example.com", nil)
	if !errors.Is(resp.Error, ErrTransportUnavailable) {
		t.Errorf("Get() error = %v, want ErrTransportUnavailable", resp.Error)
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient()

	client.Close()
	client.Close()
	client.Close()
}

// TestClient_Close_NilClient verifies that Close() handles nil receiver safely.
func TestClient_Close_NilClient(t *testing.T) {
	var client *Client

	client.Close()
}

// TestClient_Close_ActuallyClosesConnections verifies that Close closes idle
// connections, but the client remains usable for new requests.
func TestClient_Close_ActuallyClosesConnections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()

	for i := 0; i < 5; i++ {
		resp := client.Get(context.Background(), server.URL, nil)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	client.Close()

	resp := client.Get(context.Background(), server.URL, nil)
	if resp.Error != nil {
		t.Errorf("request after Close failed: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}
