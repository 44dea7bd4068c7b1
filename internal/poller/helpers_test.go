package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRequest is one GET captured by fakeTransport, answered by the test.
type fakeRequest struct {
	ctx     context.Context
	uri     string
	headers map[string]string
	reply   chan Response
}

func (r *fakeRequest) respond(code int, body string) {
	r.reply <- Response{StatusCode: code, Body: []byte(body)}
}

func (r *fakeRequest) fail(err error) {
	r.reply <- Response{Error: err}
}

// fakeTransport hands every request to the test through a channel and blocks
// until the test replies or the request context is cancelled.
type fakeTransport struct {
	requests     chan *fakeRequest
	unsupported  bool
	ignoreCancel bool

	inflight    atomic.Int32
	maxInflight atomic.Int32
	closed      atomic.Int32
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{requests: make(chan *fakeRequest, 64)}
}

func (f *fakeTransport) Get(ctx context.Context, uri string, headers map[string]string) Response {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		prev := f.maxInflight.Load()
		if n <= prev || f.maxInflight.CompareAndSwap(prev, n) {
			break
		}
	}

	req := &fakeRequest{ctx: ctx, uri: uri, headers: headers, reply: make(chan Response, 1)}
	f.requests <- req

	if f.ignoreCancel {
		return <-req.reply
	}
	select {
	case resp := <-req.reply:
		return resp
	case <-ctx.Done():
		return Response{Error: ctx.Err()}
	}
}

func (f *fakeTransport) Supported() bool {
	return !f.unsupported
}

func (f *fakeTransport) Close() {
	f.closed.Add(1)
}

// next waits for the next request issued through the transport.
func (f *fakeTransport) next(t *testing.T) *fakeRequest {
	t.Helper()
	select {
	case req := <-f.requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for request")
		return nil
	}
}

// expectNone asserts that no request is issued within a short window.
func (f *fakeTransport) expectNone(t *testing.T) {
	t.Helper()
	select {
	case req := <-f.requests:
		t.Fatalf("unexpected request to %s", req.uri)
	case <-time.After(50 * time.Millisecond):
	}
}

// recorder collects session events.
type recorder struct {
	events chan Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 512)}
}

func (r *recorder) observe(ev Event) {
	r.events <- ev
}

// next returns the next event of the given kind, skipping others.
func (r *recorder) next(t *testing.T, kind EventKind) Event {
	t.Helper()
	for {
		select {
		case ev := <-r.events:
			if ev.Kind == kind {
				return ev
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %s event", kind)
			return Event{}
		}
	}
}

// callbackCall records one callback invocation.
type callbackCall struct {
	body []byte
	ex   Exchange
}

// callbackSink is a Callback that records its invocations on a channel.
type callbackSink struct {
	calls chan callbackCall
	count atomic.Int32
}

func newCallbackSink() *callbackSink {
	return &callbackSink{calls: make(chan callbackCall, 64)}
}

func (c *callbackSink) callback(body []byte, ex Exchange) bool {
	c.count.Add(1)
	c.calls <- callbackCall{body: body, ex: ex}
	return true
}

// waitForState polls until the session reaches want.
func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("State() = %q, want %q", s.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

// gatedObserver records event kinds and parks the first event of kind gate
// until release is closed.
type gatedObserver struct {
	gate    EventKind
	blocked chan struct{}
	release chan struct{}

	mu    sync.Mutex
	kinds []EventKind
	once  sync.Once
}

func newGatedObserver(gate EventKind) *gatedObserver {
	return &gatedObserver{
		gate:    gate,
		blocked: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedObserver) observe(ev Event) {
	g.mu.Lock()
	g.kinds = append(g.kinds, ev.Kind)
	g.mu.Unlock()

	if ev.Kind == g.gate {
		g.once.Do(func() {
			close(g.blocked)
			<-g.release
		})
	}
}

func (g *gatedObserver) seen() []EventKind {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]EventKind, len(g.kinds))
	copy(out, g.kinds)
	return out
}
