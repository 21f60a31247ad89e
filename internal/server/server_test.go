package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ZeynixTech/Azure-flask-hello/internal/metrics"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds a server with a fresh counter and a fast sample
// interval so stream tests don't wait on wall-clock seconds.
func newTestServer(started time.Time, assets fs.FS) (*Server, *metrics.RequestCounter) {
	counter := metrics.NewRequestCounter(started)
	cfg := Config{
		Port:           0,
		Title:          "Test Launchpad",
		AppName:        "launchpad-test",
		SiteName:       "local",
		InstanceID:     "00000000-0000-0000-0000-000000000000",
		SampleInterval: 20 * time.Millisecond,
	}
	return NewServer(counter, cfg, assets, testLogger()), counter
}

func testAssets(body string) fs.FS {
	return fstest.MapFS{
		"assets/index.html": &fstest.MapFile{Data: []byte(body)},
	}
}

// --- /api/status ---

func TestHandleStatus_NoHits(t *testing.T) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(started, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	srv.handleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.App != "launchpad-test" {
		t.Errorf("app = %q, want launchpad-test", body.App)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.TotalRequests != 0 {
		t.Errorf("total_requests = %d, want 0", body.TotalRequests)
	}
	if body.LastHitUTC != nil {
		t.Errorf("last_hit_utc = %v, want null", *body.LastHitUTC)
	}
	if body.StartedUTC != "2026-08-01T12:00:00Z" {
		t.Errorf("started_utc = %q, want 2026-08-01T12:00:00Z", body.StartedUTC)
	}
	if !strings.HasPrefix(body.GoVersion, "go") {
		t.Errorf("go = %q, want a runtime version", body.GoVersion)
	}
}

func TestHandleStatus_AfterHits(t *testing.T) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	srv, counter := newTestServer(started, nil)

	hitAt := started.Add(2 * time.Second)
	counter.RecordHit(hitAt)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	srv.handleStatus(rec, req)

	var body statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.TotalRequests != 1 {
		t.Errorf("total_requests = %d, want 1", body.TotalRequests)
	}
	if body.LastHitUTC == nil {
		t.Fatal("last_hit_utc is null, want a timestamp")
	}
	if *body.LastHitUTC != "2026-08-01T12:00:02Z" {
		t.Errorf("last_hit_utc = %q, want 2026-08-01T12:00:02Z", *body.LastHitUTC)
	}
	if body.UptimeSeconds < 0 {
		t.Errorf("uptime_seconds = %d, want non-negative", body.UptimeSeconds)
	}
}

func TestHandleStatus_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec := httptest.NewRecorder()

	srv.handleStatus(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleStatus_ForwardedFor(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()

	srv.handleStatus(rec, req)

	var body statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.RemoteAddr != "203.0.113.9" {
		t.Errorf("remote_addr = %q, want forwarded address", body.RemoteAddr)
	}
}

// --- /healthz ---

func TestHandleHealthz(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.handleHealthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "ok" {
		t.Errorf("body = %q, want ok", got)
	}
}

// --- / ---

func TestHandleHome_TitleSubstitution(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), testAssets("<title>{{.Title}}</title>"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleHome(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "<title>Test Launchpad</title>" {
		t.Errorf("body = %q, want substituted title", got)
	}
}

func TestHandleHome_EscapesTitle(t *testing.T) {
	counter := metrics.NewRequestCounter(time.Now().UTC())
	srv := NewServer(counter, Config{
		Title:          "<script>alert(1)</script>",
		SampleInterval: time.Second,
	}, testAssets("{{.Title}}"), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleHome(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("title was not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped title, got: %s", body)
	}
}

func TestHandleHome_NotFoundForOtherPaths(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), testAssets("page"))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()

	srv.handleHome(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- /events ---

func TestHandleEvents_EmitsSamples(t *testing.T) {
	srv, counter := newTestServer(time.Now().UTC(), nil)
	counter.RecordHit(time.Now().UTC())

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	// run until the deadline cancels the request, then inspect the output
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	srv.handleEvents(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	messages := strings.Split(strings.TrimSpace(body), "\n\n")
	if len(messages) < 2 {
		t.Fatalf("expected at least 2 messages, got %d: %q", len(messages), body)
	}

	for i, msg := range messages {
		if !strings.HasPrefix(msg, "data: ") {
			t.Fatalf("message %d missing data prefix: %q", i, msg)
		}
		var payload eventPayload
		if err := json.Unmarshal([]byte(strings.TrimPrefix(msg, "data: ")), &payload); err != nil {
			t.Fatalf("message %d is not valid JSON: %v", i, err)
		}
		if payload.TotalRequests != 1 {
			t.Errorf("message %d total_requests = %d, want 1", i, payload.TotalRequests)
		}
		if payload.LastHitUTC == nil {
			t.Errorf("message %d last_hit_utc is null, want a timestamp", i)
		}
		if payload.TS == "" {
			t.Errorf("message %d ts is empty", i)
		}
	}
}

func TestHandleEvents_ClientDisconnect(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		srv.handleEvents(rec, req)
		close(done)
	}()

	// simulate client disconnect
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// handler exited as expected
	case <-time.After(1 * time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
}

func TestHandleEvents_ServerShutdown(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	// when calling handleEvents directly (not through http.Server), we must
	// manually derive the request context from the server context to simulate
	// BaseContext behavior. In production, BaseContext does this automatically.
	serverCtx, serverCancel := context.WithCancel(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req = req.WithContext(serverCtx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleEvents(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	serverCancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after server shutdown")
	}
}

// failingWriter starts returning write errors after a fixed number of
// successful writes, simulating a peer that went away mid-stream.
type failingWriter struct {
	*httptest.ResponseRecorder
	failAfter int
	writes    int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.failAfter {
		return 0, errors.New("write tcp: broken pipe")
	}
	return f.ResponseRecorder.Write(p)
}

func TestHandleEvents_StopsOnWriteFailure(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), failAfter: 2}

	done := make(chan struct{})
	go func() {
		srv.handleEvents(w, req)
		close(done)
	}()

	// the handler must stop within one loop iteration of the failed write,
	// well before the request context (which never fires here) would
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("handler kept looping after write failure")
	}
}

// --- middleware / full handler chain ---

func TestHandler_CountsEveryRequest(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), testAssets("page"))
	h := srv.handler()

	for _, path := range []string{"/healthz", "/healthz", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	// the status request itself is the fourth hit
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.TotalRequests != 4 {
		t.Errorf("total_requests = %d, want 4", body.TotalRequests)
	}
	if body.LastHitUTC == nil {
		t.Error("last_hit_utc is null after requests were served")
	}
}

func TestHandler_SecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)
	h := srv.handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "no-referrer",
		"X-Frame-Options":        "SAMEORIGIN",
		"Cache-Control":          "no-store",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestHandler_StatusOverridesCacheControl(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)
	h := srv.handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
}

// --- lifecycle ---

func TestStart_ServesAndShutsDown(t *testing.T) {
	srv, _ := newTestServer(time.Now().UTC(), nil)

	ctx, cancel := context.WithCancel(context.Background())

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	port := srv.Addr().(*net.TCPAddr).Port
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		cancel()
		t.Fatalf("GET /healthz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()

	// the listener should stop accepting within the shutdown window
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return // server is down, as expected
		}
		_ = resp.Body.Close()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server still accepting requests after shutdown")
}
