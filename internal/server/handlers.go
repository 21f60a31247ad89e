package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// statusResponse is the JSON body returned by /api/status.
type statusResponse struct {
	// App is the configured application identifier.
	App string `json:"app"`

	// Status is always "ok"; the endpoint answering is the health signal.
	Status string `json:"status"`

	// StartedUTC is the process start time, RFC 3339.
	StartedUTC string `json:"started_utc"`

	// UptimeSeconds is whole seconds since process start.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// TotalRequests is the number of requests served since start.
	TotalRequests int64 `json:"total_requests"`

	// LastHitUTC is the time of the most recent request, RFC 3339,
	// or null if no request has been recorded.
	LastHitUTC *string `json:"last_hit_utc"`

	// GoVersion is the runtime version this binary was built with.
	GoVersion string `json:"go"`

	// SiteName identifies the hosting site ("local" when not deployed).
	SiteName string `json:"site_name"`

	// RemoteAddr is the caller's address as seen by the server.
	RemoteAddr string `json:"remote_addr"`

	// Instance is the process instance UUID, assigned at start.
	Instance string `json:"instance"`
}

// eventPayload is one sample on the /events stream.
type eventPayload struct {
	Uptime        int64   `json:"uptime"`
	TotalRequests int64   `json:"total_requests"`
	LastHitUTC    *string `json:"last_hit_utc"`
	TS            string  `json:"ts"`
}

// handleStatus returns the current process state as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().UTC()
	snap := s.counter.Snapshot()

	resp := statusResponse{
		App:           s.cfg.AppName,
		Status:        "ok",
		StartedUTC:    s.counter.StartedAt().UTC().Format(time.RFC3339),
		UptimeSeconds: s.counter.Uptime(now),
		TotalRequests: snap.TotalRequests,
		LastHitUTC:    formatHitTime(snap.LastHitAt),
		GoVersion:     runtime.Version(),
		SiteName:      s.cfg.SiteName,
		RemoteAddr:    clientAddr(r),
		Instance:      s.cfg.InstanceID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

// handleEvents streams status samples via Server-Sent Events.
//
// The loop has no natural end: it samples the counter, emits one message,
// and suspends for the sample interval, until the request context is
// cancelled or a write fails. A failed write means the peer is gone and is
// treated as normal termination, not an application error.
//
// The handler uses write deadlines to prevent goroutine leaks when clients
// are slow or disconnected. Without deadlines, a blocked Fprintf call would
// prevent the handler from detecting context cancellation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	// writeAndFlush writes one SSE message with a deadline so a dead or slow
	// peer surfaces as a write error rather than blocking forever.
	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("stream write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	connID := uuid.NewString()
	s.logger.Debug("event stream opened", "conn_id", connID, "remote_addr", clientAddr(r))

	emit := func() error {
		data, err := json.Marshal(s.sample(time.Now().UTC()))
		if err != nil {
			return err
		}
		return writeAndFlush(data)
	}

	// first sample goes out immediately, then one per interval
	if err := emit(); err != nil {
		s.logger.Debug("event stream closed", "conn_id", connID, "reason", err)
		return
	}

	ticker := time.NewTicker(s.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			s.logger.Debug("event stream closed", "conn_id", connID, "reason", r.Context().Err())
			return

		case <-ticker.C:
			if err := emit(); err != nil {
				s.logger.Debug("event stream closed", "conn_id", connID, "reason", err)
				return
			}
		}
	}
}

// sample packages the current counter state as one stream payload.
func (s *Server) sample(now time.Time) eventPayload {
	snap := s.counter.Snapshot()

	return eventPayload{
		Uptime:        s.counter.Uptime(now),
		TotalRequests: snap.TotalRequests,
		LastHitUTC:    formatHitTime(snap.LastHitAt),
		TS:            now.Format(time.RFC3339),
	}
}

// formatHitTime renders a last-hit time for JSON, nil for "never hit".
func formatHitTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// clientAddr returns the caller's address, honouring X-Forwarded-For so the
// reported address survives a reverse proxy.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
