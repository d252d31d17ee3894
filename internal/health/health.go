// Package health serves the liveness and readiness probes.
//
//   - /healthz reports the process alive, with its uptime.
//   - /readyz runs every registered [Checker] and returns 200 only when all
//     of them pass.
//
// Responses are JSON with a top-level "status" ("ok" or "fail") and, for
// readiness, a "checks" map with one entry per checker.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkTimeout bounds each readiness check.
const checkTimeout = 5 * time.Second

// Checker probes one dependency the server cannot serve without, such as
// the report store or a transcription backend.
type Checker struct {
	// Name labels the check in the JSON response ("store", "stt", ...).
	Name string

	// Check returns nil when the dependency is usable. It must respect
	// context cancellation.
	Check func(ctx context.Context) error
}

// result is the JSON body of both probes.
type result struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the probe endpoints. Safe for concurrent use; the checker
// list is fixed at construction.
type Handler struct {
	checkers []Checker
	started  time.Time
}

// New creates a [Handler] over the given checkers.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c, started: time.Now()}
}

// Healthz answers the liveness probe. A process that can serve HTTP is
// alive, so this always returns 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz answers the readiness probe. Checks run concurrently, each under
// its own [checkTimeout] deadline derived from the request context; one
// failing check makes the whole response a 503.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	outcomes := make([]error, len(h.checkers))

	var g errgroup.Group
	for i, c := range h.checkers {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()

			t0 := time.Now()
			err := c.Check(ctx)
			if err != nil {
				slog.Warn("readiness check failed",
					"check", c.Name,
					"duration", time.Since(t0),
					"err", err)
			}
			outcomes[i] = err
			return nil
		})
	}
	_ = g.Wait()

	res := result{Status: "ok", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK
	for i, c := range h.checkers {
		if err := outcomes[i]; err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
		} else {
			res.Checks[c.Name] = "ok"
		}
	}

	writeJSON(w, status, res)
}

// writeJSON encodes v with the given status code. On encoding failure it
// falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
