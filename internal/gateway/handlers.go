package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aotpy/fragcheck/internal/checker"
)

// maxBatchSize caps usernames per /batch request; each one costs up to three
// sequential upstream probes.
const maxBatchSize = 5

// errorResponse is the JSON envelope for request failures.
type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: true, Message: msg})
}

// handleLanding returns an http.HandlerFunc for GET /.
func (g *Gateway) handleLanding() http.HandlerFunc {
	type landing struct {
		Name      string            `json:"name"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, landing{
			Name:    "fragcheck",
			Version: g.config.Version,
			Endpoints: map[string]string{
				"check_username": "GET /username?username=<name> | POST /username",
				"batch":          "GET /batch?usernames=a,b,c",
				"health":         "GET /health",
				"status":         "GET /status",
				"metrics":        "GET /metrics",
			},
		})
	}
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: g.config.Version,
			Uptime:  time.Since(g.startedAt).Truncate(time.Second).String(),
		})
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime  string          `json:"uptime"`
	Metrics MetricsSnapshot `json:"metrics"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{
			Uptime:  time.Since(g.startedAt).Truncate(time.Second).String(),
			Metrics: g.metrics.Snapshot(),
		})
	}
}

// handleCheckGet serves GET /username?username=<name>.
func (g *Gateway) handleCheckGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.runCheck(w, r, r.URL.Query().Get("username"))
	}
}

// checkRequest is the JSON body for POST /username.
type checkRequest struct {
	Username string `json:"username"`
}

// handleCheckPost serves POST /username with a JSON body.
func (g *Gateway) handleCheckPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.metrics.RecordBadRequest()
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		g.runCheck(w, r, req.Username)
	}
}

// runCheck invokes the engine and renders the result. The engine owns
// normalization and validation; the gateway only maps its errors to HTTP.
func (g *Gateway) runCheck(w http.ResponseWriter, r *http.Request, raw string) {
	if strings.TrimSpace(raw) == "" {
		g.metrics.RecordBadRequest()
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	start := time.Now()
	res, err := g.checker.Check(r.Context(), raw)
	if err != nil {
		if errors.Is(err, checker.ErrInvalidUsername) {
			g.metrics.RecordBadRequest()
			writeError(w, http.StatusBadRequest,
				"invalid username format: use letters, numbers, and underscores (1-32 characters)")
			return
		}
		// The engine never raises past its boundary for probe failures;
		// anything else is a programming error.
		g.logger.Error("check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.metrics.RecordCheck(string(res.Outcome), time.Since(start), res.ProbeFailures)
	writeJSON(w, http.StatusOK, res)
}

// batchResponse is the JSON response for GET /batch.
type batchResponse struct {
	Count   int              `json:"count"`
	Results []checker.Result `json:"results"`
}

// handleBatch serves GET /batch?usernames=a,b,c, checking up to maxBatchSize
// names sequentially.
func (g *Gateway) handleBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("usernames")
		var names []string
		for _, part := range strings.Split(raw, ",") {
			if s := strings.TrimSpace(part); s != "" {
				names = append(names, s)
			}
		}
		if len(names) == 0 {
			g.metrics.RecordBadRequest()
			writeError(w, http.StatusBadRequest, "no usernames provided")
			return
		}
		if len(names) > maxBatchSize {
			g.metrics.RecordBadRequest()
			writeError(w, http.StatusBadRequest, "maximum 5 usernames per batch request")
			return
		}

		results := make([]checker.Result, 0, len(names))
		for _, name := range names {
			start := time.Now()
			res, err := g.checker.Check(r.Context(), name)
			if err != nil {
				if errors.Is(err, checker.ErrInvalidUsername) {
					g.metrics.RecordBadRequest()
					writeError(w, http.StatusBadRequest, "invalid username in batch: "+name)
					return
				}
				g.logger.Error("batch check failed", "username", name, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			g.metrics.RecordCheck(string(res.Outcome), time.Since(start), res.ProbeFailures)
			results = append(results, res)
		}

		writeJSON(w, http.StatusOK, batchResponse{Count: len(results), Results: results})
	}
}
