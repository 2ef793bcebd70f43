// Package httpapi implements the research agent core's HTTP boundary
// (spec §6): hand-written net/http handlers for predict, predict/detailed,
// and health. The goa DSL code generator the teacher builds with is out of
// scope here (see DESIGN.md), so this surface is intentionally small and
// stdlib-only, mirroring the teacher's hand-written health/debug endpoints
// rather than its generated service transport.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/orchestrator"
)

// Processor is the narrow Orchestrator contract this package depends on.
type Processor interface {
	ProcessTask(ctx context.Context, question string) orchestrator.Response
}

// HealthChecker reports the core's liveness for GET /health.
type HealthChecker interface {
	Healthy() bool
}

// Server wires the three spec §6 endpoints onto an http.ServeMux.
type Server struct {
	orch      Processor
	startedAt time.Time
	metrics   map[string]any
}

// New constructs a Server.
func New(orch Processor) *Server {
	return &Server{orch: orch, startedAt: time.Now()}
}

// Handler returns the configured http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)
	mux.HandleFunc("POST /api/v1/predict/detailed", s.handlePredictDetailed)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

type predictRequest struct {
	Question string `json:"question"`
}

type predictResponse struct {
	Answer string `json:"answer"`
}

type detailedResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
	Trace      any      `json:"trace,omitempty"`
}

type healthResponse struct {
	Status      string         `json:"status"`
	AgentStatus string         `json:"agent_status"`
	Timestamp   time.Time      `json:"timestamp"`
	Metrics     map[string]any `json:"metrics"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp := s.orch.ProcessTask(r.Context(), req.Question)
	status := statusFor(resp, r.Context())
	writeJSON(w, status, predictResponse{Answer: resp.Answer})
}

func (s *Server) handlePredictDetailed(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp := s.orch.ProcessTask(r.Context(), req.Question)
	status := statusFor(resp, r.Context())

	var traceField any
	if len(resp.Trace) > 0 {
		traceField = resp.Trace
	}
	writeJSON(w, status, detailedResponse{
		Answer:     resp.Answer,
		Confidence: resp.Confidence,
		Reasoning:  resp.Reasoning,
		Success:    resp.Success,
		Errors:     resp.Errors,
		Trace:      traceField,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	agentStatus := "ok"
	if hc, ok := s.orch.(HealthChecker); ok && !hc.Healthy() {
		agentStatus = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		AgentStatus: agentStatus,
		Timestamp:   time.Now(),
		Metrics:     map[string]any{"uptime_seconds": time.Since(s.startedAt).Seconds()},
	})
}

// statusFor maps a Response to the spec §6 status codes (200/400/504/500)
// using the deadline-exceeded signal from ctx since Response itself does not
// carry an errs.Kind.
func statusFor(resp orchestrator.Response, ctx context.Context) int {
	if resp.Success {
		return http.StatusOK
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.HTTPStatus(errs.KindDeadlineExceeded)
	}
	for _, e := range resp.Errors {
		if len(e) >= len(string(errs.KindInput)) && e[:len(string(errs.KindInput))] == string(errs.KindInput) {
			return errs.HTTPStatus(errs.KindInput)
		}
	}
	return errs.HTTPStatus(errs.KindInternal)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
