// Package http exposes the agent over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/internal/presentation/graph"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/runner"
	"github.com/ikenthis/bmsagent/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Agent is the part of *bmsagent.Agent the API needs.
type Agent interface {
	Execute(ctx context.Context, conv *domain.ConversationContext, request domain.ActionRequest, extra map[string]any) domain.ExecutionResult
	Explain(text string) (domain.InterpretedAction, string, error)
	Dispatch(ctx context.Context, conv *domain.ConversationContext, action domain.InterpretedAction, extra map[string]any) domain.ExecutionResult
}

// Server holds the handlers' dependencies.
type Server struct {
	Agent    Agent
	Sessions *session.Manager
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
	maxBody  int64
}

// DefaultMaxBodySize bounds a request body. It leaves room for the context map
// on top of the request text, which the sanitizer caps separately.
const DefaultMaxBodySize = 64 << 10

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves GET /metrics from the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize. Larger bodies get 413.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// ExecuteRequest is the body of POST /sessions/{id}/actions.
type ExecuteRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
}

// DispatchRequest is the body of POST /sessions/{id}/dispatch.
type DispatchRequest struct {
	Action     domain.ActionName `json:"action"`
	Parameters map[string]any    `json:"parameters,omitempty"`
	Context    map[string]any    `json:"context,omitempty"`
}

// InterpretRequest is the body of POST /interpret.
type InterpretRequest struct {
	Text string `json:"text"`
}

// InterpretResponse is the body returned by POST /interpret.
type InterpretResponse struct {
	Action     domain.ActionName `json:"action"`
	Parameters map[string]any    `json:"parameters"`
	Rule       string            `json:"rule"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler for the agent.
func NewHandler(agent Agent, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Agent:    agent,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/actions", s.ListActions)
	r.Post("/interpret", s.Interpret)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/actions", s.ExecuteAction)
			r.Post("/dispatch", s.DispatchAction)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/graph", s.GetSessionGraph)
		})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "bmsagent-http",
		"version": strings.TrimSpace(bmsagent.Version),
	})
}

// ListActions handles GET /actions.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bmsagent.Actions())
}

// Interpret handles POST /interpret. Nothing is executed.
func (s *Server) Interpret(w http.ResponseWriter, r *http.Request) {
	var body InterpretRequest
	if !s.decode(w, r, &body) {
		return
	}
	text, ok := s.sanitize(w, body.Text)
	if !ok {
		return
	}
	action, rule, err := s.Agent.Explain(text)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, InterpretResponse{Action: action.Action, Parameters: action.Parameters, Rule: rule})
}

// ExecuteAction handles POST /sessions/{id}/actions. Unknown sessions are created.
// The status is 200 whenever the request reached the agent; check Success in the body.
func (s *Server) ExecuteAction(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var body ExecuteRequest
	if !s.decode(w, r, &body) {
		return
	}
	text, ok := s.sanitize(w, body.Text)
	if !ok {
		return
	}

	s.run(w, r, sessionID, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return s.Agent.Execute(ctx, conv, text, body.Context)
	})
}

// DispatchAction handles POST /sessions/{id}/dispatch: an explicit action, no interpretation.
// Unknown actions and bad parameters are rejected with 400 before the session is touched.
func (s *Server) DispatchAction(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var body DispatchRequest
	if !s.decode(w, r, &body) {
		return
	}
	action := domain.NewAction(body.Action, body.Parameters)
	if err := bmsagent.ValidateAction(action); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.run(w, r, sessionID, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return s.Agent.Dispatch(ctx, conv, action, body.Context)
	})
}

// run executes fn inside the session, broadcasts the result and writes it.
func (s *Server) run(w http.ResponseWriter, r *http.Request, sessionID string, fn func(context.Context, *domain.ConversationContext) domain.ExecutionResult) {
	var res domain.ExecutionResult
	_, err := s.Sessions.Update(r.Context(), sessionID, func(ctx context.Context, conv *domain.ConversationContext) error {
		res = fn(ctx, conv)
		return nil
	})
	if err != nil {
		s.logger.Error("execute failed", "session_id", sessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if payload, err := json.Marshal(res); err == nil {
		s.Streams.Broadcast(sessionID, string(payload))
	}
	writeJSON(w, http.StatusOK, res)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	conv, err := s.Sessions.Load(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// GetSessionGraph handles GET /sessions/{id}/graph: the action history as a Mermaid flowchart.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	conv, err := s.Sessions.Load(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	_, _ = io.WriteString(w, graph.HistoryFlow(conv))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.Sessions.Delete(r.Context(), sessionID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// Every result executed in the session is pushed as one data frame.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE subscriber connected", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: result\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return false
		}
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) sanitize(w http.ResponseWriter, text string) (string, bool) {
	clean, err := runner.SanitizeRequest(text)
	if err != nil {
		s.logger.Warn("input rejected", "err", err, "size", len(text))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid input: %v", err)})
		return "", false
	}
	return clean, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
