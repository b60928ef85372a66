// Package mcp exposes the agent as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/runner"
	"github.com/ikenthis/bmsagent/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ActionsURI is the resource listing the action catalog.
const ActionsURI = "bim://actions"

// Agent is the part of *bmsagent.Agent the MCP server needs.
type Agent interface {
	Execute(ctx context.Context, conv *domain.ConversationContext, request domain.ActionRequest, extra map[string]any) domain.ExecutionResult
	Explain(text string) (domain.InterpretedAction, string, error)
	Dispatch(ctx context.Context, conv *domain.ConversationContext, action domain.InterpretedAction, extra map[string]any) domain.ExecutionResult
}

// ExecuteArgs are the arguments of execute_action.
type ExecuteArgs struct {
	Text      string         `json:"text"`
	SessionID string         `json:"session_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// DispatchArgs are the arguments of dispatch_action.
type DispatchArgs struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// InterpretArgs are the arguments of interpret_action.
type InterpretArgs struct {
	Text string `json:"text"`
}

// InterpretResponse is the structured result of interpret_action.
type InterpretResponse struct {
	Action     domain.ActionName `json:"action" jsonschema_description:"Catalog action the text maps to"`
	Parameters map[string]any    `json:"parameters" jsonschema_description:"Extracted parameters"`
	Rule       string            `json:"rule" jsonschema_description:"Name of the matching rule"`
}

// Server wraps the agent and exposes it as an MCP server.
type Server struct {
	agent     Agent
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions keeps conversations across calls that pass a session_id.
// Without it every call runs on a fresh context.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server.
func NewServer(agent Agent, opts ...Option) *Server {
	s := &Server{
		agent:     agent,
		mcpServer: server.NewMCPServer("bmsagent-mcp", strings.TrimSpace(bmsagent.Version)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	executeTool := mcp.NewTool("execute_action",
		mcp.WithDescription("Interpret a facility-management request and run it against the loaded building model."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Free-text request, e.g. \"¿Cuántas puertas hay?\"")),
		mcp.WithString("session_id", mcp.Description("Conversation to run in (optional)")),
		mcp.WithObject("context", mcp.Description("Values merged into the execution context (optional)")),
		mcp.WithOutputSchema[domain.ExecutionResult](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecute))

	names := make([]string, 0, len(domain.AllActions()))
	for _, n := range domain.AllActions() {
		names = append(names, n.String())
	}
	dispatchTool := mcp.NewTool("dispatch_action",
		mcp.WithDescription("Run a catalog action with explicit parameters, skipping interpretation. See list_actions for parameter schemas."),
		mcp.WithString("action", mcp.Required(), mcp.Enum(names...), mcp.Description("Catalog action name")),
		mcp.WithObject("parameters", mcp.Description("Action parameters")),
		mcp.WithString("session_id", mcp.Description("Conversation to run in (optional)")),
		mcp.WithObject("context", mcp.Description("Values merged into the execution context (optional)")),
		mcp.WithOutputSchema[domain.ExecutionResult](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	interpretTool := mcp.NewTool("interpret_action",
		mcp.WithDescription("Show which catalog action a request maps to, without running it."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Free-text request")),
		mcp.WithOutputSchema[InterpretResponse](),
	)
	s.mcpServer.AddTool(interpretTool, mcp.NewStructuredToolHandler(s.handleInterpret))

	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the action catalog."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(bmsagent.Actions())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode catalog: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args ExecuteArgs) (domain.ExecutionResult, error) {
	text, err := runner.SanitizeRequest(args.Text)
	if err != nil {
		s.logger.Warn("MCP execute: input rejected", "err", err, "size", len(args.Text))
		return domain.ExecutionResult{}, fmt.Errorf("input rejected: %w", err)
	}

	return s.inSession(ctx, args.SessionID, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return s.agent.Execute(ctx, conv, text, args.Context)
	})
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (domain.ExecutionResult, error) {
	action := domain.NewAction(domain.ActionName(args.Action), args.Parameters)
	if err := bmsagent.ValidateAction(action); err != nil {
		return domain.ExecutionResult{}, err
	}
	return s.inSession(ctx, args.SessionID, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return s.agent.Dispatch(ctx, conv, action, args.Context)
	})
}

// inSession runs fn on the stored session, or on a fresh context when
// sessions are off or no id was given.
func (s *Server) inSession(ctx context.Context, sessionID string, fn func(context.Context, *domain.ConversationContext) domain.ExecutionResult) (domain.ExecutionResult, error) {
	if s.sessions == nil || sessionID == "" {
		return fn(ctx, domain.NewConversationContext(sessionID)), nil
	}

	var res domain.ExecutionResult
	_, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, conv *domain.ConversationContext) error {
		res = fn(ctx, conv)
		return nil
	})
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return res, nil
}

func (s *Server) handleInterpret(ctx context.Context, request mcp.CallToolRequest, args InterpretArgs) (InterpretResponse, error) {
	text, err := runner.SanitizeRequest(args.Text)
	if err != nil {
		return InterpretResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	action, rule, err := s.agent.Explain(text)
	if err != nil {
		return InterpretResponse{}, err
	}
	return InterpretResponse{Action: action.Action, Parameters: action.Parameters, Rule: rule}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActionsURI, "Action catalog",
		mcp.WithResourceDescription("Every action the agent can execute, with a description and parameter schema."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(bmsagent.Actions())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ActionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
