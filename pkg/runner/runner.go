package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// Runner drives the read-execute-print loop.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging. Defaults to a no-op logger.
	Logger *slog.Logger

	// Store persists the conversation context after each request.
	// If nil or SessionID is empty, the session is ephemeral.
	Store     ports.ContextStore
	SessionID string

	Banner         string
	InitialContext map[string]any

	conv *domain.ConversationContext
}

// contextTaker is implemented by handlers that receive per-request context.
type contextTaker interface {
	TakeContext() map[string]any
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Conversation returns the context the last Run operated on.
func (r *Runner) Conversation() *domain.ConversationContext {
	return r.conv
}

// Run loops until the input ends, the user types exit or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, exec Executor) error {
	handler := r.resolveHandler()
	conv, resumed, err := r.resolveConversation(ctx)
	if err != nil {
		return err
	}
	r.conv = conv

	if r.Banner != "" {
		_ = handler.SystemOutput(ctx, r.Banner)
	}
	if resumed {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("resumed session %s (%d previous actions)", r.SessionID, len(conv.History)))
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		text, err := handler.Input(signals.Context())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(text) {
		case "exit", "quit", "salir":
			return nil
		case "help", "ayuda":
			_ = handler.SystemOutput(ctx, helpText())
			continue
		case "history", "historial":
			_ = handler.SystemOutput(ctx, historyText(conv))
			continue
		}

		var extra map[string]any
		if ct, ok := handler.(contextTaker); ok {
			extra = ct.TakeContext()
		}

		res := exec.Execute(signals.Context(), conv, text, extra)
		if signals.Context().Err() != nil && ctx.Err() == nil {
			r.Logger.Debug("action interrupted", "text", text)
			signals.Reset()
		}
		if err := handler.Output(ctx, res); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		if err := r.save(ctx, conv); err != nil {
			return fmt.Errorf("critical persistence error: %w", err)
		}
	}
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

// resolveConversation loads the session when a store is configured, or starts a new one.
func (r *Runner) resolveConversation(ctx context.Context) (*domain.ConversationContext, bool, error) {
	if r.conv != nil {
		return r.conv, false, nil
	}
	if r.Store != nil && r.SessionID != "" {
		conv, err := r.Store.Load(ctx, r.SessionID)
		if err == nil {
			return conv, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
	}
	conv := domain.NewConversationContext(r.SessionID)
	conv.Merge(r.InitialContext)
	return conv, false, nil
}

func (r *Runner) save(ctx context.Context, conv *domain.ConversationContext) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.SessionID, conv); err != nil {
		return err
	}
	r.Logger.Debug("context saved", "session_id", r.SessionID, "history", len(conv.History))
	return nil
}

func helpText() string {
	var b strings.Builder
	b.WriteString("available actions:\n")
	for _, name := range domain.AllActions() {
		fmt.Fprintf(&b, "  %-26s %s\n", name, domain.ActionDescriptions[name])
	}
	b.WriteString("commands: help, history, exit")
	return b.String()
}

func historyText(conv *domain.ConversationContext) string {
	if len(conv.History) == 0 {
		return "no actions yet"
	}
	var b strings.Builder
	for i, h := range conv.History {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%3d  %s  %s", i+1, h.Timestamp.Format("15:04:05"), h.Action)
	}
	return b.String()
}
