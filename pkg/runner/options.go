package runner

import (
	"log/slog"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the ContextStore for persistence.
func WithStore(store ports.ContextStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID sets the session ID used with the store.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithBanner prints text once before the first prompt.
func WithBanner(banner string) Option {
	return func(r *Runner) {
		r.Banner = banner
	}
}

// WithInitialContext seeds a new session's execution context.
// It is ignored when an existing session is resumed.
func WithInitialContext(extra map[string]any) Option {
	return func(r *Runner) {
		r.InitialContext = extra
	}
}

// WithConversation runs against an explicit context instead of loading one.
func WithConversation(conv *domain.ConversationContext) Option {
	return func(r *Runner) {
		r.conv = conv
	}
}
