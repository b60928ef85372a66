package ports

import (
	"context"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// ContextStore persists conversation contexts per session.
type ContextStore interface {
	// Save persists the context for a given session ID.
	Save(ctx context.Context, sessionID string, conv *domain.ConversationContext) error

	// Load retrieves the context for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error)

	// Delete removes the context for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}
