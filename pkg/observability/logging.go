package observability

import (
	"context"
	"log/slog"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// LoggingHooks returns hooks that write one structured record per event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInterpret: func(ctx context.Context, e *domain.InterpretEvent) {
			logger.DebugContext(ctx, "interpret",
				"session_id", e.SessionID,
				"action", e.Action,
				"matched", e.Matched,
				"rule", e.Rule,
			)
		},
		OnActionStart: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action_start", "session_id", e.SessionID, "action", e.Action)
		},
		OnActionEnd: func(ctx context.Context, e *domain.ActionEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "action_end",
				"session_id", e.SessionID,
				"action", e.Action,
				"duration", e.Duration,
				"is_error", e.IsError,
				"message", e.Message,
			)
		},
		OnSelect: func(ctx context.Context, e *domain.SelectEvent) {
			logger.DebugContext(ctx, "select", "model", e.Element.ModelID, "local_id", e.Element.LocalID)
		},
	}
}
