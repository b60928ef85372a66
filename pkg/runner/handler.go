package runner

import (
	"context"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (console) and JSON (structured) modes.
type IOHandler interface {
	// Input reads the next request. io.EOF ends the session.
	Input(ctx context.Context) (string, error)

	// Output presents the result of one request.
	Output(ctx context.Context, res domain.ExecutionResult) error

	// SystemOutput presents a meta-message (help, history, input errors).
	SystemOutput(ctx context.Context, msg string) error
}

// Executor runs one free-text request against a conversation context.
// *bmsagent.Agent satisfies it.
type Executor interface {
	Execute(ctx context.Context, conv *domain.ConversationContext, request domain.ActionRequest, extra map[string]any) domain.ExecutionResult
}

// ContentRenderer transforms markdown before it is printed, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

// ResultFormatter turns a result into markdown or plain text.
type ResultFormatter func(domain.ExecutionResult) string
