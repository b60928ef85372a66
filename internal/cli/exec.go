package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/internal/presentation/tui"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/runner"
)

// ErrActionFailed is returned by Exec when the agent reports Success=false,
// so the process can exit non-zero after printing the result.
var ErrActionFailed = errors.New("action failed")

// ExecOptions configures a one-shot execution.
type ExecOptions struct {
	SessionID string
	Context   string
	JSON      bool
	Out       io.Writer
}

// Exec interprets and runs one request. With a session id the request joins
// that conversation and the updated context is saved.
func Exec(ctx context.Context, stack *Stack, text string, opts ExecOptions) error {
	clean, err := runner.SanitizeRequest(text)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	extra, err := ParseContext(opts.Context)
	if err != nil {
		return err
	}

	return runOnce(ctx, stack, opts, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return stack.Agent.Execute(ctx, conv, clean, extra)
	})
}

// Dispatch runs one explicit action. params is a JSON object; empty means none.
func Dispatch(ctx context.Context, stack *Stack, name string, params string, opts ExecOptions) error {
	var parameters map[string]any
	if params != "" {
		if err := json.Unmarshal([]byte(params), &parameters); err != nil {
			return fmt.Errorf("error parsing --params JSON: %w", err)
		}
	}
	action := domain.NewAction(domain.ActionName(name), parameters)
	if err := bmsagent.ValidateAction(action); err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	extra, err := ParseContext(opts.Context)
	if err != nil {
		return err
	}
	return runOnce(ctx, stack, opts, func(ctx context.Context, conv *domain.ConversationContext) domain.ExecutionResult {
		return stack.Agent.Dispatch(ctx, conv, action, extra)
	})
}

func runOnce(ctx context.Context, stack *Stack, opts ExecOptions, fn func(context.Context, *domain.ConversationContext) domain.ExecutionResult) error {
	var res domain.ExecutionResult
	run := func(ctx context.Context, conv *domain.ConversationContext) error {
		res = fn(ctx, conv)
		return nil
	}
	if opts.SessionID != "" {
		if _, err := stack.Sessions.Update(ctx, opts.SessionID, run); err != nil {
			return err
		}
	} else {
		_ = run(ctx, domain.NewConversationContext(""))
	}

	if err := writeResult(opts.Out, res, opts.JSON); err != nil {
		return err
	}
	if !res.Success {
		return ErrActionFailed
	}
	return nil
}

// Interpret prints the action a request maps to without running it.
func Interpret(stack *Stack, text string, out io.Writer) error {
	clean, err := runner.SanitizeRequest(text)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	action, rule, err := stack.Agent.Explain(clean)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"action":     action.Action,
		"parameters": action.Parameters,
		"rule":       rule,
	})
}

func writeResult(out io.Writer, res domain.ExecutionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprint(out, tui.ResultMarkdown(res))
	return err
}
