package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/internal/presentation/tui"
	"github.com/ikenthis/bmsagent/pkg/runner"
)

// RunOptions configures an interactive console session.
type RunOptions struct {
	JSON      bool
	Plain     bool
	SessionID string
	Fresh     bool
	Context   string // raw JSON object

	In  io.Reader
	Out io.Writer
}

// RunSession runs the console loop until the input ends or ctx is cancelled.
func RunSession(ctx context.Context, stack *Stack, opts RunOptions) error {
	initial, err := ParseContext(opts.Context)
	if err != nil {
		return err
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := stack.Store.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session %s: %w", opts.SessionID, err)
		}
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(stack.Logger),
		runner.WithInitialContext(initial),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts, runner.WithSessionID(opts.SessionID), runner.WithStore(stack.Store))
	}

	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)))
	} else {
		handlerOpts := []runner.TextHandlerOption{}
		if !opts.Plain {
			tui.PrintBanner(opts.Out, bmsagent.Version)
			render, err := tui.NewRenderer(0)
			if err != nil {
				stack.Logger.Warn("markdown renderer unavailable", "err", err)
			} else {
				handlerOpts = append(handlerOpts,
					runner.WithTextHandlerRenderer(render),
					runner.WithTextHandlerFormatter(tui.ResultMarkdown),
				)
			}
		}
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(opts.In, opts.Out, handlerOpts...)))
	}

	r := runner.NewRunner(runnerOpts...)
	stack.Logger.Info("session started", "session_id", opts.SessionID, "json", opts.JSON)
	err = r.Run(ctx, stack.Agent)
	if conv := r.Conversation(); conv != nil {
		stack.Logger.Info("session finished", "session_id", opts.SessionID, "actions", len(conv.History))
	}
	return err
}

// ParseContext decodes a --context flag. Empty input yields nil.
func ParseContext(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("error parsing --context JSON: %w", err)
	}
	return out, nil
}
