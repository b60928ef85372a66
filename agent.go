package bmsagent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ikenthis/bmsagent/internal/executor"
	"github.com/ikenthis/bmsagent/internal/interpreter"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
)

// Heuristics are the static constants used by the executor (caps, unit costs,
// energy coefficients, diagram layout).
type Heuristics = executor.Heuristics

// Rule is one predicate/resolver pair of the interpreter.
type Rule = interpreter.Rule

// DefaultHeuristics returns the baseline constants.
func DefaultHeuristics() Heuristics {
	return executor.DefaultHeuristics()
}

// Agent interprets and executes requests against one BIM viewer.
// Calls are serialized, so one Agent can back several surfaces.
type Agent struct {
	mu sync.Mutex

	interpreter *interpreter.Interpreter
	executor    *executor.Executor
	conv        *domain.ConversationContext

	vocab      *vocabulary.Table
	rules      []Rule
	heuristics *Heuristics
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithVocabulary replaces the built-in noun-to-category table.
func WithVocabulary(table *vocabulary.Table) Option {
	return func(a *Agent) {
		a.vocab = table
	}
}

// WithRules adds interpretation rules evaluated before the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(a *Agent) {
		a.rules = append(a.rules, rules...)
	}
}

// WithHeuristics overrides the executor constants.
func WithHeuristics(h Heuristics) Option {
	return func(a *Agent) {
		a.heuristics = &h
	}
}

// WithContext seeds the agent's own conversation context.
func WithContext(conv *domain.ConversationContext) Option {
	return func(a *Agent) {
		a.conv = conv.Snapshot()
	}
}

// WithClock overrides the time source for history entries and events.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

// New creates an agent. It can interpret right away but executes nothing
// until Initialize wires the viewer.
func New(opts ...Option) *Agent {
	a := &Agent{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.conv == nil {
		a.conv = domain.NewConversationContext("")
	}
	a.interpreter = interpreter.New(a.vocab,
		interpreter.WithLogger(a.logger),
		interpreter.WithRules(a.rules...),
	)
	return a
}

// Initialize wires the viewer collaborators. Calling it again replaces them.
func (a *Agent) Initialize(world ports.World, fragments ports.Fragments, models []ports.Model) {
	opts := []executor.Option{
		executor.WithLogger(a.logger),
		executor.WithHooks(a.hooks),
		executor.WithClock(a.now),
	}
	if a.heuristics != nil {
		opts = append(opts, executor.WithHeuristics(*a.heuristics))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.executor = executor.New(world, fragments, models, opts...)
	a.logger.Info("agent initialized", "models", len(models))
}

// Initialized reports whether Initialize has been called.
func (a *Agent) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.executor != nil
}

// ExecuteAction interprets request and runs it against the agent's own context.
// extra is merged into the execution context first. It never returns an error;
// failures come back as a result with Success false.
func (a *Agent) ExecuteAction(ctx context.Context, request domain.ActionRequest, extra map[string]any) domain.ExecutionResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.execute(ctx, a.conv, request, extra)
}

// Execute is ExecuteAction against a caller-owned context, which it updates in place.
func (a *Agent) Execute(ctx context.Context, conv *domain.ConversationContext, request domain.ActionRequest, extra map[string]any) domain.ExecutionResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.execute(ctx, conv, request, extra)
}

// Dispatch runs an explicitly built action against conv, skipping interpretation.
// Parameters are checked against the action's schema first; a rejected action
// is not recorded in the history.
func (a *Agent) Dispatch(ctx context.Context, conv *domain.ConversationContext, action domain.InterpretedAction, extra map[string]any) domain.ExecutionResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if conv == nil {
		conv = a.conv
	}
	conv.Merge(extra)
	if err := ValidateAction(action); err != nil {
		a.logger.Info("action rejected", "session_id", conv.SessionID, "action", action.Action, "err", err)
		return domain.ExecutionResult{Success: false, Action: action.Action, Message: "invalid parameters: " + err.Error()}
	}
	return a.dispatch(ctx, conv, action)
}

func (a *Agent) execute(ctx context.Context, conv *domain.ConversationContext, request string, extra map[string]any) domain.ExecutionResult {
	if conv == nil {
		conv = a.conv
	}
	conv.Merge(extra)

	action, rule, err := a.interpreter.Explain(request)
	a.fireInterpret(ctx, conv, request, action, rule, err == nil)
	if err != nil {
		a.logger.Info("request not understood", "session_id", conv.SessionID, "text", request)
		return domain.ExecutionResult{Success: false, Message: err.Error()}
	}
	return a.dispatch(ctx, conv, action)
}

func (a *Agent) dispatch(ctx context.Context, conv *domain.ConversationContext, action domain.InterpretedAction) domain.ExecutionResult {
	if a.executor == nil {
		return domain.ExecutionResult{Success: false, Action: action.Action, Message: domain.ErrNotInitialized.Error()}
	}
	if action.Parameters == nil {
		action.Parameters = map[string]any{}
	}

	start := a.now()
	a.fireAction(ctx, a.hooks.OnActionStart, domain.EventActionStart, conv, action, 0, nil, "")

	outcome, err := a.executor.Dispatch(ctx, action)
	elapsed := a.now().Sub(start)
	conv.Record(action.Action, a.now())

	if err != nil {
		msg := failureMessage(err)
		a.fireAction(ctx, a.hooks.OnActionEnd, domain.EventActionEnd, conv, action, elapsed, err, msg)
		a.logger.Warn("action failed", "session_id", conv.SessionID, "action", action.Action, "err", err)
		return domain.ExecutionResult{Success: false, Action: action.Action, Message: msg}
	}
	a.fireAction(ctx, a.hooks.OnActionEnd, domain.EventActionEnd, conv, action, elapsed, nil, outcome.Message)
	return domain.ExecutionResult{
		Success: true,
		Action:  action.Action,
		Result:  outcome.Result,
		Message: outcome.Message,
	}
}

// failureMessage prefers the user-facing cause of an execution error.
func failureMessage(err error) string {
	var ae *domain.ActionExecutionError
	if errors.As(err, &ae) {
		return ae.Cause
	}
	return err.Error()
}

func (a *Agent) fireInterpret(ctx context.Context, conv *domain.ConversationContext, text string, action domain.InterpretedAction, rule string, matched bool) {
	if a.hooks.OnInterpret == nil {
		return
	}
	a.hooks.OnInterpret(ctx, &domain.InterpretEvent{
		EventBase: domain.EventBase{Timestamp: a.now(), Type: domain.EventInterpret, SessionID: conv.SessionID},
		Text:      text,
		Action:    action.Action,
		Matched:   matched,
		Rule:      rule,
	})
}

func (a *Agent) fireAction(ctx context.Context, hook func(context.Context, *domain.ActionEvent), typ domain.EventType, conv *domain.ConversationContext, action domain.InterpretedAction, d time.Duration, err error, msg string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.ActionEvent{
		EventBase:  domain.EventBase{Timestamp: a.now(), Type: typ, SessionID: conv.SessionID},
		Action:     action.Action,
		Parameters: action.Parameters,
		Duration:   d,
		IsError:    err != nil,
		Message:    msg,
	})
}

// Interpret resolves text without executing it.
func (a *Agent) Interpret(text string) (domain.InterpretedAction, error) {
	return a.interpreter.Interpret(text)
}

// Explain is Interpret plus the name of the rule that matched.
func (a *Agent) Explain(text string) (domain.InterpretedAction, string, error) {
	return a.interpreter.Explain(text)
}

// Vocabulary returns the noun-to-category table in use.
func (a *Agent) Vocabulary() *vocabulary.Table {
	return a.interpreter.Vocabulary()
}

// History returns a copy of the agent's action log.
func (a *Agent) History() []domain.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.HistoryEntry(nil), a.conv.History...)
}

// LastAction returns the most recent history entry, or nil.
func (a *Agent) LastAction() *domain.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conv.LastAction == nil {
		return nil
	}
	last := *a.conv.LastAction
	return &last
}

// Context returns a snapshot of the agent's own conversation context, ready to persist.
func (a *Agent) Context() *domain.ConversationContext {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conv.Snapshot()
}

// Restore replaces the agent's own context, typically with one loaded from a store.
func (a *Agent) Restore(conv *domain.ConversationContext) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if conv == nil {
		conv = domain.NewConversationContext("")
	}
	a.conv = conv.Snapshot()
}
