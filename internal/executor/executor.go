// Package executor runs actions of the closed catalog against the viewer ports.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
	"github.com/ikenthis/bmsagent/pkg/registry"
)

// handler runs one capability with loosely typed parameters.
type handler func(ctx context.Context, params map[string]any) (Outcome, error)

// Outcome is the successful result of one capability.
type Outcome struct {
	Result  any
	Message string
}

// Executor is the capability catalog. It holds no per-call state.
type Executor struct {
	world     ports.World
	fragments ports.Fragments
	models    []ports.Model

	heuristics Heuristics
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time

	handlers *registry.Registry[handler]
}

// Option configures the Executor.
type Option func(*Executor)

// WithLogger sets the logger used for per-model failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithHeuristics replaces the default heuristic constants.
func WithHeuristics(h Heuristics) Option {
	return func(e *Executor) {
		e.heuristics = h
	}
}

// WithHooks registers lifecycle hooks. Only OnSelect is fired by the executor.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used in reports.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// New wires the executor to the viewer collaborators. world and fragments may be nil;
// actions that need them fail with a descriptive cause.
func New(world ports.World, fragments ports.Fragments, models []ports.Model, opts ...Option) *Executor {
	e := &Executor{
		world:      world,
		fragments:  fragments,
		models:     models,
		heuristics: DefaultHeuristics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerHandlers()
	return e
}

// Heuristics returns the constants in use.
func (e *Executor) Heuristics() Heuristics {
	return e.heuristics
}

// Dispatch runs one action. Failures are *domain.ActionExecutionError.
func (e *Executor) Dispatch(ctx context.Context, action domain.InterpretedAction) (Outcome, error) {
	h, ok := e.handlers.Lookup(string(action.Action))
	if !ok {
		return Outcome{}, domain.NewActionError(action.Action, "unknown action %q", string(action.Action))
	}
	return h(ctx, action.Parameters)
}

// Supports reports whether an action has a handler.
func (e *Executor) Supports(name domain.ActionName) bool {
	_, ok := e.handlers.Lookup(string(name))
	return ok
}

func (e *Executor) registerHandlers() {
	r := registry.New[handler]()
	r.Register(string(domain.ActionSelectElement), e.selectElement)
	r.Register(string(domain.ActionSelectElementsByType), e.selectElementsByType)
	r.Register(string(domain.ActionSelectElementsByProperty), e.selectElementsByProperty)
	r.Register(string(domain.ActionZoomToElement), e.zoomToElement)
	r.Register(string(domain.ActionResetView), func(ctx context.Context, _ map[string]any) (Outcome, error) {
		return e.resetView(ctx)
	})
	r.Register(string(domain.ActionCountElements), e.countElements)
	r.Register(string(domain.ActionAnalyzeElement), e.analyzeElement)
	r.Register(string(domain.ActionFindSpaces), e.findSpaces)
	r.Register(string(domain.ActionGenerateReport), e.generateReport)
	r.Register(string(domain.ActionHighlightElements), e.highlightElements)
	r.Register(string(domain.ActionIsolateCategory), e.isolateCategory)
	r.Register(string(domain.ActionCreateGeometry), e.createGeometry)
	r.Register(string(domain.ActionCreateDiagram), e.createDiagram)
	e.handlers = r
}

func (e *Executor) camera() ports.Camera {
	if e.world == nil {
		return nil
	}
	return e.world.Camera()
}

func (e *Executor) scene() ports.Scene {
	if e.world == nil {
		return nil
	}
	return e.world.Scene()
}

// redraw asks the viewer to refresh. A failed redraw does not fail the action.
func (e *Executor) redraw(ctx context.Context) {
	if e.fragments == nil {
		return
	}
	if err := e.fragments.Update(ctx); err != nil {
		e.logger.Warn("fragments update failed", "err", err)
	}
}

func (e *Executor) fireSelect(ctx context.Context, ref domain.ElementReference, data *domain.ItemData) {
	if e.hooks.OnSelect == nil {
		return
	}
	e.hooks.OnSelect(ctx, &domain.SelectEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventSelect},
		Element:   ref,
		Data:      data,
	})
}

func cancelled(action domain.ActionName, err error) error {
	return &domain.ActionExecutionError{Action: action, Cause: "cancelled", Err: err}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
