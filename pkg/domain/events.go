package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventInterpret   EventType = "interpret"
	EventActionStart EventType = "action_start"
	EventActionEnd   EventType = "action_end"
	EventSelect      EventType = "select"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// InterpretEvent is emitted after every interpretation attempt.
type InterpretEvent struct {
	EventBase
	Text    string     `json:"text"`
	Action  ActionName `json:"action,omitempty"`
	Matched bool       `json:"matched"`
	Rule    string     `json:"rule,omitempty"`
}

// ActionEvent represents the start or end of a capability call.
type ActionEvent struct {
	EventBase
	Action     ActionName     `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Duration   time.Duration  `json:"duration,omitempty"`
	IsError    bool           `json:"is_error,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// SelectEvent is the selection notification fired when one element is selected.
type SelectEvent struct {
	EventBase
	Element ElementReference `json:"element"`
	Data    *ItemData        `json:"data,omitempty"`
}

// LifecycleHooks defines callbacks for agent observability.
type LifecycleHooks struct {
	OnInterpret   func(context.Context, *InterpretEvent)
	OnActionStart func(context.Context, *ActionEvent)
	OnActionEnd   func(context.Context, *ActionEvent)
	OnSelect      func(context.Context, *SelectEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnInterpret:   chain(h.OnInterpret, other.OnInterpret),
		OnActionStart: chain(h.OnActionStart, other.OnActionStart),
		OnActionEnd:   chain(h.OnActionEnd, other.OnActionEnd),
		OnSelect:      chain(h.OnSelect, other.OnSelect),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
