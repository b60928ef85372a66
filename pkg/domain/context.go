package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// ConversationContextVersion is the schema version written by this build.
const ConversationContextVersion = 1

// HistoryEntry is one record of the append-only action audit log.
type HistoryEntry struct {
	Timestamp time.Time  `json:"timestamp"`
	Action    ActionName `json:"action"`
}

// ConversationContext holds the state owned by one calling session.
// History grows for the lifetime of the context; it is diagnostic only.
type ConversationContext struct {
	Version          int            `json:"version"`
	SessionID        string         `json:"session_id"`
	ExecutionContext map[string]any `json:"execution_context"`
	History          []HistoryEntry `json:"history"`
	LastAction       *HistoryEntry  `json:"last_action,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewConversationContext creates an empty context for a session.
func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		Version:          ConversationContextVersion,
		SessionID:        sessionID,
		ExecutionContext: make(map[string]any),
		History:          []HistoryEntry{},
	}
}

// Merge folds caller-provided values into the execution context. Later values win.
func (c *ConversationContext) Merge(extra map[string]any) {
	if c.ExecutionContext == nil {
		c.ExecutionContext = make(map[string]any)
	}
	maps.Copy(c.ExecutionContext, extra)
}

// Record appends an entry to the history and moves the last-action pointer.
func (c *ConversationContext) Record(action ActionName, now time.Time) {
	entry := HistoryEntry{Timestamp: now, Action: action}
	c.History = append(c.History, entry)
	c.LastAction = &entry
	c.UpdatedAt = now
}

// Snapshot returns a deep-enough copy that callers can mutate independently.
func (c *ConversationContext) Snapshot() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.ExecutionContext = maps.Clone(c.ExecutionContext)
	if out.ExecutionContext == nil {
		out.ExecutionContext = make(map[string]any)
	}
	out.History = append([]HistoryEntry(nil), c.History...)
	if c.LastAction != nil {
		last := *c.LastAction
		out.LastAction = &last
	}
	return &out
}

// MarshalContext serializes a context for persistence.
// The argument is not modified; a missing version is stamped on the copy written.
func MarshalContext(c *ConversationContext) ([]byte, error) {
	out := *c
	if out.Version == 0 {
		out.Version = ConversationContextVersion
	}
	return json.Marshal(&out)
}

// UnmarshalContext restores a context written by MarshalContext.
// Documents without a version are treated as version 1.
func UnmarshalContext(data []byte) (*ConversationContext, error) {
	var c ConversationContext
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation context: %w", err)
	}
	if c.Version == 0 {
		c.Version = ConversationContextVersion
	}
	if c.Version > ConversationContextVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedContextVersion, c.Version)
	}
	if c.ExecutionContext == nil {
		c.ExecutionContext = make(map[string]any)
	}
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	return &c, nil
}
