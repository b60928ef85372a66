// Package interpreter resolves free-text requests into actions of the closed catalog.
//
// Resolution is a deterministic, offline classifier: an ordered list of
// predicate/resolver rules evaluated first-match-wins over the lower-cased text.
package interpreter

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
)

// Interpreter maps free text to an InterpretedAction.
type Interpreter struct {
	vocab  *vocabulary.Table
	rules  []Rule
	logger *slog.Logger
}

// Option configures the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a structured logger for rule tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithRules prepends custom rules so they take precedence over the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(i *Interpreter) {
		i.rules = append(append([]Rule(nil), rules...), i.rules...)
	}
}

// New creates an interpreter over the given vocabulary (Default if nil).
func New(vocab *vocabulary.Table, opts ...Option) *Interpreter {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	i := &Interpreter{
		vocab:  vocab,
		rules:  defaultRules(vocab),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret resolves text into an action or fails with *domain.UnrecognizedActionError.
func (i *Interpreter) Interpret(text string) (domain.InterpretedAction, error) {
	action, _, err := i.Explain(text)
	return action, err
}

// Explain is Interpret plus the name of the rule that matched.
func (i *Interpreter) Explain(text string) (domain.InterpretedAction, string, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower != "" {
		for _, r := range i.rules {
			if !r.Match(lower) {
				continue
			}
			action := r.Resolve(lower)
			i.logger.Debug("interpreted request", "rule", r.Name, "action", action.Action, "params", action.Parameters)
			return action, r.Name, nil
		}
	}
	i.logger.Debug("no rule matched", "text", text)
	return domain.InterpretedAction{}, "", &domain.UnrecognizedActionError{Text: text}
}

// Rules returns the rule names in evaluation order.
func (i *Interpreter) Rules() []string {
	names := make([]string, len(i.rules))
	for idx, r := range i.rules {
		names[idx] = r.Name
	}
	return names
}

// Vocabulary returns the table used for type detection.
func (i *Interpreter) Vocabulary() *vocabulary.Table {
	return i.vocab
}
