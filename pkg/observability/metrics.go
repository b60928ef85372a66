package observability

import (
	"context"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the agent collectors.
type Metrics struct {
	Interpretations *prometheus.CounterVec
	Actions         *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	Selections      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bmsagent_interpretations_total",
				Help: "Interpretation attempts by resulting action and outcome.",
			},
			[]string{"action", "matched"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bmsagent_actions_total",
				Help: "Executed actions by name and outcome.",
			},
			[]string{"action", "outcome"},
		),
		ActionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bmsagent_action_duration_seconds",
				Help:    "Duration of action executions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		Selections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmsagent_selections_total",
			Help: "Single-element selections fired.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Interpretations, m.Actions, m.ActionDuration, m.Selections)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInterpret: func(_ context.Context, e *domain.InterpretEvent) {
			action := string(e.Action)
			if !e.Matched {
				action = "none"
			}
			m.Interpretations.WithLabelValues(action, boolLabel(e.Matched)).Inc()
		},
		OnActionEnd: func(_ context.Context, e *domain.ActionEvent) {
			outcome := "success"
			if e.IsError {
				outcome = "error"
			}
			m.Actions.WithLabelValues(string(e.Action), outcome).Inc()
			m.ActionDuration.WithLabelValues(string(e.Action)).Observe(e.Duration.Seconds())
		},
		OnSelect: func(context.Context, *domain.SelectEvent) {
			m.Selections.Inc()
		},
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
