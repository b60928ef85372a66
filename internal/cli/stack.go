// Package cli wires configuration into a ready agent for the bmsagent commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/ikenthis/bmsagent/internal/logging"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/observability"
	"github.com/ikenthis/bmsagent/pkg/ports"
	"github.com/ikenthis/bmsagent/pkg/session"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is everything a command needs, built from one Config.
type Stack struct {
	Config   *config.Config
	Logger   *slog.Logger
	Agent    *bmsagent.Agent
	Viewer   *memory.Viewer
	Store    ports.ContextStore
	Sessions *session.Manager
	Registry *prometheus.Registry

	closers []io.Closer
}

// NewLogger builds the process logger from the logging section.
// Quiet commands get a no-op logger unless debug is set.
func NewLogger(cfg config.LoggingConfig, quiet, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		return logging.NewNop(), nil
	}
	return logging.New(level, cfg.Format), nil
}

// Build creates the viewer, agent, store and session manager described by cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Stack{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}

	viewer, err := loadViewer(cfg.Scene)
	if err != nil {
		return nil, err
	}
	s.Viewer = viewer

	s.Registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(s.Registry)

	opts := []bmsagent.Option{
		bmsagent.WithLogger(logger),
		bmsagent.WithHeuristics(cfg.Heuristics),
		bmsagent.WithLifecycleHooks(metrics.Hooks()),
		bmsagent.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if cfg.Vocabulary.Path != "" {
		table, err := vocabulary.LoadFile(cfg.Vocabulary.Path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bmsagent.WithVocabulary(table))
	}
	s.Agent = bmsagent.New(opts...)
	s.Agent.Initialize(viewer, viewer.Fragments(), viewer.Models())

	store, locker, closer, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.Store = store

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	s.Sessions = session.NewManager(store, sessionOpts...)

	logger.Debug("stack ready", "store", cfg.Store.Backend, "scene", sceneName(cfg.Scene))
	return s, nil
}

// Close releases store connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func loadViewer(cfg config.SceneConfig) (*memory.Viewer, error) {
	if cfg.Fixture == "" {
		return memory.DemoViewer(), nil
	}
	v, err := memory.LoadFixture(cfg.Fixture)
	if err != nil {
		return nil, fmt.Errorf("error loading scene: %w", err)
	}
	return v, nil
}

func sceneName(cfg config.SceneConfig) string {
	if cfg.Fixture == "" {
		return "demo"
	}
	return cfg.Fixture
}
