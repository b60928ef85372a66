package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/ikenthis/bmsagent/internal/validator"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
)

// Validate checks the configured scene and vocabulary without starting an agent.
// Categories no noun reaches are printed as notes and do not fail validation.
func Validate(cfg *config.Config, out io.Writer) error {
	scene := memory.DemoFixture()
	if cfg.Scene.Fixture != "" {
		f, err := memory.ReadFixture(cfg.Scene.Fixture)
		if err != nil {
			return err
		}
		scene = f
	}
	table := vocabulary.Default()
	if cfg.Vocabulary.Path != "" {
		t, err := vocabulary.LoadFile(cfg.Vocabulary.Path)
		if err != nil {
			return err
		}
		table = t
	}

	err := errors.Join(
		prefixed("scene", validator.ValidateScene(scene)),
		prefixed("vocabulary", validator.ValidateVocabulary(table)),
	)
	if err != nil {
		return err
	}
	for _, c := range validator.Unreachable(scene, table) {
		fmt.Fprintf(out, "note: no vocabulary noun maps to %s\n", c)
	}
	return nil
}

func prefixed(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s invalid: %w", what, err)
}
