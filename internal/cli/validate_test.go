package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Demo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(config.DefaultConfig(), &out))
	assert.Empty(t, out.String())
}

func TestValidate_NotesUnreachableCategories(t *testing.T) {
	scene := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(scene, []byte(`
models:
  - id: plant
    items:
      - {local_id: 1, category: IFCPUMP}
`), 0644))
	cfg := config.DefaultConfig()
	cfg.Scene.Fixture = scene

	var out bytes.Buffer
	require.NoError(t, Validate(cfg, &out))
	assert.Contains(t, out.String(), "note: no vocabulary noun maps to IFCPUMP")
}

func TestValidate_ReportsBothFiles(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scene, []byte(`
models:
  - id: plant
    items:
      - {local_id: 1, category: IFCPUMP}
      - {local_id: 1, category: IFCPUMP}
`), 0644))
	vocab := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(vocab, []byte(`
groups:
  - {name: pumps, category: IFCPUMP, synonyms: [bomba]}
  - {name: valves, category: IFCVALVE, synonyms: [bomba, valvula]}
`), 0644))
	cfg := config.DefaultConfig()
	cfg.Scene.Fixture = scene
	cfg.Vocabulary.Path = vocab

	err := Validate(cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene invalid")
	assert.Contains(t, err.Error(), "duplicate local id 'plant/1'")
	assert.Contains(t, err.Error(), "vocabulary invalid")
	assert.Contains(t, err.Error(), "synonym 'bomba' of IFCVALVE is shadowed by IFCPUMP")
}

func TestValidate_MissingScene(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene.Fixture = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, Validate(cfg, &bytes.Buffer{}))
}
