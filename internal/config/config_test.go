package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 20, cfg.Heuristics.HighlightCap)
	assert.Equal(t, 25.0, cfg.Heuristics.UnitCosts["IFCDOOR"])
}

func TestParse_HeuristicOverridesMergeWithDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
heuristics:
  highlight_cap: 5
  unit_costs:
    IFCDOOR: 99
    IFCSTAIR: 60
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Heuristics.HighlightCap)
	assert.Equal(t, 10, cfg.Heuristics.ResponseCap, "untouched fields keep defaults")
	assert.Equal(t, 99.0, cfg.Heuristics.UnitCosts["IFCDOOR"])
	assert.Equal(t, 60.0, cfg.Heuristics.UnitCosts["IFCSTAIR"])
	assert.Equal(t, 30.0, cfg.Heuristics.UnitCosts["IFCWINDOW"], "unlisted map keys survive")
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("BMSAGENT_TEST_REDIS", "redis.internal:6380")
	cfg, err := Parse([]byte(`
store:
  backend: redis
  redis:
    addr: ${BMSAGENT_TEST_REDIS}
    ttl: 30m
    lock: true
`))
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Redis.Lock)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"backend", "store: {backend: etcd}", "store.backend"},
		{"port", "server: {port: 70000}", "server.port"},
		{"level", "logging: {level: loud}", "logging.level"},
		{"format", "logging: {format: xml}", "logging.format"},
		{"opacity", "heuristics: {isolation_opacity: 2}", "isolation_opacity"},
		{"syntax", "server: [", "parsing config file"},
		{"short key", "store: {encryption: {key: c2hvcnQ=}}", "store.encryption.key"},
		{"orphan fallback", "store: {encryption: {fallback_keys: [c2hvcnQ=]}}", "requires store.encryption.key"},
		{"redact", "store: {redact: [\"(\"]}", "store.redact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bmsagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {port: 9090}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BMSAGENT_TEST_FROM_DOTENV=yes\n"), 0o644))
	t.Setenv("BMSAGENT_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("BMSAGENT_TEST_FROM_DOTENV"))

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "yes", os.Getenv("BMSAGENT_TEST_FROM_DOTENV"))
}
