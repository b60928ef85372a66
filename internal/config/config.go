// Package config loads the bmsagent YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/ikenthis/bmsagent/internal/executor"
	"github.com/ikenthis/bmsagent/internal/logging"
	"github.com/ikenthis/bmsagent/pkg/persistence/middleware"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full configuration file.
type Config struct {
	Server     ServerConfig        `yaml:"server"`
	Logging    LoggingConfig       `yaml:"logging"`
	Store      StoreConfig         `yaml:"store"`
	Scene      SceneConfig         `yaml:"scene"`
	Vocabulary VocabularyConfig    `yaml:"vocabulary"`
	Heuristics executor.Heuristics `yaml:"heuristics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Metrics bool   `yaml:"metrics"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects where conversation contexts are kept.
type StoreConfig struct {
	Backend    string           `yaml:"backend"`
	Path       string           `yaml:"path"`
	Redis      RedisConfig      `yaml:"redis"`
	Encryption EncryptionConfig `yaml:"encryption"`
	// Redact lists regular expressions; execution-context keys matching any
	// of them are masked before a context is persisted.
	Redact []string `yaml:"redact"`
}

// EncryptionConfig enables AES-256-GCM at rest. Keys are base64, 32 bytes decoded.
type EncryptionConfig struct {
	Key          string   `yaml:"key"`
	FallbackKeys []string `yaml:"fallback_keys"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`
}

// SceneConfig points at a scene fixture. Empty means the built-in demo building.
type SceneConfig struct {
	Fixture string `yaml:"fixture"`
}

// VocabularyConfig points at a noun table. Empty means the built-in table.
type VocabularyConfig struct {
	Path string `yaml:"path"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Metrics: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Path:    ".bmsagent/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "bmsagent:session:",
			},
		},
		Heuristics: executor.DefaultHeuristics(),
	}
}

// Load reads and parses the config file at the given path.
// ${VAR} references are replaced with environment values before parsing,
// and fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load over bytes.
func Parse(data []byte) (*Config, error) {
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// Validate rejects settings the agent cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q must be one of memory, file, redis", c.Store.Backend))
	}
	if c.Store.Backend == StoreFile && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required for the file backend"))
	}
	if c.Store.Backend == StoreRedis && c.Store.Redis.Addr == "" {
		errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
	}
	enc := c.Store.Encryption
	if enc.Key == "" && len(enc.FallbackKeys) > 0 {
		errs = append(errs, errors.New("store.encryption.fallback_keys requires store.encryption.key"))
	}
	if enc.Key != "" {
		if _, err := middleware.ParseKey(enc.Key); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption.key: %w", err))
		}
	}
	for _, k := range enc.FallbackKeys {
		if _, err := middleware.ParseKey(k); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption.fallback_keys: %w", err))
		}
	}
	for _, p := range c.Store.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("store.redact %q: %w", p, err))
		}
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	if c.Heuristics.ZoomFactor <= 0 {
		errs = append(errs, errors.New("heuristics.zoom_factor must be positive"))
	}
	if c.Heuristics.IsolationOpacity < 0 || c.Heuristics.IsolationOpacity > 1 {
		errs = append(errs, errors.New("heuristics.isolation_opacity must be within [0, 1]"))
	}
	return errors.Join(errs...)
}
