package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/ikenthis/bmsagent/pkg/adapters/file"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStack(t *testing.T, mutate func(*config.Config)) *Stack {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	stack, err := Build(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })
	return stack
}

func TestBuild_Defaults(t *testing.T) {
	stack := newStack(t, nil)

	assert.True(t, stack.Agent.Initialized())
	assert.IsType(t, &memory.Store{}, stack.Store)
	assert.NotNil(t, stack.Viewer.Model("office-north"))
}

func TestBuild_SceneAndVocabularyFiles(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scene, []byte(`
models:
  - id: plant
    items:
      - local_id: 1
        category: IFCPUMP
        box: {min: {x: 0, y: 0, z: 0}, max: {x: 1, y: 1, z: 1}}
`), 0644))
	vocab := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(vocab, []byte(`
groups:
  - name: pumps
    category: IFCPUMP
    synonyms: [bomba, bombas]
`), 0644))

	stack := newStack(t, func(c *config.Config) {
		c.Scene.Fixture = scene
		c.Vocabulary.Path = vocab
	})

	var out bytes.Buffer
	require.NoError(t, Exec(context.Background(), stack, "¿Cuántas bombas hay?", ExecOptions{JSON: true, Out: &out}))
	var res domain.ExecutionResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "Found 1 element of type IFCPUMP", res.Message)
}

func TestBuild_MissingScene(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene.Fixture = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Build(cfg, nil)
	assert.ErrorContains(t, err, "error loading scene")
}

func TestOpenStore(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		store, locker, closer, err := OpenStore(config.StoreConfig{Backend: config.StoreFile, Path: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &file.Store{}, store)
		assert.Nil(t, locker)
		assert.Nil(t, closer)
	})

	t.Run("redis with lock", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, locker, closer, err := OpenStore(config.StoreConfig{
			Backend: config.StoreRedis,
			Redis:   config.RedisConfig{Addr: mr.Addr(), Prefix: "test:", Lock: true},
		})
		require.NoError(t, err)
		require.NotNil(t, locker)
		defer closer.Close()

		ctx := context.Background()
		require.NoError(t, store.Save(ctx, "s1", domain.NewConversationContext("s1")))
		assert.True(t, mr.Exists("test:s1"))

		unlock, err := locker.Lock(ctx, "s1", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("encrypted and redacted", func(t *testing.T) {
		dir := t.TempDir()
		key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		store, _, _, err := OpenStore(config.StoreConfig{
			Backend:    config.StoreFile,
			Path:       dir,
			Encryption: config.EncryptionConfig{Key: key},
			Redact:     []string{"email"},
		})
		require.NoError(t, err)

		ctx := context.Background()
		conv := domain.NewConversationContext("enc")
		conv.ExecutionContext["email"] = "ana@example.com"
		require.NoError(t, store.Save(ctx, "enc", conv))

		raw, err := file.New(dir).Load(ctx, "enc")
		require.NoError(t, err)
		assert.Contains(t, raw.ExecutionContext, middleware.EnvelopeKey)

		loaded, err := store.Load(ctx, "enc")
		require.NoError(t, err)
		assert.Equal(t, middleware.Mask, loaded.ExecutionContext["email"])
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, _, err := OpenStore(config.StoreConfig{Backend: "etcd"})
		assert.ErrorContains(t, err, `unknown store backend "etcd"`)
	})
}

func TestExec_SessionPersists(t *testing.T) {
	dir := t.TempDir()
	stack := newStack(t, func(c *config.Config) {
		c.Store.Backend = config.StoreFile
		c.Store.Path = dir
	})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Exec(ctx, stack, "restablece la vista", ExecOptions{SessionID: "desk", Context: `{"floor":"L2"}`, Out: &out}))
	assert.Contains(t, out.String(), "View reset")

	err := Exec(ctx, stack, "haz zoom al elemento 9999", ExecOptions{SessionID: "desk", Out: &out})
	assert.ErrorIs(t, err, ErrActionFailed)

	conv, err := stack.Sessions.Load(ctx, "desk")
	require.NoError(t, err)
	assert.Len(t, conv.History, 2)
	assert.Equal(t, "L2", conv.ExecutionContext["floor"])
}

func TestExec_RejectsInput(t *testing.T) {
	stack := newStack(t, nil)

	err := Exec(context.Background(), stack, "   ", ExecOptions{Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "invalid input")

	err = Exec(context.Background(), stack, "restablece la vista", ExecOptions{Context: "{", Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "--context")
}

func TestInterpret(t *testing.T) {
	stack := newStack(t, nil)

	var out bytes.Buffer
	require.NoError(t, Interpret(stack, "haz zoom al elemento 42", &out))
	assert.Contains(t, out.String(), `"action": "zoomToElement"`)

	err := Interpret(stack, "tell me a joke", &out)
	assert.ErrorIs(t, err, domain.ErrUnrecognizedAction)
}

func TestDispatch(t *testing.T) {
	stack := newStack(t, nil)

	var out bytes.Buffer
	err := Dispatch(context.Background(), stack, "countElements", `{"type": "IFCSPACE"}`, ExecOptions{SessionID: "ops", JSON: true, Out: &out})
	require.NoError(t, err)
	var res domain.ExecutionResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "Found 3 elements of type IFCSPACE", res.Message)

	conv, err := stack.Sessions.Load(context.Background(), "ops")
	require.NoError(t, err)
	assert.Len(t, conv.History, 1)

	err = Dispatch(context.Background(), stack, "countElements", `{"type": `, ExecOptions{Out: &out})
	assert.ErrorContains(t, err, "--params")

	err = Dispatch(context.Background(), stack, "zoomToElement", "", ExecOptions{Out: &out})
	assert.ErrorContains(t, err, "invalid action: id: required")

	err = Dispatch(context.Background(), stack, "zoomToElement", `{"id": 9999}`, ExecOptions{Out: &out})
	assert.ErrorIs(t, err, ErrActionFailed)
}

func TestRunSession_JSON(t *testing.T) {
	stack := newStack(t, nil)
	in := strings.NewReader("\"restablece la vista\"\n{\"text\":\"¿Cuántas puertas hay?\",\"context\":{\"user\":\"ana\"}}\n")
	var out bytes.Buffer

	err := RunSession(context.Background(), stack, RunOptions{JSON: true, SessionID: "json", In: in, Out: &out})
	require.NoError(t, err)

	dec := json.NewDecoder(&out)
	var first, second domain.ExecutionResult
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, domain.ActionResetView, first.Action)
	assert.Equal(t, "Found 4 elements of type IFCDOOR", second.Message)

	conv, err := stack.Store.Load(context.Background(), "json")
	require.NoError(t, err)
	assert.Equal(t, "ana", conv.ExecutionContext["user"])
}

func TestRunSession_FreshDropsHistory(t *testing.T) {
	stack := newStack(t, nil)
	ctx := context.Background()
	prior := domain.NewConversationContext("s")
	prior.Record(domain.ActionResetView, time.Now())
	require.NoError(t, stack.Store.Save(ctx, "s", prior))

	err := RunSession(ctx, stack, RunOptions{Plain: true, Fresh: true, SessionID: "s", In: strings.NewReader("exit\n"), Out: &bytes.Buffer{}})
	require.NoError(t, err)

	_, err = stack.Store.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStackHandler_Metrics(t *testing.T) {
	stack := newStack(t, nil)
	h := stack.Handler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	stack = newStack(t, func(c *config.Config) { c.Server.Metrics = false })
	w = httptest.NewRecorder()
	stack.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	stack := newStack(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, stack, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "loud"}, false, false)
	assert.Error(t, err)

	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, true, false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger, err = NewLogger(config.LoggingConfig{Level: "info", Format: "text"}, true, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
