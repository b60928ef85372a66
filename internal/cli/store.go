package cli

import (
	"fmt"
	"io"

	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/ikenthis/bmsagent/pkg/adapters/file"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	redisstore "github.com/ikenthis/bmsagent/pkg/adapters/redis"
	"github.com/ikenthis/bmsagent/pkg/persistence/middleware"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// OpenStore returns the context store for the configured backend, wrapped
// with redaction and encryption when configured.
// The locker is non-nil only for Redis with locking enabled; the closer only for Redis.
func OpenStore(cfg config.StoreConfig) (ports.ContextStore, ports.DistributedLocker, io.Closer, error) {
	var (
		store  ports.ContextStore
		locker ports.DistributedLocker
		closer io.Closer
	)
	switch cfg.Backend {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Path)
	case config.StoreRedis:
		opts := []redisstore.Option{redisstore.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.Redis.Prefix))
		}
		rs := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if cfg.Redis.Lock {
			locker = redisstore.NewLocker(rs.Client(), cfg.Redis.Prefix)
		}
		store, closer = rs, rs
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

// storeMiddlewares orders redaction before encryption so masked values are what gets sealed.
func storeMiddlewares(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.Encryption.Key != "" {
		active, err := middleware.ParseKey(cfg.Encryption.Key)
		if err != nil {
			return nil, err
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.Encryption.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, err
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return mws, nil
}
