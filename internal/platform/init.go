// Package platform wires storage adapters behind a uniform factory so the
// public API and the CLI can select a backend by name.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nickigann03/word-flow-app/pkg/adapters/fs"
	"github.com/nickigann03/word-flow-app/pkg/adapters/sqlite"
	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Logger extracts the configured logger from a set of options, for callers
// that wire components beyond the storage backend.
func Logger(opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o.logger
}

// Init builds and initializes a storage backend. The uri argument is
// adapter-specific: a directory path for "fs", a database file path or
// ":memory:" for "sqlite".
func Init(uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.store != nil {
		return o.store, nil
	}

	var store core.Store
	var err error

	switch o.adapter {
	case "fs":
		store, err = initFS(uri, o)
	case "sqlite":
		store, err = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func initFS(path string, o *options) (core.Store, error) {
	mustExist, _ := o.config["must_exist"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	debounce, _ := o.config["watch_debounce"].(time.Duration)
	errorHandler, _ := o.config["error_handler"].(func(error))

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	return fs.NewStore(fs.Config{
		Path:          abs,
		MustExist:     mustExist,
		SystemDir:     systemDir,
		WatchDebounce: debounce,
		ErrorHandler:  errorHandler,
		Logger:        o.logger,
	}), nil
}

func initSQLite(dsn string, o *options) (core.Store, error) {
	return sqlite.NewStore(sqlite.Config{
		DSN:    dsn,
		Logger: o.logger,
	})
}
