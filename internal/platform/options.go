package platform

import (
	"log/slog"
	"time"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// options holds the internal configuration for the storage factory.
type options struct {
	store   core.Store
	logger  *slog.Logger
	adapter string
	config  map[string]interface{}
}

// Option defines a functional option for configuring the storage backend.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		store:   nil,
		logger:  nil,
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the storage backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom storage adapter (e.g. mock, remote).
// If provided, the adapter selection is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter allows specifying the storage adapter to use by name.
// Supported adapters are "fs" and "sqlite". Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithMustExist ensures the storage location must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithSystemDir allows specifying the hidden directory name used by the
// filesystem adapter for its index and lock files.
// Defaults to ".wordflow" if not set (handled by adapter).
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithWatchDebounce sets how long the filesystem adapter waits after a burst
// of file events before pushing a subscription snapshot.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.config["watch_debounce"] = d
	}
}

// WithErrorHandler registers a callback for errors occurring on background
// subscription workers, which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["error_handler"] = fn
	}
}
