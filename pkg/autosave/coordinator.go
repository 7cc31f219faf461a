// Package autosave translates a stream of local mutations into a bounded rate
// of remote writes.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// DefaultInterval is the debounce quiet period. One second bounds staleness
// while avoiding write amplification on every keystroke.
const DefaultInterval = time.Second

// Saver is the slice of the note collection the coordinator needs.
type Saver interface {
	Update(ctx context.Context, id string, note core.Note) error
}

// SnapshotFunc produces the full persistable note state. It is called at
// timer-fire time, never at schedule time, so the payload always reflects the
// latest surface content and title rather than a value captured when the
// mutation happened.
type SnapshotFunc func() core.Note

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInterval overrides the debounce quiet period.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithLogger sets the logger for save lifecycle debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithErrorHandler registers the user-facing failure callback. Autosave
// failures are recoverable warnings ("changes could not be saved"); local
// state is never rolled back, so the next successful save carries the edits.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Coordinator) { c.onError = fn }
}

// Coordinator debounces local mutations and issues idempotent upserts for one
// open note.
//
// Writes are serialized: at most one remote write is in flight at a time, and
// triggers arriving during a write coalesce into a single follow-up save.
// This removes the out-of-order-application race that full-document
// overwrites would otherwise be exposed to when the store does not sequence
// writes per document.
type Coordinator struct {
	saver    Saver
	snapshot SnapshotFunc
	interval time.Duration
	onError  func(error)
	logger   *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	inflight bool
	rerun    bool
	closed   bool
	wg       sync.WaitGroup
}

// New creates a coordinator for one note. snapshot must be safe to call from
// the coordinator's timer goroutine; sessions driven from a single UI loop
// should route Schedule/Flush through that same loop.
func New(saver Saver, snapshot SnapshotFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		saver:    saver,
		snapshot: snapshot,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schedule (re)starts the debounce timer. Any pending fire is cancelled
// unconditionally: last mutation wins for scheduling, while the payload is
// still read fresh when the timer fires.
func (c *Coordinator) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.interval, c.fire)
}

// Flush cancels any pending timer and saves immediately, waiting for the
// write (and any coalesced follow-up) to finish. Used when closing the editor
// or switching notes, where a debounced save could lose the final edits.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.save(ctx)
}

// Close stops the coordinator: cancels pending timers and waits for in-flight
// writes. It does not flush; call Flush first to persist final edits.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// fire runs on the timer goroutine.
func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inflight {
		// A write is running; remember to go again with a fresh snapshot.
		c.rerun = true
		c.mu.Unlock()
		return
	}
	c.inflight = true
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.saveLoop()
	}()
}

// saveLoop performs one write, then repeats while triggers coalesced during
// the write. Each iteration re-reads the snapshot so the final write reflects
// the final state.
func (c *Coordinator) saveLoop() {
	for {
		c.attempt(context.Background())

		c.mu.Lock()
		if !c.rerun || c.closed {
			c.inflight = false
			c.mu.Unlock()
			return
		}
		c.rerun = false
		c.mu.Unlock()
	}
}

// save is the synchronous path used by Flush: it waits for an in-flight write
// to drain, then writes the current snapshot.
func (c *Coordinator) save(ctx context.Context) error {
	c.wg.Wait()

	c.mu.Lock()
	c.inflight = true
	c.rerun = false
	c.mu.Unlock()

	err := c.attempt(ctx)

	for {
		c.mu.Lock()
		if !c.rerun {
			c.inflight = false
			c.mu.Unlock()
			return err
		}
		c.rerun = false
		c.mu.Unlock()
		err = c.attempt(ctx)
	}
}

func (c *Coordinator) attempt(ctx context.Context) error {
	snap := c.snapshot()
	err := c.saver.Update(ctx, snap.ID, snap)
	switch {
	case err == nil:
		// Silent on success; surfacing every autosave would be noisy.
		if c.logger != nil {
			c.logger.Debug("autosaved", "note", snap.ID)
		}
		return nil
	case errors.Is(err, core.ErrNotFound):
		// The note was deleted remotely while edits were buffered locally.
		// Tolerated as a no-op, not a crash.
		if c.logger != nil {
			c.logger.Debug("autosave target gone, skipping", "note", snap.ID)
		}
		return nil
	default:
		wrapped := fmt.Errorf("changes could not be saved: %w", err)
		if c.onError != nil {
			c.onError(wrapped)
		} else if c.logger != nil {
			c.logger.Warn("autosave failed", "note", snap.ID, "error", err)
		}
		return wrapped
	}
}
