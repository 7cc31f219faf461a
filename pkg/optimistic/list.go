// Package optimistic keeps a visible collection (notes in a folder, the
// folder list) consistent between an authoritative live subscription and
// locally initiated mutations that have not been confirmed yet.
//
// Each mutation is modeled with an explicit sync status rather than relying on
// incidental timing:
//
//	StatusPending   local list already reflects the change; request in flight
//	StatusConfirmed subscription delivered matching server state
//	StatusFailed    request rejected; the local change was rolled back
//
// Because subscriptions deliver full-collection snapshots, a snapshot arriving
// between an optimistic change and its request's resolution can briefly show
// stale membership; the next snapshot reconciles it, which this design accepts
// instead of adding version vectors.
package optimistic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Status tags one item's synchronization state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Remote is the slice of a typed collection the list needs for background
// writes. *typed.Collection[T] satisfies it.
type Remote[T any] interface {
	Create(ctx context.Context, id string, v T) (string, error)
	Update(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
}

// Option configures a List.
type Option[T any] func(*List[T])

// WithLogger sets the debug logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(l *List[T]) { l.logger = logger }
}

// WithErrorHandler registers the callback raised when a background write
// fails and the optimistic change has been rolled back.
func WithErrorHandler[T any](fn func(error)) Option[T] {
	return func(l *List[T]) { l.onError = fn }
}

// List is an optimistically updated view of one remote collection.
// ID extracts an item's identity; items must carry client-generated ids so
// the UI can reference them before server confirmation.
type List[T any] struct {
	remote Remote[T]
	id     func(T) string

	mu       sync.Mutex
	items    []T
	statuses map[string]Status
	onError  func(error)
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewList creates an empty list over a remote collection.
func NewList[T any](remote Remote[T], id func(T) string, opts ...Option[T]) *List[T] {
	l := &List[T]{
		remote:   remote,
		id:       id,
		statuses: make(map[string]Status),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Items returns a copy of the current local view.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Status returns an item's sync status; confirmed items default to
// StatusConfirmed once a snapshot has absorbed them.
func (l *List[T]) Status(id string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.statuses[id]; ok {
		return s
	}
	return StatusConfirmed
}

// Apply replaces the whole local view with a subscription snapshot. Confirmed
// optimistic changes are absorbed naturally; no per-item transition needed.
// In-flight (pending) changes are kept overlaid so a snapshot racing a
// pending create/delete does not visually revert it.
func (l *List[T]) Apply(snapshot []T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]T, len(snapshot))
	copy(l.items, snapshot)
	for id, status := range l.statuses {
		if status != StatusPending {
			delete(l.statuses, id)
		}
	}
}

// Create inserts the item at the head of the local list immediately and
// issues the remote create in the background. On failure the item is removed
// again and the error handler is raised.
func (l *List[T]) Create(ctx context.Context, item T) {
	id := l.id(item)

	l.mu.Lock()
	l.items = append([]T{item}, l.items...)
	l.statuses[id] = StatusPending
	l.mu.Unlock()

	l.background(func() {
		if _, err := l.remote.Create(ctx, id, item); err != nil {
			l.mu.Lock()
			l.removeLocked(id)
			l.statuses[id] = StatusFailed
			l.mu.Unlock()
			l.fail(fmt.Errorf("failed to create %s: %w", id, err))
			return
		}
		l.settle(id)
	})
}

// Update replaces the item's local fields immediately and issues the remote
// update in the background. On failure the prior field values are restored.
func (l *List[T]) Update(ctx context.Context, item T) {
	id := l.id(item)

	l.mu.Lock()
	prior, idx := l.findLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return
	}
	l.items[idx] = item
	l.statuses[id] = StatusPending
	l.mu.Unlock()

	l.background(func() {
		if err := l.remote.Update(ctx, id, item); err != nil {
			l.mu.Lock()
			if _, i := l.findLocked(id); i >= 0 {
				l.items[i] = prior
			}
			l.statuses[id] = StatusFailed
			l.mu.Unlock()
			l.fail(fmt.Errorf("failed to update %s: %w", id, err))
			return
		}
		l.settle(id)
	})
}

// Delete removes the item from the local list immediately and issues the
// remote delete in the background. On failure the item is re-inserted at its
// previous position.
//
// Destructive-action confirmation is the caller's concern: confirm BEFORE
// calling Delete, never after the optimistic removal.
func (l *List[T]) Delete(ctx context.Context, id string) {
	l.mu.Lock()
	prior, idx := l.findLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.statuses[id] = StatusPending
	l.mu.Unlock()

	l.background(func() {
		if err := l.remote.Delete(ctx, id); err != nil {
			l.mu.Lock()
			pos := idx
			if pos > len(l.items) {
				pos = len(l.items)
			}
			l.items = append(l.items[:pos], append([]T{prior}, l.items[pos:]...)...)
			l.statuses[id] = StatusFailed
			l.mu.Unlock()
			l.fail(fmt.Errorf("failed to delete %s: %w", id, err))
			return
		}
		l.settle(id)
	})
}

// Wait blocks until all background requests have resolved. Mainly for tests
// and orderly shutdown.
func (l *List[T]) Wait() {
	l.wg.Wait()
}

func (l *List[T]) background(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

func (l *List[T]) settle(id string) {
	l.mu.Lock()
	delete(l.statuses, id)
	l.mu.Unlock()
}

func (l *List[T]) fail(err error) {
	if l.onError != nil {
		l.onError(err)
	} else if l.logger != nil {
		l.logger.Warn("optimistic mutation rolled back", "error", err)
	}
}

func (l *List[T]) findLocked(id string) (T, int) {
	for i, item := range l.items {
		if l.id(item) == id {
			return item, i
		}
	}
	var zero T
	return zero, -1
}

func (l *List[T]) removeLocked(id string) {
	if _, i := l.findLocked(id); i >= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	}
}
