package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Subscribe implements core.Subscribable. It pushes the full matching result
// set immediately, then again after every (debounced) change to the
// collection directory. The channel closes when ctx is done.
func (s *Store) Subscribe(ctx context.Context, collection string, q core.Query) (<-chan []core.Document, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// The collection directory may not exist until the first write; watch the
	// store root as well so its creation is observed.
	if err := watcher.Add(s.Path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch store root: %w", err)
	}
	dir := filepath.Join(s.Path, collection)
	_ = watcher.Add(dir) // best effort; added again when the dir appears

	out := make(chan []core.Document, 1)
	go s.watchLoop(ctx, watcher, collection, dir, q, out)
	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, collection, dir string, q core.Query, out chan<- []core.Document) {
	defer close(out)
	defer watcher.Close()

	debounce := newDebouncer(s.config.WatchDebounce)
	defer debounce.stop()

	push := func() {
		docs, err := s.Query(ctx, collection, q)
		if err != nil {
			s.watchError(fmt.Errorf("snapshot query failed: %w", err))
			return
		}
		// Recover from a send on the closed channel if a debounced push
		// races shutdown.
		defer func() { _ = recover() }()
		select {
		case out <- docs:
		case <-ctx.Done():
		}
	}

	// Initial snapshot so subscribers render current state without waiting
	// for the first change.
	push()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if s.ignoreEvent(event, collection, dir) {
				continue
			}
			if event.Has(fsnotify.Create) && event.Name == dir {
				_ = watcher.Add(dir)
			}
			if s.config.Logger != nil {
				s.config.Logger.Debug("store event", "name", event.Name, "op", event.Op.String())
			}
			debounce.trigger(push)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.watchError(err)
		}
	}
}

// ignoreEvent filters events outside the collection and writes of temp or
// system files.
func (s *Store) ignoreEvent(event fsnotify.Event, collection, dir string) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return true
	}
	if event.Name == dir {
		return false // collection dir created/removed
	}
	if filepath.Dir(event.Name) != dir {
		return true
	}
	return filepath.Ext(name) != docExt
}

func (s *Store) watchError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	} else if s.config.Logger != nil {
		s.config.Logger.Error("watch error", "error", err)
	}
}
