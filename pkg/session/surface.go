package session

import "sync"

// Surface is the live editing surface: the one mutable widget the user types
// into. The session never caches its value; it re-reads it at each defined
// synchronization point (page switch, snapshot) so the freshest keystrokes win.
//
// Implementations must be safe for concurrent use: the autosave worker reads
// Content from its own goroutine while the owner keeps typing.
type Surface interface {
	// Content returns the surface's current serialized markup.
	Content() string

	// SetContent replaces the surface's markup, e.g. when the active page
	// changes.
	SetContent(markup string)
}

// Buffer is an in-memory Surface for tests and headless use.
type Buffer struct {
	mu     sync.RWMutex
	markup string
}

// NewBuffer creates a Buffer holding the given markup.
func NewBuffer(markup string) *Buffer {
	return &Buffer{markup: markup}
}

func (b *Buffer) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.markup
}

func (b *Buffer) SetContent(markup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markup = markup
}
