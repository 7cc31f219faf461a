// Package session holds the in-memory state of the note currently being
// edited: its pages, the per-page content cache, and the floating annotation
// layer.
//
// Three copies of "current content" exist at any moment: the live editing
// surface, the per-page cache map, and each Page's own Content field. The
// session enforces a single precedence order (live surface > cache map >
// Page.Content), applied only at defined synchronization points: page switch
// and snapshot. This ordering is what prevents a stale re-render from
// resurrecting content from before the last edit.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithOnChange registers a callback invoked after every local mutation
// (title, content-bearing page ops, annotations). The autosave coordinator
// uses this to schedule debounced saves. The callback runs with the session
// lock held and must not call back into the session.
func WithOnChange(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session is the canonical in-memory state of one open note.
//
// All methods are synchronous and never suspend: the page-switch sequence must
// execute without interleaving to preserve the content-capture invariant. A
// single mutex serializes every method, so the autosave worker can take a
// Snapshot from its own goroutine while the owning goroutine keeps editing.
type Session struct {
	mu       sync.Mutex
	note     core.Note
	active   string            // active page id (view state, never persisted)
	cache    map[string]string // page id -> most recently captured content
	surface  Surface
	pending  *core.Insertion
	onChange func()
	logger   *slog.Logger
}

// New opens an editing session for the given note. The first page becomes
// active and its persisted content is loaded into the surface.
// The note must have at least one page.
func New(note core.Note, surface Surface, opts ...Option) *Session {
	s := &Session{surface: surface}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(note)
	return s
}

// Load replaces the open note, reinitializing the whole subsystem: all
// per-page caches are cleared and rebuilt from the incoming note's persisted
// pages before the first page's content is loaded into the surface.
//
// Callers switching notes must flush the outgoing note first (the autosave
// coordinator's Flush); Load makes no attempt to preserve the previous state.
func (s *Session) Load(note core.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(note.Pages) == 0 {
		// A note always has at least one page; repair rather than crash if a
		// foreign writer persisted an empty page list.
		note.Pages = []core.Page{core.NewPage(1)}
	}

	s.note = note
	s.cache = make(map[string]string, len(note.Pages))
	for _, p := range note.Pages {
		s.cache[p.ID] = p.Content
	}
	s.active = note.Pages[0].ID
	s.surface.SetContent(s.cache[s.active])
	s.pending = nil

	if s.logger != nil {
		s.logger.Debug("session loaded", "note", note.ID, "pages", len(note.Pages))
	}
}

// NoteID returns the open note's id.
func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note.ID
}

// Title returns the note's current title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note.Title
}

// SetTitle updates the note title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == s.note.Title {
		return
	}
	s.note.Title = title
	s.changed()
}

// ActivePageID returns the id of the page currently in the surface.
func (s *Session) ActivePageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Pages returns the note's pages in order. Content fields reflect the cache,
// not the live surface; use Snapshot for the persistable shape.
func (s *Session) Pages() []core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages := make([]core.Page, len(s.note.Pages))
	copy(pages, s.note.Pages)
	for i := range pages {
		if cached, ok := s.cache[pages[i].ID]; ok {
			pages[i].Content = cached
		}
	}
	return pages
}

// CreatePage appends a new page titled "Page N", makes it active, and loads
// its (empty) content into the surface. The outgoing page's content is
// captured first, same as an explicit switch.
func (s *Session) CreatePage() core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := core.NewPage(len(s.note.Pages) + 1)

	s.captureActive()
	s.note.Pages = append(s.note.Pages, page)
	s.cache[page.ID] = ""
	s.active = page.ID
	s.surface.SetContent("")

	s.changed()
	return page
}

// DeletePage removes a page. Deleting the last remaining page returns
// ErrLastPage and leaves the note unchanged. If the deleted page was active,
// activation moves to the adjacent page at min(deletedIndex, remaining-1).
func (s *Session) DeletePage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.note.PageIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", core.ErrNoSuchPage, id)
	}
	if len(s.note.Pages) == 1 {
		return core.ErrLastPage
	}

	wasActive := s.active == id
	s.note.Pages = append(s.note.Pages[:idx], s.note.Pages[idx+1:]...)
	delete(s.cache, id)

	if wasActive {
		next := idx
		if next > len(s.note.Pages)-1 {
			next = len(s.note.Pages) - 1
		}
		s.active = s.note.Pages[next].ID
		s.surface.SetContent(s.contentOf(s.active))
	}

	s.changed()
	return nil
}

// RenamePage sets a page's display title. An empty title is ignored so a page
// can never go titleless.
func (s *Session) RenamePage(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.note.Page(id)
	if page == nil {
		return fmt.Errorf("%w: %s", core.ErrNoSuchPage, id)
	}
	if title == "" {
		return nil
	}
	page.Title = title
	s.changed()
	return nil
}

// SetPageLayout updates a page's layout settings.
func (s *Session) SetPageLayout(id string, layout core.LayoutSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.note.Page(id)
	if page == nil {
		return fmt.Errorf("%w: %s", core.ErrNoSuchPage, id)
	}
	page.Layout = layout
	s.changed()
	return nil
}

// SwitchToPage changes the active page. From the caller's point of view the
// sequence is atomic: capture the live surface into the outgoing page's cache
// slot, move the pointer, then load the incoming page's content.
//
// Switching to the already-active page is a no-op. An unknown target returns
// ErrNoSuchPage without touching any state.
func (s *Session) SwitchToPage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.active {
		return nil
	}
	if s.note.Page(id) == nil {
		return fmt.Errorf("%w: %s", core.ErrNoSuchPage, id)
	}

	s.captureActive()
	s.active = id
	s.surface.SetContent(s.contentOf(id))

	if s.logger != nil {
		s.logger.Debug("switched page", "note", s.note.ID, "page", id)
	}
	return nil
}

// QueueInsertion queues quoted content for injection into the active page.
// A queued insertion replaces any not-yet-consumed one.
func (s *Session) QueueInsertion(text, reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &core.Insertion{Text: text, Reference: reference}
}

// ApplyPendingInsertion consumes the queued insertion, appending it to the
// live surface as quoted markup. Returns false if nothing was queued.
// The insertion is consumed exactly once: a second call is a no-op.
func (s *Session) ApplyPendingInsertion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return false
	}
	quote := fmt.Sprintf("<blockquote>\"%s\" <cite>(%s)</cite></blockquote><p></p>",
		s.pending.Text, s.pending.Reference)
	s.surface.SetContent(s.surface.Content() + quote)
	s.pending = nil
	s.changed()
	return true
}

// Snapshot produces the full persistable shape of the note: title,
// annotations, layout, and every page with its current cached content. The
// active page's content is re-read from the live surface at call time, never
// a stale copy. The active page id is view state and is not part of the
// snapshot.
func (s *Session) Snapshot() core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captureActive()

	snap := s.note
	snap.Pages = make([]core.Page, len(s.note.Pages))
	copy(snap.Pages, s.note.Pages)
	for i := range snap.Pages {
		if cached, ok := s.cache[snap.Pages[i].ID]; ok {
			snap.Pages[i].Content = cached
		}
	}
	snap.Annotations = make([]core.Annotation, len(s.note.Annotations))
	copy(snap.Annotations, s.note.Annotations)
	snap.Tags = append([]string(nil), s.note.Tags...)
	return snap
}

// captureActive stores the live surface's content into the active page's
// cache slot. This is the content-capture invariant's single write point.
// Callers hold s.mu.
func (s *Session) captureActive() {
	s.cache[s.active] = s.surface.Content()
}

// contentOf resolves a page's content by precedence: cache map first, then
// the Page object's own field. The live surface is never consulted here; it
// belongs to the outgoing page at the moment this runs.
func (s *Session) contentOf(id string) string {
	if cached, ok := s.cache[id]; ok {
		return cached
	}
	if page := s.note.Page(id); page != nil {
		return page.Content
	}
	return ""
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
