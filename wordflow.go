package wordflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nickigann03/word-flow-app/internal/platform"
	"github.com/nickigann03/word-flow-app/pkg/autosave"
	"github.com/nickigann03/word-flow-app/pkg/core"
	"github.com/nickigann03/word-flow-app/pkg/optimistic"
	"github.com/nickigann03/word-flow-app/pkg/session"
	"github.com/nickigann03/word-flow-app/pkg/typed"
)

// Collection names used by the service.
const (
	CollectionNotes   = "notes"
	CollectionFolders = "folders"
)

// --- Configuration ---

// Option defines a functional option for configuring the library.
type Option = platform.Option

// WithLogger sets the logger for the service and its background workers.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter allows specifying the storage adapter to use by name
// ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithMustExist ensures the storage location must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".wordflow").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithWatchDebounce sets the quiet period for subscription snapshots.
func WithWatchDebounce(d time.Duration) Option {
	return platform.WithWatchDebounce(d)
}

// WithErrorHandler registers a callback for background worker errors.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// --- Service ---

// Service is the top-level handle on a note library: typed access to the
// notes and folders collections plus editor sessions on top of them.
type Service struct {
	store   core.Store
	notes   *typed.Collection[core.Note]
	folders *typed.Collection[core.Folder]
	logger  *slog.Logger
}

// New opens (or creates) a note library. The uri argument is
// adapter-specific: a directory for "fs", a database file for "sqlite".
func New(uri string, opts ...Option) (*Service, error) {
	store, err := platform.Init(uri, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithStore(store, platform.Logger(opts...)), nil
}

// NewWithStore wraps an already-initialized storage backend. A nil logger
// disables service logging.
func NewWithStore(store core.Store, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		notes:   typed.NewCollection[core.Note](store, CollectionNotes),
		folders: typed.NewCollection[core.Folder](store, CollectionFolders),
		logger:  logger,
	}
}

// Store exposes the underlying storage backend.
func (s *Service) Store() core.Store { return s.store }

// Notes exposes the typed notes collection for direct access.
func (s *Service) Notes() *typed.Collection[core.Note] { return s.notes }

// Folders exposes the typed folders collection for direct access.
func (s *Service) Folders() *typed.Collection[core.Folder] { return s.folders }

// --- Notes ---

// CreateNote creates a note from a template and persists it. The template
// name is resolved via core.TemplateByName; unknown names mean a blank first
// page. Pass folderID == "" for an unfiled note.
func (s *Service) CreateNote(ctx context.Context, userID, folderID, title, template string) (core.Note, error) {
	note := core.NewNote(userID, folderID, title)
	note.Pages[0].Content = core.TemplateByName(template).Content

	if _, err := s.notes.Create(ctx, note.ID, note); err != nil {
		return core.Note{}, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// GetNote loads one note.
func (s *Service) GetNote(ctx context.Context, id string) (core.Note, error) {
	return s.notes.Get(ctx, id)
}

// ListNotes returns a user's notes, most recently updated first. Pass
// folderID == "" for all folders.
func (s *Service) ListNotes(ctx context.Context, userID, folderID string) ([]core.Note, error) {
	return s.notes.List(ctx, s.noteQuery(userID, folderID))
}

// WatchNotes subscribes to a user's note list. Every change to the
// collection delivers a full snapshot in the same order as ListNotes. The
// channel closes when ctx is cancelled. The backend must support
// subscriptions.
func (s *Service) WatchNotes(ctx context.Context, userID, folderID string) (<-chan []core.Note, error) {
	return s.notes.Subscribe(ctx, s.noteQuery(userID, folderID))
}

// DeleteNote removes a note permanently.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.notes.Delete(ctx, id)
}

// NoteList builds an optimistic view over a user's notes for list UIs:
// mutations reflect immediately and roll back if the remote write fails.
// Feed it snapshots from WatchNotes via Apply.
func (s *Service) NoteList(opts ...optimistic.Option[core.Note]) *optimistic.List[core.Note] {
	if s.logger != nil {
		opts = append([]optimistic.Option[core.Note]{optimistic.WithLogger[core.Note](s.logger)}, opts...)
	}
	return optimistic.NewList(s.notes, func(n core.Note) string { return n.ID }, opts...)
}

func (s *Service) noteQuery(userID, folderID string) core.Query {
	q := core.Query{Filter: core.Metadata{}, OrderBy: "updatedAt", Desc: true}
	if userID != "" {
		q.Filter["userId"] = userID
	}
	if folderID != "" {
		q.Filter["folderId"] = folderID
	}
	return q
}

// --- Folders ---

// CreateFolder creates and persists a folder.
func (s *Service) CreateFolder(ctx context.Context, userID, title string) (core.Folder, error) {
	folder := core.NewFolder(userID, title)
	if _, err := s.folders.Create(ctx, folder.ID, folder); err != nil {
		return core.Folder{}, fmt.Errorf("failed to create folder: %w", err)
	}
	return folder, nil
}

// ListFolders returns a user's folders by creation time.
func (s *Service) ListFolders(ctx context.Context, userID string) ([]core.Folder, error) {
	q := core.Query{Filter: core.Metadata{}, OrderBy: "createdAt"}
	if userID != "" {
		q.Filter["userId"] = userID
	}
	return s.folders.List(ctx, q)
}

// DeleteFolder removes a folder. Notes in the folder are not cascaded; they
// keep their folderId and become unfiled when lists resolve it to nothing.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	return s.folders.Delete(ctx, id)
}

// --- Editor ---

// Editor bundles an editing session with its autosave coordinator. Every
// session mutation schedules a debounced background save; Close flushes the
// final state.
type Editor struct {
	session  *session.Session
	autosave *autosave.Coordinator
}

// Open loads a note into a fresh editor. The surface is the caller's live
// text widget (or a session.Buffer in headless use).
func (s *Service) Open(ctx context.Context, noteID string, surface session.Surface, opts ...autosave.Option) (*Editor, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}

	ed := &Editor{}
	ed.session = session.New(note, surface,
		session.WithLogger(s.logger),
		session.WithOnChange(func() { ed.autosave.Schedule() }),
	)

	if s.logger != nil {
		opts = append([]autosave.Option{autosave.WithLogger(s.logger)}, opts...)
	}
	ed.autosave = autosave.New(s.notes, ed.session.Snapshot, opts...)
	return ed, nil
}

// Session exposes the editing session: pages, annotations, insertions.
func (e *Editor) Session() *session.Session { return e.session }

// Flush saves the current state immediately, bypassing the debounce.
func (e *Editor) Flush(ctx context.Context) error {
	return e.autosave.Flush(ctx)
}

// Close flushes pending edits and stops the autosave worker.
func (e *Editor) Close(ctx context.Context) error {
	err := e.autosave.Flush(ctx)
	e.autosave.Close()
	return err
}
