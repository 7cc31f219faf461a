// Package fs implements core.Store on the local filesystem. Each collection
// is a directory; each document is a YAML file written atomically. Live
// subscriptions are driven by fsnotify.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

const docExt = ".yaml"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	MustExist bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".wordflow"; holds the index cache and the lock file

	// WatchDebounce coalesces bursts of filesystem events before a snapshot
	// is recomputed. Zero means the 100ms default.
	WatchDebounce time.Duration

	// ErrorHandler receives errors occurring inside the watch loop, which are
	// otherwise only logged.
	ErrorHandler func(error)
}

// Store implements core.Store and core.Subscribable using the filesystem.
type Store struct {
	Path   string
	config Config
	cache  *cache
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = ".wordflow"
	}
	if config.WatchDebounce <= 0 {
		config.WatchDebounce = 100 * time.Millisecond
	}
	return &Store{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize performs the necessary setup for the store (mkdir).
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Create persists a new document, assigning an id if the caller passed none.
// createdAt/updatedAt are stamped here so clients never fabricate timestamps.
func (s *Store) Create(ctx context.Context, collection string, doc core.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := validateName(collection); err != nil {
		return "", err
	}
	if err := validateName(id); err != nil {
		return "", err
	}

	fields := make(core.Metadata, len(doc.Fields)+3)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	fields["id"] = id
	fields["createdAt"] = now
	fields["updatedAt"] = now

	unlock, err := s.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := s.write(collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	fields, err := s.read(collection, id)
	if err != nil {
		return core.Document{}, err
	}
	return core.Document{ID: id, Fields: fields}, nil
}

// Update merges fields into an existing document. The read-modify-write runs
// under the store lock; the final write is atomic.
func (s *Store) Update(ctx context.Context, collection, id string, fields core.Metadata) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := s.read(collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		existing[k] = v
	}
	existing["id"] = id
	existing["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	return s.write(collection, id, existing)
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	path := s.docPath(collection, id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	s.cache.Delete(relPath(collection, id))
	return nil
}

// Query scans a collection directory for matching documents.
//
// Strategy:
//  1. Load the index cache (field values keyed by relative path + mtime).
//  2. Read the collection directory.
//  3. Cache hit (mtime match): use cached fields, skip the parse.
//     Cache miss: parse the file, update the cache.
//  4. Filter, sort, persist the cache.
func (s *Store) Query(ctx context.Context, collection string, q core.Query) ([]core.Document, error) {
	if err := s.cache.Load(); err != nil && s.config.Logger != nil {
		s.config.Logger.Warn("failed to load index cache", "error", err)
	}

	dir := filepath.Join(s.Path, collection)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil // empty collection
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection dir: %w", err)
	}

	seen := make(map[string]bool)
	var docs []core.Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != docExt {
			continue
		}
		if strings.HasPrefix(entry.Name(), TempFilePrefix) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), docExt)
		rel := relPath(collection, id)
		seen[rel] = true

		info, err := entry.Info()
		if err != nil {
			continue
		}

		var fields core.Metadata
		if cached, hit := s.cache.Get(rel, info.ModTime()); hit {
			fields = cached.Fields
		} else {
			fields, err = s.read(collection, id)
			if err != nil {
				if s.config.Logger != nil {
					s.config.Logger.Warn("skipping unparseable document", "path", rel, "error", err)
				}
				continue
			}
			s.cache.Set(rel, &indexEntry{Fields: fields, LastModified: info.ModTime()})
		}

		doc := core.Document{ID: id, Fields: fields}
		if q.Matches(doc) {
			docs = append(docs, doc)
		}
	}

	s.cache.PruneCollection(collection, seen)
	if err := s.cache.Save(); err != nil && s.config.Logger != nil {
		s.config.Logger.Warn("failed to save index cache", "error", err)
	}

	core.SortDocuments(docs, q)
	return docs, nil
}

// --- internals ---

func (s *Store) docPath(collection, id string) string {
	return filepath.Join(s.Path, collection, id+docExt)
}

func relPath(collection, id string) string {
	return collection + "/" + id + docExt
}

// validateName rejects ids/collections that would escape the store root.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

func (s *Store) read(collection, id string) (core.Metadata, error) {
	data, err := os.ReadFile(s.docPath(collection, id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var fields core.Metadata
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid document %s/%s: %w", collection, id, err)
	}
	if fields == nil {
		fields = make(core.Metadata)
	}
	return fields, nil
}

func (s *Store) write(collection, id string, fields core.Metadata) error {
	dir := filepath.Join(s.Path, collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create collection dir: %w", err)
	}
	data, err := yaml.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := writeFileAtomic(s.docPath(collection, id), data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	s.cache.Delete(relPath(collection, id)) // stale; next Query re-reads
	return nil
}

// lock acquires a file-based lock shared by all writers against this store
// path. It blocks until acquired.
func (s *Store) lock() (func(), error) {
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	lockPath := filepath.Join(s.Path, s.config.SystemDir+".lock")

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if os.IsExist(err) {
			// Lock exists, wait and retry.
			time.Sleep(10 * time.Millisecond)
			continue
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
}
