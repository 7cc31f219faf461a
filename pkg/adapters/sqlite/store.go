// Package sqlite implements core.Store on an embedded SQLite database. It is
// a drop-in alternative to the filesystem adapter for single-file deployments;
// subscriptions are served by an in-process fan-out rather than filesystem
// watching, so cross-process change visibility is not provided.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Config holds the configuration for the SQLite store.
type Config struct {
	// DSN is the sqlite3 data source name, e.g. a file path or ":memory:".
	DSN    string
	Logger *slog.Logger
}

// Store implements core.Store and core.Subscribable on SQLite.
type Store struct {
	db     *sql.DB
	config Config

	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	ctx        context.Context
	collection string
	query      core.Query
	out        chan []core.Document
}

// NewStore opens (or creates) the database at the given DSN.
func NewStore(config Config) (*Store, error) {
	db, err := sql.Open("sqlite3", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A single writer connection sidesteps SQLITE_BUSY under concurrent
	// autosave and list traffic.
	db.SetMaxOpenConns(1)

	return &Store{
		db:     db,
		config: config,
		subs:   make(map[int]*subscriber),
	}, nil
}

// Initialize creates the schema.
func (s *Store) Initialize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			fields     TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create persists a new document, assigning an id if needed and stamping
// createdAt/updatedAt.
func (s *Store) Create(ctx context.Context, collection string, doc core.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	fields := make(core.Metadata, len(doc.Fields)+3)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	fields["id"] = id
	fields["createdAt"] = now
	fields["updatedAt"] = now

	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (collection, id, fields, updated_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(data), now)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	s.notify(collection)
	return id, nil
}

// Get retrieves a document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, err
	}

	fields, err := decodeFields(data)
	if err != nil {
		return core.Document{}, fmt.Errorf("invalid document %s/%s: %w", collection, id, err)
	}
	return core.Document{ID: id, Fields: fields}, nil
}

// Update merges fields into an existing document and stamps updatedAt.
func (s *Store) Update(ctx context.Context, collection, id string, fields core.Metadata) error {
	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		existing.Fields[k] = v
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	existing.Fields["id"] = id
	existing.Fields["updatedAt"] = now

	data, err := json.Marshal(existing.Fields)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), now, collection, id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	s.notify(collection)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}

	s.notify(collection)
	return nil
}

// Query returns all documents of a collection matching q. Filtering and
// ordering run in Go over the shared query helpers so both adapters behave
// identically.
func (s *Store) Query(ctx context.Context, collection string, q core.Query) ([]core.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		fields, err := decodeFields(data)
		if err != nil {
			if s.config.Logger != nil {
				s.config.Logger.Warn("skipping unparseable document", "collection", collection, "id", id, "error", err)
			}
			continue
		}
		doc := core.Document{ID: id, Fields: fields}
		if q.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	core.SortDocuments(docs, q)
	return docs, nil
}

// Subscribe implements core.Subscribable with an in-process fan-out: every
// mutation of a collection re-runs each subscriber's query and pushes the
// full snapshot.
func (s *Store) Subscribe(ctx context.Context, collection string, q core.Query) (<-chan []core.Document, error) {
	sub := &subscriber{
		ctx:        ctx,
		collection: collection,
		query:      q,
		out:        make(chan []core.Document, 1),
	}

	s.mu.Lock()
	key := s.next
	s.next++
	s.subs[key] = sub
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
		close(sub.out)
	}()

	s.push(sub)
	return sub.out, nil
}

func (s *Store) notify(collection string) {
	s.mu.Lock()
	var targets []*subscriber
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		s.push(sub)
	}
}

func (s *Store) push(sub *subscriber) {
	docs, err := s.Query(sub.ctx, sub.collection, sub.query)
	if err != nil {
		if s.config.Logger != nil {
			s.config.Logger.Error("subscription query failed", "collection", sub.collection, "error", err)
		}
		return
	}
	defer func() { _ = recover() }() // send racing unsubscribe close
	select {
	case sub.out <- docs:
	case <-sub.ctx.Done():
	default:
		// Slow consumer: discard the queued snapshot so the fresh one wins.
		select {
		case <-sub.out:
		default:
		}
		select {
		case sub.out <- docs:
		default:
		}
	}
}

func decodeFields(data string) (core.Metadata, error) {
	var fields core.Metadata
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(core.Metadata)
	}
	return fields, nil
}
