package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Collection wraps one named collection of a core.Store with type-safe access.
// Values are converted to the store's flat field map through a JSON round-trip,
// so T's json tags define its persisted shape.
type Collection[T any] struct {
	store core.Store
	name  string
}

// NewCollection creates a typed view over a store collection.
func NewCollection[T any](store core.Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the underlying collection name.
func (c *Collection[T]) Name() string { return c.name }

// Create persists v as a new document. Pass id == "" to let the store assign
// one; pass a client-generated id to support optimistic references.
func (c *Collection[T]) Create(ctx context.Context, id string, v T) (string, error) {
	fields, err := toFields(v)
	if err != nil {
		return "", err
	}
	return c.store.Create(ctx, c.name, core.Document{ID: id, Fields: fields})
}

// Get retrieves and decodes a document.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return zero, err
	}
	return fromDocument[T](doc)
}

// Update overwrites the persisted fields of an existing document with v.
// Returns core.ErrNotFound if the document was deleted remotely.
func (c *Collection[T]) Update(ctx context.Context, id string, v T) error {
	fields, err := toFields(v)
	if err != nil {
		return err
	}
	return c.store.Update(ctx, c.name, id, fields)
}

// Patch merges raw fields into an existing document.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields core.Metadata) error {
	return c.store.Update(ctx, c.name, id, fields)
}

// Delete removes a document by id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// List returns all matching documents decoded to T.
func (c *Collection[T]) List(ctx context.Context, q core.Query) ([]T, error) {
	docs, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(docs))
	for _, d := range docs {
		item, err := fromDocument[T](d)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", d.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Subscribe streams full result-set snapshots decoded to T.
// Returns an error if the underlying store does not support subscriptions.
func (c *Collection[T]) Subscribe(ctx context.Context, q core.Query) (<-chan []T, error) {
	sub, ok := c.store.(core.Subscribable)
	if !ok {
		return nil, fmt.Errorf("store does not support subscriptions")
	}
	docs, err := sub.Subscribe(ctx, c.name, q)
	if err != nil {
		return nil, err
	}

	out := make(chan []T, 1)
	go func() {
		defer close(out)
		for snapshot := range docs {
			items := make([]T, 0, len(snapshot))
			for _, d := range snapshot {
				item, err := fromDocument[T](d)
				if err != nil {
					// Skip undecodable documents rather than killing the stream.
					continue
				}
				items = append(items, item)
			}
			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func toFields[T any](v T) (core.Metadata, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed value: %w", err)
	}
	var fields core.Metadata
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to convert typed value to fields: %w", err)
	}
	return fields, nil
}

func fromDocument[T any](doc core.Document) (T, error) {
	var v T
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return v, fmt.Errorf("fields marshal failed: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return v, nil
}
