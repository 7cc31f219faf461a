package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nickigann03/word-flow-app/pkg/adapters/sqlite"
	"github.com/nickigann03/word-flow-app/pkg/core"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(sqlite.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	t.Run("Create Assigns ID and Timestamps", func(t *testing.T) {
		id, err := store.Create(ctx, "notes", core.Document{Fields: core.Metadata{"title": "Hello"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected an assigned id")
		}

		doc, err := store.Get(ctx, "notes", id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if doc.Fields["title"] != "Hello" {
			t.Errorf("expected title to round-trip, got %v", doc.Fields["title"])
		}
		if doc.Fields["createdAt"] == nil || doc.Fields["updatedAt"] == nil {
			t.Error("expected createdAt and updatedAt to be stamped")
		}
	})

	t.Run("Update Merges Fields", func(t *testing.T) {
		id, _ := store.Create(ctx, "notes", core.Document{Fields: core.Metadata{"title": "Before", "tags": "a"}})

		if err := store.Update(ctx, "notes", id, core.Metadata{"title": "After"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		doc, _ := store.Get(ctx, "notes", id)
		if doc.Fields["title"] != "After" || doc.Fields["tags"] != "a" {
			t.Errorf("expected merged fields, got %+v", doc.Fields)
		}
	})

	t.Run("Delete Removes Document", func(t *testing.T) {
		id, _ := store.Create(ctx, "notes", core.Document{Fields: core.Metadata{}})

		if err := store.Delete(ctx, "notes", id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "notes", id); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Missing Documents are ErrNotFound", func(t *testing.T) {
		if _, err := store.Get(ctx, "notes", "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get: expected ErrNotFound, got %v", err)
		}
		if err := store.Update(ctx, "notes", "nope", core.Metadata{}); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Update: expected ErrNotFound, got %v", err)
		}
		if err := store.Delete(ctx, "notes", "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Delete: expected ErrNotFound, got %v", err)
		}
	})
}

func TestQueryFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	store.Create(ctx, "notes", core.Document{ID: "a", Fields: core.Metadata{"userId": "u1"}})
	store.Create(ctx, "notes", core.Document{ID: "b", Fields: core.Metadata{"userId": "u2"}})
	store.Create(ctx, "notes", core.Document{ID: "c", Fields: core.Metadata{"userId": "u1"}})
	store.Update(ctx, "notes", "a", core.Metadata{"title": "touched last"})

	docs, err := store.Query(ctx, "notes", core.Query{
		Filter:  core.Metadata{"userId": "u1"},
		OrderBy: "updatedAt",
		Desc:    true,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "a" {
		t.Errorf("expected the most recently updated document first, got %s", docs[0].ID)
	}
}

func TestSubscribeFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := setupStore(t)

	ch, err := store.Subscribe(ctx, "notes", core.Query{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Initial snapshot is empty.
	select {
	case docs := <-ch:
		if len(docs) != 0 {
			t.Fatalf("expected empty initial snapshot, got %d", len(docs))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	if _, err := store.Create(ctx, "notes", core.Document{ID: "a", Fields: core.Metadata{"title": "first"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	select {
	case docs := <-ch:
		if len(docs) != 1 || docs[0].ID != "a" {
			t.Fatalf("expected snapshot with a, got %+v", docs)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change snapshot")
	}

	cancel()
	select {
	case _, open := <-ch:
		if open {
			// Drain a possible in-flight snapshot before the close.
			if _, open = <-ch; open {
				t.Fatal("expected channel to close after cancellation")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSubscribeLaggingConsumerSeesLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := setupStore(t)

	ch, err := store.Subscribe(ctx, "notes", core.Query{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// The initial empty snapshot is still queued when the mutation lands, so
	// the fresh snapshot has to displace it rather than be dropped.
	if _, err := store.Create(ctx, "notes", core.Document{ID: "a", Fields: core.Metadata{"title": "first"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var last []core.Document
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case docs := <-ch:
			last = docs
			if len(last) == 1 {
				break drain
			}
		case <-deadline:
			break drain
		}
	}
	if len(last) != 1 || last[0].ID != "a" {
		t.Fatalf("expected the latest snapshot with a, got %+v", last)
	}
}
