package core

import "context"

// Metadata represents the flexible key-value fields of a stored document.
type Metadata map[string]any

// Document is the unit of storage: an id plus a flat field map. Typed access
// on top of this shape lives in pkg/typed.
type Document struct {
	ID     string
	Fields Metadata
}

// Query selects and orders documents within a collection.
type Query struct {
	// Filter matches documents whose fields equal every entry (string compare
	// via fmt for non-string values).
	Filter Metadata

	// Pattern, when non-empty, is a doublestar glob matched against document IDs.
	Pattern string

	// OrderBy names the field to sort by; empty means unspecified order.
	OrderBy string
	Desc    bool
}

// Store defines the contract for a remote document store.
// Adhering to this interface keeps the editing core independent of the backing
// database (filesystem, SQLite, a cloud document DB).
//
// All methods may suspend for unbounded time; callers pass a context.
type Store interface {
	// Create persists a new document. If doc.ID is empty the store assigns one;
	// the assigned id is returned either way. The store stamps createdAt and
	// updatedAt fields.
	Create(ctx context.Context, collection string, doc Document) (string, error)

	// Get retrieves a document by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Update merges fields into an existing document and stamps updatedAt.
	// Returns ErrNotFound if the id no longer exists.
	Update(ctx context.Context, collection, id string, fields Metadata) error

	// Delete removes a document. Returns ErrNotFound if absent.
	Delete(ctx context.Context, collection, id string) error

	// Query returns all documents of a collection matching q.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Initialize ensures the underlying storage is ready (create directories,
	// schema migration).
	Initialize(ctx context.Context) error
}

// Subscribable is implemented by stores that support live subscriptions.
// Each delivery is the FULL matching result set, not a delta; consumers replace
// their view wholesale on every receive. The channel closes when ctx is done.
type Subscribable interface {
	Subscribe(ctx context.Context, collection string, q Query) (<-chan []Document, error)
}
