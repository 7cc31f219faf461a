package core

import "errors"

// Common errors.
var (
	// ErrNotFound reports that a document id does not exist in the store.
	// Callers holding local state that may lag behind the remote (autosave of a
	// note deleted elsewhere) must tolerate it as a no-op.
	ErrNotFound = errors.New("document not found")

	// ErrLastPage rejects deleting the only remaining page of a note.
	ErrLastPage = errors.New("cannot delete the last remaining page")

	// ErrNoSuchPage reports a page id that does not name a page of the open note.
	ErrNoSuchPage = errors.New("no such page")

	// ErrNoSuchAnnotation reports an unknown annotation id.
	ErrNoSuchAnnotation = errors.New("no such annotation")
)
