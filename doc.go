// Package wordflow is the composition root for the sermon note library.
//
// It connects the core document model (Domain Layer) with the storage
// adapters (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Wordflow treats a preacher's notes as a small document database with a
// responsive editing loop on top. The editor never blocks on the network:
// edits land on a local session immediately, a debounced autosave pushes them
// to storage in the background, and list mutations apply optimistically with
// rollback on failure. The core is storage-agnostic; the default adapter
// keeps one YAML file per document, and a SQLite adapter is available for
// single-file deployments.
//
// Features:
//
//   - **Multi-page notes**: pages with per-page layout, plus floating
//     annotations pinned to the note.
//   - **Debounced autosave**: one serialized write per quiet period, with a
//     fresh snapshot at fire time.
//   - **Optimistic lists**: create/delete reflect immediately and roll back
//     if the write fails.
//   - **Live queries**: subscriptions deliver full result snapshots on every
//     change.
//   - **Study helpers**: passage lookup, AI summaries and definitions, live
//     transcription (see pkg/scripture, pkg/assistant, pkg/transcribe).
//
// Usage:
//
//	// Open a library with functional options
//	svc, err := wordflow.New("./notes",
//		wordflow.WithAdapter("fs"),
//		wordflow.WithLogger(logger),
//	)
//
//	// Create and edit a note
//	note, err := svc.CreateNote(ctx, "user-1", "", "Sunday Sermon", "Blank")
//	ed, err := svc.Open(ctx, note.ID, session.NewBuffer(""))
//	defer ed.Close(ctx)
package wordflow
