package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Orientation is the page orientation of a single page.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// MarginSize controls the horizontal breathing room of a page.
type MarginSize string

const (
	MarginNarrow MarginSize = "narrow"
	MarginNormal MarginSize = "normal"
	MarginWide   MarginSize = "wide"
)

// LayoutSettings holds the per-page layout configuration.
type LayoutSettings struct {
	Orientation Orientation `json:"orientation"`
	MarginSize  MarginSize  `json:"marginSize"`
}

// DefaultLayout returns the layout applied to newly created pages.
func DefaultLayout() LayoutSettings {
	return LayoutSettings{
		Orientation: OrientationPortrait,
		MarginSize:  MarginNormal,
	}
}

// Page is an independently titled section of rich-text content within a Note.
// Content is serialized markup and is opaque to this package.
type Page struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Layout  LayoutSettings `json:"layout"`
}

// NewPage creates a page with the default title for position n (1-based).
func NewPage(n int) Page {
	return Page{
		ID:     uuid.NewString(),
		Title:  fmt.Sprintf("Page %d", n),
		Layout: DefaultLayout(),
	}
}

// Annotation defaults. X is a percentage of the canvas width, Y a pixel offset.
const (
	AnnotationDefaultX      = 50.0
	AnnotationDefaultY      = 200.0
	AnnotationDefaultWidth  = 200.0
	AnnotationDefaultHeight = 100.0
	AnnotationDefaultColor  = "yellow"

	AnnotationMinWidth  = 100.0
	AnnotationMinHeight = 60.0
)

// Annotation is a freely positioned, resizable text box layered over a note's
// canvas. It is note-scoped, not page-scoped: it floats over whichever page is
// active, which matches the behavior users rely on.
type Annotation struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"` // percent of canvas width, [0,100]
	Y       float64 `json:"y"` // pixels from the top, >= 0
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Content string  `json:"content"`
	Color   string  `json:"color"`
}

// NewAnnotation creates an annotation at the fixed default position and size.
func NewAnnotation() Annotation {
	return Annotation{
		ID:     uuid.NewString(),
		X:      AnnotationDefaultX,
		Y:      AnnotationDefaultY,
		Width:  AnnotationDefaultWidth,
		Height: AnnotationDefaultHeight,
		Color:  AnnotationDefaultColor,
	}
}

// Note is the top-level document: one or more pages plus floating annotations.
// IDs are assigned client-side so optimistic UI can reference a note before the
// remote store confirms it. Timestamps are stamped by the store adapter on write.
//
// The active page is deliberately NOT part of this struct's persisted shape; it
// is view state owned by the editing session and resets to the first page when
// a note is reopened.
type Note struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId,omitempty"`
	FolderID    string       `json:"folderId,omitempty"`
	Title       string       `json:"title"`
	Tags        []string     `json:"tags,omitempty"`
	Pages       []Page       `json:"pages"`
	Annotations []Annotation `json:"annotations,omitempty"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitempty"`
}

// NewNote creates an unfiled note with one default page.
// Pass folderID == "" for an unfiled note.
func NewNote(userID, folderID, title string) Note {
	return Note{
		ID:       uuid.NewString(),
		UserID:   userID,
		FolderID: folderID,
		Title:    title,
		Pages:    []Page{NewPage(1)},
	}
}

// Page returns a pointer to the page with the given id, or nil.
func (n *Note) Page(id string) *Page {
	for i := range n.Pages {
		if n.Pages[i].ID == id {
			return &n.Pages[i]
		}
	}
	return nil
}

// PageIndex returns the position of the page with the given id, or -1.
func (n *Note) PageIndex(id string) int {
	for i := range n.Pages {
		if n.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Annotation returns a pointer to the annotation with the given id, or nil.
func (n *Note) Annotation(id string) *Annotation {
	for i := range n.Annotations {
		if n.Annotations[i].ID == id {
			return &n.Annotations[i]
		}
	}
	return nil
}

// Folder groups notes by reference (Note.FolderID). Deleting a folder does not
// cascade to its notes; they keep the dangling FolderID until reassigned.
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewFolder creates a folder with a fresh id.
func NewFolder(userID, title string) Folder {
	return Folder{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
}

// Insertion is a queued request to inject quoted content into the active page.
// It is transient: consumed exactly once, never persisted.
type Insertion struct {
	Text      string
	Reference string
}
