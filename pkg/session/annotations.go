package session

import (
	"fmt"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

// Annotations are note-scoped: they float over whichever page is active and
// are untouched by page switches. Their lifecycle is fully independent of the
// page cache.

// AddAnnotation creates a new annotation at the fixed default position and
// size and returns it. The caller is expected to put it into edit focus.
func (s *Session) AddAnnotation() core.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := core.NewAnnotation()
	s.note.Annotations = append(s.note.Annotations, a)
	s.changed()
	return a
}

// Annotations returns the note's annotations.
func (s *Session) Annotations() []core.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Annotation, len(s.note.Annotations))
	copy(out, s.note.Annotations)
	return out
}

// AnnotationPatch carries partial updates; nil fields are left unchanged.
type AnnotationPatch struct {
	Content *string
	Color   *string
}

// UpdateAnnotation applies a partial update. No validation beyond existence.
func (s *Session) UpdateAnnotation(id string, patch AnnotationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.note.Annotation(id)
	if a == nil {
		return fmt.Errorf("%w: %s", core.ErrNoSuchAnnotation, id)
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Color != nil {
		a.Color = *patch.Color
	}
	s.changed()
	return nil
}

// DeleteAnnotation removes an annotation immediately, no confirmation.
func (s *Session) DeleteAnnotation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.note.Annotations {
		if s.note.Annotations[i].ID == id {
			s.note.Annotations = append(s.note.Annotations[:i], s.note.Annotations[i+1:]...)
			s.changed()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", core.ErrNoSuchAnnotation, id)
}

// Drag is an in-progress move gesture. It captures the annotation's starting
// position so each Move applies the accumulated delta to the start, not to
// the last intermediate position. Direct manipulation stays stable even if
// move events arrive out of order or are coalesced.
type Drag struct {
	s              *Session
	id             string
	startX, startY float64
}

// StartDrag begins a move gesture on an annotation.
func (s *Session) StartDrag(id string) (*Drag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.note.Annotation(id)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoSuchAnnotation, id)
	}
	return &Drag{s: s, id: id, startX: a.X, startY: a.Y}, nil
}

// Move applies the gesture's accumulated delta, already projected into the
// annotation's coordinate space (dx in percent of canvas width, dy in
// pixels). X clamps to [0,100], Y to [0, inf). Intermediate positions are
// committed continuously; there is no separate commit step.
func (d *Drag) Move(dx, dy float64) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	a := d.s.note.Annotation(d.id)
	if a == nil {
		return // deleted mid-gesture
	}
	a.X = clamp(d.startX+dx, 0, 100)
	a.Y = max(d.startY+dy, 0)
	d.s.changed()
}

// Resize is an in-progress resize gesture, symmetric to Drag.
type Resize struct {
	s      *Session
	id     string
	startW float64
	startH float64
}

// StartResize begins a resize gesture on an annotation.
func (s *Session) StartResize(id string) (*Resize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.note.Annotation(id)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoSuchAnnotation, id)
	}
	return &Resize{s: s, id: id, startW: a.Width, startH: a.Height}, nil
}

// Grow applies the gesture's accumulated delta to the starting size,
// clamping width to >= 100 and height to >= 60.
func (r *Resize) Grow(dw, dh float64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a := r.s.note.Annotation(r.id)
	if a == nil {
		return
	}
	a.Width = max(r.startW+dw, core.AnnotationMinWidth)
	a.Height = max(r.startH+dh, core.AnnotationMinHeight)
	r.s.changed()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
