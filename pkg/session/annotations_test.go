package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickigann03/word-flow-app/pkg/core"
	"github.com/nickigann03/word-flow-app/pkg/session"
)

func TestAddAnnotation(t *testing.T) {
	s, _ := newSession(t)

	ann := s.AddAnnotation()

	assert.Equal(t, core.AnnotationDefaultX, ann.X)
	assert.Equal(t, core.AnnotationDefaultY, ann.Y)
	assert.Equal(t, core.AnnotationDefaultColor, ann.Color)
	require.Len(t, s.Annotations(), 1)
}

func TestUpdateAnnotation(t *testing.T) {
	s, _ := newSession(t)
	ann := s.AddAnnotation()

	content, color := "key point", "blue"
	require.NoError(t, s.UpdateAnnotation(ann.ID, session.AnnotationPatch{Content: &content, Color: &color}))

	got := s.Annotations()[0]
	assert.Equal(t, "key point", got.Content)
	assert.Equal(t, "blue", got.Color)

	// Nil fields are left alone.
	require.NoError(t, s.UpdateAnnotation(ann.ID, session.AnnotationPatch{}))
	assert.Equal(t, "key point", s.Annotations()[0].Content)

	assert.ErrorIs(t, s.UpdateAnnotation("missing", session.AnnotationPatch{}), core.ErrNoSuchAnnotation)
}

func TestDrag(t *testing.T) {
	t.Run("Clamps to Canvas", func(t *testing.T) {
		s, _ := newSession(t)
		ann := s.AddAnnotation() // X=50, Y=200

		drag, err := s.StartDrag(ann.ID)
		require.NoError(t, err)

		drag.Move(-80, -500)
		got := s.Annotations()[0]
		assert.Equal(t, 0.0, got.X)
		assert.Equal(t, 0.0, got.Y)

		drag.Move(80, 100)
		got = s.Annotations()[0]
		assert.Equal(t, 100.0, got.X)
		assert.Equal(t, 300.0, got.Y)
	})

	t.Run("Deltas Apply to the Start Position", func(t *testing.T) {
		s, _ := newSession(t)
		ann := s.AddAnnotation()

		drag, err := s.StartDrag(ann.ID)
		require.NoError(t, err)

		// Coalesced move events carry accumulated deltas; the final one wins.
		drag.Move(10, 10)
		drag.Move(20, 20)

		got := s.Annotations()[0]
		assert.Equal(t, core.AnnotationDefaultX+20, got.X)
		assert.Equal(t, core.AnnotationDefaultY+20, got.Y)
	})

	t.Run("Tolerates Deletion Mid-Gesture", func(t *testing.T) {
		s, _ := newSession(t)
		ann := s.AddAnnotation()

		drag, err := s.StartDrag(ann.ID)
		require.NoError(t, err)
		require.NoError(t, s.DeleteAnnotation(ann.ID))

		drag.Move(10, 10) // must not panic
		assert.Empty(t, s.Annotations())
	})
}

func TestResize(t *testing.T) {
	s, _ := newSession(t)
	ann := s.AddAnnotation() // 200x100

	resize, err := s.StartResize(ann.ID)
	require.NoError(t, err)

	resize.Grow(-300, -300)
	got := s.Annotations()[0]
	assert.Equal(t, core.AnnotationMinWidth, got.Width)
	assert.Equal(t, core.AnnotationMinHeight, got.Height)

	resize.Grow(100, 50)
	got = s.Annotations()[0]
	assert.Equal(t, 300.0, got.Width)
	assert.Equal(t, 150.0, got.Height)
}

func TestAnnotationsIndependentOfPages(t *testing.T) {
	s, buf := newSession(t)
	ann := s.AddAnnotation()

	content := "sticky"
	require.NoError(t, s.UpdateAnnotation(ann.ID, session.AnnotationPatch{Content: &content}))

	// Create, switch and delete pages; the annotation must not move or change.
	buf.SetContent("page one text")
	second := s.CreatePage().ID
	require.NoError(t, s.SwitchToPage(s.Pages()[0].ID))
	require.NoError(t, s.DeletePage(second))

	require.Len(t, s.Annotations(), 1)
	got := s.Annotations()[0]
	assert.Equal(t, "sticky", got.Content)
	assert.Equal(t, core.AnnotationDefaultX, got.X)
	assert.Equal(t, core.AnnotationDefaultY, got.Y)
}
