package session_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickigann03/word-flow-app/pkg/core"
	"github.com/nickigann03/word-flow-app/pkg/session"
)

func newSession(t *testing.T) (*session.Session, *session.Buffer) {
	t.Helper()
	buf := session.NewBuffer("")
	return session.New(core.NewNote("u1", "", "Test"), buf), buf
}

func TestLoad(t *testing.T) {
	t.Run("Activates First Page", func(t *testing.T) {
		note := core.NewNote("u1", "", "Test")
		note.Pages[0].Content = "persisted"

		buf := session.NewBuffer("")
		s := session.New(note, buf)

		assert.Equal(t, note.Pages[0].ID, s.ActivePageID())
		assert.Equal(t, "persisted", buf.Content())
	})

	t.Run("Repairs Empty Page List", func(t *testing.T) {
		// A foreign writer can persist a note with zero pages; opening it must
		// not leave the editor pageless.
		s := session.New(core.Note{ID: "broken", Title: "Broken"}, session.NewBuffer(""))

		require.Len(t, s.Pages(), 1)
		assert.Equal(t, "Page 1", s.Pages()[0].Title)
	})
}

func TestContentCaptureOnSwitch(t *testing.T) {
	note := core.NewNote("u1", "", "Test")
	note.Pages[0].Content = "foo"
	note.Pages = append(note.Pages, core.NewPage(2))
	note.Pages[1].Content = "bar"
	pageA, pageB := note.Pages[0].ID, note.Pages[1].ID

	buf := session.NewBuffer("")
	s := session.New(note, buf)
	require.Equal(t, "foo", buf.Content())

	// Type on page A, switch away, come back: the typed content must survive
	// even though nothing was persisted in between.
	buf.SetContent("foo2")
	require.NoError(t, s.SwitchToPage(pageB))
	assert.Equal(t, "bar", buf.Content())

	require.NoError(t, s.SwitchToPage(pageA))
	assert.Equal(t, "foo2", buf.Content())
}

func TestSwitchToPage(t *testing.T) {
	t.Run("Same Page is a No-Op", func(t *testing.T) {
		s, buf := newSession(t)
		buf.SetContent("typing")

		require.NoError(t, s.SwitchToPage(s.ActivePageID()))
		assert.Equal(t, "typing", buf.Content())
	})

	t.Run("Unknown Page Leaves State Untouched", func(t *testing.T) {
		s, buf := newSession(t)
		buf.SetContent("typing")
		active := s.ActivePageID()

		err := s.SwitchToPage("missing")
		require.ErrorIs(t, err, core.ErrNoSuchPage)
		assert.Equal(t, active, s.ActivePageID())
		assert.Equal(t, "typing", buf.Content())
	})
}

func TestCreatePage(t *testing.T) {
	s, buf := newSession(t)
	buf.SetContent("first page text")

	page := s.CreatePage()

	assert.Equal(t, "Page 2", page.Title)
	assert.Equal(t, page.ID, s.ActivePageID())
	assert.Equal(t, "", buf.Content())

	// The outgoing page's text was captured before the switch.
	require.NoError(t, s.SwitchToPage(s.Pages()[0].ID))
	assert.Equal(t, "first page text", buf.Content())
}

func TestDeletePage(t *testing.T) {
	t.Run("Last Page is Protected", func(t *testing.T) {
		s, _ := newSession(t)

		err := s.DeletePage(s.ActivePageID())
		require.ErrorIs(t, err, core.ErrLastPage)
		assert.Len(t, s.Pages(), 1)
	})

	t.Run("Unknown Page", func(t *testing.T) {
		s, _ := newSession(t)
		assert.ErrorIs(t, s.DeletePage("missing"), core.ErrNoSuchPage)
	})

	t.Run("Deleting Active Page Activates Neighbor", func(t *testing.T) {
		s, buf := newSession(t)
		first := s.ActivePageID()
		second := s.CreatePage().ID
		third := s.CreatePage().ID

		require.NoError(t, s.SwitchToPage(second))
		require.NoError(t, s.DeletePage(second))

		// Index 1 still exists (the old third page), so it takes over.
		assert.Equal(t, third, s.ActivePageID())

		require.NoError(t, s.DeletePage(third))
		assert.Equal(t, first, s.ActivePageID())
		assert.Equal(t, "", buf.Content())
	})

	t.Run("Deleting Inactive Page Keeps Surface", func(t *testing.T) {
		s, buf := newSession(t)
		second := s.CreatePage().ID
		require.NoError(t, s.SwitchToPage(s.Pages()[0].ID))
		buf.SetContent("still here")

		require.NoError(t, s.DeletePage(second))
		assert.Equal(t, "still here", buf.Content())
	})
}

func TestRenamePage(t *testing.T) {
	s, _ := newSession(t)
	id := s.ActivePageID()

	require.NoError(t, s.RenamePage(id, "Introduction"))
	assert.Equal(t, "Introduction", s.Pages()[0].Title)

	// Empty titles are dropped so the page keeps its last name.
	require.NoError(t, s.RenamePage(id, ""))
	assert.Equal(t, "Introduction", s.Pages()[0].Title)

	assert.ErrorIs(t, s.RenamePage("missing", "X"), core.ErrNoSuchPage)
}

func TestSetPageLayout(t *testing.T) {
	s, _ := newSession(t)
	id := s.ActivePageID()

	layout := core.LayoutSettings{Orientation: core.OrientationLandscape, MarginSize: core.MarginWide}
	require.NoError(t, s.SetPageLayout(id, layout))
	assert.Equal(t, layout, s.Pages()[0].Layout)
}

func TestPendingInsertion(t *testing.T) {
	t.Run("Applies Quoted Markup Once", func(t *testing.T) {
		s, buf := newSession(t)
		buf.SetContent("<p>notes</p>")

		s.QueueInsertion("For God so loved the world", "John 3:16")
		require.True(t, s.ApplyPendingInsertion())

		assert.Equal(t,
			`<p>notes</p><blockquote>"For God so loved the world" <cite>(John 3:16)</cite></blockquote><p></p>`,
			buf.Content())

		// Consumed exactly once.
		assert.False(t, s.ApplyPendingInsertion())
	})

	t.Run("Keeps Raw Text Unescaped", func(t *testing.T) {
		// Inner quotes and newlines pass through verbatim; the markup wraps
		// the text in plain double quotes, it does not escape it.
		s, buf := newSession(t)

		s.QueueInsertion("Jesus said, \"I am the way\"\nand the truth", "John 14:6")
		require.True(t, s.ApplyPendingInsertion())

		assert.Equal(t,
			"<blockquote>\"Jesus said, \"I am the way\"\nand the truth\" <cite>(John 14:6)</cite></blockquote><p></p>",
			buf.Content())
	})

	t.Run("Later Queue Replaces Earlier", func(t *testing.T) {
		s, buf := newSession(t)

		s.QueueInsertion("first", "Ref 1")
		s.QueueInsertion("second", "Ref 2")
		require.True(t, s.ApplyPendingInsertion())

		assert.Contains(t, buf.Content(), "second")
		assert.NotContains(t, buf.Content(), "first")
	})

	t.Run("Nothing Queued", func(t *testing.T) {
		s, buf := newSession(t)
		assert.False(t, s.ApplyPendingInsertion())
		assert.Equal(t, "", buf.Content())
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Reads Live Surface at Call Time", func(t *testing.T) {
		s, buf := newSession(t)
		buf.SetContent("latest keystrokes")

		snap := s.Snapshot()
		require.Len(t, snap.Pages, 1)
		assert.Equal(t, "latest keystrokes", snap.Pages[0].Content)
	})

	t.Run("Includes Cached Inactive Pages", func(t *testing.T) {
		s, buf := newSession(t)
		buf.SetContent("page one")
		s.CreatePage()
		buf.SetContent("page two")

		snap := s.Snapshot()
		require.Len(t, snap.Pages, 2)
		assert.Equal(t, "page one", snap.Pages[0].Content)
		assert.Equal(t, "page two", snap.Pages[1].Content)
	})

	t.Run("Mutating the Snapshot Leaves the Session Alone", func(t *testing.T) {
		s, _ := newSession(t)
		s.AddAnnotation()

		snap := s.Snapshot()
		snap.Pages[0].Content = "hacked"
		snap.Annotations[0].Content = "hacked"

		assert.NotEqual(t, "hacked", s.Snapshot().Pages[0].Content)
		assert.NotEqual(t, "hacked", s.Snapshot().Annotations[0].Content)
	})
}

func TestOnChange(t *testing.T) {
	var fired int
	buf := session.NewBuffer("")
	s := session.New(core.NewNote("u1", "", "Test"), buf,
		session.WithOnChange(func() { fired++ }))

	require.Equal(t, 0, fired, "loading must not count as a change")

	s.SetTitle("Renamed")
	s.CreatePage()
	s.AddAnnotation()
	assert.Equal(t, 3, fired)

	// No-op mutations stay silent.
	s.SetTitle("Renamed")
	assert.Equal(t, 3, fired)
}

func TestErrorsAreSentinels(t *testing.T) {
	s, _ := newSession(t)

	assert.True(t, errors.Is(s.DeletePage("x"), core.ErrNoSuchPage))
	assert.True(t, errors.Is(s.DeleteAnnotation("x"), core.ErrNoSuchAnnotation))
}

func TestConcurrentSnapshotWhileEditing(t *testing.T) {
	// The autosave worker takes snapshots from its own goroutine while the
	// owner keeps typing and switching pages. Run both sides hot so the race
	// detector has something to chew on if the locking regresses.
	note := core.NewNote("u1", "", "Test")
	note.Pages = append(note.Pages, core.NewPage(2))
	pageA, pageB := note.Pages[0].ID, note.Pages[1].ID

	buf := session.NewBuffer("")
	s := session.New(note, buf)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if snap := s.Snapshot(); len(snap.Pages) != 2 {
				t.Errorf("snapshot saw %d pages", len(snap.Pages))
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		buf.SetContent(fmt.Sprintf("draft %d", i))
		s.SetTitle("Draft")
		if i%100 == 0 {
			require.NoError(t, s.SwitchToPage(pageB))
			require.NoError(t, s.SwitchToPage(pageA))
		}
	}
	<-done

	buf.SetContent("final")
	snap := s.Snapshot()
	require.Equal(t, pageA, snap.Pages[0].ID)
	assert.Equal(t, "final", snap.Pages[0].Content)
}
