package scenario_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wordflow "github.com/nickigann03/word-flow-app"
	"github.com/nickigann03/word-flow-app/pkg/autosave"
	"github.com/nickigann03/word-flow-app/pkg/session"
)

// setupService opens a fresh library in a temp directory with a fast watch
// debounce so subscription tests settle quickly.
func setupService(t *testing.T) (*wordflow.Service, context.Context, context.CancelFunc) {
	t.Helper()

	svc, err := wordflow.New(t.TempDir(), wordflow.WithWatchDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	return svc, ctx, cancel
}

// TestEditingWorkflow walks the full note lifecycle: create from a template,
// type across pages, annotate, close, and read the persisted result back.
func TestEditingWorkflow(t *testing.T) {
	svc, ctx, cancel := setupService(t)
	defer cancel()

	note, err := svc.CreateNote(ctx, "pastor-1", "", "Sunday Service", "3-Point Sermon")
	require.NoError(t, err)
	require.Len(t, note.Pages, 1)
	assert.Equal(t, "## 3-Point Sermon\n\n", note.Pages[0].Content)

	surface := session.NewBuffer("")
	editor, err := svc.Open(ctx, note.ID, surface)
	require.NoError(t, err)

	sess := editor.Session()
	assert.Equal(t, note.Pages[0].Content, surface.Content(), "opening should load the active page into the surface")

	// Type on page one, then move to a fresh page and type there.
	surface.SetContent("## 3-Point Sermon\n\nPoint one: grace.")
	page2 := sess.CreatePage()
	require.Equal(t, page2.ID, sess.ActivePageID())
	assert.Equal(t, "", surface.Content(), "a fresh page starts empty")
	surface.SetContent("Point two: faith.")

	// Switching back restores the first page's edited content.
	require.NoError(t, sess.SwitchToPage(note.Pages[0].ID))
	assert.Equal(t, "## 3-Point Sermon\n\nPoint one: grace.", surface.Content())

	// Annotate in the margin.
	ann := sess.AddAnnotation()
	color := "pink"
	content := "follow up with worship team"
	require.NoError(t, sess.UpdateAnnotation(ann.ID, session.AnnotationPatch{
		Content: &content,
		Color:   &color,
	}))

	require.NoError(t, editor.Close(ctx))

	saved, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, saved.Pages, 2)
	assert.Equal(t, "## 3-Point Sermon\n\nPoint one: grace.", saved.Pages[0].Content)
	assert.Equal(t, "Point two: faith.", saved.Pages[1].Content)
	require.Len(t, saved.Annotations, 1)
	assert.Equal(t, "follow up with worship team", saved.Annotations[0].Content)
	assert.Equal(t, "pink", saved.Annotations[0].Color)
}

// TestAutosavePersistsInBackground verifies edits reach disk without an
// explicit flush once the debounce interval passes.
func TestAutosavePersistsInBackground(t *testing.T) {
	svc, ctx, cancel := setupService(t)
	defer cancel()

	note, err := svc.CreateNote(ctx, "pastor-1", "", "Draft", "Blank")
	require.NoError(t, err)

	surface := session.NewBuffer("")
	editor, err := svc.Open(ctx, note.ID, surface, autosave.WithInterval(30*time.Millisecond))
	require.NoError(t, err)
	defer editor.Close(ctx)

	surface.SetContent("live typing")
	editor.Session().SetTitle("Draft v2")

	require.Eventually(t, func() bool {
		saved, err := svc.GetNote(ctx, note.ID)
		return err == nil && saved.Title == "Draft v2" && saved.Pages[0].Content == "live typing"
	}, 5*time.Second, 20*time.Millisecond, "edits should be persisted by the autosave worker")
}

// TestAutosaveSurvivesDeletedNote checks that editing a note deleted by
// another actor keeps working locally instead of erroring.
func TestAutosaveSurvivesDeletedNote(t *testing.T) {
	svc, ctx, cancel := setupService(t)
	defer cancel()

	note, err := svc.CreateNote(ctx, "pastor-1", "", "Doomed", "Blank")
	require.NoError(t, err)

	surface := session.NewBuffer("")
	editor, err := svc.Open(ctx, note.ID, surface, autosave.WithInterval(time.Hour))
	require.NoError(t, err)
	defer editor.Close(ctx)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))

	surface.SetContent("typing into the void")
	assert.NoError(t, editor.Flush(ctx), "saving a deleted note is a no-op")
	assert.Equal(t, "typing into the void", surface.Content())
}

// TestScriptureInsertion queues a verse and applies it into the page markup.
func TestScriptureInsertion(t *testing.T) {
	svc, ctx, cancel := setupService(t)
	defer cancel()

	note, err := svc.CreateNote(ctx, "pastor-1", "", "Notes", "Blank")
	require.NoError(t, err)

	surface := session.NewBuffer("")
	editor, err := svc.Open(ctx, note.ID, surface)
	require.NoError(t, err)

	surface.SetContent("<p>Opening thought.</p>")
	editor.Session().QueueInsertion("For God so loved the world", "John 3:16 (KJV)")
	require.True(t, editor.Session().ApplyPendingInsertion())
	assert.Contains(t, surface.Content(), "<blockquote>")
	assert.Contains(t, surface.Content(), "<cite>(John 3:16 (KJV))</cite>")

	// The insertion is consumed once applied.
	assert.False(t, editor.Session().ApplyPendingInsertion())

	require.NoError(t, editor.Close(ctx))

	saved, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Contains(t, saved.Pages[0].Content, "For God so loved the world")
}

// TestFoldersOrganizeNotes exercises folder CRUD and folder-scoped listing.
func TestFoldersOrganizeNotes(t *testing.T) {
	svc, ctx, cancel := setupService(t)
	defer cancel()

	folder, err := svc.CreateFolder(ctx, "pastor-1", "2026 Series")
	require.NoError(t, err)

	_, err = svc.CreateNote(ctx, "pastor-1", folder.ID, "Week 1", "Blank")
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, "pastor-1", "", "Unfiled", "Blank")
	require.NoError(t, err)

	filed, err := svc.ListNotes(ctx, "pastor-1", folder.ID)
	require.NoError(t, err)
	require.Len(t, filed, 1)
	assert.Equal(t, "Week 1", filed[0].Title)

	all, err := svc.ListNotes(ctx, "pastor-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	folders, err := svc.ListFolders(ctx, "pastor-1")
	require.NoError(t, err)
	require.Len(t, folders, 1)

	// Deleting the folder leaves its notes behind.
	require.NoError(t, svc.DeleteFolder(ctx, folder.ID))
	remaining, err := svc.ListNotes(ctx, "pastor-1", "")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
