package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepository_InsertAndGetByID(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	note := &models.Note{
		Title:      "API 500 error",
		Content:    "repro steps",
		CreatedAt:  1000,
		UpdatedAt:  1000,
		ImagePaths: models.StringList{"shot1.png", "shot2.png"},
	}
	id := mustInsertNote(t, repo, note)
	assert.Equal(t, id, note.ID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "API 500 error", got.Title)
	assert.Equal(t, "repro steps", got.Content)
	assert.EqualValues(t, 1000, got.CreatedAt)
	assert.Equal(t, models.StringList{"shot1.png", "shot2.png"}, got.ImagePaths)
	assert.False(t, got.FolderID.Valid)
	assert.False(t, got.GistID.Valid)
}

func TestNoteRepository_GetByID_Absent(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)

	got, err := repo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNoteRepository_List_OrderedByUpdatedAtDesc(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	mustInsertNote(t, repo, &models.Note{Title: "oldest", CreatedAt: 1, UpdatedAt: 1})
	mustInsertNote(t, repo, &models.Note{Title: "newest", CreatedAt: 2, UpdatedAt: 300})
	mustInsertNote(t, repo, &models.Note{Title: "middle", CreatedAt: 3, UpdatedAt: 200})

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "newest", notes[0].Title)
	assert.Equal(t, "middle", notes[1].Title)
	assert.Equal(t, "oldest", notes[2].Title)
}

func TestNoteRepository_Search_SubstringCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	mustInsertNote(t, repo, &models.Note{
		Title: "API 500 error", Content: "timeout in gateway", CreatedAt: 1, UpdatedAt: 1})
	mustInsertNote(t, repo, &models.Note{
		Title: "grocery list", Content: "milk, bread", CreatedAt: 2, UpdatedAt: 2})

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"lowercased title match", "api", []string{"API 500 error"}},
		{"uppercased content match", "GATEWAY", []string{"API 500 error"}},
		{"inner substring", "rror", []string{"API 500 error"}},
		{"short pattern falls back to scan", "er", []string{"grocery list", "API 500 error"}},
		{"no match", "zzz-no-match", []string{}},
		{"fts metacharacters are literal", `"api`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := repo.Search(ctx, tt.pattern)
			require.NoError(t, err)
			titles := []string{}
			for _, n := range notes {
				titles = append(titles, n.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestNoteRepository_Search_ShortPatternFoldsUnicode(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	mustInsertNote(t, repo, &models.Note{
		Title: "État du bug", Content: "accents partout", CreatedAt: 1, UpdatedAt: 1})

	// Patterns under three runes bypass the index; non-ASCII case must
	// still fold the same way the indexed arm does
	for _, pattern := range []string{"é", "É"} {
		notes, err := repo.Search(ctx, pattern)
		require.NoError(t, err)
		require.Len(t, notes, 1, "pattern %q", pattern)
		assert.Equal(t, "État du bug", notes[0].Title)
	}

	none, err := repo.Search(ctx, "ü")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNoteRepository_Search_ReflectsUpdates(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	note := &models.Note{Title: "draft", Content: "nothing yet", CreatedAt: 1, UpdatedAt: 1}
	id := mustInsertNote(t, repo, note)

	note.Title = "kubernetes crashloop"
	note.Content = "full repro attached"
	note.UpdatedAt = 2
	require.NoError(t, repo.Update(ctx, note))

	found, err := repo.Search(ctx, "crashloop")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	found, err = repo.Search(ctx, "repro attached")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// Replaced title and content must no longer match
	for _, gone := range []string{"draft", "nothing yet"} {
		stale, err := repo.Search(ctx, gone)
		require.NoError(t, err)
		assert.Empty(t, stale, "replaced text %q still matches", gone)
	}
}

func TestNoteRepository_Update_SilentNoopOnMissingID(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	err := repo.Update(ctx, &models.Note{ID: 9999, Title: "ghost", UpdatedAt: 5})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// The no-op must not leave an orphan shadow index entry behind
	found, err := repo.Search(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNoteRepository_Delete(t *testing.T) {
	s := openTestStore(t)
	notes := NewNoteRepository(s.DB, s.Notifier)
	mindmap := NewMindMapRepository(s.DB, s.Notifier)
	ctx := context.Background()

	id := mustInsertNote(t, notes, &models.Note{
		Title: "to be removed", Content: "body", CreatedAt: 1, UpdatedAt: 1})

	nodeID, err := mindmap.Insert(ctx, &models.MindMapNode{
		Title:     "linked node",
		NoteID:    sql.NullInt64{Int64: id, Valid: true},
		CreatedAt: 1, UpdatedAt: 1,
	})
	require.NoError(t, err)

	require.NoError(t, notes.Delete(ctx, id))

	got, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := notes.Search(ctx, "removed")
	require.NoError(t, err)
	assert.Empty(t, found)

	node, err := mindmap.GetByID(ctx, nodeID)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.False(t, node.NoteID.Valid, "node must be unlinked from the deleted note")

	// Deleting again is a no-op
	require.NoError(t, notes.Delete(ctx, id))
}

func TestNoteRepository_SetStarred_TouchesOnlyStarAndUpdatedAt(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	id := mustInsertNote(t, repo, &models.Note{
		Title: "keep me", Content: "intact", CreatedAt: 100, UpdatedAt: 100})

	require.NoError(t, repo.SetStarred(ctx, id, true, 200))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsStarred)
	assert.Equal(t, "keep me", got.Title)
	assert.Equal(t, "intact", got.Content)
	assert.EqualValues(t, 100, got.CreatedAt)
	assert.EqualValues(t, 200, got.UpdatedAt)

	require.NoError(t, repo.SetStarred(ctx, id, false, 300))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsStarred)
}

func TestNoteRepository_SetGist(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	id := mustInsertNote(t, repo, &models.Note{Title: "t", CreatedAt: 1, UpdatedAt: 1})

	require.NoError(t, repo.SetGist(ctx, id, "abc123", "https://gist.example/abc123"))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.GistID.Valid)
	assert.Equal(t, "abc123", got.GistID.String)
	assert.Equal(t, "https://gist.example/abc123", got.GistURL.String)
	assert.EqualValues(t, 1, got.UpdatedAt, "sync must not bump updated_at")
}

func TestNoteRepository_InsertAll_CollisionSemantics(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	existingID := mustInsertNote(t, repo, &models.Note{Title: "existing", CreatedAt: 1, UpdatedAt: 1})

	ids, err := repo.InsertAll(ctx, []*models.Note{
		{ID: existingID, Title: "collides", CreatedAt: 2, UpdatedAt: 2},
		{Title: "brand new", CreatedAt: 3, UpdatedAt: 3},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.EqualValues(t, -1, ids[0])
	assert.Greater(t, ids[1], existingID)

	// The collided entry must not have overwritten the existing row
	got, err := repo.GetByID(ctx, existingID)
	require.NoError(t, err)
	assert.Equal(t, "existing", got.Title)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Inserted rows are searchable
	found, err := repo.Search(ctx, "brand")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestNoteRepository_Counts(t *testing.T) {
	s := openTestStore(t)
	notes := NewNoteRepository(s.DB, s.Notifier)
	folders := NewFolderRepository(s.DB, s.Notifier)
	ctx := context.Background()

	folderID, err := folders.Insert(ctx, &models.Folder{Name: "Inbox"})
	require.NoError(t, err)

	filed := &models.Note{Title: "filed", CreatedAt: 1, UpdatedAt: 1}
	filed.SetFolder(folderID)
	mustInsertNote(t, notes, filed)
	mustInsertNote(t, notes, &models.Note{Title: "loose", CreatedAt: 2, UpdatedAt: 2})

	total, err := notes.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	inFolder, err := notes.CountInFolder(ctx, folderID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inFolder)
}

func TestNoteRepository_MutationsNotify(t *testing.T) {
	s := openTestStore(t)
	repo := NewNoteRepository(s.DB, s.Notifier)
	ctx := context.Background()

	events, cancel := s.Notifier.Subscribe(store.TableNotes)
	defer cancel()

	id := mustInsertNote(t, repo, &models.Note{Title: "n", CreatedAt: 1, UpdatedAt: 1})
	<-events

	require.NoError(t, repo.SetStarred(ctx, id, true, 2))
	<-events

	require.NoError(t, repo.Delete(ctx, id))
	<-events
}
