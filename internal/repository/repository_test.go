package repository

import (
	"context"
	"testing"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustInsertNote(t *testing.T, repo *NoteRepository, note *models.Note) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), note)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}
