package service

import (
	"context"
	"testing"
	"time"

	"github.com/gadgeski/bugmemo-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func TestCoordinator_InitialSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upsert(ctx, &models.Note{Title: "preexisting"})
	require.NoError(t, err)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	defer c.Close()

	snapshot := waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 1 })
	assert.Equal(t, "preexisting", snapshot[0].Title)
}

func TestCoordinator_QuerySwitchesStream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upsert(ctx, &models.Note{Title: "alpha crashloop"})
	require.NoError(t, err)
	_, err = env.svc.Upsert(ctx, &models.Note{Title: "beta timeout"})
	require.NoError(t, err)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	defer c.Close()

	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 2 })

	c.SetQuery("crashloop")
	snapshot := waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 1 })
	assert.Equal(t, "alpha crashloop", snapshot[0].Title)

	// Clearing the query restores the full stream
	c.SetQuery("")
	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 2 })
}

func TestCoordinator_DebounceCoalescesKeystrokes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upsert(ctx, &models.Note{Title: "kubernetes"})
	require.NoError(t, err)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, 50*time.Millisecond)
	defer c.Close()

	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 1 })

	// Typing burst: only the settled value should ever produce results
	for _, q := range []string{"k", "ku", "kub", "kube", "zzz-nomatch"} {
		c.SetQuery(q)
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 0 })
}

func TestCoordinator_FolderFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folderID, err := env.svc.AddFolder(ctx, "Work")
	require.NoError(t, err)

	filed := &models.Note{Title: "filed note"}
	filed.SetFolder(folderID)
	_, err = env.svc.Upsert(ctx, filed)
	require.NoError(t, err)
	_, err = env.svc.Upsert(ctx, &models.Note{Title: "loose note"})
	require.NoError(t, err)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	defer c.Close()

	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 2 })

	c.SetFolderFilter(&folderID)
	snapshot := waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 1 })
	assert.Equal(t, "filed note", snapshot[0].Title)

	c.SetFolderFilter(nil)
	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 2 })
}

func TestCoordinator_SwitchToLatestDropsStaleResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upsert(ctx, &models.Note{Title: "stale match"})
	require.NoError(t, err)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	defer c.Close()

	// Supersede "stale" with "fresh" back to back; after both debounces
	// settle, only results for the latest pair may be observed
	c.SetQuery("stale")
	c.SetQuery("zzz-fresh-nomatch")

	time.Sleep(5 * testDebounce)

	waitFor(t, c.Notes(), func(notes []*models.Note) bool { return len(notes) == 0 })

	// And they stay consistent with the latest query on fresh writes
	_, err = env.svc.Upsert(ctx, &models.Note{Title: "another stale match"})
	require.NoError(t, err)
	time.Sleep(5 * testDebounce)

	select {
	case notes, ok := <-c.Notes():
		if ok {
			assert.Empty(t, notes, "stale query results leaked through")
		}
	default:
	}
}

func TestCoordinator_PersistsInputs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	defer c.Close()

	folderID := int64(3)
	c.SetQuery("remembered")
	c.SetFolderFilter(&folderID)

	time.Sleep(3 * testDebounce)

	q, err := env.settings.Get(ctx, "last_query")
	require.NoError(t, err)
	assert.Equal(t, "remembered", q)

	f, err := env.settings.Get(ctx, "selected_folder")
	require.NoError(t, err)
	assert.Equal(t, "3", f)
}

func TestCoordinator_CloseClosesOutput(t *testing.T) {
	env := newTestEnv(t)

	c := NewCoordinator(env.svc, env.settings, env.svc.log, testDebounce)
	waitFor(t, c.Notes(), func([]*models.Note) bool { return true })

	c.Close()
	c.Close() // idempotent

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Notes():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("coordinator output did not close")
		}
	}
}
