package service

import (
	"testing"

	"github.com/gadgeski/bugmemo-sub000/internal/repository"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
	"github.com/gadgeski/bugmemo-sub000/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *store.Store
	notes    *repository.NoteRepository
	folders  *repository.FolderRepository
	settings *repository.SettingsRepository
	svc      *BugService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := logger.NewLogger("bugmemo-test")
	m := metrics.NewMetrics(prometheus.NewRegistry())

	notes := repository.NewNoteRepository(s.DB, s.Notifier)
	folders := repository.NewFolderRepository(s.DB, s.Notifier)
	settings := repository.NewSettingsRepository(s.DB, s.Notifier)

	return &testEnv{
		store:    s,
		notes:    notes,
		folders:  folders,
		settings: settings,
		svc:      NewBugService(notes, folders, s.Notifier, log, m),
	}
}

// fakeClock makes the service clock strictly increasing and controllable
func (e *testEnv) fakeClock(start int64) func() int64 {
	current := start
	e.svc.now = func() int64 {
		current++
		return current
	}
	return func() int64 { return current }
}
