package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gadgeski/bugmemo-sub000/internal/client"
	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/repository"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
	"github.com/gadgeski/bugmemo-sub000/pkg/metrics"
)

// SyncService pushes note content to the remote gist service. Pushes are
// append-only and best-effort: a failed remote call leaves local state
// untouched, and the gist id/url columns are written only after the remote
// call has succeeded.
type SyncService struct {
	notes   *repository.NoteRepository
	gist    *client.GistClient
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewSyncService(notes *repository.NoteRepository, gist *client.GistClient, log *logger.Logger, m *metrics.Metrics) *SyncService {
	return &SyncService{notes: notes, gist: gist, log: log, metrics: m}
}

// PushNote uploads a single note, creating a gist on first push and
// updating it afterwards. Returns the gist URL.
func (s *SyncService) PushNote(ctx context.Context, id int64) (string, error) {
	requestID := uuid.NewString()
	log := s.log.WithRequestID(requestID)

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to load note %d for sync: %w", id, err)
	}
	if note == nil {
		return "", fmt.Errorf("note %d not found", id)
	}

	req := &client.GistRequest{
		Description: gistDescription(1),
		Public:      false,
		Files: map[string]client.GistFile{
			gistFilename(note.ID): {Content: renderNote(note)},
		},
	}

	var resp *client.GistResponse
	if note.GistID.Valid {
		resp, err = s.gist.UpdateGist(ctx, note.GistID.String, req)
		s.metrics.SyncCounter.WithLabelValues("update", syncStatus(err)).Inc()
	} else {
		resp, err = s.gist.CreateGist(ctx, req)
		s.metrics.SyncCounter.WithLabelValues("create", syncStatus(err)).Inc()
	}
	if err != nil {
		log.WithError(err).WithField("note_id", id).Error("gist push failed")
		return "", err
	}

	// Follow-up local write; the push itself already succeeded
	if err := s.notes.SetGist(ctx, note.ID, resp.ID, resp.HTMLURL); err != nil {
		log.WithError(err).WithField("note_id", id).
			Warn("pushed gist but failed to record id locally")
		return resp.HTMLURL, nil
	}

	log.WithField("note_id", id).WithField("gist_id", resp.ID).Info("note pushed to gist")
	return resp.HTMLURL, nil
}

// PushAll uploads every note as one gist with one file per note. Each
// note's gist columns are pointed at the shared gist afterwards.
func (s *SyncService) PushAll(ctx context.Context) (string, error) {
	requestID := uuid.NewString()
	log := s.log.WithRequestID(requestID)

	notes, err := s.notes.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load notes for sync: %w", err)
	}
	if len(notes) == 0 {
		return "", nil
	}

	files := make(map[string]client.GistFile, len(notes))
	for _, note := range notes {
		files[gistFilename(note.ID)] = client.GistFile{Content: renderNote(note)}
	}

	resp, err := s.gist.CreateGist(ctx, &client.GistRequest{
		Description: gistDescription(len(notes)),
		Public:      false,
		Files:       files,
	})
	s.metrics.SyncCounter.WithLabelValues("create_all", syncStatus(err)).Inc()
	if err != nil {
		log.WithError(err).Error("bulk gist push failed")
		return "", err
	}

	for _, note := range notes {
		if err := s.notes.SetGist(ctx, note.ID, resp.ID, resp.HTMLURL); err != nil {
			log.WithError(err).WithField("note_id", note.ID).
				Warn("pushed gist but failed to record id locally")
		}
	}

	log.WithField("notes", len(notes)).WithField("gist_id", resp.ID).Info("notes pushed to gist")
	return resp.HTMLURL, nil
}

// gistFilename maps a note id to its deterministic file name
func gistFilename(id int64) string {
	return fmt.Sprintf("bug_%d.md", id)
}

func gistDescription(count int) string {
	return fmt.Sprintf("BugMemo export (%d notes) %s", count, time.Now().UTC().Format(time.RFC3339))
}

func renderNote(note *models.Note) string {
	if note.Title == "" {
		return note.Content
	}
	return "# " + note.Title + "\n\n" + note.Content
}

func syncStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
