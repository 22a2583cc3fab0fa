// Package service implements the domain rules on top of the repositories:
// upsert id-assignment semantics, folder name reuse, soft cascades, the
// idempotent seed, and the reactive streams the UI layer consumes.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/repository"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
	"github.com/gadgeski/bugmemo-sub000/pkg/metrics"
)

// BugService is the only component the rest of the application calls for
// note and folder persistence
type BugService struct {
	notes    *repository.NoteRepository
	folders  *repository.FolderRepository
	notifier *store.Notifier
	log      *logger.Logger
	metrics  *metrics.Metrics

	// now is the clock for created_at/updated_at, unix milliseconds
	now func() int64
}

func NewBugService(
	notes *repository.NoteRepository,
	folders *repository.FolderRepository,
	notifier *store.Notifier,
	log *logger.Logger,
	m *metrics.Metrics,
) *BugService {
	return &BugService{
		notes:    notes,
		folders:  folders,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// GetNote retrieves a note by id; absent notes return (nil, nil)
func (s *BugService) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	start := time.Now()
	note, err := s.notes.GetByID(ctx, id)
	s.metrics.ObserveQuery("note_by_id", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return note, nil
}

// ListNotesOnce is the one-shot counterpart of ObserveNotes for
// non-reactive callers
func (s *BugService) ListNotesOnce(ctx context.Context) ([]*models.Note, error) {
	start := time.Now()
	notes, err := s.notes.List(ctx)
	s.metrics.ObserveQuery("notes_once", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// SearchNotesOnce is the one-shot counterpart of SearchNotes. A blank
// query returns all notes, matching the stream semantics.
func (s *BugService) SearchNotesOnce(ctx context.Context, query string) ([]*models.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListNotesOnce(ctx)
	}

	start := time.Now()
	notes, err := s.notes.Search(ctx, query)
	s.metrics.ObserveQuery("search_once", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return notes, nil
}

// ListFoldersOnce is the one-shot counterpart of ObserveFolders
func (s *BugService) ListFoldersOnce(ctx context.Context) ([]*models.Folder, error) {
	start := time.Now()
	folders, err := s.folders.List(ctx)
	s.metrics.ObserveQuery("folders_once", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// Upsert creates or updates a note. An id of 0 means creation: the service
// assigns both timestamps, ignoring whatever the caller set, and returns
// the new id. A nonzero id means update: the stored created_at is carried
// over, updated_at is set to now, every other field is overwritten.
// The caller's struct is never modified; the persisted state is what the
// returned id reads back.
func (s *BugService) Upsert(ctx context.Context, note *models.Note) (int64, error) {
	now := s.now()
	row := *note

	if row.ID == 0 {
		row.CreatedAt = now
		row.UpdatedAt = now
		id, err := s.notes.Insert(ctx, &row)
		s.metrics.ObserveMutation("notes", "insert", err)
		if err != nil {
			return 0, fmt.Errorf("failed to insert note: %w", err)
		}
		return id, nil
	}

	existing, err := s.notes.GetByID(ctx, row.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load note %d for update: %w", row.ID, err)
	}
	if existing != nil {
		row.CreatedAt = existing.CreatedAt
	}
	row.UpdatedAt = now

	err = s.notes.Update(ctx, &row)
	s.metrics.ObserveMutation("notes", "update", err)
	if err != nil {
		return 0, fmt.Errorf("failed to update note %d: %w", row.ID, err)
	}
	return row.ID, nil
}

// DeleteNote removes a note by id; a missing id is a no-op, not an error
func (s *BugService) DeleteNote(ctx context.Context, id int64) error {
	existing, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up note %d: %w", id, err)
	}
	if existing == nil {
		return nil
	}

	err = s.notes.Delete(ctx, id)
	s.metrics.ObserveMutation("notes", "delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	return nil
}

// SetStarred flips the star flag, bumping updated_at and nothing else
func (s *BugService) SetStarred(ctx context.Context, id int64, starred bool) error {
	err := s.notes.SetStarred(ctx, id, starred, s.now())
	s.metrics.ObserveMutation("notes", "set_starred", err)
	if err != nil {
		return fmt.Errorf("failed to star note %d: %w", id, err)
	}
	return nil
}

// AddFolder creates a folder from a trimmed name. A blank name is rejected
// with id 0. A case-insensitive name collision returns the existing
// folder's id instead of creating a duplicate row.
func (s *BugService) AddFolder(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	existing, err := s.folders.GetByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up folder %q: %w", name, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	id, err := s.folders.Insert(ctx, &models.Folder{Name: name})
	s.metrics.ObserveMutation("folders", "insert", err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert folder %q: %w", name, err)
	}
	return id, nil
}

// DeleteFolder removes a folder; notes referencing it are unlinked, not
// deleted (soft cascade, one transaction)
func (s *BugService) DeleteFolder(ctx context.Context, id int64) error {
	err := s.folders.Delete(ctx, id)
	s.metrics.ObserveMutation("folders", "delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete folder %d: %w", id, err)
	}
	return nil
}

// CountNotes returns the current note count
func (s *BugService) CountNotes(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := s.notes.Count(ctx)
	s.metrics.ObserveQuery("note_count", start, err)
	return count, err
}

// CountFolders returns the current folder count
func (s *BugService) CountFolders(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := s.folders.Count(ctx)
	s.metrics.ObserveQuery("folder_count", start, err)
	return count, err
}

// CountNotesInFolder returns how many notes are filed under the folder
func (s *BugService) CountNotesInFolder(ctx context.Context, folderID int64) (int64, error) {
	start := time.Now()
	count, err := s.notes.CountInFolder(ctx, folderID)
	s.metrics.ObserveQuery("note_count_in_folder", start, err)
	return count, err
}

// InsertAllNotes bulk-inserts with insert-or-ignore-on-id-collision
// semantics; the result is parallel to the input with -1 per skipped entry
func (s *BugService) InsertAllNotes(ctx context.Context, notes []*models.Note) ([]int64, error) {
	ids, err := s.notes.InsertAll(ctx, notes)
	s.metrics.ObserveMutation("notes", "insert_all", err)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert notes: %w", err)
	}
	return ids, nil
}

// InsertAllFolders mirrors InsertAllNotes for folders
func (s *BugService) InsertAllFolders(ctx context.Context, folders []*models.Folder) ([]int64, error) {
	ids, err := s.folders.InsertAll(ctx, folders)
	s.metrics.ObserveMutation("folders", "insert_all", err)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert folders: %w", err)
	}
	return ids, nil
}
