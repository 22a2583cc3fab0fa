package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
)

// NoteRepository provides access to the notes table and keeps the full-text
// shadow index (notes_fts) in lockstep with title/content inside the same
// transaction as every mutation.
type NoteRepository struct {
	db       *sql.DB
	notifier *store.Notifier
}

func NewNoteRepository(db *sql.DB, notifier *store.Notifier) *NoteRepository {
	return &NoteRepository{db: db, notifier: notifier}
}

const noteColumns = `id, title, content, folder_id, created_at, updated_at, is_starred, image_paths, gist_id, gist_url`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID, &note.Title, &note.Content, &note.FolderID,
		&note.CreatedAt, &note.UpdatedAt, &note.IsStarred,
		&note.ImagePaths, &note.GistID, &note.GistURL,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func scanNotes(rows *sql.Rows) ([]*models.Note, error) {
	notes := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// GetByID retrieves a note by id. Returns (nil, nil) when absent.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ?`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// List returns every note ordered by updated_at descending
func (r *NoteRepository) List(ctx context.Context) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Search returns notes whose title or content contains pattern,
// case-insensitive, ordered like List. Patterns of three or more runes go
// through the trigram full-text index; shorter ones fall back to a full
// scan folded in Go, since the index cannot answer them and SQLite's
// lower() folds ASCII only. Both arms return exactly the rows a naive
// case-insensitive substring scan would.
func (r *NoteRepository) Search(ctx context.Context, pattern string) ([]*models.Note, error) {
	if utf8.RuneCountInString(pattern) < 3 {
		all, err := r.List(ctx)
		if err != nil {
			return nil, err
		}
		needle := strings.ToLower(pattern)
		matched := []*models.Note{}
		for _, note := range all {
			if strings.Contains(strings.ToLower(note.Title), needle) ||
				strings.Contains(strings.ToLower(note.Content), needle) {
				matched = append(matched, note)
			}
		}
		return matched, nil
	}

	query := `
		SELECT n.id, n.title, n.content, n.folder_id, n.created_at, n.updated_at,
		       n.is_starred, n.image_paths, n.gist_id, n.gist_url
		FROM notes n
		JOIN notes_fts ON notes_fts.rowid = n.id
		WHERE notes_fts MATCH ?
		ORDER BY n.updated_at DESC, n.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ftsQuote(pattern))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ftsQuote turns a raw user pattern into an FTS5 string literal so the
// pattern is matched verbatim instead of being parsed as query syntax
func ftsQuote(pattern string) string {
	return `"` + strings.ReplaceAll(pattern, `"`, `""`) + `"`
}

// Insert persists a new note and returns the assigned id
func (r *NoteRepository) Insert(ctx context.Context, note *models.Note) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO notes (title, content, folder_id, created_at, updated_at, is_starred, image_paths, gist_id, gist_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.Title, note.Content, note.FolderID, note.CreatedAt, note.UpdatedAt,
		note.IsStarred, note.ImagePaths, note.GistID, note.GistURL,
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes_fts (rowid, title, content) VALUES (?, ?, ?)`,
		id, note.Title, note.Content,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	note.ID = id
	r.notify(store.TableNotes)
	return id, nil
}

// InsertAll inserts notes with insert-or-ignore-on-id-collision semantics.
// The returned slice is parallel to the input: the assigned id per inserted
// note, -1 for entries whose explicit id already existed.
func (r *NoteRepository) InsertAll(ctx context.Context, notes []*models.Note) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(notes))
	inserted := false
	for _, note := range notes {
		var explicitID interface{}
		if note.ID != 0 {
			explicitID = note.ID
		}

		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO notes (id, title, content, folder_id, created_at, updated_at, is_starred, image_paths, gist_id, gist_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			explicitID, note.Title, note.Content, note.FolderID, note.CreatedAt,
			note.UpdatedAt, note.IsStarred, note.ImagePaths, note.GistID, note.GistURL,
		)
		if err != nil {
			return nil, err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			ids = append(ids, -1)
			continue
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes_fts (rowid, title, content) VALUES (?, ?, ?)`,
			id, note.Title, note.Content,
		); err != nil {
			return nil, err
		}

		note.ID = id
		ids = append(ids, id)
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if inserted {
		r.notify(store.TableNotes)
	}
	return ids, nil
}

// Update overwrites the full row by id. Updating a nonexistent id affects
// zero rows and is not an error.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, folder_id = ?, created_at = ?, updated_at = ?,
		    is_starred = ?, image_paths = ?, gist_id = ?, gist_url = ?
		WHERE id = ?`,
		note.Title, note.Content, note.FolderID, note.CreatedAt, note.UpdatedAt,
		note.IsStarred, note.ImagePaths, note.GistID, note.GistURL, note.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE rowid = ?`, note.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes_fts (rowid, title, content) VALUES (?, ?, ?)`,
		note.ID, note.Title, note.Content,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.notify(store.TableNotes)
	return nil
}

// Delete removes a note by id, its shadow index entry, and unlinks any
// mind map node referencing it, all within one transaction
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE rowid = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE mind_map_nodes SET note_id = NULL WHERE note_id = ?`, id,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.notify(store.TableNotes, store.TableMindMap)
	return nil
}

// SetStarred updates exactly is_starred and updated_at, leaving every other
// column untouched
func (r *NoteRepository) SetStarred(ctx context.Context, id int64, starred bool, updatedAt int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET is_starred = ?, updated_at = ? WHERE id = ?`,
		starred, updatedAt, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		r.notify(store.TableNotes)
	}
	return nil
}

// SetGist records the remote sync identifiers after a successful push.
// Deliberately does not touch updated_at: a sync is not a content mutation.
func (r *NoteRepository) SetGist(ctx context.Context, id int64, gistID, gistURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET gist_id = ?, gist_url = ? WHERE id = ?`,
		gistID, gistURL, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		r.notify(store.TableNotes)
	}
	return nil
}

// Count returns the number of notes
func (r *NoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// CountInFolder returns the number of notes assigned to a folder
func (r *NoteRepository) CountInFolder(ctx context.Context, folderID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE folder_id = ?`, folderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes in folder %d: %w", folderID, err)
	}
	return count, nil
}

func (r *NoteRepository) notify(tables ...store.Table) {
	if r.notifier != nil {
		r.notifier.Notify(tables...)
	}
}
