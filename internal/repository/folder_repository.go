package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
)

// FolderRepository provides access to the folders table
type FolderRepository struct {
	db       *sql.DB
	notifier *store.Notifier
}

func NewFolderRepository(db *sql.DB, notifier *store.Notifier) *FolderRepository {
	return &FolderRepository{db: db, notifier: notifier}
}

// List returns every folder ordered by name
func (r *FolderRepository) List(ctx context.Context) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM folders ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []*models.Folder{}
	for rows.Next() {
		folder := &models.Folder{}
		if err := rows.Scan(&folder.ID, &folder.Name); err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// GetByName retrieves a folder by name, case-insensitive.
// Returns (nil, nil) when absent.
func (r *FolderRepository) GetByName(ctx context.Context, name string) (*models.Folder, error) {
	folder := &models.Folder{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM folders WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&folder.ID, &folder.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// Insert persists a new folder and returns the assigned id
func (r *FolderRepository) Insert(ctx context.Context, folder *models.Folder) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO folders (name) VALUES (?)`, folder.Name)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	folder.ID = id
	r.notify(store.TableFolders)
	return id, nil
}

// InsertAll inserts folders with insert-or-ignore-on-id-collision semantics,
// returning the assigned id per entry and -1 for skipped collisions
func (r *FolderRepository) InsertAll(ctx context.Context, folders []*models.Folder) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(folders))
	inserted := false
	for _, folder := range folders {
		var explicitID interface{}
		if folder.ID != 0 {
			explicitID = folder.ID
		}

		result, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO folders (id, name) VALUES (?, ?)`,
			explicitID, folder.Name,
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
		folder.ID = id
		ids = append(ids, id)
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if inserted {
		r.notify(store.TableFolders)
	}
	return ids, nil
}

// Delete removes a folder and nulls out folder_id on every note that
// referenced it, in one transaction. Notes survive the folder (soft cascade).
func (r *FolderRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	unlinked, err := tx.ExecContext(ctx,
		`UPDATE notes SET folder_id = NULL WHERE folder_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to unlink notes from folder %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	deleted, _ := result.RowsAffected()
	notesTouched, _ := unlinked.RowsAffected()
	if deleted > 0 || notesTouched > 0 {
		r.notify(store.TableFolders, store.TableNotes)
	}
	return nil
}

// Count returns the number of folders
func (r *FolderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count folders: %w", err)
	}
	return count, nil
}

func (r *FolderRepository) notify(tables ...store.Table) {
	if r.notifier != nil {
		r.notifier.Notify(tables...)
	}
}
