package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
)

// MindMapRepository provides access to the mind_map_nodes table
type MindMapRepository struct {
	db       *sql.DB
	notifier *store.Notifier
}

func NewMindMapRepository(db *sql.DB, notifier *store.Notifier) *MindMapRepository {
	return &MindMapRepository{db: db, notifier: notifier}
}

const nodeColumns = `id, title, parent_id, note_id, created_at, updated_at`

func scanNode(row rowScanner) (*models.MindMapNode, error) {
	node := &models.MindMapNode{}
	err := row.Scan(&node.ID, &node.Title, &node.ParentID, &node.NoteID,
		&node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// GetByID retrieves a node by id. Returns (nil, nil) when absent.
func (r *MindMapRepository) GetByID(ctx context.Context, id int64) (*models.MindMapNode, error) {
	node, err := scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM mind_map_nodes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

// List returns every node ordered by creation
func (r *MindMapRepository) List(ctx context.Context) ([]*models.MindMapNode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM mind_map_nodes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []*models.MindMapNode{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// Insert persists a new node and returns the assigned id
func (r *MindMapRepository) Insert(ctx context.Context, node *models.MindMapNode) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO mind_map_nodes (title, parent_id, note_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		node.Title, node.ParentID, node.NoteID, node.CreatedAt, node.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	node.ID = id
	r.notify(store.TableMindMap)
	return id, nil
}

// Update overwrites the full row by id; silent no-op on a missing id
func (r *MindMapRepository) Update(ctx context.Context, node *models.MindMapNode) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE mind_map_nodes
		SET title = ?, parent_id = ?, note_id = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		node.Title, node.ParentID, node.NoteID, node.CreatedAt, node.UpdatedAt, node.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		r.notify(store.TableMindMap)
	}
	return nil
}

// Delete removes a node and reparents its children to the deleted node's
// parent so the tree stays connected
func (r *MindMapRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE mind_map_nodes
		SET parent_id = (SELECT parent_id FROM mind_map_nodes WHERE id = ?)
		WHERE parent_id = ?`,
		id, id,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM mind_map_nodes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		r.notify(store.TableMindMap)
	}
	return nil
}

// UnlinkNote nulls note_id on every node referencing the given note. Also
// performed inside NoteRepository.Delete's transaction; exposed here for
// callers that clear the cross-link without deleting the note.
func (r *MindMapRepository) UnlinkNote(ctx context.Context, noteID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE mind_map_nodes SET note_id = NULL WHERE note_id = ?`, noteID)
	if err != nil {
		return err
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		r.notify(store.TableMindMap)
	}
	return err
}

func (r *MindMapRepository) notify(tables ...store.Table) {
	if r.notifier != nil {
		r.notifier.Notify(tables...)
	}
}
