package models

import (
	"database/sql"
)

// Note represents a row in the notes table.
// Timestamps are unix milliseconds. ID 0 means the note has never been
// persisted; the repository assigns an id on first upsert.
type Note struct {
	ID         int64          `db:"id" json:"id"`
	Title      string         `db:"title" json:"title"`
	Content    string         `db:"content" json:"content"`
	FolderID   sql.NullInt64  `db:"folder_id" json:"folder_id"`
	CreatedAt  int64          `db:"created_at" json:"created_at"`
	UpdatedAt  int64          `db:"updated_at" json:"updated_at"`
	IsStarred  bool           `db:"is_starred" json:"is_starred"`
	ImagePaths StringList     `db:"image_paths" json:"image_paths"`
	GistID     sql.NullString `db:"gist_id" json:"gist_id"`
	GistURL    sql.NullString `db:"gist_url" json:"gist_url"`
}

// Folder represents a row in the folders table
type Folder struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// MindMapNode represents a row in the mind_map_nodes table.
// ParentID forms the tree edge; NoteID is an optional cross-link to a note.
type MindMapNode struct {
	ID        int64         `db:"id" json:"id"`
	Title     string        `db:"title" json:"title"`
	ParentID  sql.NullInt64 `db:"parent_id" json:"parent_id"`
	NoteID    sql.NullInt64 `db:"note_id" json:"note_id"`
	CreatedAt int64         `db:"created_at" json:"created_at"`
	UpdatedAt int64         `db:"updated_at" json:"updated_at"`
}

// FolderRef returns the folder id or 0 when the note is unclassified
func (n *Note) FolderRef() int64 {
	if n.FolderID.Valid {
		return n.FolderID.Int64
	}
	return 0
}

// SetFolder assigns the note to a folder; id 0 clears the assignment
func (n *Note) SetFolder(id int64) {
	if id == 0 {
		n.FolderID = sql.NullInt64{}
		return
	}
	n.FolderID = sql.NullInt64{Int64: id, Valid: true}
}
