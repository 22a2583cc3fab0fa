package service

import (
	"context"
	"fmt"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
)

// SeedFolder describes a folder to create on first run
type SeedFolder struct {
	Name string
}

// SeedNote describes a note to create on first run. Folder, when set,
// names a SeedFolder and is resolved to its id.
type SeedNote struct {
	Title      string
	Content    string
	Folder     string
	Starred    bool
	ImagePaths []string
}

// SeedIfEmpty bootstraps the store with the given folders and notes, but
// only when the note table is empty, so it is safe to call on every start.
// Folders are created first; notes resolve folder names to ids; the star
// flag is applied after insertion.
func (s *BugService) SeedIfEmpty(ctx context.Context, folders []SeedFolder, notes []SeedNote) error {
	count, err := s.notes.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check note count before seeding: %w", err)
	}
	if count > 0 {
		return nil
	}

	folderIDs := make(map[string]int64, len(folders))
	for _, seed := range folders {
		id, err := s.AddFolder(ctx, seed.Name)
		if err != nil {
			return fmt.Errorf("failed to seed folder %q: %w", seed.Name, err)
		}
		if id != 0 {
			folderIDs[seed.Name] = id
		}
	}

	for _, seed := range notes {
		note := &models.Note{
			Title:      seed.Title,
			Content:    seed.Content,
			ImagePaths: seed.ImagePaths,
		}
		if seed.Folder != "" {
			folderID, ok := folderIDs[seed.Folder]
			if !ok {
				// Note names a folder outside the seed set; create it
				folderID, err = s.AddFolder(ctx, seed.Folder)
				if err != nil {
					return fmt.Errorf("failed to seed folder %q: %w", seed.Folder, err)
				}
				folderIDs[seed.Folder] = folderID
			}
			note.SetFolder(folderID)
		}

		id, err := s.Upsert(ctx, note)
		if err != nil {
			return fmt.Errorf("failed to seed note %q: %w", seed.Title, err)
		}
		if seed.Starred {
			if err := s.SetStarred(ctx, id, true); err != nil {
				return fmt.Errorf("failed to star seeded note %q: %w", seed.Title, err)
			}
		}
	}

	s.log.WithField("folders", len(folders)).WithField("notes", len(notes)).
		Info("seeded empty store")
	return nil
}
