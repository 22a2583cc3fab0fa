package service

import (
	"context"
	"strings"
	"time"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
)

// ObserveNotes streams the full note table ordered by updated_at
// descending. The current snapshot is delivered first, then a fresh one
// after every committed write to the notes table. The stream closes when
// ctx is cancelled.
func (s *BugService) ObserveNotes(ctx context.Context) <-chan []*models.Note {
	return s.observeNotes(ctx, "notes", func(ctx context.Context) ([]*models.Note, error) {
		return s.notes.List(ctx)
	})
}

// SearchNotes streams full-text search results for query. A blank query
// behaves exactly like ObserveNotes, not like an empty result.
func (s *BugService) SearchNotes(ctx context.Context, query string) <-chan []*models.Note {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ObserveNotes(ctx)
	}
	return s.observeNotes(ctx, "search", func(ctx context.Context) ([]*models.Note, error) {
		return s.notes.Search(ctx, query)
	})
}

// ObserveFolders streams the folder list
func (s *BugService) ObserveFolders(ctx context.Context) <-chan []*models.Folder {
	return observe(ctx, s, "folders", []store.Table{store.TableFolders},
		func(ctx context.Context) ([]*models.Folder, error) {
			return s.folders.List(ctx)
		},
		[]*models.Folder{},
	)
}

// ObserveNoteCount streams the note count
func (s *BugService) ObserveNoteCount(ctx context.Context) <-chan int64 {
	return observe(ctx, s, "note_count", []store.Table{store.TableNotes},
		func(ctx context.Context) (int64, error) {
			return s.notes.Count(ctx)
		},
		0,
	)
}

// ObserveFolderCount streams the folder count
func (s *BugService) ObserveFolderCount(ctx context.Context) <-chan int64 {
	return observe(ctx, s, "folder_count", []store.Table{store.TableFolders},
		func(ctx context.Context) (int64, error) {
			return s.folders.Count(ctx)
		},
		0,
	)
}

func (s *BugService) observeNotes(ctx context.Context, stream string, query func(context.Context) ([]*models.Note, error)) <-chan []*models.Note {
	return observe(ctx, s, stream, []store.Table{store.TableNotes}, query, []*models.Note{})
}

// observe is the shared reactive-query loop. One goroutine owns the
// subscription: it runs the query, delivers the snapshot, and waits for
// the next invalidation, so a subscriber can never see an older snapshot
// after a newer one. Delivery is conflated through a capacity-1 channel:
// a slow consumer skips intermediate snapshots and always receives the
// latest. A failed read is logged and delivered as the fallback value so
// the UI layer stays responsive.
func observe[T any](
	ctx context.Context,
	s *BugService,
	stream string,
	tables []store.Table,
	query func(context.Context) (T, error),
	fallback T,
) <-chan T {
	out := make(chan T, 1)
	events, cancel := s.notifier.Subscribe(tables...)

	s.metrics.StreamSubscribers.WithLabelValues(stream).Inc()

	go func() {
		defer close(out)
		defer cancel()
		defer s.metrics.StreamSubscribers.WithLabelValues(stream).Dec()

		emit := func() {
			start := time.Now()
			snapshot, err := query(ctx)
			s.metrics.ObserveQuery(stream, start, err)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.WithField("stream", stream).WithError(err).
					Error("reactive query failed, emitting fallback")
				snapshot = fallback
			}

			// Conflate: drop the undelivered previous snapshot, if any.
			// This goroutine is the only sender, so after the drain the
			// buffered send cannot block.
			select {
			case <-out:
			default:
			}
			select {
			case out <- snapshot:
				s.metrics.StreamEmissions.WithLabelValues(stream).Inc()
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-events:
				emit()
			}
		}
	}()

	return out
}
