package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/repository"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
)

// DefaultDebounce coalesces rapid keystrokes into one query
const DefaultDebounce = 150 * time.Millisecond

// Coordinator composes the two user-driven inputs, free-text query and
// folder filter, into a single reactive stream of note snapshots.
// Semantics are switch-to-latest: whenever the settled (query, folder)
// pair changes, the previous subscription is cancelled and a new one is
// opened, so results of a superseded query are never delivered after a
// newer one.
type Coordinator struct {
	svc      *BugService
	settings *repository.SettingsRepository
	log      *logger.Logger
	debounce time.Duration

	out chan []*models.Note

	root       context.Context
	rootCancel context.CancelFunc

	mu     sync.Mutex
	query  string
	folder *int64
	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

// NewCoordinator creates a coordinator publishing to Notes(). The settings
// repository persists the last query and filter and may be nil.
func NewCoordinator(svc *BugService, settings *repository.SettingsRepository, log *logger.Logger, debounce time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	root, rootCancel := context.WithCancel(context.Background())
	c := &Coordinator{
		svc:        svc,
		settings:   settings,
		log:        log,
		debounce:   debounce,
		out:        make(chan []*models.Note, 1),
		root:       root,
		rootCancel: rootCancel,
	}
	c.restart()
	return c
}

// Notes is the output stream: the latest snapshot for the latest settled
// input pair. Closed by Close.
func (c *Coordinator) Notes() <-chan []*models.Note {
	return c.out
}

// SetQuery updates the free-text input. The change takes effect after the
// debounce window; further changes inside the window reset it.
func (c *Coordinator) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.query == query {
		return
	}
	c.query = query
	c.persist(repository.SettingLastQuery, query)
	c.scheduleLocked()
}

// SetFolderFilter updates the folder filter; nil clears it
func (c *Coordinator) SetFolderFilter(folderID *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || equalFolder(c.folder, folderID) {
		return
	}
	if folderID == nil {
		c.folder = nil
		c.persist(repository.SettingSelectedFolder, "")
	} else {
		id := *folderID
		c.folder = &id
		c.persist(repository.SettingSelectedFolder, formatInt(id))
	}
	c.scheduleLocked()
}

// Close cancels the active subscription and closes Notes
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	// deliver sends while holding the same mutex, so closing here is safe
	close(c.out)
	c.mu.Unlock()

	c.rootCancel()
}

func (c *Coordinator) scheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.restart)
}

// restart tears down the previous subscription and opens one for the
// current input pair
func (c *Coordinator) restart() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	query := c.query
	folder := c.folder

	ctx, cancel := context.WithCancel(c.root)
	c.cancel = cancel
	c.mu.Unlock()

	stream := c.svc.SearchNotes(ctx, query)
	go c.pump(ctx, gen, stream, folder)
}

func (c *Coordinator) pump(ctx context.Context, gen uint64, stream <-chan []*models.Note, folder *int64) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-stream:
			if !ok {
				return
			}
			if folder != nil {
				filtered := make([]*models.Note, 0, len(snapshot))
				for _, note := range snapshot {
					if note.FolderID.Valid && note.FolderID.Int64 == *folder {
						filtered = append(filtered, note)
					}
				}
				snapshot = filtered
			}
			c.deliver(gen, snapshot)
		}
	}
}

// deliver publishes a snapshot unless a newer generation has superseded
// this subscription in the meantime
func (c *Coordinator) deliver(gen uint64, snapshot []*models.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}

	select {
	case <-c.out:
	default:
	}
	select {
	case c.out <- snapshot:
	default:
	}
}

// persist is best-effort: losing a remembered query must not fail the
// pipeline
func (c *Coordinator) persist(key, value string) {
	if c.settings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.settings.Put(ctx, key, value); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to persist coordinator input")
	}
}

func formatInt(id int64) string {
	return strconv.FormatInt(id, 10)
}

func equalFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
