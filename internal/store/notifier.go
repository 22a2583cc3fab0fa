package store

import "sync"

// Table identifies an invalidation domain for reactive queries
type Table string

const (
	TableNotes    Table = "notes"
	TableFolders  Table = "folders"
	TableMindMap  Table = "mind_map_nodes"
	TableSettings Table = "settings"
)

// Notifier is the invalidation bus behind reactive queries. Repositories
// call Notify after every committed mutation; each subscriber re-runs its
// query and re-emits. Events carry no payload: a subscriber always
// re-reads the current table state, so delivery can be coalesced.
type Notifier struct {
	mu   sync.Mutex
	subs map[Table]map[int]chan struct{}
	next int
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[Table]map[int]chan struct{}),
	}
}

// Subscribe registers interest in mutations of the given tables. The
// returned channel has capacity 1 and coalesces bursts: a pending event
// that has not been consumed yet absorbs any further ones. The returned
// func removes the subscription; it is safe to call more than once.
func (n *Notifier) Subscribe(tables ...Table) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	n.next++
	id := n.next
	for _, table := range tables {
		if n.subs[table] == nil {
			n.subs[table] = make(map[int]chan struct{})
		}
		n.subs[table][id] = ch
	}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			for _, table := range tables {
				delete(n.subs[table], id)
			}
			n.mu.Unlock()
		})
	}
	return ch, cancel
}

// Notify wakes every subscriber of the given tables. Never blocks.
func (n *Notifier) Notify(tables ...Table) {
	n.mu.Lock()
	defer n.mu.Unlock()

	seen := make(map[int]struct{})
	for _, table := range tables {
		for id, ch := range n.subs[table] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
