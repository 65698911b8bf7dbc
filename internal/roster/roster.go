// Package roster is the User Roster (spec component G): the in-memory
// collection of live sessions. spec.md models it as a circular doubly
// linked list with a cursor so that closing an entry mid-iteration can
// resume safely; Design Notes §9 explicitly licenses replacing that with an
// owned collection offering the same "deletion during iteration" guarantee,
// so this package uses a map keyed by a stable id (github.com/google/uuid)
// plus an insertion-ordered slice of ids for the cursor-style traversal
// `who` and `yell` need.
package roster

import (
	"net"
	"sync"

	"github.com/google/uuid"
)

// ID stably identifies one roster entry for its whole lifetime, replacing
// the source's raw list-node pointer.
type ID = uuid.UUID

// Entry is one live or pending session tracked by the roster.
type Entry struct {
	ID   ID
	Conn net.Conn
	Name string // empty until authenticated
}

// Roster is the live collection of sessions. The zero value is not usable;
// call New.
type Roster struct {
	mu      sync.Mutex
	entries map[ID]*Entry
	order   []ID // insertion order, doubles as the circular traversal order
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{entries: make(map[ID]*Entry)}
}

// Add inserts a new entry for conn and returns it. Mirrors spec.md §4.G's
// add(fd_pair), minus the explicit cursor: iteration order is insertion
// order, which is what a circular list with a stable cursor produces when
// nothing has been removed since the last full pass.
func (r *Roster) Add(conn net.Conn) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &Entry{ID: uuid.New(), Conn: conn}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	return e
}

// Close removes id from the roster and closes its connection. Safe to call
// while another goroutine holds a snapshot from Snapshot — the roster's own
// iteration order is simply updated, with no pointer left dangling for a
// concurrent reader the way an unlinked list node would.
func (r *Roster) Close(id ID) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, id)
	r.order = removeID(r.order, id)
	r.mu.Unlock()
	return e.Conn.Close()
}

// Rename changes the authenticated name on an existing entry, used by the
// `name` built-in, which spec.md §4.H requires to run without forking so
// the mutation is visible to every other handler immediately.
func (r *Roster) Rename(id ID, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.Name = newName
	}
}

// Lookup finds the entry with the given authenticated name via linear scan,
// matching spec.md §4.G's "lookup by name is a linear traversal."
func (r *Roster) Lookup(name string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if e := r.entries[id]; e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Snapshot returns every entry currently in the roster, in insertion order,
// for handlers like `who` and `yell` that need to address every live
// session without holding the roster lock while they do socket I/O.
func (r *Roster) Snapshot() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Len reports how many sessions are currently tracked.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func removeID(order []ID, id ID) []ID {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
