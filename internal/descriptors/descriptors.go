// Package descriptors is the Descriptor Registry (spec component B): it
// tracks descriptor pairs tagged with a kind and can bulk-close them by kind
// mask. In the current tree only the Pipeline Builder tracks entries (the
// inter-stage pipes); listen and client sockets are owned by the server and
// roster directly. Nothing outside tests calls CloseAll: external stages are
// started through os/exec, whose children inherit only their wired
// stdin/stdout/stderr.
package descriptors

import (
	"os"
	"sync"
)

// Kind tags what an entry represents. Kinds are bit flags so close_all can
// take a mask selecting several kinds at once.
type Kind uint8

const (
	Pipe Kind = 1 << iota
	ListenSocket
	ClientSocket
	ReadFIFO
	WriteFIFO
)

// AllPipes selects every pipe-shaped entry, leaving listen and client
// sockets alone when passed to CloseAll.
const AllPipes = Pipe | ReadFIFO | WriteFIFO

// id is a stable handle distinguishing entries that otherwise share fd
// numbers across the lifetime of the registry (an fd can be reused after
// close).
type id uint64

// Entry is one tracked descriptor pair. A listening or client socket usually
// has ReadFD == WriteFD (the same fd for both directions); a pipe has two
// distinct fds.
type Entry struct {
	id      id
	ReadFD  *os.File
	WriteFD *os.File
	Kind    Kind
}

// Registry is the set of descriptor entries currently owned by the process.
type Registry struct {
	mu      sync.Mutex
	next    id
	entries map[id]*Entry
}

// New creates an empty descriptor registry.
func New() *Registry {
	return &Registry{entries: make(map[id]*Entry)}
}

// Track records a new descriptor pair and returns its Entry. Either fd may
// be nil (a listen socket has no meaningful "write" half distinct from its
// read half, for example); callers pass the same *os.File in both slots in
// that case.
func (r *Registry) Track(readFD, writeFD *os.File, kind Kind) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	e := &Entry{id: r.next, ReadFD: readFD, WriteFD: writeFD, Kind: kind}
	r.entries[e.id] = e
	return e
}

// CloseOne closes both fds of entry and removes it from the registry.
func (r *Registry) CloseOne(e *Entry) error {
	r.mu.Lock()
	delete(r.entries, e.id)
	r.mu.Unlock()
	return closeEntry(e)
}

// CloseAll closes and unlinks every entry whose kind intersects mask.
// Fds 0/1/2 are never tracked as entries (only pipeline allocation tracks
// anything), so this can never touch them regardless of mask.
func (r *Registry) CloseAll(mask Kind) error {
	r.mu.Lock()
	var victims []*Entry
	for id, e := range r.entries {
		if e.Kind&mask != 0 {
			victims = append(victims, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	var firstErr error
	for _, e := range victims {
		if err := closeEntry(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Get returns any tracked entry whose kind intersects kind, or false if
// there is none.
func (r *Registry) Get(kind Kind) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Kind&kind != 0 {
			return e, true
		}
	}
	return nil, false
}

// Len reports how many entries are currently tracked, mainly for tests and
// for the leak-detection property spec.md §8 asks for.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func closeEntry(e *Entry) error {
	var firstErr error
	if e.ReadFD != nil {
		if err := e.ReadFD.Close(); err != nil {
			firstErr = err
		}
	}
	if e.WriteFD != nil && e.WriteFD != e.ReadFD {
		if err := e.WriteFD.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
