package session

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives the session state after every transition.
type Listener func(State)

// ListenerID identifies a registration. Funcs are not comparable in Go, so
// removal goes through the ID returned by AddListener.
type ListenerID string

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// registry keeps listeners in registration order.
type registry struct {
	mu      sync.Mutex
	entries []listenerEntry
}

func (r *registry) add(fn Listener) ListenerID {
	id := ListenerID(uuid.NewString())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, listenerEntry{id: id, fn: fn})
	return id
}

func (r *registry) remove(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			// Copy so snapshots taken before the removal stay intact.
			next := make([]listenerEntry, 0, len(r.entries)-1)
			next = append(next, r.entries[:i]...)
			r.entries = append(next, r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry) snapshot() []listenerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
