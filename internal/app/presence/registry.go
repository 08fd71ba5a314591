/*
Package presence tracks which users are currently reachable over a live connection.

The Registry is the single owner of the user-to-connection mapping. It holds at most
one entry per user: a registration for an already-online user silently supersedes the
previous connection (last-write-wins), and an unregister only takes effect when it
names the connection currently on record, so a stale disconnect can never evict a
newer session that raced past it.

The registry is process-local and non-persistent. After a restart every user appears
offline until their client reconnects.
*/
package presence

import (
	"sort"
	"sync"
	"time"
)

// Entry records the live connection for a single user.
type Entry struct {
	UserID      string
	ConnID      string
	ConnectedAt time.Time
}

// Registry maps a user identity to at most one live connection.
// It is safe for concurrent use: the session gateway mutates it while
// HTTP handler goroutines perform relay lookups.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Entry),
	}
}

// Register records or overwrites the live connection for userID and returns a
// snapshot of the online user IDs taken under the same lock, so the caller can
// broadcast a consistent online set.
func (r *Registry) Register(userID, connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[userID] = Entry{
		UserID:      userID,
		ConnID:      connID,
		ConnectedAt: time.Now(),
	}

	return r.onlineLocked()
}

// Unregister removes the mapping whose connection ID matches connID.
// It reports whether an entry was actually removed; an unregister for a
// connection that was already superseded is a no-op. The returned snapshot
// reflects the online set after the removal.
func (r *Registry) Unregister(connID string) (bool, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, entry := range r.byUser {
		if entry.ConnID == connID {
			delete(r.byUser, userID)
			return true, r.onlineLocked()
		}
	}

	return false, r.onlineLocked()
}

// Lookup returns the connection ID currently registered for userID.
// It is a pure read with no side effects.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byUser[userID]
	if !ok {
		return "", false
	}
	return entry.ConnID, true
}

// OnlineUserIDs returns the identities of all currently registered users.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.onlineLocked()
}

// onlineLocked builds a sorted snapshot of online user IDs. Callers must hold r.mu.
func (r *Registry) onlineLocked() []string {
	ids := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}
