package session

import (
	"context"
	"sync"
	"time"

	"github.com/haskel/studycost/internal/feature"
)

type memoryEntry struct {
	snap      *Snapshot
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process memory. Entries expire after ttl;
// a zero ttl keeps them forever.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e) {
		m.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if cur, ok := m.entries[id]; ok && m.expired(cur) {
			delete(m.entries, id)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	return clone(e.snap), nil
}

// Save stores a copy of the snapshot.
func (m *MemoryStore) Save(_ context.Context, id string, snap *Snapshot) error {
	e := memoryEntry{snap: clone(snap)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()
	return nil
}

// Delete removes a snapshot. Missing IDs are not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if !m.expired(e) {
			n++
		}
	}
	return n
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

func clone(s *Snapshot) *Snapshot {
	c := *s
	c.Record.Entries = append([]feature.Entry(nil), s.Record.Entries...)
	if s.Importances != nil {
		c.Importances = append([]feature.Importance(nil), s.Importances...)
	}
	return &c
}
