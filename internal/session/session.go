// Package session keeps the last successful estimate for one caller so the
// visualization view can render it later.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haskel/studycost/internal/feature"
)

// ErrNotFound is returned when a session has no stored estimate.
var ErrNotFound = errors.New("session has no estimate")

// Snapshot is the stored (record, result) pair of the last successful estimate.
type Snapshot struct {
	Record      feature.Record       `json:"record"`
	Estimate    float64              `json:"estimate"`
	Formatted   string               `json:"formatted"`
	Importances []feature.Importance `json:"importances,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Store persists snapshots by session ID.
type Store interface {
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, id string, snap *Snapshot) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Session is a caller-owned handle to one stored snapshot.
type Session struct {
	ID    string
	store Store
}

// New creates a session with a fresh random ID.
func New(store Store) *Session {
	return &Session{ID: uuid.NewString(), store: store}
}

// Open returns a handle to an existing session ID.
func Open(store Store, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	return &Session{ID: id, store: store}, nil
}

// Last returns the stored snapshot or ErrNotFound.
func (s *Session) Last(ctx context.Context) (*Snapshot, error) {
	return s.store.Load(ctx, s.ID)
}

// Remember overwrites the stored snapshot.
func (s *Session) Remember(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	return s.store.Save(ctx, s.ID, snap)
}

// Forget removes the stored snapshot.
func (s *Session) Forget(ctx context.Context) error {
	return s.store.Delete(ctx, s.ID)
}
