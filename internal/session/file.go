package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	fileVersion  = 1
	dataFileName = "sessions.json"
)

// fileData is the persisted envelope.
type fileData struct {
	Version   int                  `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	Sessions  map[string]*Snapshot `json:"sessions"`
}

// FileStore keeps snapshots in memory and flushes them to a JSON file on an
// interval, so sessions survive restarts of a single instance.
type FileStore struct {
	dataDir       string
	flushInterval time.Duration
	ttl           time.Duration
	logger        *slog.Logger

	mu     sync.RWMutex
	data   *fileData
	dirty  bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFileStore creates a file-backed store. Call Open before use.
func NewFileStore(dataDir string, flushInterval, ttl time.Duration, logger *slog.Logger) *FileStore {
	if flushInterval <= 0 {
		flushInterval = 30 * time.Second
	}
	return &FileStore{
		dataDir:       dataDir,
		flushInterval: flushInterval,
		ttl:           ttl,
		logger:        logger,
		data:          newFileData(),
		done:          make(chan struct{}),
	}
}

func newFileData() *fileData {
	return &fileData{
		Version:   fileVersion,
		UpdatedAt: time.Now(),
		Sessions:  make(map[string]*Snapshot),
	}
}

// Open loads data from disk. A missing or unreadable file starts fresh.
func (s *FileStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.dataDir, dataFileName)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing session file, starting fresh", "path", filePath)
			s.data = newFileData()
			return nil
		}
		return err
	}
	defer file.Close()

	var data fileData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		s.logger.Warn("failed to decode session file, starting fresh", "error", err)
		s.data = newFileData()
		return nil
	}

	if data.Version > fileVersion {
		s.logger.Warn("session file version is newer than supported, starting fresh",
			"file_version", data.Version,
			"supported_version", fileVersion,
		)
		s.data = newFileData()
		return nil
	}

	if data.Sessions == nil {
		data.Sessions = make(map[string]*Snapshot)
	}

	s.data = &data
	s.logger.Info("loaded sessions from disk",
		"path", filePath,
		"sessions", len(data.Sessions),
	)

	return nil
}

// Start starts the periodic flush goroutine.
func (s *FileStore) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.flushLoop(ctx)
}

// Close stops the flush loop and saves final state.
func (s *FileStore) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}

	return s.Flush()
}

// Flush writes the sessions to disk.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	filePath := filepath.Join(s.dataDir, dataFileName)
	tempPath := filePath + ".tmp"

	s.pruneLocked()
	s.data.UpdatedAt = time.Now()

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return err
	}

	s.dirty = false
	s.logger.Debug("saved sessions to disk", "path", filePath)

	return nil
}

func (s *FileStore) flushLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			dirty := s.dirty
			s.mu.RUnlock()

			if dirty {
				if err := s.Flush(); err != nil {
					s.logger.Error("failed to save sessions", "error", err)
				}
			}
		}
	}
}

// Load returns a copy of the stored snapshot.
func (s *FileStore) Load(_ context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data.Sessions[id]
	if !ok || s.expired(snap) {
		return nil, ErrNotFound
	}
	return clone(snap), nil
}

// Save stores a snapshot and marks the store dirty.
func (s *FileStore) Save(_ context.Context, id string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Sessions[id] = clone(snap)
	s.dirty = true
	return nil
}

// Delete removes a snapshot.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Sessions[id]; ok {
		delete(s.data.Sessions, id)
		s.dirty = true
	}
	return nil
}

// IsDirty returns whether data has unsaved changes.
func (s *FileStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of stored sessions, including expired ones not yet pruned.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Sessions)
}

func (s *FileStore) expired(snap *Snapshot) bool {
	return s.ttl > 0 && time.Since(snap.UpdatedAt) > s.ttl
}

func (s *FileStore) pruneLocked() {
	for id, snap := range s.data.Sessions {
		if s.expired(snap) {
			delete(s.data.Sessions, id)
		}
	}
}
