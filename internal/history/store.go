package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/boardscore/boardscore/internal/model"
)

// Store persists per-room history buffers across reloads within a
// session
type Store interface {
	Load(roomID model.RoomID) ([]model.HistoryEntry, error)
	Save(roomID model.RoomID, entries []model.HistoryEntry) error
}

// MemoryStore is a Store that lives only as long as the process.
// Tests and ephemeral sessions use it.
type MemoryStore struct {
	mu      sync.Mutex
	buffers map[model.RoomID][]model.HistoryEntry
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buffers: make(map[model.RoomID][]model.HistoryEntry)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Load(roomID model.RoomID) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryEntry(nil), s.buffers[roomID]...), nil
}

func (s *MemoryStore) Save(roomID model.RoomID, entries []model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[roomID] = append([]model.HistoryEntry(nil), entries...)
	return nil
}

// FileStore persists history buffers as a single JSON file keyed by
// room id. It mirrors browser session storage: it survives a reload of
// the same session but is not a durable database.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) Load(roomID model.RoomID) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buffers, err := s.read()
	if err != nil {
		return nil, err
	}
	return buffers[roomID], nil
}

func (s *FileStore) Save(roomID model.RoomID, entries []model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buffers, err := s.read()
	if err != nil {
		return err
	}
	buffers[roomID] = entries

	data, err := json.Marshal(buffers)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) read() (map[model.RoomID][]model.HistoryEntry, error) {
	buffers := make(map[model.RoomID][]model.HistoryEntry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return buffers, nil
		}
		return nil, fmt.Errorf("reading history store: %w", err)
	}

	if err := json.Unmarshal(data, &buffers); err != nil {
		// A corrupt session file is not worth failing over; start fresh
		return make(map[model.RoomID][]model.HistoryEntry), nil
	}
	return buffers, nil
}
