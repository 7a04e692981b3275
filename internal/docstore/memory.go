package docstore

import (
	"context"
	"sync"

	"github.com/and161185/storekeeper/internal/model"
)

// Memory keeps the encoded document in process. Every Load decodes a fresh copy.
type Memory struct {
	mu  sync.Mutex
	doc []byte

	// SaveErr, when set, is returned by Save without storing.
	SaveErr error
	// Saves counts successful saves.
	Saves int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

// Load decodes the stored document, or returns nil when nothing was saved.
func (m *Memory) Load(_ context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, nil
	}
	return Decode(m.doc)
}

// Save encodes and keeps s.
func (m *Memory) Save(_ context.Context, s *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	b, err := Encode(s)
	if err != nil {
		return err
	}
	m.doc = b
	m.Saves++
	return nil
}
