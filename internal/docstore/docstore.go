// Package docstore defines the whole-document persistence boundary and its simple backends.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/storekeeper/internal/model"
)

// Store loads and saves the full snapshot. Load returns (nil, nil) when no document exists yet.
type Store interface {
	// Load reads the current snapshot.
	Load(ctx context.Context) (*model.Snapshot, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, s *model.Snapshot) error
}

// DefaultKey names the document in keyed backends (redis, postgres, mongo).
const DefaultKey = "store"

// Encode serializes a snapshot.
func Encode(s *model.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encode snapshot: nil")
	}
	return json.Marshal(s)
}

// Decode parses a snapshot and fills missing collections.
func Decode(b []byte) (*model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version > model.SnapshotVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", s.Version)
	}
	s.Normalize()
	return &s, nil
}
