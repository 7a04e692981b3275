package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/model"
)

// Store keeps one snapshot per key in the snapshots table.
type Store struct {
	db  *DB
	key string
}

var _ docstore.Store = (*Store)(nil)

// NewStore constructs a snapshot store for key (docstore.DefaultKey when empty).
func NewStore(db *DB, key string) *Store {
	if key == "" {
		key = docstore.DefaultKey
	}
	return &Store{db: db, key: key}
}

// Load selects the document; no row means no document yet.
func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	const q = `SELECT doc FROM snapshots WHERE id=$1`
	var doc []byte
	if err := s.db.Pool.QueryRow(ctx, q, s.key).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return docstore.Decode(doc)
}

// Save upserts the document.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	doc, err := docstore.Encode(snap)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO snapshots (id, doc, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET doc=EXCLUDED.doc, updated_at=now()`
	if _, err := s.db.Pool.Exec(ctx, q, s.key, doc); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
