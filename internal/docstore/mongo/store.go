// Package mongo stores the snapshot as one document in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/model"
)

const collName = "snapshots"

// record is the stored shape; the snapshot travels as its JSON encoding so decimals keep their text form.
type record struct {
	ID        string    `bson:"_id"`
	Doc       string    `bson:"doc"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements docstore.Store over MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

var _ docstore.Store = (*Store)(nil)

// New connects to uri, pings, and returns a store in database dbName.
func New(ctx context.Context, uri, dbName, key string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	if key == "" {
		key = docstore.DefaultKey
	}
	return &Store{
		client: client,
		coll:   client.Database(dbName).Collection(collName),
		key:    key,
	}, nil
}

// Load finds the document by key.
func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return docstore.Decode([]byte(rec.Doc))
}

// Save replaces (or inserts) the document.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	rec, err := toRecord(s.key, snap, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toRecord(key string, snap *model.Snapshot, now time.Time) (record, error) {
	b, err := docstore.Encode(snap)
	if err != nil {
		return record{}, err
	}
	return record{ID: key, Doc: string(b), UpdatedAt: now}, nil
}
