// Package redis stores the snapshot under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/model"
)

const keyNamespace = "sk:snapshot"

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// Options configures the connection.
type Options struct {
	URL          string
	Address      string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store keeps the encoded snapshot in one key with no TTL.
type Store struct {
	cmd cmdable
	raw *redis.Client
	key string
}

var _ docstore.Store = (*Store)(nil)

// New connects, verifies connectivity and returns a store for key.
func New(ctx context.Context, opts Options, key string) (*Store, error) {
	ro, err := optionsFrom(opts)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(ro)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := newStore(raw, key)
	s.raw = raw
	return s, nil
}

func newStore(cmd cmdable, key string) *Store {
	if key == "" {
		key = docstore.DefaultKey
	}
	return &Store{cmd: cmd, key: keyNamespace + ":" + key}
}

func optionsFrom(o Options) (*redis.Options, error) {
	if o.URL == "" && o.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var ro *redis.Options
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		ro = parsed
	} else {
		ro = &redis.Options{Addr: o.Address, Password: o.Password, DB: o.DB}
	}
	if ro.DialTimeout == 0 {
		ro.DialTimeout = o.DialTimeout
	}
	if ro.ReadTimeout == 0 {
		ro.ReadTimeout = o.ReadTimeout
	}
	if ro.WriteTimeout == 0 {
		ro.WriteTimeout = o.WriteTimeout
	}
	return ro, nil
}

// Load reads the key; redis.Nil means no document yet.
func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	b, err := s.cmd.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return docstore.Decode(b)
}

// Save overwrites the key.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	b, err := docstore.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.cmd.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Close releases the connection when the store owns one.
func (s *Store) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
