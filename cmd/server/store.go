package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/storekeeper/internal/config"
	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/docstore/mongo"
	"github.com/and161185/storekeeper/internal/docstore/postgres"
	"github.com/and161185/storekeeper/internal/docstore/redis"
	"github.com/and161185/storekeeper/internal/migrate"
)

// openStore builds the document store selected by cfg.Driver. The returned func releases it.
func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (docstore.Store, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("memory store selected, data is lost on restart")
		return docstore.NewMemory(), noop, nil

	case config.DriverFile:
		return docstore.NewFile(cfg.Path), noop, nil

	case config.DriverPostgres:
		v, err := migrate.Up(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate up: %w", err)
		}
		log.Info("schema ready", zap.Int64("version", v))
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db, cfg.Key), db.Close, nil

	case config.DriverRedis:
		st, err := redis.New(ctx, redis.Options{
			URL:      cfg.RedisURL,
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil

	case config.DriverMongo:
		st, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = st.Close(ctx)
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
