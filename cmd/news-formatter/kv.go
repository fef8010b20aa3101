package main

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-news-formatter/internal/config"
	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/pribylovaa/go-news-formatter/internal/storage/memory"
	"github.com/pribylovaa/go-news-formatter/internal/storage/minio"
	"github.com/pribylovaa/go-news-formatter/internal/storage/mongo"
	"github.com/pribylovaa/go-news-formatter/internal/storage/postgres"
	"github.com/pribylovaa/go-news-formatter/internal/storage/redis"
	"github.com/pribylovaa/go-news-formatter/internal/storage/sqlite"
)

// openKV открывает бэкенд хранилища, выбранный в конфиге.
func openKV(ctx context.Context, cfg config.StorageConfig) (storage.KV, error) {
	const op = "main.openKV"

	var (
		kv  storage.KV
		err error
	)

	switch cfg.Driver {
	case storage.DriverMemory:
		kv = memory.New()
	case storage.DriverSQLite:
		kv, err = sqlite.New(ctx, cfg.SQLite.Path)
	case storage.DriverPostgres:
		kv, err = postgres.New(ctx, cfg.Postgres.URL)
	case storage.DriverRedis:
		kv, err = redis.New(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
	case storage.DriverMongo:
		kv, err = mongo.New(ctx, cfg.Mongo.URL, cfg.Mongo.Collection)
	case storage.DriverMinio:
		kv, err = minio.New(ctx, minio.Options{
			Endpoint:     cfg.S3.Endpoint,
			RootUser:     cfg.S3.RootUser,
			RootPassword: cfg.S3.RootPassword,
			Bucket:       cfg.S3.Bucket,
		})
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, cfg.Driver, err)
	}

	return kv, nil
}
