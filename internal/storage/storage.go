// storage определяет контракт внешнего key-value хранилища для news-formatter.
// Хранилище статей сериализует весь список целиком в одно значение под одним ключом,
// поэтому от бэкенда нужны только Load/Save.
package storage

import (
	"context"
	"errors"
)

// Драйверы, поддерживаемые конфигурацией.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverMinio    = "minio"
)

var (
	// ErrNotFound — значение по ключу отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrEmptyKey — пустой ключ.
	ErrEmptyKey = errors.New("empty key")
)

// KV описывает внешнее key-value хранилище.
type KV interface {
	// Load возвращает значение по ключу.
	// Если ключа нет — ErrNotFound.
	Load(ctx context.Context, key string) (string, error)
	// Save перезаписывает значение по ключу целиком.
	Save(ctx context.Context, key, value string) error
	// Close освобождает соединения бэкенда.
	Close() error
}
