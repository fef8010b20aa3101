// sqlite предоставляет реализацию storage.KV поверх локального файла SQLite
// (modernc.org/sqlite, без cgo). Схема применяется golang-migrate из встроенных миграций.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/pribylovaa/go-news-formatter/migrations"
)

// KV — хранилище ключ-значение в таблице kv.
type KV struct {
	db *sql.DB
}

// New открывает (создаёт) файл базы, применяет миграции и проверяет соединение.
func New(ctx context.Context, path string) (*KV, error) {
	const op = "storage/sqlite/New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: mkdir: %w", op, err)
		}
	}

	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(1) // sqlite

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &KV{db: db}, nil
}

// runMigrations применяет все up-миграции; отсутствие изменений — не ошибка.
func runMigrations(path string) error {
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Load возвращает значение по ключу или storage.ErrNotFound.
func (s *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.sqlite.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

// Save перезаписывает значение по ключу (upsert).
func (s *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.sqlite.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (key) DO UPDATE
	SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает соединение с базой.
func (s *KV) Close() error {
	return s.db.Close()
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
