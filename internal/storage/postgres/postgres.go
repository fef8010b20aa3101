// postgres предоставляет реализацию storage.KV на базе PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/pribylovaa/go-news-formatter/migrations"
)

// KV — хранилище ключ-значение в таблице kv.
type KV struct {
	db *pgxpool.Pool
}

// New создает пул соединений, проверяет его и накатывает начальную схему
// (CREATE TABLE IF NOT EXISTS — повторный запуск безопасен).
func New(ctx context.Context, dbURL string) (*KV, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schema, err := migrations.Postgres.ReadFile(migrations.PostgresInit)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: read schema: %w", op, err)
	}

	if _, err := db.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: apply schema: %w", op, err)
	}

	return &KV{db: db}, nil
}

// Load возвращает значение по ключу.
// Если записи нет — storage.ErrNotFound.
func (s *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.postgres.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

// Save перезаписывает значение по ключу; updated_at обновляется всегда.
func (s *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.postgres.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO kv (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *KV) Close() error {
	s.db.Close()
	return nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
