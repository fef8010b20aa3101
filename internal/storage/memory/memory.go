// memory — KV в памяти процесса: для тестов и «одноразовых» сессий.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

// KV — потокобезопасная map[string]string.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
}

// New создаёт пустое хранилище.
func New() *KV {
	return &KV{data: make(map[string]string)}
}

func (m *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.memory.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return v, nil
}

func (m *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.memory.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()

	return nil
}

func (m *KV) Close() error { return nil }

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
