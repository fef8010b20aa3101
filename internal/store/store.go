// store — упорядоченное хранилище статей с записью «насквозь» во внешний KV.
//
// Порядок статей — порядок вставки; меняется только явными Move/Delete.
// Каждая мутация сериализует весь список и сохраняет его под одним ключом
// до возврата из метода.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-news-formatter/internal/categories"
	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

// DefaultKey — ключ, под которым хранится список статей.
const DefaultKey = "savedArticles"

var (
	// ErrValidation — статья не прошла проверку, состояние не изменено.
	ErrValidation = errors.New("validation failed")
	// ErrIndexOutOfRange — индекс вне текущих границ, состояние не изменено.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrPersistence — внешний KV не смог прочитать или записать данные.
	// При записи мутация в памяти уже применена.
	ErrPersistence = errors.New("persistence failed")
)

// ReasonMultiline — заголовок и город занимают ровно одну строку формата.
const ReasonMultiline = "must be a single line"

// ValidationError уточняет, какое поле не прошло проверку.
// errors.Is(err, ErrValidation) == true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Options — необязательные параметры хранилища.
type Options struct {
	// Key — ключ во внешнем KV (по умолчанию DefaultKey).
	Key string
	// Detector — при политике Block статьи с запрещёнными фразами отклоняются.
	Detector *forbidden.Detector
	// OnChange вызывается с копией списка после каждой мутации и после Load.
	OnChange func([]models.Article)
	// Now — источник времени (по умолчанию time.Now).
	Now func() time.Time
}

// Store — хранилище статей одной пользовательской сессии.
// Методы сериализованы мьютексом: одно действие за раз.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	reg   *categories.Registry
	opts  Options
	items []models.Article
}

// New создаёт пустое хранилище. Данные из KV читаются отдельным вызовом Load.
func New(kv storage.KV, reg *categories.Registry, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{kv: kv, reg: reg, opts: opts}
}

// Load целиком заменяет содержимое хранилища данными из KV.
//
// Поведение:
//   - ключа нет — пустое хранилище, nil;
//   - ошибка чтения или разбора — пустое хранилище и ошибка, обёрнутая в ErrPersistence.
func (s *Store) Load(ctx context.Context) error {
	const op = "store.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	defer s.notify()

	raw, err := s.kv.Load(ctx, s.opts.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	items, err := decode(raw, s.now())
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	s.items = items

	return nil
}

// Create добавляет статью в конец и возвращает её вместе с индексом
// в том виде, в каком она записана. ID и временные метки проставляются,
// если не заданы.
//
// Ошибки:
//   - ErrValidation — ничего не изменено, Index = -1;
//   - ErrPersistence — статья добавлена в память (и возвращена), но не сохранена.
func (s *Store) Create(ctx context.Context, a models.Article) (models.IndexedArticle, error) {
	const op = "store.Create"

	if err := s.validate(a); err != nil {
		return models.IndexedArticle{Index: -1}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	s.items = append(s.items, a)
	stored := models.IndexedArticle{Index: len(s.items) - 1, Article: a}

	return stored, s.commit(ctx, op)
}

// Update заменяет статью по индексу. ID и CreatedAt наследуются от заменяемой
// записи, если в a они не заданы. Возвращает записанную статью; при
// ErrPersistence она уже заменена в памяти.
func (s *Store) Update(ctx context.Context, index int, a models.Article) (models.Article, error) {
	const op = "store.Update"

	if err := s.validate(a); err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	prev := s.items[index]
	if a.ID == uuid.Nil {
		a.ID = prev.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = prev.CreatedAt
	}
	a.UpdatedAt = s.now()

	s.items[index] = a

	return a, s.commit(ctx, op)
}

// Delete удаляет статью; последующие индексы сдвигаются на единицу.
func (s *Store) Delete(ctx context.Context, index int) error {
	const op = "store.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.items = slices.Delete(s.items, index, index+1)

	return s.commit(ctx, op)
}

// Move переносит статью с позиции from на позицию to,
// сохраняя относительный порядок остальных. from == to — no-op без записи.
func (s *Store) Move(ctx context.Context, from, to int) error {
	const op = "store.Move"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(from); err != nil {
		return fmt.Errorf("%s: from: %w", op, err)
	}

	if err := s.checkIndex(to); err != nil {
		return fmt.Errorf("%s: to: %w", op, err)
	}

	if from == to {
		return nil
	}

	item := s.items[from]
	s.items = slices.Delete(s.items, from, from+1)
	s.items = slices.Insert(s.items, to, item)

	return s.commit(ctx, op)
}

// Clear удаляет все статьи всех категорий.
// Подтверждение — забота вызывающего.
func (s *Store) Clear(ctx context.Context) error {
	const op = "store.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	return s.commit(ctx, op)
}

// Get возвращает статью по индексу.
func (s *Store) Get(index int) (models.Article, error) {
	const op = "store.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.items[index], nil
}

// Len — число статей.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// All возвращает копию списка в порядке хранилища.
func (s *Store) All() []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

// ByCategory — ленивый фильтр по категории с исходными индексами.
// Каждый проход берёт снимок текущего содержимого, поэтому итератор
// можно перезапускать, а тело цикла может вызывать методы хранилища.
func (s *Store) ByCategory(category string) iter.Seq2[int, models.Article] {
	return func(yield func(int, models.Article) bool) {
		for i, a := range s.All() {
			if a.Category != category {
				continue
			}

			if !yield(i, a) {
				return
			}
		}
	}
}

// Counts — число статей по каждой категории реестра.
func (s *Store) Counts() map[string]int {
	return s.reg.Counts(s.All())
}

// Ordered — Counts в порядке отображения категорий.
func (s *Store) Ordered() []models.CategoryCount {
	return s.reg.Ordered(s.All())
}

// validate — защитная проверка статьи перед записью.
func (s *Store) validate(a models.Article) error {
	switch {
	case strings.TrimSpace(a.Category) == "":
		return &ValidationError{Field: "category", Reason: "not selected"}
	case !s.reg.Has(a.Category):
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", a.Category)}
	case strings.TrimSpace(a.Title) == "":
		return &ValidationError{Field: "title", Reason: "required"}
	case strings.ContainsAny(a.Title, "\r\n"):
		return &ValidationError{Field: "title", Reason: ReasonMultiline}
	case strings.TrimSpace(a.City) == "":
		return &ValidationError{Field: "city", Reason: "required"}
	case strings.ContainsAny(a.City, "\r\n"):
		return &ValidationError{Field: "city", Reason: ReasonMultiline}
	case strings.TrimSpace(a.Raw) == "" || strings.TrimSpace(a.Body) == "":
		return &ValidationError{Field: "body", Reason: "required"}
	}

	if _, err := models.ParseSource(string(a.Source)); err != nil {
		return &ValidationError{Field: "source", Reason: err.Error()}
	}

	if d := s.opts.Detector; d != nil && d.Policy() == forbidden.Block {
		for _, text := range []string{a.Title, a.Raw, a.Body} {
			if m := d.Matches(text); len(m) > 0 {
				return &ValidationError{Field: "body", Reason: "forbidden content: " + strings.Join(m, ", ")}
			}
		}
	}

	return nil
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.items))
	}

	return nil
}

// commit сохраняет список в KV и уведомляет наблюдателя.
// Вызывается под s.mu.
func (s *Store) commit(ctx context.Context, op string) error {
	defer s.notify()

	blob, err := encode(s.items)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	if err := s.kv.Save(ctx, s.opts.Key, blob); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	return nil
}

func (s *Store) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(slices.Clone(s.items))
	}
}

func (s *Store) now() time.Time {
	return s.opts.Now().UTC()
}
