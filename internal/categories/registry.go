// categories хранит фиксированный упорядоченный список категорий
// и считает по нему производные счётчики статей.
package categories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-news-formatter/internal/models"
)

// Default — категории выпуска по умолчанию в порядке отображения.
var Default = []string{
	"Главные",
	"Инциденты",
	"Культура",
	"Интересное",
	"Мировые",
	"Экономика",
	"Спорт",
}

// ErrEmpty — список категорий пуст.
var ErrEmpty = errors.New("categories: empty list")

// Registry — неизменяемый список категорий, заданный при старте.
type Registry struct {
	labels []string
	index  map[string]int
}

// New проверяет метки (непустые после TrimSpace, без повторов) и создаёт реестр.
func New(labels []string) (*Registry, error) {
	if len(labels) == 0 {
		return nil, ErrEmpty
	}

	r := &Registry{
		labels: make([]string, 0, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, fmt.Errorf("categories: empty label")
		}
		if _, dup := r.index[l]; dup {
			return nil, fmt.Errorf("categories: duplicate label %q", l)
		}
		r.index[l] = len(r.labels)
		r.labels = append(r.labels, l)
	}

	return r, nil
}

// MustNew — New с panic при ошибке (для констант и тестов).
func MustNew(labels []string) *Registry {
	r, err := New(labels)
	if err != nil {
		panic(err)
	}

	return r
}

// Labels возвращает копию списка категорий.
func (r *Registry) Labels() []string {
	return append([]string(nil), r.labels...)
}

// Has сообщает, входит ли label в список.
func (r *Registry) Has(label string) bool {
	_, ok := r.index[label]
	return ok
}

// Counts пересчитывает число статей по каждой категории с нуля.
// Каждая категория реестра присутствует в результате (0, если статей нет);
// статьи с неизвестной категорией не учитываются.
func (r *Registry) Counts(records []models.Article) map[string]int {
	out := make(map[string]int, len(r.labels))
	for _, l := range r.labels {
		out[l] = 0
	}

	for _, a := range records {
		if _, ok := r.index[a.Category]; ok {
			out[a.Category]++
		}
	}

	return out
}

// Ordered — Counts в порядке отображения категорий.
func (r *Registry) Ordered(records []models.Article) []models.CategoryCount {
	counts := r.Counts(records)

	out := make([]models.CategoryCount, 0, len(r.labels))
	for _, l := range r.labels {
		out = append(out, models.CategoryCount{Category: l, Count: counts[l]})
	}

	return out
}
