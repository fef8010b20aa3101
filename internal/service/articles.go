package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/formatter"
	"github.com/pribylovaa/go-news-formatter/internal/metrics"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/store"
	"github.com/pribylovaa/go-news-formatter/pkg/log"
)

// Причины отказа для articles_rejected_total.
const (
	reasonValidation = "validation"
	reasonForbidden  = "forbidden"
)

// Load читает сохранённые статьи. При ошибке хранилище остаётся пустым,
// ошибка возвращается для отчёта: работа продолжается.
func (s *Service) Load(ctx context.Context) error {
	const op = "service.articles.Load"

	lg := log.From(ctx)

	if err := s.store.Load(ctx); err != nil {
		lg.Error("articles_load_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		s.metrics.PersistenceFailed("load")

		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Debug("articles_loaded", slog.String("op", op), slog.Int("count", s.store.Len()))

	return nil
}

// SaveArticle проверяет, форматирует и добавляет статью в конец.
//
// Ошибки:
//   - store.ErrValidation — пустые поля, неизвестная категория или источник,
//     запрещённые фразы при политике Block; ничего не сохранено.
//
// Сбой записи в KV ошибкой не считается: Saved.Persisted=false.
func (s *Service) SaveArticle(ctx context.Context, d models.Draft) (Saved, error) {
	const op = "service.articles.SaveArticle"

	lg := log.From(ctx)

	a, err := s.build(ctx, d)
	if err != nil {
		return Saved{}, fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.store.Create(ctx, a)
	persisted, err := s.persisted(ctx, op, "create", err)
	if err != nil {
		s.reject(ctx, op, err)
		return Saved{}, err
	}

	idx, saved := stored.Index, stored.Article
	s.metrics.ArticleSaved(saved.Category, metrics.ActionCreate)

	lg.Info("article_saved",
		slog.String("op", op),
		slog.Int("index", idx),
		slog.String("id", saved.ID.String()),
		slog.String("category", saved.Category),
		slog.Bool("persisted", persisted),
	)

	return Saved{Index: idx, Article: saved, Persisted: persisted}, nil
}

// EditArticle пересохраняет статью на той же позиции.
// Черновик для редактирования отдаёт Draft.
func (s *Service) EditArticle(ctx context.Context, index int, d models.Draft) (Saved, error) {
	const op = "service.articles.EditArticle"

	lg := log.From(ctx)

	a, err := s.build(ctx, d)
	if err != nil {
		return Saved{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.store.Update(ctx, index, a)
	persisted, err := s.persisted(ctx, op, "update", err)
	if err != nil {
		s.reject(ctx, op, err)
		return Saved{}, err
	}

	s.metrics.ArticleSaved(saved.Category, metrics.ActionUpdate)

	lg.Info("article_updated",
		slog.String("op", op),
		slog.Int("index", index),
		slog.String("id", saved.ID.String()),
		slog.String("category", saved.Category),
		slog.Bool("persisted", persisted),
	)

	return Saved{Index: index, Article: saved, Persisted: persisted}, nil
}

// Article возвращает статью по индексу.
func (s *Service) Article(index int) (models.Article, error) {
	const op = "service.articles.Article"

	a, err := s.store.Get(index)
	if err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// Draft возвращает черновик статьи для повторного редактирования.
// Текст берётся из Raw; если его нет, восстанавливается из Body.
func (s *Service) Draft(index int) (models.Draft, error) {
	const op = "service.articles.Draft"

	a, err := s.store.Get(index)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	d := models.Draft{
		Category: a.Category,
		Title:    a.Title,
		City:     a.City,
		Source:   a.Source.String(),
		Body:     a.Raw,
	}

	if d.Body == "" {
		if u, ok := formatter.Unformat(a.Body); ok {
			d.Body = u.Body
			if d.City == "" {
				d.City = u.City
			}
		} else {
			d.Body = a.Body
		}
	}

	return d, nil
}

// DeleteArticle удаляет статью; индексы следующих сдвигаются.
func (s *Service) DeleteArticle(ctx context.Context, index int) (bool, error) {
	const op = "service.articles.DeleteArticle"

	persisted, err := s.persisted(ctx, op, "delete", s.store.Delete(ctx, index))
	if err != nil {
		return false, err
	}

	log.From(ctx).Info("article_deleted",
		slog.String("op", op),
		slog.Int("index", index),
		slog.Bool("persisted", persisted),
	)

	return persisted, nil
}

// MoveArticle переносит статью с from на to.
func (s *Service) MoveArticle(ctx context.Context, from, to int) (bool, error) {
	const op = "service.articles.MoveArticle"

	persisted, err := s.persisted(ctx, op, "move", s.store.Move(ctx, from, to))
	if err != nil {
		return false, err
	}

	log.From(ctx).Info("article_moved",
		slog.String("op", op),
		slog.Int("from", from),
		slog.Int("to", to),
		slog.Bool("persisted", persisted),
	)

	return persisted, nil
}

// ClearAll удаляет все статьи. Подтверждение запрашивает граница (CLI/HTTP).
func (s *Service) ClearAll(ctx context.Context) (bool, error) {
	const op = "service.articles.ClearAll"

	persisted, err := s.persisted(ctx, op, "clear", s.store.Clear(ctx))
	if err != nil {
		return false, err
	}

	log.From(ctx).Warn("articles_cleared",
		slog.String("op", op),
		slog.Bool("persisted", persisted),
	)

	return persisted, nil
}

// Articles возвращает статьи категории с их индексами в хранилище.
// Пустая категория -> все статьи.
func (s *Service) Articles(category string) ([]models.IndexedArticle, error) {
	const op = "service.articles.Articles"

	category = strings.TrimSpace(category)

	out := []models.IndexedArticle{}
	if category == "" {
		for i, a := range s.store.All() {
			out = append(out, models.IndexedArticle{Index: i, Article: a})
		}
		return out, nil
	}

	if !s.reg.Has(category) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownCategory, category)
	}

	for i, a := range s.store.ByCategory(category) {
		out = append(out, models.IndexedArticle{Index: i, Article: a})
	}

	return out, nil
}

// Categories — счётчики статей по всем категориям в порядке отображения.
func (s *Service) Categories() []models.CategoryCount {
	return s.store.Ordered()
}

// build превращает черновик в статью: нормализация полей,
// проверка запрещённых фраз и однократное форматирование.
func (s *Service) build(ctx context.Context, d models.Draft) (models.Article, error) {
	const op = "service.articles.build"

	category := strings.TrimSpace(d.Category)
	title := strings.TrimSpace(d.Title)
	city := cases.Upper(language.Und).String(strings.TrimSpace(d.City))

	var verr *store.ValidationError
	switch {
	case category == "":
		verr = &store.ValidationError{Field: "category", Reason: "not selected"}
	case !s.reg.Has(category):
		verr = &store.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	case title == "":
		verr = &store.ValidationError{Field: "title", Reason: "required"}
	case strings.ContainsAny(title, "\r\n"):
		verr = &store.ValidationError{Field: "title", Reason: store.ReasonMultiline}
	case city == "":
		verr = &store.ValidationError{Field: "city", Reason: "required"}
	case strings.ContainsAny(city, "\r\n"):
		verr = &store.ValidationError{Field: "city", Reason: store.ReasonMultiline}
	case strings.TrimSpace(d.Body) == "":
		verr = &store.ValidationError{Field: "body", Reason: "required"}
	}

	source, err := models.ParseSource(d.Source)
	if verr == nil && err != nil {
		verr = &store.ValidationError{Field: "source", Reason: err.Error()}
	}

	if verr != nil {
		s.reject(ctx, op, verr)
		return models.Article{}, verr
	}

	body := d.Body
	if matches := append(s.detector.Matches(title), s.detector.Matches(body)...); len(matches) > 0 {
		if s.detector.Policy() == forbidden.Block {
			verr = &store.ValidationError{Field: "body", Reason: "forbidden content: " + strings.Join(matches, ", ")}
			s.reject(ctx, op, verr)
			return models.Article{}, verr
		}

		title = s.detector.Annotate(title)
		body = s.detector.Annotate(body)
		log.From(ctx).Warn("article_annotated",
			slog.String("op", op),
			slog.Any("phrases", matches),
		)
	}

	return models.Article{
		Category: category,
		Title:    title,
		City:     city,
		Source:   source,
		Raw:      d.Body,
		Body:     formatter.Record(title, city, source.String(), body),
	}, nil
}

// persisted отделяет сбой записи (мутация применена) от настоящих ошибок.
func (s *Service) persisted(ctx context.Context, op, action string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	if errors.Is(err, store.ErrPersistence) {
		log.From(ctx).Error("persist_failed",
			slog.String("op", op),
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		s.metrics.PersistenceFailed(action)

		return false, nil
	}

	return false, fmt.Errorf("%s: %w", op, err)
}

// reject логирует и считает отказ по валидации. Прочие ошибки не трогает.
func (s *Service) reject(ctx context.Context, op string, err error) {
	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		return
	}

	reason := reasonValidation
	if strings.HasPrefix(verr.Reason, "forbidden") {
		reason = reasonForbidden
	}

	s.metrics.ArticleRejected(reason)
	log.From(ctx).Warn("article_rejected",
		slog.String("op", op),
		slog.String("field", verr.Field),
		slog.String("reason", verr.Reason),
	)
}
