package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-news-formatter/internal/exporter"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/rates"
	"github.com/pribylovaa/go-news-formatter/pkg/log"
)

// ExportCategory собирает все статьи категории в один блок и отправляет
// его в буфер обмена. Ошибка буфера логируется, блок всё равно возвращается.
//
// Ошибки:
//   - ErrUnknownCategory — категории нет в реестре;
//   - ErrEmptyCategory — в категории нет статей.
func (s *Service) ExportCategory(ctx context.Context, category string) (string, error) {
	const op = "service.export.ExportCategory"

	lg := log.From(ctx)

	category = strings.TrimSpace(category)
	if !s.reg.Has(category) {
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownCategory, category)
	}

	var records []models.Article
	for _, a := range s.store.ByCategory(category) {
		records = append(records, a)
	}

	if len(records) == 0 {
		lg.Info("export_empty", slog.String("op", op), slog.String("category", category))
		return "", fmt.Errorf("%s: %w", op, ErrEmptyCategory)
	}

	payload := exporter.Export(records)

	if s.clip != nil {
		if err := s.clip.Write(ctx, payload); err != nil {
			lg.Warn("export_clipboard_failed",
				slog.String("op", op),
				slog.String("category", category),
				slog.String("err", err.Error()),
			)
			s.metrics.TransportFailed(rates.TransportClipboard)
		}
	}

	s.metrics.Exported(category)
	lg.Info("category_exported",
		slog.String("op", op),
		slog.String("category", category),
		slog.Int("articles", len(records)),
		slog.Int("bytes", len(payload)),
	)

	return payload, nil
}

// Rates возвращает справку по курсам для источника.
// Неизвестный источник, не основной источник или сбой сети -> ("", false).
func (s *Service) Rates(ctx context.Context, source string) (string, bool) {
	const op = "service.export.Rates"

	if s.rates == nil {
		return "", false
	}

	src, err := models.ParseSource(source)
	if err != nil {
		log.From(ctx).Debug("rates_bad_source", slog.String("op", op), slog.String("source", source))
		return "", false
	}

	return s.rates.Lookup(ctx, src)
}

// RatesResult — итог RatesAsync.
type RatesResult struct {
	Text string
	OK   bool
}

// RatesAsync запускает Rates в отдельной горутине, не задерживая работу
// со статьёй. Канал буферизован, получает ровно одно значение и закрывается,
// поэтому читать его не обязательно.
func (s *Service) RatesAsync(ctx context.Context, source string) <-chan RatesResult {
	out := make(chan RatesResult, 1)

	go func() {
		defer close(out)

		text, ok := s.Rates(ctx, source)
		out <- RatesResult{Text: text, OK: ok}
	}()

	return out
}
