package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-news-formatter/internal/categories"
	"github.com/pribylovaa/go-news-formatter/internal/clipboard"
	"github.com/pribylovaa/go-news-formatter/internal/config"
	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/metrics"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/rates"
	"github.com/pribylovaa/go-news-formatter/internal/service"
	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/pribylovaa/go-news-formatter/internal/store"
	"github.com/pribylovaa/go-news-formatter/pkg/log"
)

// app — собранные зависимости одного запуска команды.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	kv      storage.KV
	metrics *metrics.Metrics
	svc     *service.Service
}

// openApp загружает конфиг, открывает хранилище и один раз читает статьи.
// Сбой чтения статей не фатален: работа начинается с пустого хранилища.
// out — поток для драйвера буфера обмена stdout.
func openApp(ctx context.Context, configPath string, out io.Writer) (*app, context.Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, ctx, err
	}

	lg := setupLogger(cfg.Env)
	slog.SetDefault(lg)
	ctx = log.Into(ctx, lg)

	reg, err := categories.New(cfg.Categories)
	if err != nil {
		return nil, ctx, fmt.Errorf("categories: %w", err)
	}

	policy, err := forbidden.ParsePolicy(cfg.Forbidden.Policy)
	if err != nil {
		return nil, ctx, err
	}
	det := forbidden.New(cfg.Forbidden.Phrases, policy, cfg.Forbidden.Marker)

	primary, err := models.ParseSource(cfg.Rates.PrimarySource)
	if err != nil {
		return nil, ctx, err
	}

	clip, err := clipboard.New(cfg.Clipboard.Driver, cfg.Clipboard.Path, out)
	if err != nil {
		return nil, ctx, err
	}

	kv, err := openKV(ctx, cfg.Storage)
	if err != nil {
		lg.Error("storage_open_failed",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("err", err.Error()),
		)
		return nil, ctx, err
	}

	m := metrics.New()

	st := store.New(kv, reg, store.Options{
		Key:      cfg.Storage.Key,
		Detector: det,
		OnChange: func(items []models.Article) {
			m.SetCategoryCounts(reg.Ordered(items))
		},
	})

	rs := rates.New(&http.Client{Timeout: cfg.Rates.Timeout}, rates.Options{
		URL:       cfg.Rates.URL,
		Primary:   primary,
		Clipboard: clip,
		OnFailure: m.TransportFailed,
	})

	svc := service.New(service.Deps{
		Store:     st,
		Registry:  reg,
		Detector:  det,
		Clipboard: clip,
		Rates:     rs,
		Metrics:   m,
	})

	if err := svc.Load(ctx); err != nil {
		lg.Warn("starting_with_empty_store", slog.String("err", err.Error()))
	}

	lg.Debug("app_ready",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("clipboard", cfg.Clipboard.Driver),
		slog.String("forbidden_policy", policy.String()),
	)

	return &app{cfg: cfg, log: lg, kv: kv, metrics: m, svc: svc}, ctx, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Warn("storage_close_failed", slog.String("err", err.Error()))
	}
}
