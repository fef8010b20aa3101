// service содержит бизнес-логику news-formatter: черновик -> проверка ->
// форматирование -> хранилище -> выгрузка категории.
package service

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-news-formatter/internal/categories"
	"github.com/pribylovaa/go-news-formatter/internal/clipboard"
	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/store"
)

var (
	// ErrEmptyCategory — в категории нет статей, выгружать нечего.
	// Транспорт: 404.
	ErrEmptyCategory = errors.New("category has no articles")
	// ErrUnknownCategory — категории нет в реестре.
	// Транспорт: 400.
	ErrUnknownCategory = errors.New("unknown category")
)

// Recorder — метрики, которые пишет сервис. *metrics.Metrics реализует его.
type Recorder interface {
	ArticleSaved(category, action string)
	ArticleRejected(reason string)
	Exported(category string)
	PersistenceFailed(op string)
	TransportFailed(transport string)
}

// RateLookup — справка по курсам. *rates.Service реализует его.
type RateLookup interface {
	Lookup(ctx context.Context, source models.Source) (string, bool)
}

// Deps — зависимости сервиса. Clipboard, Rates и Metrics необязательны.
type Deps struct {
	Store     *store.Store
	Registry  *categories.Registry
	Detector  *forbidden.Detector
	Clipboard clipboard.Writer
	Rates     RateLookup
	Metrics   Recorder
}

// Service — оркестрация операций над статьями.
type Service struct {
	store    *store.Store
	reg      *categories.Registry
	detector *forbidden.Detector
	clip     clipboard.Writer
	rates    RateLookup
	metrics  Recorder
}

// New создает новый экземпляр Service.
func New(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		reg:      d.Registry,
		detector: d.Detector,
		clip:     d.Clipboard,
		rates:    d.Rates,
		metrics:  d.Metrics,
	}

	if s.detector == nil {
		s.detector = forbidden.New(forbidden.DefaultPhrases, forbidden.Block, "")
	}

	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}

	return s
}

// Saved — результат сохранения статьи.
type Saved struct {
	Index   int            `json:"index"`
	Article models.Article `json:"article"`
	// Persisted=false: изменение применено в памяти, но не записано в KV.
	Persisted bool `json:"persisted"`
}

type nopRecorder struct{}

func (nopRecorder) ArticleSaved(string, string) {}
func (nopRecorder) ArticleRejected(string)      {}
func (nopRecorder) Exported(string)             {}
func (nopRecorder) PersistenceFailed(string)    {}
func (nopRecorder) TransportFailed(string)      {}
