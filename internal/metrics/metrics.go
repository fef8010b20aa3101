// metrics — прометеевские счётчики news-formatter на собственном реестре.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-news-formatter/internal/models"
)

const namespace = "news_formatter"

// Значения метки action для articles_saved_total.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Metrics группирует все коллекторы сервиса.
type Metrics struct {
	reg *prometheus.Registry

	saved        *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	inCategory   *prometheus.GaugeVec
	exports      *prometheus.CounterVec
	persistFails *prometheus.CounterVec
	transport    *prometheus.CounterVec
}

// New регистрирует коллекторы на новом реестре вместе
// со стандартными go/process коллекторами.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		saved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_saved_total",
			Help:      "Articles saved, by category and action.",
		}, []string{"category", "action"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_rejected_total",
			Help:      "Articles rejected before saving, by reason.",
		}, []string{"reason"}),
		inCategory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_in_category",
			Help:      "Current number of stored articles per category.",
		}, []string{"category"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Category exports, by category.",
		}, []string{"category"}),
		persistFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed reads and writes of the article blob, by operation.",
		}, []string{"op"}),
		transport: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_failures_total",
			Help:      "Clipboard and network failures, by transport.",
		}, []string{"transport"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.saved, m.rejected, m.inCategory, m.exports, m.persistFails, m.transport,
	)

	return m
}

// Handler отдаёт метрики реестра в формате экспозиции.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry нужен тестам и встраиванию в чужой /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ArticleSaved(category, action string) {
	m.saved.WithLabelValues(category, action).Inc()
}

func (m *Metrics) ArticleRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Exported(category string) {
	m.exports.WithLabelValues(category).Inc()
}

func (m *Metrics) PersistenceFailed(op string) {
	m.persistFails.WithLabelValues(op).Inc()
}

func (m *Metrics) TransportFailed(transport string) {
	m.transport.WithLabelValues(transport).Inc()
}

// SetCategoryCounts выставляет gauge для каждой категории, включая нули.
// Подходит как store.Options.OnChange после подсчёта через реестр категорий.
func (m *Metrics) SetCategoryCounts(counts []models.CategoryCount) {
	for _, c := range counts {
		m.inCategory.WithLabelValues(c.Category).Set(float64(c.Count))
	}
}
