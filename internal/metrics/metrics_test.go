package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-news-formatter/internal/models"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()

	m.ArticleSaved("Спорт", ActionCreate)
	m.ArticleSaved("Спорт", ActionCreate)
	m.ArticleSaved("Спорт", ActionUpdate)
	m.ArticleRejected("forbidden")
	m.Exported("Главные")
	m.PersistenceFailed("save")
	m.TransportFailed("rates")

	require.Equal(t, 2.0, testutil.ToFloat64(m.saved.WithLabelValues("Спорт", ActionCreate)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.saved.WithLabelValues("Спорт", ActionUpdate)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("forbidden")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("Главные")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.persistFails.WithLabelValues("save")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.transport.WithLabelValues("rates")))
}

func TestSetCategoryCounts_IncludesZeros(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetCategoryCounts([]models.CategoryCount{{Category: "Главные", Count: 3}, {Category: "Спорт", Count: 0}})

	require.Equal(t, 3.0, testutil.ToFloat64(m.inCategory.WithLabelValues("Главные")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.inCategory.WithLabelValues("Спорт")))
	require.Equal(t, 2, testutil.CollectAndCount(m.inCategory))

	m.SetCategoryCounts([]models.CategoryCount{{Category: "Главные", Count: 0}, {Category: "Спорт", Count: 0}})
	require.Equal(t, 0.0, testutil.ToFloat64(m.inCategory.WithLabelValues("Главные")))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.Exported("Культура")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "news_formatter_exports_total"))
}
