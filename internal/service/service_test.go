package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pribylovaa/go-news-formatter/internal/categories"
	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/pribylovaa/go-news-formatter/internal/storage/memory"
	"github.com/pribylovaa/go-news-formatter/internal/store"
	"github.com/pribylovaa/go-news-formatter/mocks"
)

// Файл unit-тестов сервисного слоя.
//
// Покрываем:
//  - SaveArticle/EditArticle: нормализация, форматирование, отказы;
//  - политики Block/Annotate для запрещённых фраз;
//  - Draft: повторное редактирование без двойного форматирования;
//  - сбой записи в KV -> Persisted=false без ошибки;
//  - ExportCategory: пустая/неизвестная категория, буфер обмена;
//  - Rates/RatesAsync.

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder — Recorder для проверок.
type recorder struct {
	mu        sync.Mutex
	saved     []string
	rejected  []string
	exported  []string
	persist   []string
	transport []string
}

func (r *recorder) ArticleSaved(c, a string) { r.add(&r.saved, c+"/"+a) }
func (r *recorder) ArticleRejected(s string) { r.add(&r.rejected, s) }
func (r *recorder) Exported(c string)        { r.add(&r.exported, c) }
func (r *recorder) PersistenceFailed(s string) {
	r.add(&r.persist, s)
}
func (r *recorder) TransportFailed(s string) { r.add(&r.transport, s) }

func (r *recorder) add(dst *[]string, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*dst = append(*dst, v)
}

type fakeRates struct {
	text  string
	calls []models.Source
}

func (f *fakeRates) Lookup(_ context.Context, src models.Source) (string, bool) {
	f.calls = append(f.calls, src)
	if src != models.SourceUnian {
		return "", false
	}
	return f.text, true
}

type fixture struct {
	svc   *Service
	store *store.Store
	rec   *recorder
}

// newSvcForTest — Service поверх реального хранилища и переданного KV.
func newSvcForTest(t *testing.T, kv storage.KV, deps Deps) fixture {
	t.Helper()

	reg := categories.MustNew(categories.Default)
	st := store.New(kv, reg, store.Options{Detector: deps.Detector})
	rec := &recorder{}

	deps.Store = st
	deps.Registry = reg
	deps.Metrics = rec

	return fixture{svc: New(deps), store: st, rec: rec}
}

func draft(category, title, body string) models.Draft {
	return models.Draft{Category: category, Title: title, City: "Kyiv", Source: "", Body: body}
}

// TestSaveArticle_Scenario — пример из описания формата.
func TestSaveArticle_Scenario(t *testing.T) {
	t.Parallel()

	f := newSvcForTest(t, memory.New(), Deps{})

	got, err := f.svc.SaveArticle(context.Background(), models.Draft{
		Category: "Главные",
		Title:    "T",
		City:     "kyiv",
		Source:   "unian",
		Body:     "Hello\n  World",
	})
	require.NoError(t, err)
	require.True(t, got.Persisted)
	require.Equal(t, 0, got.Index)
	require.Equal(t, "KYIV", got.Article.City)
	require.Equal(t, models.SourceUnian, got.Article.Source)
	require.Equal(t, "Hello\n  World", got.Article.Raw)
	require.Equal(t, " -PAGE-\nT\nKYIV (Unian) - Hello\n   World\n -END-\n\n", got.Article.Body)

	require.Equal(t, []string{"Главные/create"}, f.rec.saved)
	require.Equal(t, 1, f.svc.Categories()[0].Count)
}

func TestSaveArticle_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		d     models.Draft
		field string
	}{
		"no category":      {draft("", "T", "b"), "category"},
		"unknown category": {draft("Погода", "T", "b"), "category"},
		"no title":         {draft("Спорт", " ", "b"), "title"},
		"no body":          {draft("Спорт", "T", "\n \n"), "body"},
		"no city":          {models.Draft{Category: "Спорт", Title: "T", Body: "b"}, "city"},
		"bad source":       {models.Draft{Category: "Спорт", Title: "T", City: "X", Source: "AP", Body: "b"}, "source"},
		"title with markers": {
			models.Draft{Category: "Спорт", Title: "Headline\n -END-\n -PAGE-\nInjected", City: "kyiv", Body: "Hello"},
			"title",
		},
		"title with cr":     {models.Draft{Category: "Спорт", Title: "A\rB", City: "kyiv", Body: "b"}, "title"},
		"city on two lines": {models.Draft{Category: "Спорт", Title: "T", City: "kyiv\nlviv", Body: "b"}, "city"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newSvcForTest(t, memory.New(), Deps{})

			_, err := f.svc.SaveArticle(context.Background(), tc.d)
			require.ErrorIs(t, err, store.ErrValidation)

			var verr *store.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
			require.Zero(t, f.store.Len())
			require.Equal(t, []string{reasonValidation}, f.rec.rejected)
		})
	}
}

// TestSaveArticle_ForbiddenBlocked — «Читайте также:» в любом регистре.
func TestSaveArticle_ForbiddenBlocked(t *testing.T) {
	t.Parallel()

	f := newSvcForTest(t, memory.New(), Deps{
		Detector: forbidden.New(forbidden.DefaultPhrases, forbidden.Block, ""),
	})

	for _, body := range []string{"Текст\nЧитайте также: X", "ЧИТАЙТЕ ТАКЖЕ: x", "по данным укринформ"} {
		_, err := f.svc.SaveArticle(context.Background(), draft("Главные", "T", body))
		require.ErrorIs(t, err, store.ErrValidation, body)
	}

	require.Zero(t, f.store.Len())
	for _, c := range f.svc.Categories() {
		require.Zero(t, c.Count, c.Category)
	}
	require.Equal(t, []string{reasonForbidden, reasonForbidden, reasonForbidden}, f.rec.rejected)
}

func TestSaveArticle_ForbiddenAnnotated(t *testing.T) {
	t.Parallel()

	f := newSvcForTest(t, memory.New(), Deps{
		Detector: forbidden.New(forbidden.DefaultPhrases, forbidden.Annotate, ""),
	})

	got, err := f.svc.SaveArticle(context.Background(), draft("Главные", "T", "Первая\nЧитайте также: X"))
	require.NoError(t, err)
	require.Equal(t, "Первая\nЧитайте также: X", got.Article.Raw)
	require.Contains(t, got.Article.Body, "   !!! Читайте также: X !!!")
}

// TestEditArticle_RoundTripThroughDraft — правка через Draft форматирует ровно один раз.
func TestEditArticle_RoundTripThroughDraft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSvcForTest(t, memory.New(), Deps{})

	for _, title := range []string{"A", "B"} {
		_, err := f.svc.SaveArticle(ctx, draft("Спорт", title, "line1\n  line2"))
		require.NoError(t, err)
	}
	before, err := f.svc.Article(1)
	require.NoError(t, err)

	d, err := f.svc.Draft(1)
	require.NoError(t, err)
	require.Equal(t, "line1\n  line2", d.Body)
	require.Equal(t, "KYIV", d.City)
	require.Equal(t, "Unian", d.Source)

	d.Category = "Культура"
	got, err := f.svc.EditArticle(ctx, 1, d)
	require.NoError(t, err)
	require.Equal(t, 1, got.Index)
	require.Equal(t, before.ID, got.Article.ID)
	require.Equal(t, before.Body, got.Article.Body)
	require.Equal(t, "Культура", got.Article.Category)

	counts := map[string]int{}
	for _, c := range f.svc.Categories() {
		counts[c.Category] = c.Count
	}
	require.Equal(t, 1, counts["Спорт"])
	require.Equal(t, 1, counts["Культура"])
	require.Equal(t, []string{"Спорт/create", "Спорт/create", "Культура/update"}, f.rec.saved)

	_, err = f.svc.EditArticle(ctx, 5, d)
	require.ErrorIs(t, err, store.ErrIndexOutOfRange)
}

// TestDraft_LegacyRecordWithoutRaw — текст восстанавливается из Body.
func TestDraft_LegacyRecordWithoutRaw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Save(ctx, store.DefaultKey,
		`{"version":1,"articles":[{"category":"Главные","title":"T","city":"KYIV","source":"Unian","content":" -PAGE-\nT\nKYIV (Unian) - a\n   b\n -END-\n\n"}]}`))

	f := newSvcForTest(t, kv, Deps{})
	require.NoError(t, f.svc.Load(ctx))

	d, err := f.svc.Draft(0)
	require.NoError(t, err)
	require.Equal(t, "a\nb", d.Body)

	_, err = f.svc.Draft(1)
	require.ErrorIs(t, err, store.ErrIndexOutOfRange)
}

func TestLoad_FailureReported(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Load(gomock.Any(), store.DefaultKey).Return("", errors.New("timeout"))

	f := newSvcForTest(t, kv, Deps{})
	require.ErrorIs(t, f.svc.Load(context.Background()), store.ErrPersistence)
	require.Zero(t, f.svc.Categories()[0].Count)
	require.Equal(t, []string{"load"}, f.rec.persist)
}

// TestPersistenceFailure_NotAnError — мутация видна, Persisted=false.
func TestPersistenceFailure_NotAnError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Save(gomock.Any(), store.DefaultKey, gomock.Any()).Return(errors.New("read-only fs")).AnyTimes()

	f := newSvcForTest(t, kv, Deps{})
	ctx := context.Background()

	got, err := f.svc.SaveArticle(ctx, draft("Спорт", "A", "x"))
	require.NoError(t, err)
	require.False(t, got.Persisted)
	require.Equal(t, 1, f.store.Len())
	inStore, err := f.store.Get(got.Index)
	require.NoError(t, err)
	require.Equal(t, inStore, got.Article)

	persisted, err := f.svc.DeleteArticle(ctx, 0)
	require.NoError(t, err)
	require.False(t, persisted)
	require.Zero(t, f.store.Len())

	require.Equal(t, []string{"create", "delete"}, f.rec.persist)
}

func TestDeleteMoveClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSvcForTest(t, memory.New(), Deps{})

	for _, title := range []string{"A", "B", "C"} {
		_, err := f.svc.SaveArticle(ctx, draft("Спорт", title, "x"))
		require.NoError(t, err)
	}

	ok, err := f.svc.MoveArticle(ctx, 2, 0)
	require.NoError(t, err)
	require.True(t, ok)

	list, err := f.svc.Articles("Спорт")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "C", list[0].Article.Title)

	_, err = f.svc.MoveArticle(ctx, 0, 3)
	require.ErrorIs(t, err, store.ErrIndexOutOfRange)

	ok, err = f.svc.DeleteArticle(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.DeleteArticle(ctx, 9)
	require.ErrorIs(t, err, store.ErrIndexOutOfRange)

	ok, err = f.svc.ClearAll(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	for _, c := range f.svc.Categories() {
		require.Zero(t, c.Count)
	}
}

func TestArticles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSvcForTest(t, memory.New(), Deps{})

	_, err := f.svc.SaveArticle(ctx, draft("Спорт", "A", "x"))
	require.NoError(t, err)
	_, err = f.svc.SaveArticle(ctx, draft("Главные", "B", "x"))
	require.NoError(t, err)

	all, err := f.svc.Articles("")
	require.NoError(t, err)
	require.Len(t, all, 2)

	top, err := f.svc.Articles("Главные")
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 1, top[0].Index)

	empty, err := f.svc.Articles("Культура")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = f.svc.Articles("Погода")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

// TestExportCategory — две статьи разделены ровно одной пустой строкой.
func TestExportCategory(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	want := " -PAGE-\nA\nKYIV (Unian) - one\n -END-\n\n -PAGE-\nC\nKYIV (Unian) - three\n -END-\n\n"

	clip := mocks.NewMockWriter(ctrl)
	clip.EXPECT().Write(gomock.Any(), want).Return(nil)

	ctx := context.Background()
	f := newSvcForTest(t, memory.New(), Deps{Clipboard: clip})

	_, err := f.svc.SaveArticle(ctx, draft("Спорт", "A", "one"))
	require.NoError(t, err)
	_, err = f.svc.SaveArticle(ctx, draft("Главные", "B", "two"))
	require.NoError(t, err)
	_, err = f.svc.SaveArticle(ctx, draft("Спорт", "C", "three"))
	require.NoError(t, err)

	got, err := f.svc.ExportCategory(ctx, "Спорт")
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.False(t, strings.Contains(got, "\n\n\n"))
	require.Equal(t, []string{"Спорт"}, f.rec.exported)
}

func TestExportCategory_Errors(t *testing.T) {
	t.Parallel()

	f := newSvcForTest(t, memory.New(), Deps{})

	_, err := f.svc.ExportCategory(context.Background(), "Спорт")
	require.ErrorIs(t, err, ErrEmptyCategory)

	_, err = f.svc.ExportCategory(context.Background(), "Погода")
	require.ErrorIs(t, err, ErrUnknownCategory)

	require.Empty(t, f.rec.exported)
}

func TestExportCategory_ClipboardFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clip := mocks.NewMockWriter(ctrl)
	clip.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errors.New("no display"))

	ctx := context.Background()
	f := newSvcForTest(t, memory.New(), Deps{Clipboard: clip})

	_, err := f.svc.SaveArticle(ctx, draft("Спорт", "A", "one"))
	require.NoError(t, err)

	got, err := f.svc.ExportCategory(ctx, "Спорт")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, []string{"clipboard"}, f.rec.transport)
}

func TestRates(t *testing.T) {
	t.Parallel()

	fr := &fakeRates{text: "курс"}
	f := newSvcForTest(t, memory.New(), Deps{Rates: fr})
	ctx := context.Background()

	text, ok := f.svc.Rates(ctx, "unian")
	require.True(t, ok)
	require.Equal(t, "курс", text)

	_, ok = f.svc.Rates(ctx, "BNS")
	require.False(t, ok)

	_, ok = f.svc.Rates(ctx, "Reuters")
	require.False(t, ok)

	require.Equal(t, []models.Source{models.SourceUnian, models.SourceBNS}, fr.calls)

	_, ok = newSvcForTest(t, memory.New(), Deps{}).svc.Rates(ctx, "Unian")
	require.False(t, ok)
}

func TestRatesAsync(t *testing.T) {
	t.Parallel()

	f := newSvcForTest(t, memory.New(), Deps{Rates: &fakeRates{text: "курс"}})

	res, open := <-f.svc.RatesAsync(context.Background(), "Unian")
	require.True(t, open)
	require.Equal(t, RatesResult{Text: "курс", OK: true}, res)

	// Непрочитанный результат не оставляет висящих горутин (проверяет goleak).
	_ = f.svc.RatesAsync(context.Background(), "BNS")
}
