package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-news-formatter/internal/http/handlers"
	"github.com/pribylovaa/go-news-formatter/internal/http/middleware"
	"github.com/pribylovaa/go-news-formatter/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: id попадает в логгер
		middleware.Logging(opts.Logger),
	)

	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// categories
	r.Get("/categories", h.ListCategories)
	r.Post("/categories/{category}/export", h.ExportCategory)

	// articles
	r.Get("/articles", h.ListArticles)
	r.Post("/articles", h.CreateArticle)
	r.Delete("/articles", h.ClearArticles)
	r.Get("/articles/{index}", h.GetArticle)
	r.Put("/articles/{index}", h.UpdateArticle)
	r.Delete("/articles/{index}", h.DeleteArticle)
	r.Post("/articles/{index}/move", h.MoveArticle)

	// rates
	r.Get("/rates", h.Rates)
}
