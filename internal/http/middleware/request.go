package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	logctx "github.com/pribylovaa/go-news-formatter/pkg/log"
)

// HeaderRequestID — заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen ограничивает входящий id: он попадает в логи и ответы.
const maxRequestIDLen = 64

type ridKey struct{}

// RequestID принимает входящий X-Request-Id, если он короткий и состоит из
// [A-Za-z0-9._-], иначе выдаёт новый UUID. Id попадает в заголовки запроса
// и ответа и в контекст.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			// errors.WriteError читает id из заголовка запроса.
			r.Header.Set(HeaderRequestID, id)
			w.Header().Set(HeaderRequestID, id)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ridKey{}, id)))
		})
	}
}

// RequestIDFrom возвращает id запроса из контекста ("" если его нет).
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ridKey{}).(string)
	return id
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}

	for _, c := range []byte(id) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}

	return true
}

// Logging кладёт в контекст логгер с request_id и пишет одну запись на запрос.
// В поле route попадает шаблон chi ("/articles/{index}"), а не сырой путь:
// имена категорий в пути кириллические и раздувают логи.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lg := l
			if rid := RequestIDFrom(r.Context()); rid != "" {
				lg = lg.With(slog.String("request_id", rid))
			}
			r = r.WithContext(logctx.Into(r.Context(), lg))

			rw := &recorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			lg.LogAttrs(r.Context(), level, "http_request",
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.Int("status", rw.Status()),
				slog.Int("bytes", rw.written),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
