package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-news-formatter/internal/errors"
	logctx "github.com/pribylovaa/go-news-formatter/pkg/log"
)

// Recover превращает panic хендлера в 500/internal без деталей для клиента.
// http.ErrAbortHandler пробрасывается дальше: это штатный обрыв ответа.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logctx.From(r.Context()).Error("handler_panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
				)
				apierrors.WriteError(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Timeout ограничивает запрос сроком d. Более ранний дедлайн родителя
// сохраняется; d <= 0 отключает мидлвар.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
