// middleware — обёртки net/http для API news-formatter:
// восстановление после panic, request id, access-лог и дедлайн запроса.
package middleware

import (
	"net/http"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// recorder запоминает код ответа и число записанных байт для access-лога.
type recorder struct {
	http.ResponseWriter
	code    int
	written int
}

func (rw *recorder) WriteHeader(code int) {
	if rw.code == 0 {
		rw.code = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(p []byte) (int, error) {
	if rw.code == 0 {
		rw.code = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(p)
	rw.written += n
	return n, err
}

// Unwrap нужен http.ResponseController.
func (rw *recorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Status — итоговый код; 200, если хендлер ничего не записал.
func (rw *recorder) Status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}
