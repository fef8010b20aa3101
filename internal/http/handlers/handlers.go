// handlers — REST-хендлеры news-formatter поверх service.Service.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-news-formatter/internal/errors"
	"github.com/pribylovaa/go-news-formatter/internal/service"
)

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeText — ответ text/plain (выгрузка, справка по курсам).
func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
	}
	return nil
}

// indexParam разбирает {index} из пути.
func indexParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: index must be a non-negative integer", apierrors.ErrInvalidArgument)
	}
	return n, nil
}

// persistedResponse — ответ мутаций без тела статьи.
type persistedResponse struct {
	Persisted bool `json:"persisted"`
}
