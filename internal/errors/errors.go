// errors переводит ошибки сервиса и хранилища статей в HTTP-ответы
// единого вида {"error":{"code","message","field","request_id"}}.
//
// Клиенту уходит только стабильный code и короткое описание. Исключение:
// ошибки валидации черновика, их текст ("title: required") нужен редактору.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-news-formatter/internal/service"
	"github.com/pribylovaa/go-news-formatter/internal/store"
)

// StatusClientClosedRequest — клиент ушёл раньше ответа (nginx 499).
const StatusClientClosedRequest = 499

// ErrInvalidArgument — запрос не разобран хендлером
// (битый JSON, нечисловой индекс, нет подтверждения очистки).
var ErrInvalidArgument = errors.New("invalid argument")

// APIError — тело ошибки.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field — поле черновика, не прошедшее проверку.
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект ответа.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// rule сопоставляет sentinel-ошибке статус и публичный код.
type rule struct {
	target  error
	status  int
	code    string
	message string
}

// rules проверяются по порядку; первое совпадение по errors.Is выигрывает.
var rules = []rule{
	{store.ErrValidation, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrUnknownCategory, http.StatusBadRequest, "invalid_argument", "unknown category"},
	{store.ErrIndexOutOfRange, http.StatusNotFound, "not_found", "article not found"},
	{service.ErrEmptyCategory, http.StatusNotFound, "category_empty", "category has no articles"},
	{store.ErrPersistence, http.StatusServiceUnavailable, "unavailable", "storage unavailable"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP возвращает статус и тело ответа для err.
// nil считается ошибкой вызова и даёт 500, как и всё нераспознанное.
func ToHTTP(err error) (int, ErrorResponse) {
	internal := ErrorResponse{Error: APIError{Code: "internal", Message: "internal error"}}
	if err == nil {
		return http.StatusInternalServerError, internal
	}

	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Error: APIError{
			Code:    "invalid_argument",
			Message: verr.Error(),
			Field:   verr.Field,
		}}
	}

	for _, r := range rules {
		if errors.Is(err, r.target) {
			return r.status, ErrorResponse{Error: APIError{Code: r.code, Message: r.message}}
		}
	}

	return http.StatusInternalServerError, internal
}

// WriteError пишет JSON-ошибку; request_id берётся из заголовка X-Request-Id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ToHTTP(err)
	body.Error.RequestID = r.Header.Get("X-Request-Id")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
