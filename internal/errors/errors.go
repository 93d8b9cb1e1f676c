// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя (сентинелы пакета service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Таксономия:
//   - ошибки аутентификации (битые креды/токены) -> 401 с конкретным message;
//   - ошибки авторизации (деактивированная учётка) -> 403;
//   - ошибки валидации входа -> 400; конфликт уникальности -> 409;
//   - отсутствие сущности -> 404; всё прочее -> 500 "Internal server error".
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"campaign-service/internal/service"
)

// APIError — единый формат ошибки для фронта.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - неизвестная ошибка -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := mapError(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteCredentialsError — единый отказ защитного мидлвара.
// Причина (нет заголовка / битый токен / неизвестный subject) клиенту
// не сообщается никогда.
func WriteCredentialsError(w http.ResponseWriter, r *http.Request) {
	resp := ErrorResponse{
		Error: APIError{
			Code:    "unauthenticated",
			Message: "Could not validate credentials",
		},
	}

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrBadRequest — локальная ошибка разбора входа на HTTP-слое.
var ErrBadRequest = errors.New("bad request")

// mapError — таблица маппинга сентинелов сервиса на HTTP.
// Сообщения для 401-путей refresh различимы (invalid/revoked/expired):
// оба токена выпускает сервер, перебора состояний клиентом здесь нет.
func mapError(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "Internal server error"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password"
	case errors.Is(err, service.ErrInactiveUser):
		return http.StatusForbidden, "inactive_user", "Inactive user"
	case errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "token_revoked", "Refresh token has been revoked"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "Refresh token has expired"
	case errors.Is(err, service.ErrUserNotActive):
		return http.StatusUnauthorized, "user_not_active", "User not found or inactive"
	case errors.Is(err, service.ErrSaveRefreshToken):
		return http.StatusUnauthorized, "token_not_saved", "Could not save refresh token"
	case errors.Is(err, service.ErrTokenEncode):
		return http.StatusUnauthorized, "token_error", "Could not create access token"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token", "Invalid refresh token"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken", "Email already registered"
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email", "Invalid email format"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password", "Password is too weak"
	case errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "empty_password", "Password is empty"
	case errors.Is(err, service.ErrInvalidCampaign):
		return http.StatusBadRequest, "invalid_campaign", "Invalid campaign data"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_argument", "Invalid request body"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "Not found"
	default:
		return http.StatusInternalServerError, "internal", "Internal server error"
	}
}
