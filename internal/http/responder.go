package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/persistence"
)

var (
	errBadRequestBody      = errors.New("Неверный формат запроса.")
	errInvalidClientID     = errors.New("Неверный идентификатор клиента.")
	errInvalidEventID      = errors.New("Неверный идентификатор встречи.")
	errMissingSessionToken = errors.New("Укажите токен авторизации.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var storeErr *persistence.StoreError

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Недостаточно прав для выполнения операции.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Запрашиваемый ресурс не найден."})
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "STATUS_INVALID_TRANSITION",
			Message:   "Недопустимый переход статуса.",
		})
	case errors.As(err, &storeErr):
		r.loggerFor(ctx).ErrorContext(ctx, "store failure", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Внутренняя ошибка сервера."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Проверьте правильность заполнения полей.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Внутренняя ошибка сервера."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Неверный формат запроса."
	case http.StatusUnauthorized:
		return "Требуется авторизация."
	case http.StatusForbidden:
		return "Недостаточно прав для выполнения операции."
	case http.StatusNotFound:
		return "Запрашиваемый ресурс не найден."
	case http.StatusConflict:
		return "Недопустимый переход статуса."
	case http.StatusUnprocessableEntity:
		return "Проверьте правильность заполнения полей."
	default:
		return "Внутренняя ошибка сервера."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "full name is required":
		return "ФИО обязательно для заполнения."
	case "employee is required":
		return "Укажите сотрудника."
	case "employee does not exist":
		return "Указанный сотрудник не существует."
	case "unknown client source":
		return "Неизвестный источник клиента."
	case "unknown status":
		return "Неизвестный статус клиента."
	case "title is required":
		return "Название встречи обязательно для заполнения."
	case "start time is required":
		return "Укажите дату и время встречи."
	case "unknown meeting type":
		return "Неизвестный тип встречи."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
