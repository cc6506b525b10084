package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"kakeibo/internal/backend"
	"kakeibo/internal/core"
	"kakeibo/internal/gemini"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
	"kakeibo/internal/storage"
)

// RetryAfterSeconds is sent with every 429.
const RetryAfterSeconds = 60

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps an error onto its HTTP status and the error type used in
// logs.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidMapping),
		errors.Is(err, storage.ErrInvalidName):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, ledger.ErrRateLimited), errors.Is(err, gemini.ErrRateLimited):
		return http.StatusTooManyRequests, log.ErrorTypeRateLimited
	case errors.Is(err, backend.ErrNoWorkbook), errors.Is(err, backend.ErrIncompleteCredentials):
		return http.StatusUnauthorized, log.ErrorTypeAuth
	case errors.Is(err, storage.ErrPresetNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrPresetExists):
		return http.StatusConflict, log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// writeError logs err and answers with its mapped status. Internal errors
// are logged at error level, caller mistakes at warn.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := errorStatus(err)
	logger := log.FromContext(r.Context())
	args := []any{
		log.FieldOperation, op,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldStatusCode, status,
		log.FieldErrorType, errType,
		log.FieldError, err.Error(),
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", args...)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", args...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, please try again later"})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid api key"})
}
