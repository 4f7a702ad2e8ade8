package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse is the control surface's error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// writeError maps an error to a status and a coded body. Domain errors keep
// their code; backend rejections are surfaced verbatim so the operator sees
// the backend's reason.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeQueueWriteFailed, model.ErrCodeInternalError:
			status = http.StatusInternalServerError
		case model.ErrCodeItemNotInCart:
			status = http.StatusNotFound
		}
		logger.Warn().Str("code", domainErr.Code).Str("error", domainErr.Message).Msg("handler error")
		writeJSON(w, status, ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	var rejection *model.RejectionError
	if errors.As(err, &rejection) {
		logger.Warn().Int("backend_status", rejection.StatusCode).Msg("order rejected by backend")
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   model.ErrCodeOrderRejected,
			Message: rejection.Error(),
		})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal error",
	})
}

// writeBadRequest is the shortcut for malformed input.
func writeBadRequest(w http.ResponseWriter, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Msg("bad request")
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}
