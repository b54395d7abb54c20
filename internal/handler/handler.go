package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", code).Int("status", status).Msg(message)
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to a response. Domain errors keep
// their code and message; anything else is reported as fallback.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: fallback,
		})
		return
	}

	message := de.Message
	if err != de {
		// keeps the field details added by validation
		message = err.Error()
	}
	writeError(w, statusForCode(de.Code), de.Code, message, logger)
}

// statusForCode returns the HTTP status for a domain error code.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound, model.ErrCodeCartLineNotFound:
		return http.StatusNotFound
	case model.ErrCodeOutOfStock, model.ErrCodeCatalogAlreadyImported:
		return http.StatusConflict
	case model.ErrCodeAmountMismatch, model.ErrCodeMissingOrderID, model.ErrCodeMissingOrderItemID,
		model.ErrCodeEmptyCart:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}
