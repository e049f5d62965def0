// internal/app/features/respond/respond.go
//
// Shared JSON envelope for the API. Every response carries a
// "success" flag; errors add a message, successes wrap the payload
// under "data".
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies (1 MiB).
const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes v under the success envelope with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: v})
}

// OK writes a 200 success response.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created writes a 201 success response.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Fail writes an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// Error maps a service error onto an HTTP status. Domain errors keep
// their message; anything unrecognized is logged and hidden behind a
// generic 500 so internals never leak to clients.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrBadCredentials):
		Fail(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, apperr.ErrForbidden):
		Fail(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrNotFound):
		Fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrLocked):
		Fail(w, http.StatusLocked, "account temporarily locked")
	case errors.Is(err, apperr.ErrChannelDisabled):
		Fail(w, http.StatusServiceUnavailable, "feature not configured")
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}

// Decode parses a JSON request body into v with a size cap.
func Decode(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.ErrValidation
	}
	return nil
}
