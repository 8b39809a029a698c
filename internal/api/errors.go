package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/fontsound-core/internal/bank"
	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// ALCode and ALError are set for fontsound device errors.
	ALCode  int32  `json:"al_code,omitempty"`
	ALError string `json:"al_error,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest          = "bad_request"
	ErrCodeNotFound            = "not_found"
	ErrCodeConflict            = "conflict"
	ErrCodeInternal            = "internal_error"
	ErrCodeValidation          = "validation_error"
	ErrCodeMethodNotAllow      = "method_not_allowed"
	ErrCodeInsufficientStorage = "insufficient_storage"
	ErrCodePayloadTooLarge     = "payload_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeBodyError reports a request body that could not be decoded.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		return
	}
	writeBadRequest(w, "invalid JSON body")
}

// writeDeviceError maps a fontsound error onto its HTTP status and
// includes the AL error code.
func writeDeviceError(w http.ResponseWriter, err error) {
	code := fontsound.CodeOf(err)
	status, errCode := http.StatusConflict, ErrCodeConflict
	switch code {
	case fontsound.InvalidName:
		status, errCode = http.StatusNotFound, ErrCodeNotFound
	case fontsound.InvalidValue:
		status, errCode = http.StatusBadRequest, ErrCodeValidation
	case fontsound.InvalidEnum:
		status, errCode = http.StatusBadRequest, ErrCodeBadRequest
	case fontsound.OutOfMemory:
		status, errCode = http.StatusInsufficientStorage, ErrCodeInsufficientStorage
	}
	writeJSON(w, status, Error{
		Status:  status,
		Code:    errCode,
		Message: err.Error(),
		ALCode:  int32(code),
		ALError: code.String(),
	})
}

// writeBankError maps bank and device errors raised by bank operations.
func writeBankError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bank.ErrNotFound):
		writeNotFound(w, "bank not found")
	case errors.Is(err, bank.ErrExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, bank.ErrInvalidName),
		errors.Is(err, bank.ErrInvalidBank),
		errors.Is(err, bank.ErrUnsupportedVersion):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case isDeviceError(err):
		writeDeviceError(w, err)
	default:
		writeInternalError(w, "bank operation failed")
	}
}

func isDeviceError(err error) bool {
	for _, target := range []error{
		fontsound.ErrInvalidName,
		fontsound.ErrInvalidEnum,
		fontsound.ErrInvalidValue,
		fontsound.ErrInvalidOperation,
		fontsound.ErrOutOfMemory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
