package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gamebridge.io/internal/domain/entity"
)

// Error codes surfaced at the API boundary.
const (
	CodeInvalidSession       = "INVALID_SESSION"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidIntent        = "INVALID_INTENT"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeUUIDMappingFailed    = "UUID_MAPPING_FAILED"
	CodeInvalidHMACSignature = "INVALID_HMAC_SIGNATURE"
	CodeSignatureGeneration  = "SIGNATURE_GENERATION_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Response is the standard API envelope.
type Response struct {
	Success   bool    `json:"success"`
	ErrorCode *string `json:"errorCode,omitempty"`
	Data      any     `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, Response{Success: false, ErrorCode: &code})
}

// mapError translates domain errors to an HTTP status and boundary code.
// Signing failures are 500-class: they indicate process misconfiguration,
// not a client mistake.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrMissingUUID),
		errors.Is(err, entity.ErrMissingUserSig),
		errors.Is(err, entity.ErrMissingUserAddress),
		errors.Is(err, entity.ErrMissingProjectID),
		errors.Is(err, entity.ErrMissingDigest),
		errors.Is(err, entity.ErrMissingIntent),
		errors.Is(err, entity.ErrUUIDNotFound):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, entity.ErrMethodNotAllowed),
		errors.Is(err, entity.ErrEmptyFrom),
		errors.Is(err, entity.ErrInvalidFromType):
		return http.StatusBadRequest, CodeInvalidIntent
	case errors.Is(err, entity.ErrInsufficientBalance),
		errors.Is(err, entity.ErrAssetNotFound):
		return http.StatusBadRequest, CodeInsufficientBalance
	case errors.Is(err, entity.ErrUUIDAlreadyBound):
		return http.StatusConflict, CodeUUIDMappingFailed
	case errors.Is(err, entity.ErrInvalidDigest),
		errors.Is(err, entity.ErrSignatureGeneration):
		return http.StatusInternalServerError, CodeSignatureGeneration
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
