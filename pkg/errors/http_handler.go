package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Error ErrorResponse `json:"error"`
}

func Envelope(appErr *AppError) ErrorEnvelope {
	return ErrorEnvelope{Error: ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}}
}

// WriteError renders err as a JSON error body. Errors that are not an
// AppError are reported as INTERNAL_ERROR without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(Envelope(appErr))
}
