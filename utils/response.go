package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// codedError is implemented by domain errors that know their HTTP mapping
type codedError interface {
	error
	HTTPStatus() int
	ErrorCode() string
	ErrorDetails() map[string]interface{}
}

// WriteError writes err using its own status and code when it carries them.
// Anything else is logged and reported as a generic retryable 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var ce codedError
	if errors.As(err, &ce) {
		resp := APIResponse{Success: false, Message: ce.Error(), Code: ce.ErrorCode()}
		if d := ce.ErrorDetails(); len(d) > 0 {
			resp.Data = d
		}
		WriteJSON(w, ce.HTTPStatus(), resp)
		return
	}
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Any("request_id", r.Context().Value(RequestIDKey)),
		zap.Error(err),
	)
	WriteJSON(w, http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: "Something went wrong. Please try again.",
		Code:    "internal_error",
	})
}

// StringPtr returns nil for blank strings
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
