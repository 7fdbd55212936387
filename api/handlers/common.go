package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// ErrorResponse is the single error envelope every endpoint uses. Field
// names the offending request field for validation errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the canonical error envelope. Exported for the api
// package's middleware.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Field: field})
}

var errBadBody = errors.New("invalid request body")

// decodeJSON reads a bounded request body into dst. An empty body is an
// error; endpoints with optional bodies handle that before calling.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return errBadBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errBadBody
	}
	return nil
}
