// Package httpx holds the JSON response helpers shared by every handler of the
// assessment API. All endpoints speak JSON exclusively; errors follow a single
// {error, details} envelope so clients can map validation violations uniformly.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope. Details carries the
// field→violation map for validation failures and is omitted otherwise.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. A nil payload serializes as null.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// éviter d'écrire un JSON partiel
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// JSONError writes the error envelope with the given status.
func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}
