package server

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorBody is the {title, message} shape of every error the backend sends,
// except 401 which carries {"error": "Unauthorized"}.
type ErrorBody struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeJSONError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, ErrorBody{Title: title, Message: message})
}
