package httpapi

import (
	"encoding/json"
	"net/http"
)

// Mensagens públicas. Nada além disso chega ao cliente.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgUnsupportedType  = "Content-Type must be application/json"
	msgInvalidJSON      = "Invalid JSON body"
	msgDispatchFailed   = "Failed to send message. Please try again."
	msgNotFound         = "Not found"
)

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
