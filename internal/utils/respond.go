package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard response shape: {success, message, data?}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: false, Message: message})
}

func JSONData(w http.ResponseWriter, status int, message string, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: true, Message: message, Data: data})
}
