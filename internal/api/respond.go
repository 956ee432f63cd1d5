package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/llamaio/task-api/pkg/apierror"
)

// envelope is the wire shape of every response.
type envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Send writes the response envelope.
func Send(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Message: message, Data: data}); err != nil {
		log.Printf("write response: %v", err)
	}
}

// SendError translates a failure into a response. Typed failures carry their
// own status and message; anything else is logged and surfaced as a generic
// internal failure.
func SendError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		Send(w, apiErr.Status, apiErr.Message, nil)
		return
	}
	log.Printf("%s: %v", fallback, err)
	Send(w, http.StatusInternalServerError, fallback, nil)
}
