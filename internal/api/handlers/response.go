package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shop-backend/internal/repository"
)

type apiMessage struct {
	Message string `json:"message"`
	// Error carries the underlying cause on the order-placement path only.
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiMessage{Message: message})
}

// writeRepoError maps the repository sentinels onto the HTTP taxonomy.
// Store-level detail never reaches the client on the 500 path.
func writeRepoError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, fallback+" not found")
	case errors.Is(err, repository.ErrInvalidInput), errors.Is(err, repository.ErrDuplicate):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "Error processing "+fallback)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	return true
}
