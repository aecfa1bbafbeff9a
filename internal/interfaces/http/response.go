package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finanzas/internal/shared/apperr"
	"finanzas/internal/shared/logger"
	"finanzas/internal/shared/middleware"
)

const maxBodySize = 1 << 20 // 1 MiB

type errorResponse struct {
	Error     string `json:"error"`
	Available string `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status of err's kind. Internal errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	resp := errorResponse{Error: err.Error()}

	var funds *apperr.InsufficientFundsError
	if errors.As(err, &funds) {
		resp.Available = funds.Available.StringFixed(2)
	}

	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context(), zerolog.Nop())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Error = "Internal server error"
	}

	writeJSON(w, status, resp)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			writeMessage(w, http.StatusBadRequest, "Request body is required")
		default:
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

// requireUser returns the authenticated user ID or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// pathID returns the {id} path value. Anything that is not a UUID cannot
// exist, so it answers 404.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return "", false
	}
	return id, true
}
