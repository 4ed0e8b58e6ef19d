package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"shield-quiz-service/internal/domain"
)

const maxBodyBytes = 1 << 20

const msgInvalidPayload = "Invalid JSON payload."

var errInvalidPayload = errors.New("invalid JSON payload")

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
// The raw bytes are returned for handlers that need to inspect extra keys.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidPayload
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, errInvalidPayload
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a core error onto an HTTP status and a client-facing message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedRole):
		writeMessage(w, http.StatusBadRequest, "Invalid role.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound):
		writeMessage(w, http.StatusNotFound, "Quiz not found.")
	case errors.Is(err, domain.ErrAttemptNotFound):
		writeMessage(w, http.StatusNotFound, "Attempt not found.")
	case errors.Is(err, domain.ErrQuestionNotFound):
		writeMessage(w, http.StatusNotFound, "Question not found.")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}
