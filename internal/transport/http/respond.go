package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"osint-challenge-service/internal/domain"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := describeError(err)
	writeJSON(w, status, errorBody{Error: payload})
}

// describeError maps engine errors to a status code and a stable error code.
func describeError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, domain.ErrChallengeNotFound):
		return http.StatusNotFound, errorPayload{Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrUnknownQuestion):
		return http.StatusNotFound, errorPayload{Code: "unknown_question", Message: err.Error()}
	case errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound, errorPayload{Code: "attempt_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorPayload{Code: "invalid_input", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Code: "unauthorized", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Code: "internal", Message: "internal error"}
	}
}
