package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"osint-challenge-service/internal/app"
	"osint-challenge-service/internal/domain"
	"osint-challenge-service/internal/logger"
)

// Handler exposes the challenge use cases as JSON endpoints.
type Handler struct {
	service *app.ChallengeService
	log     *logger.Logger
}

func NewHandler(service *app.ChallengeService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type submitRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

func (h *Handler) listChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListChallenges(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context(), chi.URLParam(r, "challengeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) openAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.OpenAttempt(r.Context(), chi.URLParam(r, "challengeID"), LearnerFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.Progress(r.Context(), chi.URLParam(r, "attemptID"), chi.URLParam(r, "challengeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) discardAttempt(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DiscardAttempt(r.Context(), chi.URLParam(r, "attemptID"), chi.URLParam(r, "challengeID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorPayload{Code: "invalid_input", Message: "malformed request body"}})
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(),
		chi.URLParam(r, "attemptID"),
		chi.URLParam(r, "challengeID"),
		req.QuestionID,
		req.Answer,
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) certificates(w http.ResponseWriter, r *http.Request) {
	learner := LearnerFrom(r.Context())
	if learner == "" {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	certs, err := h.service.Certificates(r.Context(), learner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := describeError(err); status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}
