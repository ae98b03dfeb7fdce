package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"osint-challenge-service/internal/app"
	"osint-challenge-service/internal/domain"
	"osint-challenge-service/internal/logger"
)

// WSHandler runs one attempt over a websocket connection. The attempt lives as
// long as the connection does.
type WSHandler struct {
	service  *app.ChallengeService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ChallengeService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS layer in front of the router.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type openedPayload struct {
	Attempt   domain.AttemptSnapshot `json:"attempt"`
	Questions []domain.QuestionView  `json:"questions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the challenge use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	challengeID := r.URL.Query().Get("challengeId")
	if challengeID == "" {
		http.Error(w, "missing challengeId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	questions, err := h.service.Questions(ctx, challengeID)
	if err != nil {
		h.sendError(conn, err)
		return
	}
	attempt, err := h.service.OpenAttempt(ctx, challengeID, LearnerFrom(ctx))
	if err != nil {
		h.sendError(conn, err)
		return
	}
	defer func() {
		_ = h.service.DiscardAttempt(ctx, attempt.ID, challengeID)
	}()

	if err := conn.WriteJSON(outboundMessage[openedPayload]{Type: "opened", Payload: openedPayload{Attempt: attempt, Questions: questions}}); err != nil {
		return
	}

	// Only this loop writes to conn, so submissions are answered in arrival order.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, domain.ErrInvalidInput)
				continue
			}
			result, err := h.service.SubmitAnswer(ctx, attempt.ID, challengeID, payload.QuestionID, payload.Answer)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			cert := result.Certificate
			result.Certificate = nil
			if err := conn.WriteJSON(outboundMessage[domain.SubmissionResult]{Type: "answerResult", Payload: result}); err != nil {
				return
			}
			if cert != nil {
				if err := conn.WriteJSON(outboundMessage[domain.Certificate]{Type: "certificate", Payload: *cert}); err != nil {
					return
				}
			}
		case "progress":
			snapshot, err := h.service.Progress(ctx, attempt.ID, challengeID)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			if err := conn.WriteJSON(outboundMessage[domain.AttemptSnapshot]{Type: "progress", Payload: snapshot}); err != nil {
				return
			}
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}})
		}
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, err error) {
	status, payload := describeError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("ws request failed", "error", err)
	}
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: payload})
}
