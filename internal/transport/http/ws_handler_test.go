package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?challengeId=C1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect opened event first.
	_, payload := readNext(conn, t, "opened")
	questions, _ := payload["questions"].([]any)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %v", payload["questions"])
	}

	answers := map[string]string{"q1": "192.168.1.100", "q2": "80", "q3": "UBUNTU "}
	for _, id := range []string{"q1", "q2", "q3"} {
		msg := map[string]any{
			"type":    "answer",
			"payload": map[string]any{"questionId": id, "answer": answers[id]},
		}
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write answer: %v", err)
		}
		_, result := readNext(conn, t, "answerResult")
		if result["verdict"] != true {
			t.Fatalf("expected correct verdict for %s, got %v", id, result)
		}
	}

	_, cert := readNext(conn, t, "certificate")
	if cert["challengeId"] != "C1" || cert["points"] != float64(120) {
		t.Fatalf("unexpected certificate %v", cert)
	}
}

func TestWebSocketReportsErrors(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws?challengeId=C1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "opened")

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"questionId": "q1", "answer": ""}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["code"] != "invalid_input" {
		t.Fatalf("expected invalid_input, got %v", payload)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
