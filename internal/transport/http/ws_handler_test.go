package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
	"reading-hero-service/internal/generator"
	"reading-hero-service/internal/infra/memory"
	"reading-hero-service/internal/progress"
)

func TestWebSocketQuizFlow(t *testing.T) {
	backend := memory.NewProgressStore()
	server := newTestServer(backend)
	defer server.Close()

	conn := dial(t, server, "noa")
	defer conn.Close()

	// Expect the setup screen first.
	_, payload := readNext(conn, t, "state")
	if payload["state"] != "setup" {
		t.Fatalf("expected setup, got %v", payload["state"])
	}

	send(t, conn, "startQuiz", domain.Settings{Topic: "חלל", TextLength: 10, QuestionCount: 1})
	quiz := readUntilState(conn, t, "quiz")
	q := quiz["quiz"].(map[string]any)
	if _, leaked := q["correctOptionIds"]; leaked {
		t.Fatalf("correct answers sent before submit: %v", q)
	}

	send(t, conn, "select", map[string]any{"optionId": "ב"})
	send(t, conn, "submit", nil)
	send(t, conn, "next", nil)
	results := readUntilState(conn, t, "results")
	r := results["results"].(map[string]any)
	if r["score"] != float64(100) || r["pointsEarned"] != float64(10) {
		t.Fatalf("unexpected results %v", r)
	}

	send(t, conn, "shop", nil)
	readUntilState(conn, t, "shop")
	send(t, conn, "buy", map[string]any{"itemId": "theme_green"})
	if typ, _ := readUntilType(conn, t, "refused", "error"); typ != "refused" {
		t.Fatalf("expected refusal, got %s", typ)
	}

	raw, err := backend.LoadProgress(t.Context(), catalog.StorageKey+":noa")
	if err != nil {
		t.Fatalf("expected progress saved under profile key: %v", err)
	}
	var rec domain.ProgressRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.TotalPoints != 10 {
		t.Fatalf("unexpected stored progress %s (%v)", raw, err)
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server := newTestServer(memory.NewProgressStore())
	defer server.Close()

	conn := dial(t, server, "")
	defer conn.Close()
	readNext(conn, t, "state")

	send(t, conn, "dance", nil)
	if _, payload := readNext(conn, t, "error"); payload["message"] != errUnsupported.Error() {
		t.Fatalf("unexpected error payload %v", payload)
	}

	send(t, conn, "submit", nil)
	readNext(conn, t, "error")

	send(t, conn, "startQuiz", map[string]any{"questionCount": 50, "textLength": 10})
	readNext(conn, t, "error")
}

func TestWebSocketSuggestTopic(t *testing.T) {
	server := newTestServer(memory.NewProgressStore())
	defer server.Close()

	conn := dial(t, server, "")
	defer conn.Close()
	readNext(conn, t, "state")

	send(t, conn, "suggestTopic", nil)
	_, payload := readNext(conn, t, "topic")
	if topic, _ := payload["topic"].(string); topic == "" {
		t.Fatalf("expected a topic, got %v", payload)
	}
}

func TestWebSocketRejectsBadProfile(t *testing.T) {
	server := newTestServer(memory.NewProgressStore())
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?profile=a:b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServeCatalog(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeCatalog(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items        []map[string]any `json:"items"`
		Achievements []map[string]any `json:"achievements"`
		Topics       []string         `json:"topics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != len(catalog.Items()) || len(body.Achievements) != len(catalog.Achievements()) || len(body.Topics) == 0 {
		t.Fatalf("unexpected catalog %+v", body)
	}

	rec = httptest.NewRecorder()
	ServeCatalog(rec, httptest.NewRequest(http.MethodPost, "/api/catalog", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func newTestServer(backend progress.Backend) *httptest.Server {
	wsHandler := NewWSHandler(progress.NewRegistry(backend, ""), generator.NewStatic(domain.QuizDocument{}))
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, profile string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?profile=" + profile
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
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

// readUntilState skips messages until a state view for want arrives.
func readUntilState(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == "error" {
			t.Fatalf("unexpected error while waiting for %s: %v", want, payload)
		}
		if typ == "state" && payload["state"] == want {
			return payload
		}
	}
	t.Fatalf("state %s never arrived", want)
	return nil
}

func readUntilType(conn *websocket.Conn, t *testing.T, types ...string) (string, map[string]any) {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t, "")
		for _, want := range types {
			if typ == want {
				return typ, payload
			}
		}
	}
	t.Fatalf("none of %v arrived", types)
	return "", nil
}
