package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"reading-hero-service/internal/domain"
)

func TestGeminiGenerate(t *testing.T) {
	doc := NewStatic(domain.QuizDocument{}).doc
	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		writeCandidate(t, w, mustJSON(t, doc))
	}))
	defer server.Close()

	g := NewGemini(GeminiConfig{URL: server.URL, APIKey: "secret", Timeout: 5 * time.Second})
	got, err := g.Generate(context.Background(), domain.Settings{Topic: "חלל", TextLength: 40, QuestionCount: 5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Title != doc.Title || len(got.Questions) != len(doc.Questions) {
		t.Fatalf("unexpected document %+v", got)
	}
	if gotPath != "/v1beta/models/"+DefaultGeminiModel+":generateContent" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	cfg, ok := gotBody["generationConfig"].(map[string]any)
	if !ok || cfg["responseMimeType"] != "application/json" || cfg["responseSchema"] == nil {
		t.Fatalf("expected json schema config, got %v", gotBody["generationConfig"])
	}
}

func TestGeminiGenerateFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		},
		"empty": func(w http.ResponseWriter, r *http.Request) {
			writeCandidate(t, w, "  ")
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			writeCandidate(t, w, "here is your quiz!")
		},
		"no questions": func(w http.ResponseWriter, r *http.Request) {
			writeCandidate(t, w, `{"title":"x","content":"y","questions":[]}`)
		},
		"garbage envelope": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewGemini(GeminiConfig{URL: server.URL}).Generate(context.Background(), domain.Settings{QuestionCount: 3, TextLength: 10})
			var genErr *domain.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
		})
	}
}

func TestGeminiGenerateStripsFenceAndNormalizes(t *testing.T) {
	body := "```json\n" + `{"title":"t","content":"c","questions":[{"id":1,"text":"q","options":[{"id":"א","text":"1"},{"id":"ב","text":"2"}],"correctOptionIds":["א","ב","א"],"explanation":"e","isMultipleChoice":false}]}` + "\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCandidate(t, w, body)
	}))
	defer server.Close()

	doc, err := NewGemini(GeminiConfig{URL: server.URL}).Generate(context.Background(), domain.Settings{QuestionCount: 1, TextLength: 10})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	q := doc.Questions[0]
	if !q.IsMultipleChoice || len(q.CorrectOptionIDs) != 2 {
		t.Fatalf("expected normalized multiple-choice question, got %+v", q)
	}
}

func TestGeminiSuggestTopic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "generationConfig") {
			t.Errorf("topic request must not ask for JSON")
		}
		writeCandidate(t, w, "  הרפתקה בחלל\n")
	}))
	defer server.Close()

	topic, err := NewGemini(GeminiConfig{URL: server.URL}).SuggestTopic(context.Background())
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if topic != "הרפתקה בחלל" {
		t.Fatalf("expected trimmed topic, got %q", topic)
	}
}

func TestQuizPrompt(t *testing.T) {
	p := QuizPrompt(domain.Settings{Topic: "לגו", TextLength: 40, QuestionCount: 7, IncludeBonus: true})
	for _, want := range []string{"Topic: לגו.", "40 lines", "questions: 7.", "Include Bonus Section: true."} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if !strings.Contains(QuizPrompt(domain.Settings{}), "Topic: General Interest.") {
		t.Fatalf("expected default topic for empty setting")
	}
}

func TestStaticGenerate(t *testing.T) {
	s := NewStatic(domain.QuizDocument{})

	doc, err := s.Generate(context.Background(), domain.Settings{QuestionCount: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(doc.Questions) != 2 || doc.HasBonus() {
		t.Fatalf("expected two questions without bonus, got %d bonus=%v", len(doc.Questions), doc.HasBonus())
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("static story invalid: %v", err)
	}

	doc, _ = s.Generate(context.Background(), domain.Settings{QuestionCount: 20, IncludeBonus: true})
	if len(doc.Questions) != len(s.doc.Questions) || !doc.HasBonus() {
		t.Fatalf("expected full story with bonus")
	}

	topic, err := s.SuggestTopic(context.Background())
	if err != nil || topic == "" {
		t.Fatalf("expected a topic, got %q %v", topic, err)
	}
}

func TestThrottledHonoursContext(t *testing.T) {
	th := NewThrottled(NewStatic(domain.QuizDocument{}), 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := th.Generate(ctx, domain.Settings{QuestionCount: 1})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestThrottledPassesThrough(t *testing.T) {
	th := NewThrottled(NewStatic(domain.QuizDocument{}), 0, 0)
	for i := 0; i < 3; i++ {
		if _, err := th.Generate(context.Background(), domain.Settings{QuestionCount: 1}); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}
}

func writeCandidate(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("שגיאה ", 60)
	for n := 1; n < 12; n++ {
		got := truncate(body, n)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%d) split a rune: %q", n, got)
		}
		if len(strings.TrimSuffix(got, "...")) > n {
			t.Fatalf("truncate(%d) too long: %q", n, got)
		}
	}
	if got := truncate("short", 256); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
}
