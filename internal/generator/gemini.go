package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
	"reading-hero-service/internal/domain"
)

const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-2.5-flash"
)

var errEmptyResponse = errors.New("empty response from model")

// GeminiConfig configures the Gemini client. Zero values fall back to defaults.
type GeminiConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Gemini talks to the generateContent REST endpoint.
type Gemini struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	sf      singleflight.Group
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.URL == "" {
		cfg.URL = DefaultGeminiURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Gemini{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate asks the model for a quiz document. Every failure is a *domain.GenerationError.
func (g *Gemini) Generate(ctx context.Context, settings domain.Settings) (domain.QuizDocument, error) {
	text, err := g.generateContent(ctx, QuizPrompt(settings), quizSchema())
	if err != nil {
		return domain.QuizDocument{}, &domain.GenerationError{Err: err}
	}

	var doc domain.QuizDocument
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &doc); err != nil {
		return domain.QuizDocument{}, &domain.GenerationError{Err: fmt.Errorf("decode quiz: %w", err)}
	}
	doc = Normalize(doc)
	if err := doc.Validate(); err != nil {
		return domain.QuizDocument{}, &domain.GenerationError{Err: err}
	}
	return doc, nil
}

// SuggestTopic asks the model for a short topic. Concurrent callers share one upstream request.
func (g *Gemini) SuggestTopic(ctx context.Context) (string, error) {
	v, err, _ := g.sf.Do("topic", func() (interface{}, error) {
		text, err := g.generateContent(ctx, topicPrompt, nil)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) generateContent(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []contentPart{{Text: prompt}}}},
	}
	if schema != nil {
		body.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("model returned status %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	var sb strings.Builder
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite the mime type.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
