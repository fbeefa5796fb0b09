package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/svaldes/parlante/internal/domain"
	"github.com/svaldes/parlante/internal/llm"
)

// completionBody wraps content the way chat.completions returns it.
func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Prompts: llm.DefaultPrompts(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestClassifyParsesStructuredOutput(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"identified":true,"name":"Pablo","kind":"assertion"}`)))
	})

	det, err := c.Classify(context.Background(), "Soy Pablo")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !det.Identified || det.Name != "Pablo" || det.Kind != domain.DetectionAssertion {
		t.Errorf("unexpected detection: %+v", det)
	}
}

func TestClassifyNullName(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`{"identified":false,"name":null,"kind":"none"}`)))
	})

	det, err := c.Classify(context.Background(), "¿Cómo estás?")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if det.Identified || det.Name != "" || det.Kind != domain.DetectionNone {
		t.Errorf("unexpected detection: %+v", det)
	}
}

func TestClassifyRejectsPayloadOutsideSchema(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// kind missing entirely; strict schema requires it.
		_, _ = w.Write([]byte(completionBody(`{"identified":true,"name":"Pablo"}`)))
	})

	if _, err := c.Classify(context.Background(), "Soy Pablo"); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestGenerateBuildsPromptFromHistory(t *testing.T) {
	t.Parallel()

	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(completionBody(`{"message":"Tu color favorito es azul","active_speaker":"pablo","needs_identification":false}`)))
	})

	reply, err := c.Generate(context.Background(), llm.GenerateRequest{
		Speaker:   "pablo",
		Utterance: "¿Cuál es mi color favorito?",
		History: []domain.Message{
			{Role: domain.RoleUser, Content: "mi color favorito es azul"},
			{Role: domain.RoleAssistant, Content: "anotado"},
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply.Message != "Tu color favorito es azul" || reply.ActiveSpeaker != "pablo" || reply.NeedsIdentification {
		t.Errorf("unexpected reply: %+v", reply)
	}

	if captured.Model != defaultModel {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 prompt messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || !strings.Contains(captured.Messages[0].Content, "pablo") {
		t.Errorf("system message does not name the speaker: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[2].Role != "assistant" {
		t.Errorf("history not replayed in order: %+v", captured.Messages[1:3])
	}
	if last := captured.Messages[3]; last.Role != "user" || last.Content != "¿Cuál es mi color favorito?" {
		t.Errorf("utterance is not the final message: %+v", last)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	if _, err := c.Generate(context.Background(), llm.GenerateRequest{Speaker: "ana", Utterance: "hola"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
