// Package openai implements llm.Provider against an OpenAI-compatible
// chat-completions API. Both classification and generation use structured
// JSON outputs; every model payload is validated against its schema before
// it is trusted.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/svaldes/parlante/internal/domain"
	"github.com/svaldes/parlante/internal/llm"
)

const defaultModel = "gpt-4o-mini"

// Config holds provider construction options.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://api.openai.com
	Model   string // defaults to gpt-4o-mini
	Prompts llm.Prompts
	Client  *http.Client // optional; callers set a timeout here
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	prompts llm.Prompts
	httpc   *http.Client

	detectionSchema *jsonschema.Schema
	replySchema     *jsonschema.Schema
}

var _ llm.Provider = (*Client)(nil)

// New creates a provider client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	httpc := cfg.Client
	if httpc == nil {
		httpc = &http.Client{}
	}

	detection, err := compileSchema(detectionSchema)
	if err != nil {
		return nil, fmt.Errorf("compile detection schema: %w", err)
	}
	reply, err := compileSchema(replySchema)
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}

	return &Client{
		apiKey:          strings.TrimSpace(cfg.APIKey),
		baseURL:         base,
		model:           model,
		prompts:         cfg.Prompts,
		httpc:           httpc,
		detectionSchema: detection,
		replySchema:     reply,
	}, nil
}

// detectionSchema mirrors domain.Detection on the wire. Strict structured
// outputs require every property listed in required, so optional fields are
// nullable instead of absent.
var detectionSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"identified": map[string]any{"type": "boolean"},
		"name":       map[string]any{"type": []any{"string", "null"}},
		"kind":       map[string]any{"type": "string", "enum": []any{"assertion", "reference", "none"}},
	},
	"required": []any{"identified", "name", "kind"},
}

var replySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"message":              map[string]any{"type": "string"},
		"active_speaker":       map[string]any{"type": []any{"string", "null"}},
		"needs_identification": map[string]any{"type": "boolean"},
	},
	"required": []any{"message", "active_speaker", "needs_identification"},
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", strings.NewReader(string(b))); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

// Classify asks the model whether the utterance identifies its speaker.
func (c *Client) Classify(ctx context.Context, utterance string) (domain.Detection, error) {
	msgs := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(c.prompts.Detector, utterance)},
	}
	raw, err := c.complete(ctx, msgs, "speaker_detection", detectionSchema)
	if err != nil {
		return domain.Detection{}, err
	}

	var payload struct {
		Identified bool    `json:"identified"`
		Name       *string `json:"name"`
		Kind       string  `json:"kind"`
	}
	if err := c.decodeStructured(c.detectionSchema, raw, &payload); err != nil {
		return domain.Detection{}, fmt.Errorf("detection output: %w", err)
	}

	det := domain.Detection{Identified: payload.Identified, Kind: domain.DetectionKind(payload.Kind)}
	if payload.Name != nil {
		det.Name = *payload.Name
	}
	switch det.Kind {
	case domain.DetectionAssertion, domain.DetectionReference, domain.DetectionNone:
	default:
		det.Kind = domain.DetectionNone
	}
	return det, nil
}

// Generate produces a reply conditioned on the speaker's full history, older
// turns first.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (domain.Reply, error) {
	msgs := make([]chatMessage, 0, len(req.History)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: fmt.Sprintf(c.prompts.System, req.Speaker)})
	for _, m := range req.History {
		msgs = append(msgs, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Utterance})

	raw, err := c.complete(ctx, msgs, "chat_reply", replySchema)
	if err != nil {
		return domain.Reply{}, err
	}

	var payload struct {
		Message             string  `json:"message"`
		ActiveSpeaker       *string `json:"active_speaker"`
		NeedsIdentification bool    `json:"needs_identification"`
	}
	if err := c.decodeStructured(c.replySchema, raw, &payload); err != nil {
		return domain.Reply{}, fmt.Errorf("reply output: %w", err)
	}

	reply := domain.Reply{
		Message:             payload.Message,
		NeedsIdentification: payload.NeedsIdentification,
	}
	if payload.ActiveSpeaker != nil {
		reply.ActiveSpeaker = *payload.ActiveSpeaker
	}
	return reply, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// complete performs one chat-completions call with a strict JSON-schema
// response format and returns the raw structured content.
func (c *Client) complete(ctx context.Context, msgs []chatMessage, schemaName string, schema map[string]any) ([]byte, error) {
	body := map[string]any{
		"model":       c.model,
		"messages":    msgs,
		"temperature": 0,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		},
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat.completions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat.completions failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat.completions returned no choices")
	}
	return []byte(completion.Choices[0].Message.Content), nil
}

// decodeStructured validates the model's JSON against the compiled schema
// before unmarshalling it into v.
func (c *Client) decodeStructured(schema *jsonschema.Schema, raw []byte, v any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return json.Unmarshal(raw, v)
}
