package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

const chatTimeout = 180 * time.Second

// OllamaClient talks to an Ollama server. ChatJSON hits /api/chat with JSON
// format enforcement and falls back to /api/generate when the chat endpoint
// yields nothing usable.
type OllamaClient struct {
	http         *resty.Client
	defaultModel string
	logger       hclog.Logger
}

// NewOllamaClient builds a client for the given base URL (no trailing slash).
func NewOllamaClient(baseURL, defaultModel string, logger hclog.Logger) *OllamaClient {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &OllamaClient{
		http:         resty.New().SetBaseURL(baseURL).SetTimeout(chatTimeout),
		defaultModel: defaultModel,
		logger:       logger.Named("ollama"),
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatResponse struct {
	Message  ollamaMessage `json:"message"`
	Response string        `json:"response"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// ChatJSON sends a system/user prompt pair and returns the raw model text.
func (c *OllamaClient) ChatJSON(ctx context.Context, systemMsg, userMsg, model string, maxTokens int) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	var chatResp ollamaChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ollamaChatRequest{
			Model: model,
			Messages: []ollamaMessage{
				{Role: "system", Content: systemMsg},
				{Role: "user", Content: userMsg},
			},
			Stream:  false,
			Format:  "json",
			Options: ollamaOptions{Temperature: 0.2, NumPredict: maxTokens},
		}).
		SetResult(&chatResp).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama chat: status %d", resp.StatusCode())
	}

	text := chatResp.Message.Content
	if text == "" {
		text = chatResp.Response
	}
	if text != "" {
		return text, nil
	}

	// Some models answer /api/chat with an empty message; retry the same
	// prompt through /api/generate before giving up.
	c.logger.Warn("chat endpoint returned empty content, falling back to generate", "model", model)
	return c.generate(ctx, systemMsg+"\n\n"+userMsg, model, maxTokens)
}

func (c *OllamaClient) generate(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	var genResp ollamaGenerateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{
			Model:   model,
			Prompt:  prompt,
			Stream:  false,
			Format:  "json",
			Options: ollamaOptions{Temperature: 0.2, NumPredict: maxTokens},
		}).
		SetResult(&genResp).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama generate: status %d", resp.StatusCode())
	}
	return genResp.Response, nil
}

// Ping checks backend reachability with a short deadline.
func (c *OllamaClient) Ping(ctx context.Context) error {
	shortCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	resp, err := c.http.R().SetContext(shortCtx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ollama tags: status %d", resp.StatusCode())
	}
	return nil
}
