package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// GeminiClient adapts the Gemini SDK to the ChatClient capability.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiClient wraps an already-constructed SDK client.
func NewGeminiClient(client *genai.Client, defaultModel string) *GeminiClient {
	return &GeminiClient{client: client, defaultModel: defaultModel}
}

// ChatJSON asks Gemini for a JSON response and returns the concatenated
// candidate text.
func (c *GeminiClient) ChatJSON(ctx context.Context, systemMsg, userMsg, model string, maxTokens int) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	m := c.client.GenerativeModel(model)
	m.SetTemperature(0.2)
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemMsg)}}

	resp, err := m.GenerateContent(ctx, genai.Text(userMsg))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return sb.String(), nil
}
