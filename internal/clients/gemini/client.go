// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 512
)

// Client generates text with a Gemini model.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
	log       zerolog.Logger
}

// NewClient creates a new Gemini client. An empty model uses DefaultModel.
func NewClient(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client:    genaiClient,
		model:     model,
		maxTokens: defaultMaxTokens,
		log:       log.With().Str("client", "gemini").Logger(),
	}, nil
}

// Model returns the model name in use.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates text from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Generating content")

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: c.maxTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractText(result)
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text in response")
	}
	return text, nil
}
