package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"FieldOps/internal/config"
	"FieldOps/internal/ports"
)

// GeminiGenerator implements ports.TextGenerator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ ports.TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator builds a client for the Gemini developer API. A nil
// httpClient uses the SDK default.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Name identifies the provider in usage records.
func (g *GeminiGenerator) Name() string { return "gemini" }

// Generate sends prompt as a single user turn and asks for a JSON reply.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Provider: g.Name(), Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return text, nil
}
