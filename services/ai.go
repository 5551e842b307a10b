package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GenOptions bound a single generation call. MaxOutputTokens stays small on
// purpose: the moderation verdict is one word and replies are two sentences.
type GenOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// TextGenerator is the outbound contract to the generative service. It is an
// interface so the moderation and reply components can be exercised with a
// test double that never touches the network.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts GenOptions) (string, error)
}

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("ai: empty response")

// GeminiClient calls the Gemini API through the official SDK. Every call is
// bounded by the configured timeout so a stalled upstream can never hang a
// request handler or a scheduler worker.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient constructs a client for the given API key and model.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("ai: api key is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

var _ TextGenerator = (*GeminiClient)(nil)

// GenerateText issues a single bounded generation request and returns the
// trimmed response text.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, opts GenOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
