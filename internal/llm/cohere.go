package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const jsonPreamble = "Respond with exactly one JSON object. No markdown, no explanation."

// CohereClient implements Client for the Cohere chat API
type CohereClient struct {
	client *cohereclient.Client
	config *Config
}

// NewCohereClient creates a new Cohere client
func NewCohereClient(config *Config, apiKey string) (*CohereClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultCohereConfig()
	}

	httpClient := &http.Client{Timeout: 90 * time.Second}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereClient{client: client, config: config}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *CohereClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.chat(ctx, prompt, tier, "")
}

// GenerateJSON generates JSON content using the specified model tier
func (c *CohereClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.chat(ctx, prompt, tier, jsonPreamble)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *CohereClient) chat(ctx context.Context, prompt string, tier ModelTier, preamble string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	temperature := c.config.Temperature
	req := &cohere.ChatRequest{
		Message:     prompt,
		Model:       &modelName,
		Temperature: &temperature,
	}
	if preamble != "" {
		req.Preamble = &preamble
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("no text in response")
	}
	return resp.Text, nil
}

// GetModel returns the model name for a tier
func (c *CohereClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *CohereClient) Close() error {
	return nil
}
