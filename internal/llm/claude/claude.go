package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/llm"
	"frigo/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Client implements llm.Provider using the Anthropic Messages API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Claude-based provider from a provider config.
func NewClient(cfg *config.LLMProviderConfig) *Client {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.LLMProviderConfig, endpoint string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Structure converts standardized recipe text into the strict extraction
// contract.
func (c *Client) Structure(ctx context.Context, input *domain.StandardizedRecipeData) (*port.StructureOutput, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshaling standardized recipe: %w", err)
	}

	blocks := []map[string]interface{}{
		{"type": "text", "text": llm.BuildStructuringPrompt()},
		{"type": "text", "text": string(payload)},
	}

	text, err := c.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}

	data, err := llm.DecodeExtraction(text, input, c.model)
	if err != nil {
		return nil, err
	}
	return &port.StructureOutput{Data: data, Model: c.model}, nil
}

// Transcribe reads recipe text out of a photo via the vision API.
func (c *Client) Transcribe(ctx context.Context, imageBytes []byte, contentType string) (*domain.RawRecipeText, error) {
	if _, ok := domain.AllowedPhotoContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPhoto, contentType)
	}

	blocks := []map[string]interface{}{
		{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": contentType,
				"data":       base64.StdEncoding.EncodeToString(imageBytes),
			},
		},
		{"type": "text", "text": llm.BuildTranscriptionPrompt()},
	}

	text, err := c.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}
	return llm.DecodeTranscription(text)
}

func (c *Client) complete(ctx context.Context, contentBlocks []map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", llm.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return "", baseErr
	}

	return extractText(respBody)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func extractText(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	return resp.Content[0].Text, nil
}
