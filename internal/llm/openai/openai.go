package openai

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

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Provider using the OpenAI Chat Completions API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates an OpenAI-based provider from a provider config.
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
		model = "gpt-4o"
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

func (c *Client) Transcribe(ctx context.Context, imageBytes []byte, contentType string) (*domain.RawRecipeText, error) {
	if _, ok := domain.AllowedPhotoContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPhoto, contentType)
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageBytes))
	blocks := []map[string]interface{}{
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
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
		"model":                 c.model,
		"max_completion_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", llm.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return "", baseErr
	}

	return extractText(respBody)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func extractText(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return resp.Choices[0].Message.Content, nil
}
