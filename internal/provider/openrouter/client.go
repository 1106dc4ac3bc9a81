// Package openrouter implements port.ModelExtractor against the OpenRouter
// chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoicevision/internal/config"
	"invoicevision/internal/port"
	"invoicevision/internal/provider"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client implements port.ModelExtractor using the OpenRouter Chat
// Completions API.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	siteURL     string
	siteName    string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewClient creates an OpenRouter-backed extractor from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return newClient(cfg, strings.TrimRight(base, "/")+"/chat/completions")
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint
// (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, endpoint string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = "qwen/qwen2.5-vl-72b-instruct:free"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		siteURL:     cfg.SiteURL,
		siteName:    cfg.SiteName,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	model := input.Model
	if model == "" {
		model = c.model
	}

	encoded := base64.StdEncoding.EncodeToString(input.Image.Bytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.Image.ContentType, encoded)

	reqBody := map[string]interface{}{
		"model":       model,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": input.Prompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]interface{}{
							"url": dataURI,
						},
					},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// OpenRouter attribution headers, optional.
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openrouter API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openrouter API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &provider.AuthError{Provider: "openrouter", StatusCode: resp.StatusCode, Err: baseErr}
		case http.StatusBadRequest:
			return nil, &provider.BadRequestError{Provider: "openrouter", Err: baseErr}
		case http.StatusTooManyRequests:
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError("openrouter", baseErr, retryAfter)
		default:
			return nil, baseErr
		}
	}

	return parseResponse(respBody, model)
}

// apiResponse models the chat completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.ExtractOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return &port.ExtractOutput{
		RawText:   resp.Choices[0].Message.Content,
		ModelUsed: model,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
