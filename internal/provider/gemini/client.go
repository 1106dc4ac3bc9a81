// Package gemini implements port.ModelExtractor using the Google Gemini SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"invoicevision/internal/config"
	"invoicevision/internal/port"
)

// Client implements port.ModelExtractor using Google Gemini.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a Gemini-backed extractor from a provider config.
func NewClient(ctx context.Context, cfg *config.ProviderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	modelName := cfg.DefaultModel
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(cfg.Temperature))
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return &Client{
		client:    client,
		model:     model,
		modelName: modelName,
	}, nil
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	// genai.ImageData expects the format suffix (e.g. "png"), not the MIME type.
	format := strings.TrimPrefix(input.Image.ContentType, "image/")
	parts := []genai.Part{
		genai.ImageData(format, input.Image.Bytes),
		genai.Text(input.Prompt),
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return &port.ExtractOutput{
		RawText:   text.String(),
		ModelUsed: c.modelName,
	}, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}
