package port

import (
	"context"

	"invoicevision/internal/domain"
)

// ExtractInput carries the immutable inputs of one model call.
type ExtractInput struct {
	Image  *domain.ImagePayload
	Prompt string
	Model  string
}

// ExtractOutput is the raw text outcome of one model call.
type ExtractOutput struct {
	RawText   string
	ModelUsed string
}

// ModelExtractor sends one extraction request to a vision-language model and
// returns its raw text response. Implementations must be safe for concurrent
// use across independent requests.
type ModelExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
