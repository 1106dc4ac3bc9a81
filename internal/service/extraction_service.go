package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"invoicevision/internal/domain"
	"invoicevision/internal/parse"
	"invoicevision/internal/port"
	"invoicevision/internal/provider"
	"invoicevision/internal/validator/invoice"
)

// ImageNormalizer prepares an uploaded image for the vision model.
type ImageNormalizer interface {
	Normalize(data []byte, declaredType string) (*domain.ImagePayload, error)
}

// ExtractionResult is the outcome of a completed extraction attempt. Issues
// is never nil: an empty slice means the record validated cleanly.
type ExtractionResult struct {
	ID        uuid.UUID
	Record    *invoice.InvoiceRecord
	Issues    []invoice.ValidationIssue
	RawText   string
	ModelUsed string
	Latency   time.Duration
}

// ExtractionError is a fatal pipeline failure carrying its classification
// for the transport layer.
type ExtractionError struct {
	Failure *domain.ExtractionFailure
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Failure.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractionService runs the extraction pipeline: normalize the image, call
// the model, recover JSON from the response, and validate it into a record.
type ExtractionService struct {
	normalizer    ImageNormalizer
	extractor     port.ModelExtractor
	defaultFields domain.FieldSelection
	defaultModel  string
}

// NewExtractionService creates an ExtractionService. defaultFields is used
// when a request selects no field groups at all.
func NewExtractionService(normalizer ImageNormalizer, extractor port.ModelExtractor, defaultFields domain.FieldSelection, defaultModel string) *ExtractionService {
	if defaultFields.Empty() {
		defaultFields = domain.DefaultFieldSelection()
	}
	return &ExtractionService{
		normalizer:    normalizer,
		extractor:     extractor,
		defaultFields: defaultFields,
		defaultModel:  defaultModel,
	}
}

// Extract runs one full extraction. Upload validation problems come back as
// domain sentinel errors; model call failures come back as *ExtractionError.
// A model response that yields no usable JSON is not a failure: it produces
// an empty record annotated with Missing issues.
func (s *ExtractionService) Extract(ctx context.Context, data []byte, contentType string, fields domain.FieldSelection, model string) (*ExtractionResult, error) {
	if model == "" {
		model = s.defaultModel
	}
	if model != "" && !domain.IsSupportedModel(model) {
		return nil, domain.ErrUnsupportedModel
	}
	if fields.Empty() {
		fields = s.defaultFields
	}

	img, err := s.normalizer.Normalize(data, contentType)
	if err != nil {
		return nil, err
	}

	req := domain.ExtractionRequest{
		ID:     uuid.New(),
		Image:  img,
		Fields: fields,
		Model:  model,
	}

	log.Printf("extractionService: starting extraction %s (type=%s, size=%d, model=%s)",
		req.ID, img.ContentType, img.Size, model)

	start := time.Now()
	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		Image:  req.Image,
		Prompt: provider.BuildInvoicePrompt(req.Fields),
		Model:  req.Model,
	})
	latency := time.Since(start)
	if err != nil {
		failure := provider.ClassifyFailure(err)
		log.Printf("extractionService: extraction %s failed (kind=%s, retriable=%t): %v",
			req.ID, failure.Kind, failure.Retriable, err)
		return nil, &ExtractionError{Failure: failure, Err: err}
	}

	payload := parse.Payload(out.RawText)
	rec, issues := invoice.Validate(payload)

	log.Printf("extractionService: extraction %s completed (model=%s, latency=%s, issues=%d)",
		req.ID, out.ModelUsed, latency.Round(time.Millisecond), len(issues))

	return &ExtractionResult{
		ID:        req.ID,
		Record:    rec,
		Issues:    issues,
		RawText:   out.RawText,
		ModelUsed: out.ModelUsed,
		Latency:   latency,
	}, nil
}
