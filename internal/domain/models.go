package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImagePayload is a normalized uploaded image, ready to be shipped to the
// vision model. It is built once by the normalizer and discarded after the
// model request has been sent.
type ImagePayload struct {
	Bytes       []byte
	ContentType string
	Size        int64
	Width       int
	Height      int
}

// FieldSelection lists the field groups an extraction attempt should request
// from the model.
type FieldSelection struct {
	VendorInfo     bool `json:"vendor_info"`
	InvoiceDetails bool `json:"invoice_details"`
	Financial      bool `json:"financial"`
	LineItems      bool `json:"line_items"`
}

// DefaultFieldSelection requests every field group.
func DefaultFieldSelection() FieldSelection {
	return FieldSelection{
		VendorInfo:     true,
		InvoiceDetails: true,
		Financial:      true,
		LineItems:      true,
	}
}

// Empty reports whether no field group was requested.
func (f FieldSelection) Empty() bool {
	return !f.VendorInfo && !f.InvoiceDetails && !f.Financial && !f.LineItems
}

// ExtractionRequest is the outbound unit of work: one image, one field
// selection, one model. Immutable once built; retries reuse the same request.
type ExtractionRequest struct {
	ID     uuid.UUID
	Image  *ImagePayload
	Fields FieldSelection
	Model  string
}

// ModelResult is the raw outcome of a successful model call.
type ModelResult struct {
	RawText   string
	ModelUsed string
	Latency   time.Duration
}

// ExtractionFailure classifies a fatal pipeline failure for the caller.
type ExtractionFailure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Retriable bool        `json:"retriable"`
}

// ParsedPayload is the loosely typed field mapping recovered from the model's
// raw text. It may be empty after a parse failure but is never nil.
type ParsedPayload map[string]any
