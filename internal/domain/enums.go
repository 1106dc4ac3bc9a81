package domain

// FailureKind classifies fatal extraction failures.
type FailureKind string

const (
	FailureInvalidImage      FailureKind = "invalid_image"
	FailureAuth              FailureKind = "auth_failure"
	FailureRateLimited       FailureKind = "rate_limited"
	FailureTransientNetwork  FailureKind = "transient_network"
	FailureMalformedResponse FailureKind = "malformed_response"
)

// IssueKind classifies a single field-level validation issue.
type IssueKind string

const (
	IssueMissing      IssueKind = "missing"
	IssueTypeMismatch IssueKind = "type_mismatch"
	IssueOutOfRange   IssueKind = "out_of_range"
	IssueInconsistent IssueKind = "inconsistent"
)

// AllowedContentTypes maps accepted upload MIME types to their canonical
// extension. PDF and HEIC stay out: pixel understanding is delegated to the
// remote model, which accepts only raster formats here.
var AllowedContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// SupportedModels is the set of model identifiers accepted as an override on
// an extraction request.
var SupportedModels = []string{
	"qwen/qwen2.5-vl-72b-instruct:free",
	"qwen/qwen2.5-vl-7b-instruct",
	"qwen/qwen2.5-vl-3b-instruct",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
}

// IsSupportedModel reports whether model is a known model identifier.
func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}
