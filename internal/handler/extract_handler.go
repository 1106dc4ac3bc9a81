package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoicevision/internal/domain"
	"invoicevision/internal/service"
	"invoicevision/internal/validator/invoice"
)

// ExtractHandler handles invoice extraction requests.
type ExtractHandler struct {
	extractionService *service.ExtractionService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extractionService *service.ExtractionService) *ExtractHandler {
	return &ExtractHandler{extractionService: extractionService}
}

// extractResponse is the success payload for POST /api/v1/extractions.
type extractResponse struct {
	ID        string                    `json:"id"`
	Record    *invoice.InvoiceRecord    `json:"record"`
	Issues    []invoice.ValidationIssue `json:"issues"`
	RawText   string                    `json:"raw_text"`
	ModelUsed string                    `json:"model_used"`
	LatencyMS int64                     `json:"latency_ms"`
}

// Extract handles POST /api/v1/extractions. The request is multipart form
// data with an "image" file, optional field group toggles, and an optional
// model override.
func (h *ExtractHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_IMAGE", "image field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_IMAGE", "could not read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	fields := parseFieldSelection(c)
	model := c.PostForm("model")

	result, err := h.extractionService.Extract(c.Request.Context(), data, contentType, fields, model)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, buildExtractResponse(result))
}

// parseFieldSelection reads the field group toggles from the form. When no
// toggle is present at all, every group is requested.
func parseFieldSelection(c *gin.Context) domain.FieldSelection {
	keys := []string{"vendor_info", "invoice_details", "financial", "line_items"}
	present := false
	for _, k := range keys {
		if _, ok := c.GetPostForm(k); ok {
			present = true
			break
		}
	}
	if !present {
		return domain.DefaultFieldSelection()
	}
	return domain.FieldSelection{
		VendorInfo:     formBool(c, "vendor_info"),
		InvoiceDetails: formBool(c, "invoice_details"),
		Financial:      formBool(c, "financial"),
		LineItems:      formBool(c, "line_items"),
	}
}

func formBool(c *gin.Context, key string) bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func buildExtractResponse(result *service.ExtractionResult) extractResponse {
	issues := result.Issues
	if issues == nil {
		issues = []invoice.ValidationIssue{}
	}
	return extractResponse{
		ID:        result.ID.String(),
		Record:    result.Record,
		Issues:    issues,
		RawText:   result.RawText,
		ModelUsed: result.ModelUsed,
		LatencyMS: result.Latency.Milliseconds(),
	}
}
