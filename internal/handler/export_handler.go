package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicevision/internal/export"
	"invoicevision/internal/validator/invoice"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler renders a validated invoice record as a downloadable file.
// The record travels in the request body: extraction results live only in
// the client's session, nothing is persisted server-side.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRequest is the body for all export endpoints.
type exportRequest struct {
	Record   *invoice.InvoiceRecord `json:"record" binding:"required"`
	Filename string                 `json:"filename"`
}

func (h *ExportHandler) bindRecord(c *gin.Context) (*exportRequest, bool) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must contain a record")
		return nil, false
	}
	return &req, true
}

// CSV handles POST /api/v1/exports/csv.
func (h *ExportHandler) CSV(c *gin.Context) {
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	buf.Write(export.BOM)
	w := export.NewWriter(&buf)
	if err := w.WriteHeader(); err == nil {
		_ = w.WriteRecord(req.Record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("exportHandler.CSV: write failed: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to generate CSV")
		return
	}

	filename := export.BuildFilename(baseName(req, "invoice_items"), "csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// XLSX handles POST /api/v1/exports/xlsx.
func (h *ExportHandler) XLSX(c *gin.Context) {
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, req.Record); err != nil {
		log.Printf("exportHandler.XLSX: write failed: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to generate workbook")
		return
	}

	filename := export.BuildFilename(baseName(req, "invoice_items"), "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// JSON handles POST /api/v1/exports/json.
func (h *ExportHandler) JSON(c *gin.Context) {
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}

	data, err := export.ToJSON(req.Record)
	if err != nil {
		log.Printf("exportHandler.JSON: marshal failed: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to generate JSON")
		return
	}

	filename := export.BuildFilename(baseName(req, "invoice_data"), "json")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", data)
}

func baseName(req *exportRequest, fallback string) string {
	if req.Filename != "" {
		return req.Filename
	}
	return fallback
}
