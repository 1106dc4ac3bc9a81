package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicevision/internal/domain"
	"invoicevision/internal/handler"
	"invoicevision/internal/imaging"
	"invoicevision/internal/port"
	"invoicevision/internal/provider"
	"invoicevision/internal/router"
	"invoicevision/internal/service"
)

type fakeExtractor struct {
	gotInput port.ExtractInput
	out      *port.ExtractOutput
	err      error
}

func (f *fakeExtractor) Extract(_ context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	f.gotInput = input
	return f.out, f.err
}

func setupRouter(t *testing.T, extractor port.ModelExtractor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	normalizer := imaging.NewNormalizer(5*1024*1024, 2000)
	svc := service.NewExtractionService(normalizer, extractor, domain.DefaultFieldSelection(), "qwen/qwen2.5-vl-72b-instruct:free")

	return router.Setup(
		handler.NewExtractHandler(svc),
		handler.NewExportHandler(),
		handler.NewHealthHandler(),
		nil,
	)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 20))))
	return buf.Bytes()
}

func multipartImage(t *testing.T, imageBytes []byte, contentType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="image"; filename="invoice.png"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(imageBytes)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doExtract(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExtractEndpoint_Success(t *testing.T) {
	extractor := &fakeExtractor{
		out: &port.ExtractOutput{
			RawText:   `{"invoice_number": "INV-42", "vendor": {"name": "Acme"}}`,
			ModelUsed: "qwen/qwen2.5-vl-72b-instruct:free",
		},
	}
	r := setupRouter(t, extractor)

	body, ct := multipartImage(t, testPNG(t), "image/png", nil)
	w := doExtract(t, r, body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID     string `json:"id"`
			Record struct {
				InvoiceNumber string `json:"invoice_number"`
			} `json:"record"`
			Issues    []map[string]any `json:"issues"`
			ModelUsed string           `json:"model_used"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "INV-42", resp.Data.Record.InvoiceNumber)
	assert.NotNil(t, resp.Data.Issues)
	assert.Equal(t, "qwen/qwen2.5-vl-72b-instruct:free", resp.Data.ModelUsed)
}

func TestExtractEndpoint_MissingImageField(t *testing.T) {
	r := setupRouter(t, &fakeExtractor{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("model", "gemini-2.5-flash"))
	require.NoError(t, mw.Close())

	w := doExtract(t, r, &body, mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IMAGE")
}

func TestExtractEndpoint_UnsupportedFileType(t *testing.T) {
	r := setupRouter(t, &fakeExtractor{})

	body, ct := multipartImage(t, []byte("%PDF-1.4"), "application/pdf", nil)
	w := doExtract(t, r, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FILE_TYPE")
}

func TestExtractEndpoint_InvalidImage(t *testing.T) {
	r := setupRouter(t, &fakeExtractor{})

	body, ct := multipartImage(t, []byte("not an image"), "image/png", nil)
	w := doExtract(t, r, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_IMAGE")
}

func TestExtractEndpoint_UnsupportedModel(t *testing.T) {
	r := setupRouter(t, &fakeExtractor{})

	body, ct := multipartImage(t, testPNG(t), "image/png", map[string]string{"model": "made-up-model"})
	w := doExtract(t, r, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_MODEL")
}

func TestExtractEndpoint_FieldToggles(t *testing.T) {
	extractor := &fakeExtractor{out: &port.ExtractOutput{RawText: "{}", ModelUsed: "m"}}
	r := setupRouter(t, extractor)

	body, ct := multipartImage(t, testPNG(t), "image/png", map[string]string{
		"financial":  "true",
		"line_items": "false",
	})
	w := doExtract(t, r, body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, extractor.gotInput.Prompt, "subtotal, tax, and total amounts")
	assert.NotContains(t, extractor.gotInput.Prompt, "vendor/supplier information")
}

func TestExtractEndpoint_AuthFailureIs502(t *testing.T) {
	extractor := &fakeExtractor{
		err: &provider.AuthError{Provider: "openrouter", StatusCode: 401, Err: errors.New("invalid key")},
	}
	r := setupRouter(t, extractor)

	body, ct := multipartImage(t, testPNG(t), "image/png", nil)
	w := doExtract(t, r, body, ct)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "auth_failure")
}

func TestExtractEndpoint_RateLimitedIs429(t *testing.T) {
	extractor := &fakeExtractor{
		err: provider.NewRateLimitError("openrouter", errors.New("429"), 30),
	}
	r := setupRouter(t, extractor)

	body, ct := multipartImage(t, testPNG(t), "image/png", nil)
	w := doExtract(t, r, body, ct)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
