package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicevision/internal/validator/invoice"
)

func f(v float64) *float64 { return &v }

func s(v string) *string { return &v }

func sampleRecord() *invoice.InvoiceRecord {
	return &invoice.InvoiceRecord{
		InvoiceNumber: "INV-001",
		InvoiceDate:   s("2025-01-15"),
		DueDate:       s("2025-02-15"),
		Currency:      "USD",
		Vendor: invoice.Party{
			Name:    "Acme Corp",
			Address: "1 Main St",
			Phone:   "+1 555 0100",
			Email:   "billing@acme.test",
		},
		BillingTo: invoice.Billing{Name: "Client Inc", Address: "2 Side St"},
		LineItems: []invoice.LineItem{
			{Description: "Widget", Quantity: f(2), UnitPrice: f(50), LineTotal: f(100)},
			{Description: "Gadget", Quantity: f(1.5), UnitPrice: f(10), LineTotal: f(15)},
		},
		Subtotal: f(115),
		Tax:      f(11.5),
		TaxRate:  "10%",
		Total:    f(126.5),
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 18)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Total", row[17])
}

func TestWriteRecord_OneRowPerLineItem(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecord(sampleRecord()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[1]
	assert.Equal(t, "INV-001", first[0])
	assert.Equal(t, "2025-01-15", first[1])
	assert.Equal(t, "Acme Corp", first[4])
	assert.Equal(t, "Widget", first[10])
	assert.Equal(t, "2", first[11])
	assert.Equal(t, "50.00", first[12])
	assert.Equal(t, "100.00", first[13])
	assert.Equal(t, "126.50", first[17])

	second := rows[2]
	assert.Equal(t, "INV-001", second[0], "invoice fields repeat on every row")
	assert.Equal(t, "Gadget", second[10])
	assert.Equal(t, "1.5", second[11])
}

func TestRows_NoLineItemsStillOneRow(t *testing.T) {
	rec := sampleRecord()
	rec.LineItems = nil

	rows := Rows(rec)

	require.Len(t, rows, 1)
	assert.Equal(t, "INV-001", rows[0][0])
	assert.Equal(t, "", rows[0][10])
	assert.Equal(t, "115.00", rows[0][14])
}

func TestRows_NilAmountsRenderEmpty(t *testing.T) {
	rec := &invoice.InvoiceRecord{InvoiceNumber: "X"}

	rows := Rows(rec)

	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][1], "nil date")
	assert.Equal(t, "", rows[0][17], "nil total")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Acme_Corp_Invoice", SanitizeFilename("Acme Corp / Invoice"))
	assert.Equal(t, "a-b_c", SanitizeFilename("a-b  c"))
	assert.Equal(t, "x", SanitizeFilename("///x///"))

	long := strings.Repeat("a", 150)
	assert.Len(t, SanitizeFilename(long), 100)
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("invoice items", "csv")

	assert.True(t, strings.HasPrefix(name, "invoice_items_"), name)
	assert.True(t, strings.HasSuffix(name, ".csv"), name)

	assert.True(t, strings.HasSuffix(BuildFilename("", "xlsx"), ".xlsx"))
	assert.True(t, strings.HasPrefix(BuildFilename("", "xlsx"), "invoice_"))
}
