// Package export renders validated invoice records as JSON, CSV, and XLSX
// downloads.
package export

import (
	"strconv"

	"invoicevision/internal/validator/invoice"
)

// Columns defines the tabular header row (18 columns). Invoice-level fields
// repeat on every row so each line item is self-contained in spreadsheet
// tools.
var Columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Currency",
	"Vendor Name",
	"Vendor Address",
	"Vendor Phone",
	"Vendor Email",
	"Billing Name",
	"Billing Address",
	"Item Description",
	"Quantity",
	"Unit Price",
	"Line Total",
	"Subtotal",
	"Tax",
	"Tax Rate",
	"Total",
}

// Rows flattens a record into one row per line item. A record without line
// items still produces a single row carrying the invoice-level fields.
func Rows(rec *invoice.InvoiceRecord) [][]string {
	items := rec.LineItems
	if len(items) == 0 {
		items = []invoice.LineItem{{}}
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		item := &items[i]
		row := make([]string, len(Columns))
		row[0] = rec.InvoiceNumber
		row[1] = formatDate(rec.InvoiceDate)
		row[2] = formatDate(rec.DueDate)
		row[3] = rec.Currency
		row[4] = rec.Vendor.Name
		row[5] = rec.Vendor.Address
		row[6] = rec.Vendor.Phone
		row[7] = rec.Vendor.Email
		row[8] = rec.BillingTo.Name
		row[9] = rec.BillingTo.Address
		row[10] = item.Description
		row[11] = formatQuantity(item.Quantity)
		row[12] = formatAmount(item.UnitPrice)
		row[13] = formatAmount(item.LineTotal)
		row[14] = formatAmount(rec.Subtotal)
		row[15] = formatAmount(rec.Tax)
		row[16] = rec.TaxRate
		row[17] = formatAmount(rec.Total)
		rows = append(rows, row)
	}
	return rows
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// formatQuantity keeps whole quantities free of decimal noise.
func formatQuantity(v *float64) string {
	if v == nil {
		return ""
	}
	if *v == float64(int64(*v)) {
		return strconv.FormatInt(int64(*v), 10)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
