// Package invoice maps loosely typed model output onto the canonical
// invoice record, collecting field-level issues instead of failing.
package invoice

import "invoicevision/internal/domain"

// InvoiceRecord is the canonical extracted invoice. Field order matches the
// canonical schema so JSON export preserves it.
type InvoiceRecord struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *string    `json:"invoice_date"`
	DueDate       *string    `json:"due_date"`
	Currency      string     `json:"currency"`
	Vendor        Party      `json:"vendor"`
	BillingTo     Billing    `json:"billing_to"`
	LineItems     []LineItem `json:"line_items"`
	Subtotal      *float64   `json:"subtotal"`
	Tax           *float64   `json:"tax"`
	TaxRate       string     `json:"tax_rate"`
	Total         *float64   `json:"total"`
}

// Party holds vendor/supplier contact fields.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Billing holds the bill-to fields.
type Billing struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// LineItem is one invoice line. Amounts are nil when the model omitted them
// or emitted something unparseable.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

// Empty reports whether the item carries no usable data at all.
func (li *LineItem) Empty() bool {
	return li.Description == "" && li.Quantity == nil && li.UnitPrice == nil && li.LineTotal == nil
}

// ValidationIssue describes one field-level problem found while building the
// record. Issues annotate the record; they never block its construction.
type ValidationIssue struct {
	FieldPath string           `json:"field_path"`
	Kind      domain.IssueKind `json:"kind"`
	Detail    string           `json:"detail"`
}
