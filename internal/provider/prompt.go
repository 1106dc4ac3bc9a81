package provider

import (
	"strings"

	"invoicevision/internal/domain"
)

// fieldGroupDescriptions names each field group the way the prompt asks for it.
var fieldGroupDescriptions = []struct {
	selected    func(domain.FieldSelection) bool
	description string
}{
	{func(f domain.FieldSelection) bool { return f.VendorInfo }, "vendor/supplier information"},
	{func(f domain.FieldSelection) bool { return f.InvoiceDetails }, "invoice number, invoice date, and due date"},
	{func(f domain.FieldSelection) bool { return f.Financial }, "subtotal, tax, and total amounts"},
	{func(f domain.FieldSelection) bool { return f.LineItems }, "line items with descriptions, quantities, and prices"},
}

// BuildInvoicePrompt returns the extraction prompt for an invoice image,
// naming exactly the requested field groups and the canonical JSON structure
// the model must return.
func BuildInvoicePrompt(fields domain.FieldSelection) string {
	var requested []string
	for _, g := range fieldGroupDescriptions {
		if g.selected(fields) {
			requested = append(requested, g.description)
		}
	}
	if len(requested) == 0 {
		requested = append(requested, "all invoice information")
	}

	return `Please analyze this invoice image and extract the following information in a structured JSON format.

Extract: ` + strings.Join(requested, ", ") + `

Return the data in this exact JSON structure:
{
  "invoice_number": "",
  "invoice_date": "",
  "due_date": "",
  "currency": "",
  "vendor": {
    "name": "",
    "address": "",
    "phone": "",
    "email": ""
  },
  "billing_to": {
    "name": "",
    "address": ""
  },
  "line_items": [
    {
      "description": "",
      "quantity": "",
      "unit_price": "",
      "line_total": ""
    }
  ],
  "subtotal": "",
  "tax": "",
  "tax_rate": "",
  "total": ""
}

Important instructions:
- If any field is not found, leave it as an empty string
- Be precise with numerical values and maintain proper formatting
- Only extract the fields that were specifically requested above
- Return ONLY the JSON object, with no markdown formatting, no code fences, and no additional text
- Ensure all currency amounts are in decimal format (e.g., "123.45")
- For dates, use ISO format (YYYY-MM-DD)`
}
