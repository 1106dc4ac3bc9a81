package invoice

import (
	"fmt"

	"invoicevision/internal/domain"
	"invoicevision/internal/schema"
)

// Validate maps a parsed model payload onto the canonical invoice record.
// It never fails: every problem becomes a ValidationIssue and the record is
// always returned, with unparseable fields zeroed. Issues follow canonical
// field order.
func Validate(p domain.ParsedPayload) (*InvoiceRecord, []ValidationIssue) {
	v := &validation{payload: p, issues: []ValidationIssue{}}

	if len(p) > 0 {
		if err := schema.Validate(p); err != nil {
			v.addIssue("$", domain.IssueTypeMismatch, err.Error())
		}
	}

	rec := &InvoiceRecord{
		InvoiceNumber: v.stringField("invoice_number"),
		InvoiceDate:   v.dateField("invoice_date"),
		DueDate:       v.dateField("due_date"),
		Currency:      v.stringField("currency"),
		Vendor:        v.vendorField(),
		BillingTo:     v.billingField(),
		LineItems:     v.lineItemsField(),
		Subtotal:      v.amountField("subtotal"),
		Tax:           v.amountField("tax", "tax_amount"),
		TaxRate:       v.stringField("tax_rate"),
		Total:         v.amountField("total", "total_amount"),
	}

	if issue := checkTotals(rec); issue != nil {
		v.issues = append(v.issues, *issue)
	}
	return rec, v.issues
}

type validation struct {
	payload map[string]any
	issues  []ValidationIssue
}

func (v *validation) addIssue(path string, kind domain.IssueKind, detail string) {
	v.issues = append(v.issues, ValidationIssue{FieldPath: path, Kind: kind, Detail: detail})
}

// lookup resolves a field by its canonical key or any accepted synonym.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			return raw, true
		}
	}
	return nil, false
}

func (v *validation) stringField(keys ...string) string {
	return v.stringAt(v.payload, keys[0], keys...)
}

// stringAt applies the string field rules: absent, null, or blank values
// yield a Missing issue and the empty string; non-string scalars yield a
// TypeMismatch issue and a stringified value.
func (v *validation) stringAt(m map[string]any, path string, keys ...string) string {
	raw, ok := lookup(m, keys...)
	if !ok || raw == nil {
		v.addIssue(path, domain.IssueMissing, "field is absent")
		return ""
	}
	if _, isString := raw.(string); !isString {
		v.addIssue(path, domain.IssueTypeMismatch, fmt.Sprintf("expected string, got %T", raw))
		return cleanString(raw)
	}
	s := cleanString(raw)
	if s == "" {
		v.addIssue(path, domain.IssueMissing, "field is empty")
	}
	return s
}

func (v *validation) dateField(key string) *string {
	raw, ok := lookup(v.payload, key)
	if !ok || raw == nil || cleanString(raw) == "" {
		v.addIssue(key, domain.IssueMissing, "field is absent")
		return nil
	}
	d, parsed := parseDate(raw)
	if !parsed {
		v.addIssue(key, domain.IssueTypeMismatch, fmt.Sprintf("unrecognized date format %q", cleanString(raw)))
		return nil
	}
	return d
}

func (v *validation) amountField(keys ...string) *float64 {
	path := keys[0]
	raw, ok := lookup(v.payload, keys...)
	if !ok || raw == nil {
		v.addIssue(path, domain.IssueMissing, "field is absent")
		return nil
	}
	f, parsed := parseAmount(raw)
	if !parsed {
		v.addIssue(path, domain.IssueTypeMismatch, fmt.Sprintf("cannot parse amount from %v", raw))
		return nil
	}
	if f == nil {
		v.addIssue(path, domain.IssueMissing, "field is empty")
		return nil
	}
	if *f < 0 {
		// Kept as extracted: credit notes carry legitimate negative amounts,
		// but they warrant a flag on an invoice.
		v.addIssue(path, domain.IssueOutOfRange, fmt.Sprintf("negative amount %v", *f))
	}
	return f
}

func (v *validation) vendorField() Party {
	m, ok := v.objectField("vendor")
	if !ok {
		return Party{}
	}
	return Party{
		Name:    v.stringAt(m, "vendor.name", "name"),
		Address: v.stringAt(m, "vendor.address", "address"),
		Phone:   v.stringAt(m, "vendor.phone", "phone"),
		Email:   v.stringAt(m, "vendor.email", "email"),
	}
}

func (v *validation) billingField() Billing {
	m, ok := v.objectField("billing_to")
	if !ok {
		return Billing{}
	}
	return Billing{
		Name:    v.stringAt(m, "billing_to.name", "name"),
		Address: v.stringAt(m, "billing_to.address", "address"),
	}
}

// objectField resolves a nested object. Absent or null objects produce a
// single Missing issue at the parent path instead of one per leaf.
func (v *validation) objectField(key string) (map[string]any, bool) {
	raw, ok := lookup(v.payload, key)
	if !ok || raw == nil {
		v.addIssue(key, domain.IssueMissing, "field is absent")
		return nil, false
	}
	m, isMap := raw.(map[string]any)
	if !isMap {
		v.addIssue(key, domain.IssueTypeMismatch, fmt.Sprintf("expected object, got %T", raw))
		return nil, false
	}
	return m, true
}

func (v *validation) lineItemsField() []LineItem {
	raw, ok := lookup(v.payload, "line_items", "items")
	if !ok || raw == nil {
		v.addIssue("line_items", domain.IssueMissing, "field is absent")
		return []LineItem{}
	}
	entries, isSlice := raw.([]any)
	if !isSlice {
		v.addIssue("line_items", domain.IssueTypeMismatch, fmt.Sprintf("expected array, got %T", raw))
		return []LineItem{}
	}

	items := make([]LineItem, 0, len(entries))
	for i, entry := range entries {
		m, isMap := entry.(map[string]any)
		if !isMap {
			v.addIssue(fmt.Sprintf("line_items[%d]", i), domain.IssueTypeMismatch, fmt.Sprintf("expected object, got %T", entry))
			continue
		}
		item := LineItem{
			Description: cleanString(m["description"]),
			Quantity:    v.itemAmount(m, i, "quantity"),
			UnitPrice:   v.itemAmount(m, i, "unit_price"),
			LineTotal:   v.itemAmount(m, i, "line_total", "total"),
		}
		// Items with no usable data at all are noise, not issues.
		if item.Empty() {
			continue
		}
		items = append(items, item)
	}
	return items
}

// itemAmount applies the amount rules inside a line item. Absent values are
// not issues here: partial items are expected.
func (v *validation) itemAmount(m map[string]any, index int, keys ...string) *float64 {
	raw, ok := lookup(m, keys...)
	if !ok || raw == nil {
		return nil
	}
	path := fmt.Sprintf("line_items[%d].%s", index, keys[0])
	f, parsed := parseAmount(raw)
	if !parsed {
		v.addIssue(path, domain.IssueTypeMismatch, fmt.Sprintf("cannot parse amount from %v", raw))
		return nil
	}
	if f != nil && *f < 0 {
		v.addIssue(path, domain.IssueOutOfRange, fmt.Sprintf("negative amount %v", *f))
	}
	return f
}
