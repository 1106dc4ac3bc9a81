package export

import (
	"encoding/json"

	"invoicevision/internal/validator/invoice"
)

// ToJSON renders a record as indented JSON in canonical field order. Absent
// optional fields serialize as explicit nulls so downstream consumers see a
// stable shape.
func ToJSON(rec *invoice.InvoiceRecord) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}
