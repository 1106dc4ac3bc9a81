package invoice

import (
	"fmt"
	"math"

	"invoicevision/internal/domain"
)

// totalTolerance absorbs rounding differences between the printed subtotal,
// tax, and total on real invoices.
const totalTolerance = 0.01

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance+1e-9
}

// checkTotals verifies subtotal + tax against the stated total. The check
// only runs when all three amounts are present; a mismatch is reported
// against the total, which stays as extracted.
func checkTotals(rec *InvoiceRecord) *ValidationIssue {
	if rec.Subtotal == nil || rec.Tax == nil || rec.Total == nil {
		return nil
	}
	expected := *rec.Subtotal + *rec.Tax
	if approxEqual(expected, *rec.Total, totalTolerance) {
		return nil
	}
	return &ValidationIssue{
		FieldPath: "total",
		Kind:      domain.IssueInconsistent,
		Detail:    fmt.Sprintf("subtotal %.2f + tax %.2f = %.2f does not match total %.2f", *rec.Subtotal, *rec.Tax, expected, *rec.Total),
	}
}
