// Package schema defines the canonical invoice schema as a JSON-Schema map,
// shared between the extraction prompt contract and local structural
// validation of model output.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// amountProp accepts the shapes models actually emit for money fields:
// a number, a formatted string, or null.
func amountProp() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

func stringProp() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

// InvoiceSchema returns the canonical invoice schema. No field is required:
// partial extractions are expected and handled by the validator, not
// rejected here. Unknown keys are allowed; the validator ignores them.
func InvoiceSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number": stringProp(),
			"invoice_date":   stringProp(),
			"due_date":       stringProp(),
			"currency":       stringProp(),
			"vendor": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"name":    stringProp(),
					"address": stringProp(),
					"phone":   stringProp(),
					"email":   stringProp(),
				},
			},
			"billing_to": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"name":    stringProp(),
					"address": stringProp(),
				},
			},
			"line_items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": stringProp(),
						"quantity":    amountProp(),
						"unit_price":  amountProp(),
						"line_total":  amountProp(),
						"total":       amountProp(),
					},
				},
			},
			"subtotal":     amountProp(),
			"tax":          amountProp(),
			"tax_amount":   amountProp(),
			"tax_rate":     amountProp(),
			"total":        amountProp(),
			"total_amount": amountProp(),
		},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Validate checks a parsed payload against the canonical schema. A non-nil
// error means the payload's shape deviates from the contract (for example,
// vendor as a plain string); the caller records it as an issue rather than
// failing.
func Validate(payload map[string]any) error {
	compileOnce.Do(func() {
		b, err := json.Marshal(InvoiceSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("invoice.json")
	})
	if compileErr != nil {
		return compileErr
	}

	// Round-trip through encoding/json so the instance uses the exact value
	// types the validator expects.
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("payload does not match canonical schema: %w", err)
	}
	return nil
}
