package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_FencedJSON(t *testing.T) {
	raw := "Here is the data:\n```json\n{\"invoice_number\": \"A1\"}\n```\nLet me know if you need anything else!"

	p := Payload(raw)

	require.NotNil(t, p)
	assert.Equal(t, "A1", p["invoice_number"])
}

func TestPayload_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"total\": \"99.00\"}\n```"

	p := Payload(raw)

	assert.Equal(t, "99.00", p["total"])
}

func TestPayload_BareJSON(t *testing.T) {
	p := Payload(`{"invoice_number": "INV-7", "total": 120.5}`)

	assert.Equal(t, "INV-7", p["invoice_number"])
	assert.Equal(t, 120.5, p["total"])
}

func TestPayload_JSONSurroundedByProse(t *testing.T) {
	raw := "Sure! The extracted fields are {\"currency\": \"EUR\"} as requested."

	p := Payload(raw)

	assert.Equal(t, "EUR", p["currency"])
}

func TestPayload_FirstValidObjectWins(t *testing.T) {
	raw := `{"invoice_number": "FIRST"} some text {"invoice_number": "SECOND"}`

	p := Payload(raw)

	assert.Equal(t, "FIRST", p["invoice_number"])
}

func TestPayload_SkipsInvalidCandidates(t *testing.T) {
	raw := `{not json at all} but then {"vendor": {"name": "Acme"}}`

	p := Payload(raw)

	vendor, ok := p["vendor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", vendor["name"])
}

func TestPayload_RepairsTrailingComma(t *testing.T) {
	raw := `{"invoice_number": "A1", "line_items": ["x",],}`

	p := Payload(raw)

	assert.Equal(t, "A1", p["invoice_number"])
}

func TestPayload_RepairsSingleQuotes(t *testing.T) {
	raw := `{'invoice_number': 'A1'}`

	p := Payload(raw)

	assert.Equal(t, "A1", p["invoice_number"])
}

func TestPayload_NoJSONReturnsEmptyNonNil(t *testing.T) {
	p := Payload("I could not read this image, sorry.")

	require.NotNil(t, p)
	assert.Empty(t, p)
}

func TestPayload_EmptyInput(t *testing.T) {
	p := Payload("   \n  ")

	require.NotNil(t, p)
	assert.Empty(t, p)
}

func TestPayload_NestedObjectsIntact(t *testing.T) {
	raw := "```json\n{\"vendor\": {\"name\": \"Acme\", \"email\": \"billing@acme.test\"}, \"line_items\": [{\"description\": \"Widget\"}]}\n```"

	p := Payload(raw)

	vendor, ok := p["vendor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "billing@acme.test", vendor["email"])

	items, ok := p["line_items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}
