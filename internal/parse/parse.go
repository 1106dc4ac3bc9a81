// Package parse recovers a structured payload from the model's free-form
// text response. It never fails: unusable text degrades to an empty payload
// that the validator turns into field-level Missing issues.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"invoicevision/internal/domain"
)

var (
	fenceBlock    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoted  = regexp.MustCompile(`'([^'\\]*)'`)
)

// Payload extracts the first syntactically valid JSON object from raw model
// output. It tolerates markdown code fences, surrounding prose, and (as a
// best-effort repair pass) single-quoted strings and trailing commas. When
// nothing usable is found it returns an empty, non-nil payload.
func Payload(raw string) domain.ParsedPayload {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.ParsedPayload{}
	}

	// Fenced blocks are the most reliable signal; try each in order.
	for _, m := range fenceBlock.FindAllStringSubmatch(text, -1) {
		if p, ok := decodeObject(m[1]); ok {
			return p
		}
	}

	// Scan for candidate objects: at each '{', a json.Decoder reads exactly
	// one value and ignores whatever prose follows. First valid object wins.
	for idx := 0; idx < len(text); idx++ {
		if text[idx] != '{' {
			continue
		}
		if p, ok := decodeObject(text[idx:]); ok {
			return p
		}
	}

	// Repair pass: take the outermost brace span and fix common model
	// formatting slips before one last attempt.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if p, ok := decodeObject(repair(text[start : end+1])); ok {
			return p
		}
	}

	return domain.ParsedPayload{}
}

// decodeObject decodes the first JSON value at the start of s, accepting it
// only if it is an object.
func decodeObject(s string) (domain.ParsedPayload, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return domain.ParsedPayload(m), true
}

// repair applies best-effort fixes for near-JSON: single-quoted strings and
// trailing commas before a closing bracket.
func repair(s string) string {
	s = singleQuoted.ReplaceAllString(s, `"$1"`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}
