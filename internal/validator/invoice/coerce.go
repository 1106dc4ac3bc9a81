package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateFormats is the accepted date format ladder, ISO first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"02/01/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonAmount  = regexp.MustCompile(`[^\d.,\-]`)
)

// cleanString trims, collapses internal whitespace, and stringifies
// non-string scalars.
func cleanString(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		// JSON numbers decode as float64; prefer integer rendering when exact.
		if t == float64(int64(t)) {
			s = strconv.FormatInt(int64(t), 10)
		} else {
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprintf("%v", t)
	}
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// parseDate coerces a raw value into an ISO-8601 date string. The bool is
// false when a non-empty value could not be parsed against any accepted
// format.
func parseDate(v any) (*string, bool) {
	s := cleanString(v)
	if s == "" {
		return nil, true
	}
	// Strip a trailing timestamp if the model included one.
	if idx := strings.IndexAny(s, "T "); idx > 0 && len(s) > 10 {
		if _, err := time.Parse("2006-01-02", s[:idx]); err == nil {
			s = s[:idx]
		}
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			iso := d.Format("2006-01-02")
			return &iso, true
		}
	}
	return nil, false
}

// parseAmount coerces a raw value into a decimal amount. Currency symbols
// and thousands separators are stripped; the comma/dot heuristic treats a
// lone comma with at most two trailing digits as a European decimal
// separator. The bool is false when a non-empty value could not be parsed.
func parseAmount(v any) (*float64, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		f := t
		return &f, true
	case string:
		cleaned := cleanAmountString(t)
		if cleaned == "" {
			return nil, strings.TrimSpace(t) == ""
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, false
		}
		return &f, true
	default:
		return nil, false
	}
}

// cleanAmountString strips everything but digits, separators, and sign, then
// normalizes separators.
func cleanAmountString(s string) string {
	cleaned := nonAmount.ReplaceAllString(strings.TrimSpace(s), "")
	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		// Both present: the rightmost separator is the decimal one.
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	case strings.Contains(cleaned, ","):
		// Comma only: decimal separator when it has at most two trailing
		// digits, thousands separator otherwise.
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[len(parts)-1]) <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}
	return cleaned
}
