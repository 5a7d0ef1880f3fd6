// =============================================================================
// Catalogue XML to XLSX Converter - Value Transformations
// =============================================================================
//
// This module provides the small value transformations applied while cells
// are written:
//   - Date coercion (two accepted layouts, lenient on leading zeros, one
//     canonical output layout)
//   - Boolean normalisation (true/false -> 1/0)
//   - Flag derivation (status == DEPRECATED -> 1/0)
//
// Value grouping (multi-valued cells) lives in group.go and the hierarchy
// assignment scratch record in assignment.go.
//
// =============================================================================

package transform

import (
	"strings"
	"time"
)

// =============================================================================
// DATE COERCION
// =============================================================================

// DateLayouts are tried in order when parsing a date.
//
// yyyy-MM-dd first, then yyyy/MM/dd, then both again with single-digit
// month and day allowed.
var DateLayouts = []string{"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2"}

// CanonicalDateLayout is the stored and displayed form of every date cell.
const CanonicalDateLayout = "2006/01/02"

// ParseDate parses a date against DateLayouts.
//
// The value may be a timestamp: when the full value does not match, its first
// ten characters are tried as well, so "2017-06-08T11:21:23" is 2017-06-08.
// ok is false for empty input or when no layout matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	candidates := []string{value}
	if len(value) > len(CanonicalDateLayout) {
		candidates = append(candidates, value[:len(CanonicalDateLayout)])
	}

	for _, candidate := range candidates {
		for _, layout := range DateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FormatDate formats a date in the canonical layout.
func FormatDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}

// CoerceDate parses value and returns its canonical form.
// It returns "" (an empty cell) for empty or unparsable input.
func CoerceDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return ""
	}
	return FormatDate(t)
}

// =============================================================================
// BOOLEANS
// =============================================================================

// NumericBoolean converts a textual boolean into a numeric one.
//
// EXAMPLE:
//   "true"  -> "1"
//   "false" -> "0"
//   "1"     -> "1"   (anything else is returned unchanged)
func NumericBoolean(value string) string {
	switch value {
	case "true":
		return "1"
	case "false":
		return "0"
	default:
		return value
	}
}

// EqualsFlag returns "1" when value equals target ignoring case, else "0".
func EqualsFlag(value, target string) string {
	if strings.EqualFold(value, target) {
		return "1"
	}
	return "0"
}
