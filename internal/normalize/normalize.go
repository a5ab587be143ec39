// =============================================================================
// Ventas Ledger - Field Normalizer
// =============================================================================
//
// This module canonicalizes individual ledger fields before validation:
//   - Date:    many input layouts -> "YYYY-MM-DD" (UTC date portion)
//   - Text:    trim, lower-case, then upper-case the first letter of every
//              alphabetic run
//   - Numbers: bounded decimal parsing with an explicit not-a-number result
//
// None of these functions return errors. A value that cannot be
// normalized comes back with ok=false (or empty) and the validation stage
// rejects the record.
//
// =============================================================================

package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the canonical output layout for fecha.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order. Every layout is locale-independent:
// month names are English abbreviations only and slash dates are
// month-first, so "31/02/2024" is never read as a valid day-first date.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/1/2",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// locale drives the capitalization rule.
var locale = language.Spanish

// Numbers longer than maxNumberLength or with an exponent beyond
// maxExponent are rejected as not-a-number.
const (
	maxNumberLength = 64
	maxExponent     = 64
)

// =============================================================================
// DATE
// =============================================================================

// Date parses s as a calendar date and returns it as YYYY-MM-DD.
//
// RETURNS:
//   - The canonical date string (UTC date, time and zone discarded).
//   - false when s is empty or is not a valid calendar date in any
//     supported layout (for example "2024-02-30").
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC().Format(DateLayout), true
		}
	}

	return "", false
}

// =============================================================================
// TEXT
// =============================================================================

// Capitalize trims s, lower-cases it and upper-cases the first letter of
// every alphabetic run, so "o'neil" becomes "O'Neil" and "pan-tomate"
// becomes "Pan-Tomate". It is the rule applied to franja and familia.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// A Caser keeps state between calls, so build one per value; files are
	// cleaned concurrently by the process command.
	lower := cases.Lower(locale).String(s)
	title := cases.Title(locale)

	var b strings.Builder
	b.Grow(len(lower))
	inRun := false
	for _, r := range lower {
		letter := unicode.IsLetter(r)
		if letter && !inRun {
			b.WriteString(title.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		inRun = letter
	}
	return b.String()
}

// NormalizeText is the rule applied to producto. It is the same
// transformation as Capitalize and must stay that way.
func NormalizeText(s string) string {
	return Capitalize(s)
}

// =============================================================================
// NUMBERS
// =============================================================================

// Number parses s as a decimal number.
//
// RETURNS:
//   - The parsed value.
//   - false for empty, non-numeric or out-of-range input (longer than
//     64 characters or an exponent beyond ±64); callers must treat that
//     as not-a-number and reject it.
func Number(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxNumberLength {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}

	return d, true
}
