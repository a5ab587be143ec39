// =============================================================================
// Ventas Ledger - CSV Parser Module
// =============================================================================
//
// This module turns the raw ledger text into RawRecords. The ledger format
// is deliberately simple:
//   - UTF-8 text, one record per line
//   - First line is the header row
//   - Fields are separated by commas
//   - No quoting or escaping: a comma inside a value is a separator
//
// The parser never fails on field content. Short lines simply leave their
// trailing fields absent; the validation stage decides what to do with them.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/ventas-ledger/internal/types"
)

// utf8BOM is stripped from files saved by spreadsheet tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse splits the ledger text into records.
//
// PARSING PROCESS:
//   1. Trim the whole input and split it on newlines
//   2. Split the first line on commas and trim each header
//   3. Split every following line on commas and assign value i to header i
//
// Values beyond the header count are ignored. Records are returned in
// input order. Blank input yields no records.
func Parse(text string) []types.RawRecord {
	text = strings.TrimSpace(text)
	if text == "" {
		return []types.RawRecord{}
	}

	lines := strings.Split(text, "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, ",")
	}

	return FromRows(rows)
}

// FromRows builds records from already-split rows: rows[0] is the header
// row and every following row is one record, numbered from line 2.
// Spreadsheet readers use it so that both sources share one shape.
func FromRows(rows [][]string) []types.RawRecord {
	if len(rows) == 0 {
		return []types.RawRecord{}
	}

	headers := cleanHeaders(rows[0])

	records := make([]types.RawRecord, 0, len(rows)-1)
	for i, values := range rows[1:] {
		records = append(records, parseValues(values, headers, i+2))
	}

	return records
}

// parseValues builds a RawRecord from the values of a single data line.
func parseValues(values []string, headers []string, lineNumber int) types.RawRecord {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if i >= len(values) {
			// Column is missing in this row; leave it absent.
			break
		}
		fields[header] = strings.TrimSpace(values[i])
	}

	return types.RawRecord{
		Line:    lineNumber,
		Headers: headers,
		Fields:  fields,
	}
}

// cleanHeaders trims every header name.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// ReadFile loads a whole ledger file and parses it.
//
// PARAMETERS:
//   - filePath: The path to the ledger file.
//
// RETURNS:
//   - The parsed records.
//   - An error if the file cannot be read.
func ReadFile(filePath string) ([]types.RawRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(string(bytes.TrimPrefix(data, utf8BOM))), nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// Preview returns at most n records from the start of the slice.
// It is used for the "first rows" tables shown by collaborators.
func Preview[T any](records []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}
