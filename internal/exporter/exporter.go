// Package exporter serializes clean records back to ledger text.
//
// The output uses the same shape the parser reads: a header line followed
// by one comma-joined line per record, with no quoting. A value containing
// a comma therefore does not survive a round trip.
package exporter

import (
	"errors"
	"strings"

	"github.com/ginjaninja78/ventas-ledger/internal/types"
)

// FileName is the default name under which collaborators deliver the export.
const FileName = "ventas_clean.csv"

// ContentType is the media type of the export.
const ContentType = "text/csv; charset=utf-8"

// ErrNoRecords is returned when there is nothing to export; no header can
// be derived from an empty record set.
var ErrNoRecords = errors.New("no clean records to export")

// Export renders records as ledger text. Lines are joined with "\n" and
// the result has no trailing newline.
func Export(records []types.CleanRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(types.CleanFields, ","))
	for _, record := range records {
		lines = append(lines, strings.Join(record.Values(), ","))
	}

	return strings.Join(lines, "\n"), nil
}
