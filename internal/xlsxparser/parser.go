// =============================================================================
// Ventas Ledger - XLSX Ledger Reader
// =============================================================================
//
// This module reads ledgers that were saved as Excel workbooks instead of
// comma-delimited text. The sheet must have the same shape as the text
// ledger:
//
//   | fecha      | franja   | familia | producto | unidades | precio_unitario | importe |
//   |------------|----------|---------|----------|----------|-----------------|---------|
//   | 2024-01-05 | desayuno | bebida  | café     | 2        | 1.5             | 3       |
//
// Cells are read as their formatted text, so the records produced here go
// through exactly the same cleaning rules as parsed text lines.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/ginjaninja78/ventas-ledger/internal/csvparser"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/xuri/excelize/v2"
)

// Extension is the file extension of workbooks this package reads.
const Extension = ".xlsx"

// ReadOptions selects where the ledger lives in the workbook.
type ReadOptions struct {
	// SheetName is the sheet to read. Empty means the first sheet.
	SheetName string

	// HeaderRow is the 1-based row holding the column names.
	// Default: 1
	HeaderRow int
}

// DefaultReadOptions returns options reading the first sheet from row 1.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{HeaderRow: 1}
}

// ReadFile reads the first sheet of a workbook as ledger records.
func ReadFile(filePath string) ([]types.RawRecord, error) {
	return ReadFileWithOptions(filePath, DefaultReadOptions())
}

// ReadFileWithOptions reads a workbook sheet as ledger records.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - options: The sheet and header row to use.
//
// RETURNS:
//   - The records in sheet order. Rows above the header are ignored.
//   - An error if the file cannot be opened or the sheet does not exist.
func ReadFileWithOptions(filePath string, options ReadOptions) ([]types.RawRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := options.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	headerRow := options.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	if headerRow > len(rows) {
		return []types.RawRecord{}, nil
	}

	records := csvparser.FromRows(rows[headerRow-1:])

	// FromRows numbers records as if the header were on line 1.
	for i := range records {
		records[i].Line += headerRow - 1
	}

	return records, nil
}
