// =============================================================================
// Ventas Ledger - XLSX Report Writer
// =============================================================================
//
// This module writes the result of a pipeline run as an Excel workbook.
//
// SHEETS:
//   Resumen   - raw/clean counts, total revenue, total units, top products
//   Franja    - revenue per franja
//   Familia   - revenue per familia
//   Producto  - revenue per producto
//   Limpio    - every clean record, in export column order
//
// Groupings keep their first-occurrence order, so the sheets line up with
// the text summary and the API response.
//
// =============================================================================

package xlsxreport

import (
	"bytes"
	"fmt"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/xuri/excelize/v2"
)

// Extension is the file extension of the report.
const Extension = ".xlsx"

// ContentType is the media type of the report.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetSummary  = "Resumen"
	SheetFranja   = "Franja"
	SheetFamilia  = "Familia"
	SheetProducto = "Producto"
	SheetClean    = "Limpio"
)

// =============================================================================
// REPORT FUNCTIONS
// =============================================================================

// Build creates the report workbook in memory. The caller must Close it.
func Build(out *pipeline.Output) (*excelize.File, error) {
	if out == nil {
		return nil, fmt.Errorf("failed to build report: no pipeline output")
	}

	f := excelize.NewFile()

	// NewFile starts with a single "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{f: f, headerStyle: headerStyle}

	w.writeSummary(out)
	w.writeGroups(SheetFranja, types.FieldFranja, out.Summary.ByFranja)
	w.writeGroups(SheetFamilia, types.FieldFamilia, out.Summary.ByFamilia)
	w.writeGroups(SheetProducto, types.FieldProducto, out.Summary.ByProducto)
	w.writeClean(out.Clean)

	if w.err != nil {
		f.Close()
		return nil, w.err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the report and saves it to path.
//
// PARAMETERS:
//   - path: The destination file; it is overwritten if it exists.
//   - out: The pipeline output to render.
//
// RETURNS:
//   - An error if building or saving fails.
func Write(path string, out *pipeline.Output) error {
	f, err := Build(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Bytes builds the report and returns the encoded workbook.
func Bytes(out *pipeline.Output) ([]byte, error) {
	f, err := Build(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// SHEET WRITERS
// =============================================================================

// sheetWriter keeps the first error so that the sheet builders read
// top to bottom.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) writeSummary(out *pipeline.Output) {
	w.row(SheetSummary, 1, "Filas originales", out.RawCount)
	w.row(SheetSummary, 2, "Filas limpias", out.CleanCount)
	w.row(SheetSummary, 3, "Ventas totales", out.Summary.TotalRevenue.InexactFloat64())
	w.row(SheetSummary, 4, "Unidades totales", out.Summary.TotalUnits.InexactFloat64())

	w.header(SheetSummary, 6, "Top productos", "importe")
	for i, g := range out.TopProductos {
		w.row(SheetSummary, 7+i, g.Key, g.Revenue.InexactFloat64())
	}

	w.colWidth(SheetSummary, "A", 24)
}

func (w *sheetWriter) writeGroups(sheet, field string, groups aggregate.Groups) {
	w.newSheet(sheet)
	w.header(sheet, 1, field, types.FieldImporte)
	for i, g := range groups {
		w.row(sheet, 2+i, g.Key, g.Revenue.InexactFloat64())
	}
	w.colWidth(sheet, "A", 24)
}

func (w *sheetWriter) writeClean(records []types.CleanRecord) {
	w.newSheet(SheetClean)

	header := make([]interface{}, len(types.CleanFields))
	for i, field := range types.CleanFields {
		header[i] = field
	}
	w.header(SheetClean, 1, header...)

	for i, record := range records {
		w.row(SheetClean, 2+i,
			record.Fecha,
			string(record.Franja),
			string(record.Familia),
			record.Producto,
			record.Unidades.InexactFloat64(),
			record.PrecioUnitario.InexactFloat64(),
			record.Importe.InexactFloat64(),
		)
	}
}

func (w *sheetWriter) newSheet(name string) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
}

func (w *sheetWriter) row(sheet string, rowNum int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
}

// header writes a bold row.
func (w *sheetWriter) header(sheet string, rowNum int, values ...interface{}) {
	w.row(sheet, rowNum, values...)
	if w.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, rowNum)
	last, _ := excelize.CoordinatesToCellName(len(values), rowNum)
	if err := w.f.SetCellStyle(sheet, first, last, w.headerStyle); err != nil {
		w.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
}

func (w *sheetWriter) colWidth(sheet, col string, width float64) {
	if w.err != nil {
		return
	}
	if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
		w.err = fmt.Errorf("failed to size %s column %s: %w", sheet, col, err)
	}
}
