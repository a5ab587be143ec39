package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var ledgerRows = [][]interface{}{
	{"fecha", "franja", "familia", "producto", "unidades", "precio_unitario", "importe"},
	{"2024-03-01", "desayuno", "bebida", " café ", 2, 1.5, 3},
	{"2024-03-01", "comida", "postre", "té", 1, 4, 4},
}

// writeWorkbook saves rows to sheet starting at startRow and returns the path.
func writeWorkbook(t *testing.T, sheet string, startRow int, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, startRow+i)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, ref, &values))
	}

	path := filepath.Join(t.TempDir(), "ventas"+Extension)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", 1, ledgerRows)

	records, err := ReadFile(path)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "fecha", records[0].Headers[0])
	assert.Equal(t, "café", records[0].Fields["producto"])
	assert.Equal(t, "2", records[0].Fields["unidades"])
	assert.Equal(t, "1.5", records[0].Fields["precio_unitario"])
	assert.Equal(t, "té", records[1].Fields["producto"])
}

func TestReadFileWithOptions(t *testing.T) {
	t.Run("named sheet and header row", func(t *testing.T) {
		path := writeWorkbook(t, "Ventas", 2, ledgerRows)

		records, err := ReadFileWithOptions(path, ReadOptions{SheetName: "Ventas", HeaderRow: 2})

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 3, records[0].Line)
		assert.Equal(t, 4, records[1].Line)
		assert.Equal(t, "desayuno", records[0].Fields["franja"])
	})

	t.Run("header row past the data", func(t *testing.T) {
		path := writeWorkbook(t, "Sheet1", 1, ledgerRows)

		records, err := ReadFileWithOptions(path, ReadOptions{HeaderRow: 10})

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := writeWorkbook(t, "Sheet1", 1, ledgerRows)

		_, err := ReadFileWithOptions(path, ReadOptions{SheetName: "Nope", HeaderRow: 1})

		assert.Error(t, err)
	})
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
