package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/exporter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLedger = `fecha,franja,familia,producto,unidades,precio_unitario,importe
2024-03-01,desayuno,bebida,café,2,1.5,999
2024-03-01,comida,postre,té,1,4,4
2024-03-01,desayuno,bebida,café,2,2.5,5
2024-03-01,cena,bebida,agua,1,1,1`

const cleanExport = "fecha,franja,familia,producto,unidades,precio_unitario,importe\n" +
	"2024-03-01,Desayuno,Bebida,Café,2,1.5,3\n" +
	"2024-03-01,Comida,Postre,Té,1,4,4\n" +
	"2024-03-01,Desayuno,Bebida,Café,2,2.5,5"

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "input")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.ArchiveDir = filepath.Join(root, "archive")
	return cfg
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestRunSummaryText(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, filepath.Join(t.TempDir(), "ventas_raw.csv"), sampleLedger)

	var out bytes.Buffer
	require.NoError(t, runSummary(&out, cfg, summaryOptions{file: file, format: "text"}))

	text := out.String()
	assert.Contains(t, text, "Filas originales:")
	assert.Regexp(t, `Filas limpias:\s+3`, text)
	assert.Regexp(t, `Ventas totales:\s+12\.00`, text)
	assert.Regexp(t, `Unidades totales:\s+5\n`, text)
	assert.Regexp(t, `Desayuno\s+8\.00`, text)
	assert.Regexp(t, `Postre\s+4\.00`, text)
	assert.Regexp(t, `1\. Café\s+8\.00`, text)
	assert.Regexp(t, `2\. Té\s+4\.00`, text)
	assert.NotContains(t, text, "rejected")
}

func TestRunSummaryRejections(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, filepath.Join(t.TempDir(), "ventas_raw.csv"), sampleLedger)

	var out bytes.Buffer
	require.NoError(t, runSummary(&out, cfg, summaryOptions{file: file, format: "text", rejections: true}))

	text := out.String()
	assert.Contains(t, text, "Accepted 3 of 4 record(s); 1 rejected:")
	assert.Contains(t, text, "line 5 [franja] field 'franja'")
}

func TestRunSummaryJSON(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, filepath.Join(t.TempDir(), "ventas_raw.csv"), sampleLedger)

	var out bytes.Buffer
	require.NoError(t, runSummary(&out, cfg, summaryOptions{file: file, format: "json", top: 1, rejections: true}))

	var doc struct {
		RawCount     int `json:"raw_count"`
		CleanCount   int `json:"clean_count"`
		TopProductos []struct {
			Key     string `json:"key"`
			Revenue string `json:"revenue"`
		} `json:"top_productos"`
		Summary struct {
			TotalRevenue string `json:"total_revenue"`
		} `json:"summary"`
		Rejections []struct {
			Line int    `json:"line"`
			Rule string `json:"rule"`
		} `json:"rejections"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	assert.Equal(t, 4, doc.RawCount)
	assert.Equal(t, 3, doc.CleanCount)
	assert.Equal(t, "12", doc.Summary.TotalRevenue)
	require.Len(t, doc.TopProductos, 1)
	assert.Equal(t, "Café", doc.TopProductos[0].Key)
	assert.Equal(t, "8", doc.TopProductos[0].Revenue)
	require.Len(t, doc.Rejections, 1)
	assert.Equal(t, "franja", doc.Rejections[0].Rule)
}

func TestRunSummaryErrors(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, filepath.Join(t.TempDir(), "ventas_raw.csv"), sampleLedger)

	err := runSummary(io.Discard, cfg, summaryOptions{file: file, format: "yaml"})
	assert.ErrorContains(t, err, "unknown format")

	err = runSummary(io.Discard, cfg, summaryOptions{file: file + ".missing", format: "text"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestRunExportToFile(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "ventas_raw.csv"), sampleLedger)
	dest := filepath.Join(dir, "ventas_clean.csv")

	require.NoError(t, runExport(io.Discard, cfg, file, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, cleanExport, string(data))
}

func TestRunExportToStdout(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, filepath.Join(t.TempDir(), "ventas_raw.csv"), sampleLedger)

	var out bytes.Buffer
	require.NoError(t, runExport(&out, cfg, file, "-"))

	assert.Equal(t, cleanExport+"\n", out.String())
}

func TestRunExportNoCleanRows(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "vacio.csv"), "fecha,franja\n2024-03-01,cena")
	dest := filepath.Join(dir, "out.csv")

	err := runExport(io.Discard, cfg, file, dest)

	assert.ErrorIs(t, err, exporter.ErrNoRecords)
	assert.NoFileExists(t, dest)
}

// =============================================================================
// PROCESS
// =============================================================================

// withProcessFlags sets the process flags for one test.
func withProcessFlags(t *testing.T, dry bool, file string) {
	t.Helper()
	prevDry, prevFile := dryRun, processFile
	dryRun, processFile = dry, file
	t.Cleanup(func() { dryRun, processFile = prevDry, prevFile })
}

func TestRunProcess(t *testing.T) {
	withProcessFlags(t, false, "")
	cfg := testConfig(t)
	cfg.Processing.ReportFormats = []string{"xml"}
	good := writeFile(t, filepath.Join(cfg.Paths.InputDir, "ventas_lunes.csv"), sampleLedger)
	bad := writeFile(t, filepath.Join(cfg.Paths.InputDir, "ventas_martes.csv"),
		"fecha,franja,familia,producto,unidades,precio_unitario,importe\n2024-03-02,cena,bebida,agua,1,1,1")
	writeFile(t, filepath.Join(cfg.Paths.InputDir, "notas.txt"), "ignored")

	var out bytes.Buffer
	err := runProcess(context.Background(), &out, cfg)

	require.Error(t, err)
	assert.Equal(t, "1 of 2 ledger(s) failed", err.Error())

	text := out.String()
	assert.Contains(t, text, "✓ ventas_lunes.csv")
	assert.Contains(t, text, "✗ ventas_martes.csv")
	assert.Contains(t, text, "Total files:     2\n")
	assert.Contains(t, text, "Rows (clean):    3\n")

	assert.NoFileExists(t, good)
	assert.FileExists(t, filepath.Join(cfg.Paths.ArchiveDir, "ventas_lunes.csv"))
	assert.FileExists(t, bad)

	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.True(t, hasMatch(names, "ventas_lunes_clean_", ".csv"), names)
	assert.True(t, hasMatch(names, "ventas_lunes_clean_", ".xml"), names)
	assert.True(t, hasMatch(names, "ventas_lunes_rechazos_", ".txt"), names)
	assert.True(t, hasMatch(names, "processing_summary_", ".txt"), names)
}

func TestRunProcessDryRun(t *testing.T) {
	withProcessFlags(t, true, "")
	cfg := testConfig(t)
	input := writeFile(t, filepath.Join(cfg.Paths.InputDir, "ventas.csv"), sampleLedger)

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), &out, cfg))

	assert.Contains(t, out.String(), "(3/4 rows clean, dry run)")
	assert.FileExists(t, input)
	assert.NoDirExists(t, cfg.Paths.OutputDir)
}

func TestRunProcessSingleFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.KeepInputs = true
	file := writeFile(t, filepath.Join(t.TempDir(), "suelto.csv"), sampleLedger)
	withProcessFlags(t, false, file)

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), &out, cfg))

	assert.Contains(t, out.String(), "Successful:      1\n")
	assert.FileExists(t, file)
}

func TestRunProcessMissingSingleFile(t *testing.T) {
	withProcessFlags(t, false, filepath.Join(t.TempDir(), "absent.csv"))

	err := runProcess(context.Background(), io.Discard, testConfig(t))

	assert.ErrorContains(t, err, "ledger not found")
}

func TestRunProcessEmptyInputDir(t *testing.T) {
	withProcessFlags(t, false, "")

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), &out, testConfig(t)))

	assert.Contains(t, out.String(), "No ledgers found")
}

func TestRunProcessCancelled(t *testing.T) {
	withProcessFlags(t, false, "")
	cfg := testConfig(t)
	input := writeFile(t, filepath.Join(cfg.Paths.InputDir, "ventas.csv"), sampleLedger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runProcess(ctx, io.Discard, cfg)

	assert.Error(t, err)
	assert.FileExists(t, input)
}

func hasMatch(names []string, prefix, suffix string) bool {
	for _, name := range names {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "Ventas Ledger")
	assert.Contains(t, out.String(), "Version:    "+Version)
}
