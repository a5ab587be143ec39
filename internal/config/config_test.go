package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "./input", cfg.Paths.InputDir)
	assert.Equal(t, "./output", cfg.Paths.OutputDir)
	assert.Equal(t, "./input_archive", cfg.Paths.ArchiveDir)
	assert.Equal(t, 4, cfg.Processing.MaxConcurrency)
	assert.Equal(t, 10, cfg.Processing.PreviewRows)
	assert.Equal(t, 5, cfg.Processing.TopN)
	assert.Equal(t, "{original}_clean_{timestamp}.csv", cfg.Processing.OutputNameFormat)
	assert.Equal(t, "ventas_clean.csv", cfg.Processing.ExportFileName)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "ventas_raw.csv", cfg.Server.SourceFile)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
paths:
  input_dir: /data/in
processing:
  top_n: 3
  keep_inputs: true
  report_formats: [xlsx, xml]
server:
  addr: ":9090"
  read_timeout: 5s
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/data/in", cfg.Paths.InputDir)
	assert.Equal(t, "./output", cfg.Paths.OutputDir)
	assert.Equal(t, 3, cfg.Processing.TopN)
	assert.True(t, cfg.Processing.KeepInputs)
	assert.Equal(t, []string{"xlsx", "xml"}, cfg.Processing.ReportFormats)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "processing:\n  top_n: 3\n")
	t.Setenv("VENTAS_PROCESSING_TOP_N", "8")
	t.Setenv("VENTAS_SERVER_SOURCE_FILE", "/srv/ventas.csv")
	t.Setenv("VENTAS_PROCESSING_REPORT_FORMATS", "xml")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Processing.TopN)
	assert.Equal(t, "/srv/ventas.csv", cfg.Server.SourceFile)
	assert.Equal(t, []string{"xml"}, cfg.Processing.ReportFormats)
}

func TestLoadZeroPreviewRows(t *testing.T) {
	cfg, err := Load(writeConfig(t, "processing:\n  preview_rows: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Processing.PreviewRows)

	t.Setenv("VENTAS_PROCESSING_PREVIEW_ROWS", "0")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Processing.PreviewRows)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown log level", "logging:\n  level: loud\n"},
		{"unknown log format", "logging:\n  format: xml\n"},
		{"unknown report format", "processing:\n  report_formats: [pdf]\n"},
		{"negative top", "processing:\n  top_n: -1\n"},
		{"negative preview", "processing:\n  preview_rows: -1\n"},
		{"too much concurrency", "processing:\n  max_concurrency: 1000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "paths: [unterminated\n"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoadMalformedEnvironment(t *testing.T) {
	t.Setenv("VENTAS_PROCESSING_TOP_N", "many")

	_, err := Load("")

	assert.Error(t, err)
}

func TestWantsReport(t *testing.T) {
	p := ProcessingConfig{ReportFormats: []string{"xml"}}

	assert.True(t, p.WantsReport("xml"))
	assert.False(t, p.WantsReport("xlsx"))
	assert.False(t, ProcessingConfig{}.WantsReport("xml"))
}
