// =============================================================================
// Ventas Ledger - File Converter
// =============================================================================
//
// This module processes a single ledger file end to end. The in-memory
// pipeline lives in the pipeline package; this module adds the file I/O
// around it.
//
// CONVERSION STEPS:
//   1. Load the ledger (.csv as text, .xlsx through the workbook reader)
//   2. Run the pipeline: parse -> clean -> aggregate
//   3. Export the clean records to the output directory
//   4. Write the configured reports (xlsx, xml)
//   5. Write the rejection log, if any row was dropped
//   6. Archive the input ledger
//
// A file with no clean rows fails at step 3 and stays in the input
// directory. Archiving errors are logged but do not fail the file.
//
// CONCURRENCY:
//   A Converter handles one file and shares nothing with other Converters,
//   so the process command runs several of them at once.
//
// =============================================================================

package converter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/csvparser"
	"github.com/ginjaninja78/ventas-ledger/internal/logging"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/ginjaninja78/ventas-ledger/internal/xlsxparser"
	"github.com/ginjaninja78/ventas-ledger/internal/xlsxreport"
	"github.com/ginjaninja78/ventas-ledger/internal/xmlwriter"
	"github.com/ginjaninja78/ventas-ledger/pkg/utils"
)

// Report format names accepted in processing.report_formats.
const (
	ReportXLSX = "xlsx"
	ReportXML  = "xml"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input ledger.
	FilePath string

	// OutputFile is the path to the clean export. Empty on failure or in
	// dry-run mode.
	OutputFile string

	// ReportFiles are the paths of the reports written next to the export.
	ReportFiles []string

	// RejectionLog is the path of the rejection log, if one was written.
	RejectionLog string

	// ArchivePath is where the input ledger was moved to.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Output is the pipeline result. It is set whenever the ledger could
	// be loaded, even if a later step failed.
	Output *pipeline.Output

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	RawRows        int
	CleanRows      int
	RejectedRows   int
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter processes one ledger file.
type Converter struct {
	filePath string
	cfg      *config.Config
	files    *utils.FileManager
	runner   *pipeline.Runner
	logger   *slog.Logger
	dryRun   bool
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - filePath: The path to the input ledger.
//   - cfg: The application configuration.
//   - files: The file manager owning the output and archive directories.
//   - logger: The logger; nil uses slog.Default().
func New(filePath string, cfg *config.Config, files *utils.FileManager, logger *slog.Logger) *Converter {
	logger = logging.OrDefault(logger).With(slog.String("file", filepath.Base(filePath)))

	return &Converter{
		filePath: filePath,
		cfg:      cfg,
		files:    files,
		runner: pipeline.New(pipeline.Options{
			PreviewRows: cfg.Processing.PreviewRows,
			TopN:        cfg.Processing.TopN,
		}, logger),
		logger: logger,
	}
}

// DryRun makes Run compute everything without writing or moving files.
func (c *Converter) DryRun(enabled bool) *Converter {
	c.dryRun = enabled
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion steps for the file.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{FilePath: c.filePath}

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Info("processing ledger")

	// =========================================================================
	// STEP 1-2: LOAD AND RUN THE PIPELINE
	// =========================================================================

	raw, err := LoadLedger(c.filePath)
	if err != nil {
		result.Error = err
		return result
	}

	out := c.runner.RunRecords(raw)
	result.Output = out
	result.Stats.RawRows = out.RawCount
	result.Stats.CleanRows = out.CleanCount
	result.Stats.RejectedRows = out.Report.Rejected()

	// =========================================================================
	// STEP 3: EXPORT
	// =========================================================================

	exported, err := out.Export()
	if err != nil {
		result.Error = fmt.Errorf("failed to export %s: %w", filepath.Base(c.filePath), err)
		return result
	}

	if c.dryRun {
		c.logger.Info("dry run, nothing written",
			slog.Int("clean_rows", out.CleanCount))
		result.Success = true
		return result
	}

	original := utils.OriginalName(c.filePath)
	outputName := c.files.GenerateOutputFileName(c.cfg.Processing.OutputNameFormat,
		map[string]string{"original": original})

	outputPath, err := c.files.WriteOutput(outputName, []byte(exported))
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote clean export", slog.String("path", outputPath))

	// =========================================================================
	// STEP 4: REPORTS
	// =========================================================================

	reports, err := c.writeReports(outputName, out)
	result.ReportFiles = reports
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 5: REJECTION LOG
	// =========================================================================

	logPath, err := c.files.WriteRejectionLog(original, rejectionEntries(c.filePath, out))
	if err != nil {
		result.Error = err
		return result
	}
	result.RejectionLog = logPath

	// =========================================================================
	// STEP 6: ARCHIVE
	// =========================================================================

	archivePath, err := c.files.ArchiveInputFile(c.filePath)
	if err != nil {
		c.logger.Warn("failed to archive input", slog.Any("error", err))
	} else {
		result.ArchivePath = archivePath
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LoadLedger reads a ledger file, choosing the reader by extension:
// .xlsx files go through the workbook reader, everything else is text.
func LoadLedger(filePath string) ([]types.RawRecord, error) {
	if utils.HasExtension(filePath, xlsxparser.Extension) {
		records, err := xlsxparser.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger %s: %w", filePath, err)
		}
		return records, nil
	}

	records, err := csvparser.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", filePath, err)
	}
	return records, nil
}

// writeReports writes every configured report next to the export, named
// after the export with the report's extension.
func (c *Converter) writeReports(outputName string, out *pipeline.Output) ([]string, error) {
	base := outputName[:len(outputName)-len(filepath.Ext(outputName))]
	var written []string

	if c.cfg.Processing.WantsReport(ReportXLSX) {
		path := filepath.Join(c.files.OutputDir, base+xlsxreport.Extension)
		if err := xlsxreport.Write(path, out); err != nil {
			return written, fmt.Errorf("failed to write xlsx report: %w", err)
		}
		written = append(written, path)
		c.logger.Debug("wrote xlsx report", slog.String("path", path))
	}

	if c.cfg.Processing.WantsReport(ReportXML) {
		doc, err := xmlwriter.Generate(out)
		if err != nil {
			return written, fmt.Errorf("failed to generate xml report: %w", err)
		}
		path, err := c.files.WriteOutput(base+".xml", doc)
		if err != nil {
			return written, fmt.Errorf("failed to write xml report: %w", err)
		}
		written = append(written, path)
		c.logger.Debug("wrote xml report", slog.String("path", path))
	}

	return written, nil
}

func rejectionEntries(filePath string, out *pipeline.Output) []utils.RejectionLogEntry {
	if out.Report == nil {
		return nil
	}

	name := filepath.Base(filePath)
	entries := make([]utils.RejectionLogEntry, 0, len(out.Report.Rejections))
	for _, rej := range out.Report.Rejections {
		entries = append(entries, utils.RejectionLogEntry{
			FileName: name,
			Line:     rej.Line,
			Rule:     string(rej.Rule),
			Field:    rej.Field,
			Value:    rej.Value,
			Message:  rej.Message,
		})
	}
	return entries
}
