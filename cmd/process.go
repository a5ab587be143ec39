// =============================================================================
// Ventas Ledger - Process Command
// =============================================================================
//
// This file defines the 'process' command, which cleans every ledger found
// in the input directory.
//
// COMMAND USAGE:
//   ventas process [flags]
//
// FLAGS:
//   --dry-run : Run the pipeline without writing or moving any file
//   --file    : Process a single ledger instead of scanning the input dir
//
// PROCESSING:
//   1. Discover .csv and .xlsx ledgers in the input directory
//   2. For each file (at most processing.max_concurrency at once):
//      a. Run the pipeline
//      b. Write the clean export and the configured reports
//      c. Write the rejection log
//      d. Archive the input
//   3. Print and write the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/converter"
	"github.com/ginjaninja78/ventas-ledger/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing output files.
var dryRun bool

// processFile is a single ledger to process instead of the input directory.
var processFile string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean every ledger in the input directory",
	Long: `The process command scans the input directory for .csv and .xlsx ledgers
and runs the cleaning pipeline on each of them.

Files are processed concurrently (processing.max_concurrency). Each file is
independent: a failure in one does not stop the others.

On success:
  - The clean export is written to the output directory
  - The configured reports (xlsx, xml) are written next to it
  - Rejected rows are listed in a rejection log
  - The input ledger is moved to the archive directory

On error:
  - The input ledger stays in the input directory
  - The command exits with a non-zero status once every file was tried`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout(), appConfig)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the pipeline without writing or moving any file",
	)

	processCmd.Flags().StringVar(
		&processFile,
		"file",
		"",
		"Process only this ledger",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, out io.Writer, cfg *config.Config) error {
	startTime := time.Now()

	fm := utils.NewFileManager(cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.ArchiveDir)
	fm.UseTimestampSubdirs = cfg.Processing.ArchiveByDate
	fm.ArchiveOnSuccess = !cfg.Processing.KeepInputs

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if processFile != "" {
		if !utils.FileExists(processFile) {
			return fmt.Errorf("ledger not found: %s", processFile)
		}
		inputFiles = []string{processFile}
	} else {
		files, err := fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = files
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No ledgers found in the input directory.")
		return nil
	}

	logger.Info("processing ledgers",
		slog.Int("files", len(inputFiles)),
		slog.Int("max_concurrency", cfg.Processing.MaxConcurrency),
		slog.Bool("dry_run", dryRun))

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := make([]converter.Result, len(inputFiles))

	var g errgroup.Group
	g.SetLimit(cfg.Processing.MaxConcurrency)

	for i, file := range inputFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = converter.Result{FilePath: file, Error: err}
				return nil
			}
			results[i] = converter.New(file, cfg, fm, logger).DryRun(dryRun).Run()
			return nil
		})
	}

	// Converters report failures in their Result, never through Go.
	_ = g.Wait()

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	summary := summarizeResults(results)
	summary.StartTime = startTime
	summary.EndTime = time.Now()

	printProcessSummary(out, summary, results)

	if !dryRun {
		path, err := fm.WriteSummaryLog(summary)
		if err != nil {
			logger.Warn("failed to write processing summary", slog.Any("error", err))
		} else {
			logger.Debug("wrote processing summary", slog.String("path", path))
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d ledger(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func summarizeResults(results []converter.Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{TotalFiles: len(results)}

	for _, result := range results {
		summary.TotalRawRows += result.Stats.RawRows
		summary.TotalCleanRows += result.Stats.CleanRows
		summary.TotalRejected += result.Stats.RejectedRows

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: fmt.Sprint(result.Error),
			})
			continue
		}

		summary.SuccessfulFiles++
		info := utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			ReportFiles: result.ReportFiles,
			ArchivePath: result.ArchivePath,
			RawRows:     result.Stats.RawRows,
			CleanRows:   result.Stats.CleanRows,
			ProcessTime: result.Stats.ProcessingTime,
		}
		if result.Output != nil {
			info.TotalRevenue = aggregate.FormatRevenue(result.Output.Summary.TotalRevenue)
		}
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
	}

	return summary
}

func printProcessSummary(out io.Writer, summary utils.ProcessingSummary, results []converter.Result) {
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case !result.Success:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		case result.OutputFile == "":
			fmt.Fprintf(out, "  ✓ %s (%d/%d rows clean, dry run)\n",
				name, result.Stats.CleanRows, result.Stats.RawRows)
		default:
			fmt.Fprintf(out, "  ✓ %s -> %s (%d/%d rows clean)\n",
				name, result.OutputFile, result.Stats.CleanRows, result.Stats.RawRows)
		}
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Rows (raw):      %d\n", summary.TotalRawRows)
	fmt.Fprintf(out, "Rows (clean):    %d\n", summary.TotalCleanRows)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
}
