// =============================================================================
// Ventas Ledger - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   ventas export --file ventas_raw.csv [--out ventas_clean.csv | --out -]
//
// Writes only the cleaned ledger. The default destination is
// processing.export_file_name in the current directory; "-" writes to
// standard output. A ledger with no surviving rows is an error.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/converter"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	exportFile string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the cleaned ledger of one file",
	Long: `The export command runs the cleaning pipeline on one ledger and writes the
surviving rows in ledger format: the header line followed by one line per
row, with no quoting.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.OutOrStdout(), appConfig, exportFile, exportOut)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Ledger to clean (.csv or .xlsx)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Destination file, or - for stdout (default: processing.export_file_name)")
	exportCmd.MarkFlagRequired("file")
}

func runExport(stdout io.Writer, cfg *config.Config, file, dest string) error {
	raw, err := converter.LoadLedger(file)
	if err != nil {
		return err
	}

	result := pipeline.New(pipeline.Options{TopN: cfg.Processing.TopN}, logger).RunRecords(raw)

	exported, err := result.Export()
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", file, err)
	}

	if dest == "-" {
		_, err := fmt.Fprintln(stdout, exported)
		return err
	}

	if dest == "" {
		dest = cfg.Processing.ExportFileName
	}

	if err := os.WriteFile(dest, []byte(exported), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	logger.Info("wrote clean export",
		slog.String("path", dest),
		slog.Int("clean_rows", result.CleanCount),
		slog.Int("raw_rows", result.RawCount))
	return nil
}
