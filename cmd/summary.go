// =============================================================================
// Ventas Ledger - Summary Command
// =============================================================================
//
// COMMAND USAGE:
//   ventas summary --file ventas_raw.csv [--format text|json] [--top N]
//
// Prints the dashboard metrics of a single ledger without writing anything:
// raw and clean row counts, total revenue and units, revenue per franja,
// familia and producto, and the best-selling products.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/converter"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/ginjaninja78/ventas-ledger/internal/validation"
	"github.com/spf13/cobra"
)

// summaryOptions holds the flags of the summary command.
type summaryOptions struct {
	file       string
	format     string
	top        int
	rejections bool
}

var summaryOpts summaryOptions

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the metrics of one ledger",
	Long: `The summary command runs the cleaning pipeline on one ledger and prints the
row counts, the KPIs, the revenue groupings and the best-selling products.
Nothing is written to disk.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummary(cmd.OutOrStdout(), appConfig, summaryOpts)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVarP(&summaryOpts.file, "file", "f", "", "Ledger to summarize (.csv or .xlsx)")
	summaryCmd.Flags().StringVar(&summaryOpts.format, "format", "text", "Output format: text or json")
	summaryCmd.Flags().IntVar(&summaryOpts.top, "top", 0, "Number of top products (default: processing.top_n)")
	summaryCmd.Flags().BoolVar(&summaryOpts.rejections, "rejections", false, "Also list the rejected rows")
	summaryCmd.MarkFlagRequired("file")
}

// summaryDocument is the JSON form of the summary command.
type summaryDocument struct {
	*pipeline.Output
	Rejections []validation.Rejection `json:"rejections,omitempty"`
}

func runSummary(out io.Writer, cfg *config.Config, opts summaryOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	raw, err := converter.LoadLedger(opts.file)
	if err != nil {
		return err
	}

	top := opts.top
	if top <= 0 {
		top = cfg.Processing.TopN
	}

	result := pipeline.New(pipeline.Options{
		PreviewRows: cfg.Processing.PreviewRows,
		TopN:        top,
	}, logger).RunRecords(raw)

	if opts.format == "json" {
		doc := summaryDocument{Output: result}
		if opts.rejections {
			doc.Rejections = result.Report.Rejections
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	printSummary(out, opts.file, result)
	if opts.rejections {
		fmt.Fprintln(out)
		fmt.Fprintln(out, validation.FormatReport(result.Report))
		for _, rej := range result.Report.Rejections {
			fmt.Fprintf(out, "  %s\n", rej.Error())
		}
	}
	return nil
}

func printSummary(out io.Writer, file string, result *pipeline.Output) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Ledger:\t%s\n", file)
	fmt.Fprintf(w, "Filas originales:\t%d\n", result.RawCount)
	fmt.Fprintf(w, "Filas limpias:\t%d\n", result.CleanCount)
	fmt.Fprintf(w, "Ventas totales:\t%s\n", aggregate.FormatRevenue(result.Summary.TotalRevenue))
	fmt.Fprintf(w, "Unidades totales:\t%s\n", aggregate.FormatUnits(result.Summary.TotalUnits))

	printGroups(w, "Ventas por franja", result.Summary.ByFranja)
	printGroups(w, "Ventas por familia", result.Summary.ByFamilia)

	fmt.Fprintf(w, "\nTop productos\t\n")
	for i, g := range result.TopProductos {
		fmt.Fprintf(w, "  %d. %s\t%s\n", i+1, g.Key, aggregate.FormatRevenue(g.Revenue))
	}

	w.Flush()
}

func printGroups(w io.Writer, title string, groups aggregate.Groups) {
	fmt.Fprintf(w, "\n%s\t\n", title)
	for _, g := range groups {
		fmt.Fprintf(w, "  %s\t%s\n", g.Key, aggregate.FormatRevenue(g.Revenue))
	}
}
