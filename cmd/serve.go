// =============================================================================
// Ventas Ledger - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   ventas serve [--addr :8080] [--source ventas_raw.csv]
//
// Starts the dashboard API. The server stops gracefully on SIGINT/SIGTERM.
//
// ROUTES:
//   GET  /healthz
//   GET  /api/v1/ledger           dashboard data of the source ledger
//   GET  /api/v1/ledger/export    clean export of the source ledger
//   GET  /api/v1/ledger/report    xlsx/xml report of the source ledger
//   POST /api/v1/ledger/clean     dashboard data of the uploaded ledger
//   POST /api/v1/ledger/export    clean export of the uploaded ledger
//   POST /api/v1/ledger/report    xlsx/xml report of the uploaded ledger
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/ventas-ledger/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveSource string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API",
	Long: `The serve command starts the HTTP API used by the sales dashboard. It
cleans the configured source ledger (server.source_file) or an uploaded one
and returns previews, KPIs, groupings and the top products.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveSource != "" {
			cfg.Server.SourceFile = serveSource
		}

		return server.New(&cfg, logger).Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
	serveCmd.Flags().StringVar(&serveSource, "source", "", "Source ledger for the GET routes (default: server.source_file)")
}
