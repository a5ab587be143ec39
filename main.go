// =============================================================================
// Ventas Ledger - Main Entry Point
// =============================================================================
//
// USAGE:
//   ventas process   - Clean every ledger in the input directory
//   ventas summary   - Print the metrics of one ledger
//   ventas export    - Write the cleaned ledger of one file
//   ventas serve     - Start the dashboard API
//   ventas version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : The ledger pipeline, reports, config, logging and API
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/ventas-ledger/cmd"
)

func main() {
	cmd.Execute()
}
