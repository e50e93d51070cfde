// =============================================================================
// HS Code Reconciler - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP API.
//
// COMMAND USAGE:
//   reconciler serve [--port 8080]
//
// ENDPOINTS:
//   POST /api/v1/reconcile    - Reconcile an uploaded invoice and packing list
//   POST /api/v1/descriptions - Extract an uploaded invoice's descriptions
//   POST /api/v1/preview      - Preview an uploaded file
//   GET  /health              - Liveness check
//
// The server stops gracefully on SIGINT or SIGTERM.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	"github.com/ginjaninja78/hscode-reconciler/internal/api"
)

var servePort int

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `The serve command exposes reconciliation, description extraction and file
preview over HTTP. Files are uploaded as multipart form data. Results are
returned as JSON or as a downloadable .xlsx or .csv file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := commandConfig()
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		a := analyzer.New(cfg, analyzer.WithLogger(logger))
		server := api.NewServer(a, logger)
		return server.Run(cmd.Context(), fmt.Sprintf(":%d", cfg.Server.Port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides the config file)")
}
