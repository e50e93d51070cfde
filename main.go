// =============================================================================
// HS Code Reconciler - Main Entry Point
// =============================================================================
//
// This is the main entry point for the HS Code Reconciler CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   reconciler reconcile     - Reconcile an invoice with its packing list
//   reconciler describe      - Extract invoice description blocks
//   reconciler preview       - Show a workbook's headers and column contents
//   reconciler serve         - Run the HTTP API
//   reconciler config init   - Write a default configuration file
//   reconciler version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/      : CLI command definitions (Cobra)
//   - internal/ : Reconciliation engine, decoding, export and HTTP API
//   - pkg/      : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/hscode-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
