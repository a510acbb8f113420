// Package cmd wires configuration, the model dispatcher, the document
// store and the HTTP server into the bankql binary.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bankql",
	Short: "bankql - natural language queries over banking data",
	Long: `bankql answers free-text questions about banking data. A Gemini model
translates each question into a read-only MongoDB aggregation pipeline,
the pipeline runs against the configured database, and a second model
call summarizes the results.

Running bankql without a subcommand starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
