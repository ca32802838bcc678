package main

import (
	"github.com/spf13/cobra"

	"github.com/linkmarkhq/linkmark/internal/app"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the metadata enrichment worker",
	Long: `Run the out-of-process enrichment worker. It consumes enrichment
events from NATS, fetches page metadata, and writes the results back to the
database. Requires LINKMARK_NATS_URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunWorker()
	},
}
