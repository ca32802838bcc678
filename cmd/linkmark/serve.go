package main

import (
	"github.com/spf13/cobra"

	"github.com/linkmarkhq/linkmark/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New().Run()
	},
}
