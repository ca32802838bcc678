package main

import (
	"github.com/spf13/cobra"

	"github.com/linkmarkhq/linkmark/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "linkmark",
	Short:   "Linkmark is a bookmark manager with automatic metadata enrichment",
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}
