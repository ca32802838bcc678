package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkmarkhq/linkmark/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the linkmark version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("linkmark %s (commit=%s, built=%s, %s)\n",
			version.Version, version.Commit, version.BuildDate, version.GoVersion)
	},
}
