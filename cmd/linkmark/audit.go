package main

import (
	"github.com/spf13/cobra"

	"github.com/linkmarkhq/linkmark/internal/app"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check every stored URL once and report broken links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunAudit()
	},
}
