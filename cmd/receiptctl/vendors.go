package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List supported receipt vendors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range models.Vendors {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
	},
}
