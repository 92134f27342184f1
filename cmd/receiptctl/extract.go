package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

var showSpans bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a receipt from a JSON token or fragment file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 0 || args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read tokens: %w", err)
		}

		validator, err := services.NewPayloadValidator()
		if err != nil {
			return err
		}
		req, err := validator.DecodeTokenFile(raw, models.Vendor(vendor))
		if err != nil {
			return err
		}

		svc := services.NewExtractionService(threshold)
		if showSpans {
			v, traces, err := svc.Trace(req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"vendor": v, "spans": traces})
		}

		receipt, err := svc.Extract(req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), receipt)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&showSpans, "spans", false, "print how the item section was segmented instead of the receipt")
}
