package main

import (
	"github.com/spf13/cobra"

	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/ocr"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

var showTokens bool

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "OCR a receipt photo with Tesseract and extract it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := ocr.New(cfg.OCRLanguage, cfg.OCRGapFactor)
		if err != nil {
			return err
		}
		defer engine.Close()

		fragments, err := engine.RecognizeFile(args[0])
		if err != nil {
			return err
		}

		req := &models.ExtractRequest{Vendor: models.Vendor(vendor), Fragments: fragments}
		if showTokens {
			return printJSON(cmd.OutOrStdout(), req)
		}

		receipt, err := services.NewExtractionService(threshold).Extract(req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), receipt)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&showTokens, "tokens", false, "print the OCR fragments instead of extracting")
}
