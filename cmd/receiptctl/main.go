// Command receiptctl extracts structured receipts from token files and photos.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/foxxcyber/receipt-grammar/internal/config"
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

var (
	cfg       *config.Config
	vendor    string
	threshold float64
	compact   bool
)

var rootCmd = &cobra.Command{
	Use:   "receiptctl",
	Short: "Extract structured data from UK grocery receipts",
	Long: `receiptctl runs the Lidl, Sainsbury's and Tesco receipt grammars over OCR
output and prints the extracted receipt as JSON.

Examples:
  receiptctl extract --vendor tesco tokens.json
  receiptctl scan photo.jpg
  receiptctl vendors`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if vendor != "" && !models.Vendor(vendor).Valid() {
			return fmt.Errorf("unknown vendor %q", vendor)
		}
		if !cmd.Flags().Changed("threshold") {
			threshold = cfg.FuzzyThreshold
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vendor, "vendor", "", "receipt vendor (lidl, sainsbury, tesco); detected when empty")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0.9, "fuzzy label match threshold in (0,1]")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "print single-line JSON")

	rootCmd.AddCommand(extractCmd, scanCmd, vendorsCmd)
}

func main() {
	godotenv.Load()
	cfg = config.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
