package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/promoscan/internal/brochure"
	"github.com/cognicore/promoscan/pkg/promoscan"
	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
)

var (
	extractSave     bool
	extractRetailer string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Extract products from brochure files",
	Long: `Extract products from .txt, .html and .jsonl brochure files, or from stdin with "-".
Results are printed as JSON. Files that fail to load are logged and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		brochures, err := loadBrochures(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if extractRetailer != "" {
			for i := range brochures {
				brochures[i].Retailer = extractRetailer
			}
		}

		sc, err := newScanner(ctx, cfg, extractSave)
		if err != nil {
			return err
		}
		defer sc.Close() //nolint:errcheck

		results, err := sc.ScanAll(ctx, brochures)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

// loadBrochures reads every argument; "-" reads stdin as plain text.
// Unreadable files are skipped, but at least one brochure must load.
func loadBrochures(stdin io.Reader, args []string) ([]promoscan.Brochure, error) {
	var out []promoscan.Brochure
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, eris.Wrap(err, "read stdin")
			}
			out = append(out, promoscan.Brochure{Source: "stdin", Text: brochure.Decode(data)})
			continue
		}

		loaded, err := brochure.Load(arg)
		if err != nil {
			zap.L().Error("skipping brochure", zap.String("path", arg), zap.Error(err))
			continue
		}
		for _, b := range loaded {
			out = append(out, promoscan.Brochure{Source: b.Source, Retailer: b.Retailer, Text: b.Text})
		}
	}
	if len(out) == 0 {
		return nil, eris.Wrap(internalerr.ErrInvalidInput, "no brochure could be loaded")
	}
	return out, nil
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "record each brochure as a run in the store")
	extractCmd.Flags().StringVar(&extractRetailer, "retailer", "", "retailer name for all inputs (default: guessed from file name)")
	rootCmd.AddCommand(extractCmd)
}
