package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/promoscan/internal/settings"
)

var (
	cfg        *settings.Config
	configFile string
)

var rootCmd = &cobra.Command{
	Use:          "promoscan",
	Short:        "Extract product offers from retail brochures",
	Long:         "Reads OCR'd or scraped brochure text, finds priced product lines, attaches old prices, promotion windows and categories, and records each extraction run.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings.Load(configFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := settings.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./promoscan.yaml or ./config/promoscan.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
