package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cognicore/promoscan/pkg/promoscan/analytics"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect extraction run history",
	Long:  "Commands for listing and viewing recorded extraction runs and their products.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs products --

var runsProductsCmd = &cobra.Command{
	Use:   "products <category>",
	Short: "List recorded products of one category, newest run first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		products, err := st.ProductsByCategory(ctx, args[0], limit)
		if err != nil {
			return eris.Wrap(err, "runs products")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded products per category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sc, err := newScanner(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer sc.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		a, err := sc.Analyze(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		rep := a.Report()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		formatReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

// -- runs clean --

var runsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Re-apply the current taxonomy and blacklist to recorded runs",
	Long: `Re-classifies every recorded product with the current taxonomy and removes
products that the current quality filter, including stored blacklist terms,
would reject.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sc, err := newScanner(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer sc.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		res, err := sc.Clean(ctx, limit, dryRun)
		if err != nil {
			return eris.Wrap(err, "runs clean")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "runs: %d  products: %d  updated: %d  removed: %d  errors: %d\n",
			res.Runs, res.Processed, res.Updated, res.Removed, res.Errors)
		return nil
	},
}

// formatReport writes the per-category table of a report.
func formatReport(w io.Writer, rep analytics.Report) {
	fmt.Fprintf(w, "%d runs, %d products\n\n", rep.Runs, rep.Products)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPRODUCTS\tPROMO\tDISCOUNTED\tMIN\tAVG\tMAX\tAVG %")
	for _, c := range rep.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.1f\n",
			c.Category, c.Products, c.Promotional, c.Discounted,
			c.MinPrice, c.AvgPrice, c.MaxPrice, c.AvgDiscountPct,
		)
	}
	tw.Flush()
}

// formatRunsList writes a table of runs.
func formatRunsList(w io.Writer, runs []store.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tRETAILER\tPRODUCTS\tSOURCE")
	for _, r := range runs {
		retailer := r.Retailer
		if retailer == "" {
			retailer = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			retailer,
			r.ProductCount,
			r.Source,
		)
	}
	tw.Flush()
}

func init() {
	runsListCmd.Flags().Int("limit", store.DefaultListLimit, "maximum number of runs to show")
	runsProductsCmd.Flags().Int("limit", store.DefaultListLimit, "maximum number of products to show")
	runsStatsCmd.Flags().Int("limit", store.DefaultListLimit, "number of newest runs to include")
	runsStatsCmd.Flags().Bool("json", false, "print the report as JSON")
	runsCleanCmd.Flags().Int("limit", 0, "number of newest runs to clean (0 cleans all)")
	runsCleanCmd.Flags().Bool("dry-run", false, "report changes without writing them")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsProductsCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsCleanCmd)
	rootCmd.AddCommand(runsCmd)
}
