package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/promoscan/pkg/promoscan/analytics"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Edit stop-words that block product names",
	Long:  "Terms added here are stored alongside runs and apply on top of the configured blacklist.",
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklist terms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		all, _ := cmd.Flags().GetBool("all")

		var terms []string
		if all {
			sc, err := newScanner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer sc.Close() //nolint:errcheck
			terms = sc.BlacklistTerms()
		} else {
			st, err := initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if terms, err = st.BlacklistTerms(ctx); err != nil {
				return eris.Wrap(err, "blacklist list")
			}
		}

		for _, t := range terms {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <term>...",
	Short: "Add terms to the stored blacklist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.AddBlacklistTerms(ctx, args); err != nil {
			return eris.Wrap(err, "blacklist add")
		}
		zap.L().Info("blacklist terms added", zap.Strings("terms", args))
		return nil
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <term>...",
	Short: "Remove terms from the stored blacklist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.RemoveBlacklistTerms(ctx, args); err != nil {
			return eris.Wrap(err, "blacklist remove")
		}
		zap.L().Info("blacklist terms removed", zap.Strings("terms", args))
		return nil
	},
}

var blacklistSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest terms from words that open many recorded product names",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sc, err := newScanner(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer sc.Close() //nolint:errcheck

		th := analytics.DefaultThresholds()
		th.MinDF, _ = cmd.Flags().GetInt64("min-df")
		th.DFPercent, _ = cmd.Flags().GetFloat64("df-percent")
		th.CatEntropy, _ = cmd.Flags().GetFloat64("entropy")
		limit, _ := cmd.Flags().GetInt("limit")

		suggestions, err := sc.SuggestBlacklist(ctx, limit, th)
		if err != nil {
			return eris.Wrap(err, "blacklist suggest")
		}

		terms := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			terms = append(terms, s.Word)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tdf=%d\tdf%%=%.1f\tentropy=%.2f\tscore=%.3f\n",
				s.Word, s.Stats.DF, s.Stats.DFPercent, s.Stats.CatEntropy, s.Score)
		}

		if apply, _ := cmd.Flags().GetBool("apply"); apply && len(terms) > 0 {
			st, err := initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.AddBlacklistTerms(ctx, terms); err != nil {
				return eris.Wrap(err, "blacklist suggest")
			}
			zap.L().Info("suggested terms added", zap.Strings("terms", terms))
		}
		return nil
	},
}

func init() {
	blacklistListCmd.Flags().Bool("all", false, "include the configured terms, not only stored ones")

	defaults := analytics.DefaultThresholds()
	blacklistSuggestCmd.Flags().Int("limit", store.DefaultListLimit, "number of newest runs to analyze")
	blacklistSuggestCmd.Flags().Int64("min-df", defaults.MinDF, "minimum names a word must open")
	blacklistSuggestCmd.Flags().Float64("df-percent", defaults.DFPercent, "minimum share of names, in percent")
	blacklistSuggestCmd.Flags().Float64("entropy", defaults.CatEntropy, "minimum normalized category entropy")
	blacklistSuggestCmd.Flags().Bool("apply", false, "add the suggested terms to the stored blacklist")

	blacklistCmd.AddCommand(blacklistListCmd)
	blacklistCmd.AddCommand(blacklistSuggestCmd)
	blacklistCmd.AddCommand(blacklistAddCmd)
	blacklistCmd.AddCommand(blacklistRemoveCmd)
	rootCmd.AddCommand(blacklistCmd)
}
