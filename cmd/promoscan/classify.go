package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <name>...",
	Short: "Print the category of product names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := loadComponents(cfg)
		if err != nil {
			return err
		}
		for _, name := range args {
			name = strings.TrimSpace(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", comp.Taxonomy.Classify(name), name)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List category labels in classification order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		comp, err := loadComponents(cfg)
		if err != nil {
			return err
		}
		for _, label := range comp.Taxonomy.Labels() {
			fmt.Fprintln(cmd.OutOrStdout(), label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(categoriesCmd)
}
