package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old query and insight records",
	Long: `Remove query and insight records older than the retention window.
Entities and relations are never removed by cleanup.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().Int("days", -1, "retention in days (0 purges all records now, negative uses the configured default)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	days, _ := cmd.Flags().GetInt("days")
	result, err := g.Cleanup(days)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d queries, %d insights (%d queries, %d insights remain)\n",
		result.CleanedQueries, result.CleanedInsights,
		result.RemainingQueries, result.RemainingInsights)
	return nil
}
