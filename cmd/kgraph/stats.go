package kgraph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge graph statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("json", false, "print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	stats := g.Statistics()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Entities:  %d (avg confidence %.3f)\n", stats.Entities.Total, stats.Entities.AvgConfidence)
	for entityType, count := range stats.Entities.Types {
		fmt.Printf("  %-16s %d\n", entityType, count)
	}
	fmt.Printf("Relations: %d (avg confidence %.3f)\n", stats.Relations.Total, stats.Relations.AvgConfidence)
	for relationType, count := range stats.Relations.Types {
		fmt.Printf("  %-16s %d\n", relationType, count)
	}
	fmt.Printf("Connectivity: %d connected nodes, max degree %d, avg degree %.2f\n",
		stats.Connectivity.ConnectedNodes, stats.Connectivity.MaxDegree, stats.Connectivity.AvgDegree)
	fmt.Printf("Queries:  %d total, %d in last 24h\n", stats.Queries.Total, stats.Queries.Recent)
	fmt.Printf("Insights: %d total, %d in last 7d\n", stats.Insights.Total, stats.Insights.Recent)
	return nil
}
