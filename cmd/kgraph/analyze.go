package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Derive pattern and connectivity insights from the graph",
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	insights, err := g.AnalyzePatterns()
	if err != nil {
		return err
	}
	for _, insight := range insights {
		fmt.Printf("[%s] %s (confidence %.2f)\n", insight.Kind, insight.Description, insight.Confidence)
	}
	fmt.Printf("%d insights\n", len(insights))
	return nil
}
