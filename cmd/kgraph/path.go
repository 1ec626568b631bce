package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path SOURCE_ID TARGET_ID",
	Short: "Find directed paths between two entities",
	Args:  cobra.ExactArgs(2),
	RunE:  runPath,
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().Int("max-depth", 0, "maximum hops (0 uses the configured default)")
}

func runPath(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	paths, err := g.FindPaths(args[0], args[1], maxDepth)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Printf("%s  (%d hops)\n", p.String(), p.Hops())
	}
	fmt.Printf("%d paths\n", len(paths))
	return nil
}
