package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph-io/kgraph/pkg/persist"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the graph to json, graphml, or parquet",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("format", persist.FormatJSON, "export format (json, graphml, parquet)")
}

func runExport(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	format, _ := cmd.Flags().GetString("format")
	path, err := g.Export(format)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
