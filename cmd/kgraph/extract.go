package kgraph

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [FILE]",
	Short: "Extract entities from code, text, or an error message",
	Long: `Extract entities from the given file, or from stdin when no file
is named, and upsert them into the graph.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("kind", "code", "input kind (code, text, error)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	var content []byte
	var err error
	if len(args) == 1 {
		content, err = os.ReadFile(args[0])
	} else {
		content, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	kind, _ := cmd.Flags().GetString("kind")
	var ids []string
	switch kind {
	case "code":
		ids, err = g.ExtractFromCode(string(content))
	case "text":
		ids, err = g.ExtractFromText(string(content))
	case "error":
		ids, err = g.ExtractFromError(string(content))
	default:
		return fmt.Errorf("unknown extract kind %q (expected code, text, or error)", kind)
	}
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d entities extracted\n", len(ids))
	return nil
}
