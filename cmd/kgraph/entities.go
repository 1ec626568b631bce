package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph-io/kgraph/pkg/query"
	"github.com/kgraph-io/kgraph/pkg/types"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Query entities",
	RunE:  runEntities,
}

var addEntityCmd = &cobra.Command{
	Use:   "add-entity NAME TYPE",
	Short: "Add or merge an entity",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddEntity,
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	entitiesCmd.Flags().String("type", "", "filter by entity type")
	entitiesCmd.Flags().String("name", "", "filter by name pattern (case-insensitive regex)")
	entitiesCmd.Flags().Float64("min-confidence", 0, "minimum confidence")

	rootCmd.AddCommand(addEntityCmd)
	addEntityCmd.Flags().Float64("confidence", 1.0, "entity confidence")
	addEntityCmd.Flags().String("source", "manual", "provenance source")
}

func runEntities(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	filter := query.EntityFilter{}
	filter.Type, _ = cmd.Flags().GetString("type")
	filter.NamePattern, _ = cmd.Flags().GetString("name")
	filter.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")

	entities, err := g.QueryEntities(filter)
	if err != nil {
		return err
	}

	for _, entity := range entities {
		fmt.Printf("%s  %-12s %-24s %.3f\n", entity.ID, entity.Type, entity.Name, entity.Confidence)
	}
	fmt.Printf("%d entities\n", len(entities))
	return nil
}

func runAddEntity(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	confidence, _ := cmd.Flags().GetFloat64("confidence")
	source, _ := cmd.Flags().GetString("source")

	id, err := g.UpsertEntity(args[0], args[1], types.Properties{}, confidence, source)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
