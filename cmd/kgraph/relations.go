package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph-io/kgraph/pkg/query"
	"github.com/kgraph-io/kgraph/pkg/types"
)

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "Query relations",
	RunE:  runRelations,
}

var addRelationCmd = &cobra.Command{
	Use:   "add-relation SOURCE_ID TARGET_ID TYPE",
	Short: "Add or merge a relation between two entities",
	Args:  cobra.ExactArgs(3),
	RunE:  runAddRelation,
}

func init() {
	rootCmd.AddCommand(relationsCmd)
	relationsCmd.Flags().String("source", "", "filter by source entity id")
	relationsCmd.Flags().String("target", "", "filter by target entity id")
	relationsCmd.Flags().String("type", "", "filter by relation type")
	relationsCmd.Flags().Float64("min-confidence", 0, "minimum confidence")

	rootCmd.AddCommand(addRelationCmd)
	addRelationCmd.Flags().Float64("confidence", 1.0, "relation confidence")
	addRelationCmd.Flags().String("source", "manual", "provenance source")
}

func runRelations(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	filter := query.RelationFilter{}
	filter.SourceID, _ = cmd.Flags().GetString("source")
	filter.TargetID, _ = cmd.Flags().GetString("target")
	filter.Type, _ = cmd.Flags().GetString("type")
	filter.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")

	relations, err := g.QueryRelations(filter)
	if err != nil {
		return err
	}

	for _, relation := range relations {
		fmt.Printf("%s  %s -%s-> %s  %.3f\n",
			relation.ID, relation.SourceID, relation.Type, relation.TargetID, relation.Confidence)
	}
	fmt.Printf("%d relations\n", len(relations))
	return nil
}

func runAddRelation(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	confidence, _ := cmd.Flags().GetFloat64("confidence")
	source, _ := cmd.Flags().GetString("source")

	id, err := g.UpsertRelation(args[0], args[1], args[2], types.Properties{}, confidence, source)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
