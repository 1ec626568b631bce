package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inferCmd = &cobra.Command{
	Use:   "infer RELATION_TYPE",
	Short: "Infer one generation of transitive relations",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfer,
}

var similarCmd = &cobra.Command{
	Use:   "similar ENTITY_ID",
	Short: "Find entities similar to the given one",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend ENTITY_ID",
	Short: "Recommend new relations for an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	rootCmd.AddCommand(inferCmd)

	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().Float64("threshold", 0, "similarity threshold (0 uses the configured default)")

	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().Int("max-results", 5, "maximum number of recommendations")
}

func runInfer(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	pairs, err := g.InferTransitiveRelations(args[0])
	if err != nil {
		return err
	}
	for _, p := range pairs {
		fmt.Printf("%s -%s-> %s\n", p.SourceID, args[0], p.TargetID)
	}
	fmt.Printf("%d relations inferred\n", len(pairs))
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	ids, err := g.FindSimilarEntities(args[0], threshold)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if entity := g.Entity(id); entity != nil {
			fmt.Printf("%s  %-12s %s\n", id, entity.Type, entity.Name)
			continue
		}
		fmt.Println(id)
	}
	fmt.Printf("%d similar entities\n", len(ids))
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	g, _, err := openGraph()
	if err != nil {
		return err
	}
	defer g.Close()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	recommendations, err := g.RecommendRelations(args[0], maxResults)
	if err != nil {
		return err
	}
	for _, rec := range recommendations {
		fmt.Printf("%s -%s-> %s  %.2f  (%s)\n",
			rec.SourceID, rec.Type, rec.TargetID, rec.Confidence, rec.Reason)
	}
	fmt.Printf("%d recommendations\n", len(recommendations))
	return nil
}
