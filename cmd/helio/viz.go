package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/viz"
)

func init() {
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz <id>",
	Short: "Export the neighbourhood of a document as Cytoscape.js elements",
	Long: `Export a document, the documents its edges point to, and the documents
pointing at it, in the Cytoscape.js elements format.

Examples:
  helio viz A1 > a1.json
  helio viz https://openalex.org/C121332964 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	g, err := viz.Build(cmd.Context(), a.Store, args[0])
	if err != nil {
		exitForError(err)
	}

	if humanOutput {
		fmt.Printf("%d nodes, %d edges around %s\n", len(g.Nodes), len(g.Edges), g.Root)
		for _, n := range g.Nodes {
			fmt.Printf("  %-12s %-40s %3d  %s\n", n.Type, n.ID, n.ConnectionCount, truncateString(n.Label, NameMaxLen))
		}
		return nil
	}
	outputJSON(g.ToCytoscape())
	return nil
}
