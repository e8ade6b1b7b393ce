package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from .helio/docs.jsonl, replay the
crowd-asserted edges in .helio/asserted.jsonl and regenerate the lookup tables.

Use this after replacing the document export or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Edges     int    `json:"edges"`
	Asserted  int    `json:"asserted"`
	Lookups   int    `json:"lookups"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	stats, err := a.Rebuild(cmd.Context())
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d documents, %d edges (%d asserted) and %d lookup rows\n",
			stats.Documents, stats.Edges, stats.Asserted, stats.Lookups)
	} else {
		outputJSON(RebuildResult{
			Status:    "rebuilt",
			Documents: stats.Documents,
			Edges:     stats.Edges,
			Asserted:  stats.Asserted,
			Lookups:   stats.Lookups,
		})
	}
	return nil
}
