package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/document"
)

var searchType string

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Restrict to one type: Author, Work, Institution or Concept")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over display names",
	Long: `Search display names across all documents, ranked by relevance.

Each word is matched independently; documents matching more words rank higher.

Examples:
  helio search "solar flares"
  helio search corona --type Concept`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	var typ document.Type
	if searchType != "" {
		t, err := document.ParseType(searchType)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		typ = t
	}

	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	hits, err := a.Graph.Search(cmd.Context(), strings.Join(args, " "), typ)
	if err != nil {
		exitForError(err)
	}

	if humanOutput {
		if len(hits) == 0 {
			fmt.Println("No results")
			return nil
		}
		for i, h := range hits {
			fmt.Printf("%d. [%.2f] %-12s %s\n", i+1, h.Score, h.Type, truncateString(h.DisplayName, NameMaxLen))
			fmt.Printf("   %s\n", h.Href)
		}
	} else {
		outputJSON(hits)
	}
	return nil
}
