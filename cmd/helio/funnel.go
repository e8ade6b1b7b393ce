package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/funnel"
)

var (
	funnelConcepts     []string
	funnelInstitutions []string
	funnelCoauthors    []string
)

func init() {
	funnelCmd.Flags().StringArrayVarP(&funnelConcepts, "concept", "c", nil, "Concept id, expanded to its descendants (repeatable, at most 3)")
	funnelCmd.Flags().StringArrayVarP(&funnelInstitutions, "institution", "i", nil, "Institution id, expanded to its descendants (repeatable, at most 3)")
	funnelCmd.Flags().StringArrayVarP(&funnelCoauthors, "coauthor", "a", nil, "Coauthor id; all must share one work (repeatable, at most 3)")
	funnelCmd.AddCommand(funnelOptionsCmd)
	rootCmd.AddCommand(funnelCmd)
}

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Find authors matching concept, institution and coauthor filters",
	Long: `Narrow the set of authors by up to three concepts, three institutions and
three coauthors at once.

  --concept      author is related to the concept or one of its descendants
  --institution  author wrote a work affiliated with the institution or a descendant
  --coauthor     author shares a single work with every named coauthor

Concepts within the list are alternatives, as are institutions; coauthors are
conjunctive. The institution and coauthor filters apply to the same work.
At most 50 authors are listed; count reports the full number.
Without any filter only the total number of authors is reported.

Examples:
  helio funnel -c https://openalex.org/C121332964
  helio funnel -i I1 -a A1 -a A2 --human`,
	Args: cobra.NoArgs,
	RunE: runFunnel,
}

var funnelOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the concepts, institutions and authors available to the funnel",
	Args:  cobra.NoArgs,
	RunE:  runFunnelOptions,
}

func runFunnel(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	res, err := a.Funnel.Authors(cmd.Context(), funnel.Query{
		Concepts:     funnelConcepts,
		Institutions: funnelInstitutions,
		Coauthors:    funnelCoauthors,
	})
	if err != nil {
		exitForError(err)
	}

	if humanOutput {
		fmt.Printf("%d matching authors\n", res.Count)
		for _, d := range res.Authors {
			fmt.Printf("  %-40s %s\n", d.ID, truncateString(d.DisplayName, NameMaxLen))
		}
		if len(res.Authors) < res.Count && len(res.Authors) > 0 {
			fmt.Printf("  ... showing the first %d\n", len(res.Authors))
		}
	} else {
		outputJSON(res)
	}
	return nil
}

func runFunnelOptions(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	opts, err := a.Funnel.Options(cmd.Context())
	if err != nil {
		exitForError(err)
	}

	if humanOutput {
		fmt.Printf("Concepts (%d)\n", len(opts.Concepts))
		for _, c := range opts.Concepts {
			fmt.Printf("  %5d  %s\n", c.Count, truncateString(c.DisplayName, NameMaxLen))
		}
		fmt.Printf("Institutions (%d)\n", len(opts.Institutions))
		for _, i := range opts.Institutions {
			fmt.Printf("  %5d  %s\n", i.Count, truncateString(i.DisplayName, NameMaxLen))
		}
		fmt.Printf("Authors (%d)\n", len(opts.Authors))
	} else {
		outputJSON(opts)
	}
	return nil
}
