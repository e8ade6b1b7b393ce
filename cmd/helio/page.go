package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/graph"
)

func init() {
	rootCmd.AddCommand(authorCmd, workCmd, affilCmd, conceptCmd)
}

var authorCmd = &cobra.Command{
	Use:   "author <id>",
	Short: "Show an author: concepts, works, coauthors and institutions",
	Args:  cobra.ExactArgs(1),
	RunE: pageRunner(func(ctx context.Context, q *graph.Queries, id string) (any, error) {
		return q.AuthorPage(ctx, id)
	}, func(v any) {
		p := v.(*graph.AuthorPage)
		printHeader(p.Author.DisplayName, p.Author.ID, p.OpenAlexLink)
		fmt.Printf("Concepts (%d)\n", len(p.Concepts))
		for i, c := range p.Concepts {
			if i == ListMaxItems {
				fmt.Printf("  ... and %d more\n", len(p.Concepts)-ListMaxItems)
				break
			}
			fmt.Printf("  %4d  %s\n", c.Q, truncateString(c.DisplayName, NameMaxLen))
		}
		printDocs("Works", p.Works)
		printDocs("Coauthors", p.Coauthors)
		printDocs("Institutions", p.CollaboratingInstitutions)
	}),
}

var workCmd = &cobra.Command{
	Use:   "work <id>",
	Short: "Show a work: authors and institutions",
	Args:  cobra.ExactArgs(1),
	RunE: pageRunner(func(ctx context.Context, q *graph.Queries, id string) (any, error) {
		return q.WorkPage(ctx, id)
	}, func(v any) {
		p := v.(*graph.WorkPage)
		printHeader(p.Work.DisplayName, p.Work.ID, p.OpenAlexLink)
		if y := p.Work.Year(); y != 0 {
			fmt.Printf("Year: %d\n", y)
		}
		fmt.Printf("Authors (%d)\n", len(p.Authors))
		for _, w := range p.Authors {
			fmt.Printf("  %3d. %s\n", w.Q, w.DisplayName)
		}
		printDocs("Institutions", p.Institutions)
	}),
}

var affilCmd = &cobra.Command{
	Use:     "affil <id>",
	Aliases: []string{"institution"},
	Short:   "Show an institution: hierarchy, works and authors",
	Args:    cobra.ExactArgs(1),
	RunE: pageRunner(func(ctx context.Context, q *graph.Queries, id string) (any, error) {
		return q.InstitutionPage(ctx, id)
	}, func(v any) {
		p := v.(*graph.InstitutionPage)
		printHeader(p.Institution.DisplayName, p.Institution.ID, "")
		fmt.Printf("ADS: %s\n", p.ADSID)
		printDocs("Parents", p.Parents)
		printDocs("Children", p.Children)
		printDocs("Works", p.Works)
		printDocs("Authors", p.CollaboratingAuthors)
	}),
}

var conceptCmd = &cobra.Command{
	Use:   "concept <id>",
	Short: "Show a concept: hierarchy and related authors",
	Args:  cobra.ExactArgs(1),
	RunE: pageRunner(func(ctx context.Context, q *graph.Queries, id string) (any, error) {
		return q.ConceptPage(ctx, id)
	}, func(v any) {
		p := v.(*graph.ConceptPage)
		printHeader(p.Concept.DisplayName, p.Concept.ID, p.OpenAlexLink)
		printDocs("Parents", p.Parents)
		printDocs("Children", p.Children)
		printDocs("Authors", p.Authors)
	}),
}

// pageRunner builds the RunE of a page command from its fetch and its human printer.
func pageRunner(fetch func(context.Context, *graph.Queries, string) (any, error), human func(any)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repoRoot := mustFindRepository()
		a := mustOpenApp(repoRoot)
		defer a.Close()

		page, err := fetch(cmd.Context(), a.Graph, args[0])
		if err != nil {
			exitForError(err)
		}
		if humanOutput {
			human(page)
		} else {
			outputJSON(page)
		}
		return nil
	}
}

func printHeader(name, id, link string) {
	fmt.Println(name)
	fmt.Printf("ID: %s\n", id)
	if link != "" {
		fmt.Printf("OpenAlex: %s\n", link)
	}
	fmt.Println()
}
