package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/association"
	"github.com/helioweb/helioweb/internal/config"
)

var (
	associatePage  string
	associateORCID string
)

func init() {
	associateCmd.Flags().StringVarP(&associatePage, "page", "p", "", "Document the association is proposed from (default: the triple's subject)")
	associateCmd.Flags().StringVar(&associateORCID, "orcid", "", "Submitter ORCID iD (default: orcid from the global config or HELIO_ORCID)")
	rootCmd.AddCommand(associateCmd)
}

var associateCmd = &cobra.Command{
	Use:   "associate <subject> <predicate> <object>",
	Short: "Assert a relation edge on behalf of an ORCID iD",
	Long: `Record a crowd-sourced association. Two predicates are open:

  <author> dcterms:relation <concept>   the author works on the concept
  <work>   author           <author>    the author wrote the work

The page must be one of the two endpoints. The edge is appended to the
subject with quality 100 and attributed to the submitter, and mirrored to
.helio/asserted.jsonl so that 'helio rebuild' keeps it. Repeated submissions
append repeated edges.

The triple may also be given as a single URL-encoded argument.

Exit codes: 4 unknown document, 5 no submitter, 6 refused association.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runAssociate,
}

// AssociateResult is the response for the associate command.
type AssociateResult struct {
	Status    string `json:"status"`
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Submitter string `json:"submitter"`
}

func runAssociate(cmd *cobra.Command, args []string) error {
	triple := strings.Join(args, " ")
	page := associatePage
	if page == "" {
		page = firstToken(triple)
	}
	submitter := associateORCID
	if submitter == "" {
		submitter = config.GetORCID()
	}

	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	asserted, err := a.Association.Submit(cmd.Context(), association.Submission{
		PageID:    page,
		Triple:    triple,
		Submitter: submitter,
	})
	if err != nil {
		exitForError(err)
	}

	if humanOutput {
		fmt.Printf("Recorded %s %s %s (by %s)\n", asserted.Subject, asserted.Edge.P, asserted.Edge.O, asserted.Edge.Q2)
	} else {
		outputJSON(AssociateResult{
			Status:    "recorded",
			Subject:   asserted.Subject,
			Predicate: asserted.Edge.P,
			Object:    asserted.Edge.O,
			Submitter: asserted.Edge.Q2,
		})
	}
	return nil
}

// firstToken returns the first whitespace-separated token of a possibly
// URL-encoded triple.
func firstToken(triple string) string {
	s := strings.TrimSpace(triple)
	if i := strings.IndexAny(s, " \t+"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "%20"); i >= 0 {
		s = s[:i]
	}
	return s
}
