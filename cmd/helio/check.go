package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/config"
	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify repository integrity",
	Long: `Verify the document export and the assertion log: dangling edge objects,
edges whose endpoints have the wrong types, and skos:broader cycles.

Exits with code 3 when problems are found.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status    string             `json:"status"`
	Documents int                `json:"documents"`
	Asserted  int                `json:"asserted"`
	Issues    []document.Problem `json:"issues"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	docs, err := storage.ReadAll(config.DocsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading documents: %v", err)
	}
	asserted, err := storage.ReadAllAsserted(config.AssertedPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading assertion log: %v", err)
	}

	issues := document.CheckIntegrity(withAsserted(docs, asserted))

	status := "ok"
	if len(issues) > 0 {
		status = "issues_found"
	}
	result := CheckResult{Status: status, Documents: len(docs), Asserted: len(asserted), Issues: issues}
	if result.Issues == nil {
		result.Issues = []document.Problem{}
	}

	if humanOutput {
		fmt.Printf("Checked %d documents and %d asserted edges\n", result.Documents, result.Asserted)
		for _, p := range issues {
			fmt.Printf("  %-16s %s %s %s\n", p.Kind, p.DocID, p.Predicate, p.Object)
		}
		if len(issues) == 0 {
			fmt.Println("No issues found")
		}
	} else {
		outputJSON(result)
	}

	if len(issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// withAsserted returns docs with every asserted edge appended to its subject.
// Assertions on unknown subjects are dropped, as rebuild does.
func withAsserted(docs []document.Document, asserted []storage.AssertedEdge) []document.Document {
	if len(asserted) == 0 {
		return docs
	}
	index := make(map[string]int, len(docs))
	for i, d := range docs {
		index[d.ID] = i
	}
	out := make([]document.Document, len(docs))
	copy(out, docs)
	for _, a := range asserted {
		i, ok := index[a.Subject]
		if !ok {
			continue
		}
		out[i].Outgoing = append(out[i].Outgoing[:len(out[i].Outgoing):len(out[i].Outgoing)], a.Edge)
	}
	return out
}
