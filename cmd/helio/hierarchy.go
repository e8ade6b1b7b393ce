package main

import (
	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/document"
)

var (
	tentType          string
	closureType       string
	closureTransitive bool
)

func init() {
	tentCmd.Flags().StringVarP(&tentType, "type", "t", string(document.TypeConcept), "Hierarchy: Concept or Institution")
	closureCmd.Flags().StringVarP(&closureType, "type", "t", string(document.TypeConcept), "Hierarchy: Concept or Institution")
	closureCmd.Flags().BoolVar(&closureTransitive, "transitive", false, "Follow skos:broader edges transitively instead of reading the materialized ancestors")
	rootCmd.AddCommand(tentCmd, closureCmd)
}

var tentCmd = &cobra.Command{
	Use:   "tent <id>...",
	Short: "List a node and all its descendants",
	Long: `List every node of the hierarchy reachable backwards over skos:broader
from the given roots, the roots included. Several roots give the union.

Examples:
  helio tent https://openalex.org/C121332964
  helio tent I1 I2 --type Institution`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTent,
}

var closureCmd = &cobra.Command{
	Use:   "closure <id>",
	Short: "List a node and all its ancestors",
	Args:  cobra.ExactArgs(1),
	RunE:  runClosure,
}

// HierarchyResult is the response for the tent and closure commands.
type HierarchyResult struct {
	Type  document.Type `json:"type"`
	Roots []string      `json:"roots"`
	IDs   []string      `json:"ids"`
}

func runTent(cmd *cobra.Command, args []string) error {
	typ := mustParseType(tentType)
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	ids, err := a.Hierarchy.TentUnion(cmd.Context(), typ, args)
	if err != nil {
		exitForError(err)
	}
	printHierarchy(HierarchyResult{Type: typ, Roots: args, IDs: ids}, "Tent")
	return nil
}

func runClosure(cmd *cobra.Command, args []string) error {
	typ := mustParseType(closureType)
	repoRoot := mustFindRepository()
	a := mustOpenApp(repoRoot)
	defer a.Close()

	closure := a.Hierarchy.Closure
	if closureTransitive {
		closure = a.Hierarchy.ClosureTransitive
	}
	ids, err := closure(cmd.Context(), typ, args[0])
	if err != nil {
		exitForError(err)
	}
	printHierarchy(HierarchyResult{Type: typ, Roots: args, IDs: ids}, "Closure")
	return nil
}

func printHierarchy(r HierarchyResult, title string) {
	if r.IDs == nil {
		r.IDs = []string{}
	}
	if humanOutput {
		printIDs(title, r.IDs)
	} else {
		outputJSON(r)
	}
}

func mustParseType(s string) document.Type {
	t, err := document.ParseType(s)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return t
}
