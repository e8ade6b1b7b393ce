// Package main provides the helio CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/app"
	"github.com/helioweb/helioweb/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra's own errors are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "helio",
	Short: "Query the heliophysics scholarly graph",
	Long: `helio queries a graph of Authors, Works, Institutions and Concepts
sourced from ORCID, ADS and OpenAlex.

Core features:
  - Author, work, institution and concept pages
  - Concept and institution hierarchies (tents and closures)
  - The author funnel: filter by concept, institution and coauthor at once
  - Crowd-sourced associations attributed to an ORCID iD

Data is stored in JSONL (.helio/docs.jsonl) with an ephemeral SQLite query layer.
All commands output JSON by default; pass --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks global config data_path first, then current working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetDataPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenApp opens the repository's application context, exits on error.
// The caller is responsible for calling Close() on the returned App.
func mustOpenApp(repoRoot string) *app.App {
	a, err := app.Open(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "opening repository: %v", err)
	}
	return a
}
