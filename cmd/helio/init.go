package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a helio repository",
	Long: `Create the .helio directory with a default config.json and an empty cache.

Place the document export in .helio/docs.jsonl and run 'helio rebuild'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		exitWithError(ExitError, "creating %s: %v", dir, err)
	}
	if err := config.Init(dir); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	path := config.HelioPath(dir)
	if humanOutput {
		fmt.Printf("Initialized helio repository in %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: path})
	}
	return nil
}
