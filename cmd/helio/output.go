package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/helioweb/helioweb/internal/association"
	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// Constants for output formatting.
const (
	NameMaxLen   = 60 // Display names in list output
	ListMaxItems = 10 // Items per section in human page output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	exitWithReason(code, "", format, args...)
}

func exitWithReason(code int, reason, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg, Reason: reason})
	}
	os.Exit(code)
}

// exitForError exits with the code matching err's kind. Refused associations
// also report why in the reason field.
func exitForError(err error) {
	exitWithReason(exitCodeFor(err), association.Reason(err), "%s", err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, association.ErrUnauthorized):
		return ExitUnauthorized
	case errors.Is(err, association.ErrUnprocessable):
		return ExitUnprocessable
	case errors.Is(err, storage.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, document.ErrInvalidType),
		errors.Is(err, document.ErrEmptyID),
		errors.Is(err, document.ErrPayloadMismatch),
		errors.Is(err, document.ErrInvalidPredicate),
		errors.Is(err, document.ErrEmptyObject):
		return ExitDataError
	default:
		return ExitError
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// printDocs prints a titled list of documents, at most ListMaxItems of them.
func printDocs(title string, docs []document.Document) {
	fmt.Printf("%s (%d)\n", title, len(docs))
	for i, d := range docs {
		if i == ListMaxItems {
			fmt.Printf("  ... and %d more\n", len(docs)-ListMaxItems)
			break
		}
		if y := d.Year(); y != 0 {
			fmt.Printf("  %-40s %s (%d)\n", d.ID, truncateString(d.DisplayName, NameMaxLen), y)
		} else {
			fmt.Printf("  %-40s %s\n", d.ID, truncateString(d.DisplayName, NameMaxLen))
		}
	}
}

// printIDs prints one id per line under a heading.
func printIDs(title string, ids []string) {
	fmt.Printf("%s (%d)\n", title, len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
}
