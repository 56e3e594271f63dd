package main

import (
	"fmt"
	"os"

	"github.com/matsen/quickbib/internal/conflict"
	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

var resolveDryRun bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "Show what would be resolved without writing")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Resolve git merge conflicts in a bibliography",
	Long: `Resolve git conflict markers in a JSONL bibliography.

Both sides of every conflict are kept. Entries present on both sides (same
DOI or arXiv ID) are merged, with the incoming ("theirs") side winning on
conflicting fields. The file is rewritten sorted by key.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// ResolveResult is the response for the resolve command.
type ResolveResult struct {
	Path      string `json:"path"`
	DryRun    bool   `json:"dry_run"`
	Conflicts int    `json:"conflicts"`
	Records   int    `json:"records"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	path := args[0]

	if !resolveDryRun {
		lock := mustLock(path)
		defer lock.Unlock()
	}

	f, err := os.Open(path)
	if err != nil {
		exitWithError(ExitDataError, "opening %s: %v", path, err)
	}
	parsed, err := conflict.Parse(f)
	f.Close()
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", path, err)
	}

	_, _, shadowed := parsed.Sides()
	for _, key := range shadowed {
		logger.Warn("repeated key, keeping last record", "file", path, "key", key)
	}

	merged, err := conflict.Resolve(newMerger(), parsed)
	if err != nil {
		logAmbiguous(err)
		exitWithError(exitCodeFor(err), "%v", err)
	}

	result := ResolveResult{
		Path:      path,
		DryRun:    resolveDryRun,
		Conflicts: len(parsed.Conflicts),
		Records:   len(merged),
	}
	if !resolveDryRun && parsed.HasConflicts() {
		if err := storage.WriteCollection(path, merged); err != nil {
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
	}

	if humanOutput {
		switch {
		case !parsed.HasConflicts():
			fmt.Printf("%s: no conflicts\n", path)
		case resolveDryRun:
			fmt.Printf("%s: would resolve %d conflicts into %d entries\n", path, result.Conflicts, result.Records)
		default:
			fmt.Printf("%s: resolved %d conflicts, %d entries\n", path, result.Conflicts, result.Records)
		}
	} else {
		outputJSON(result)
	}
	return nil
}
