package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dedupeOutput string
	dedupeDryRun bool
)

func init() {
	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "Write the merged bibliography here instead of rewriting FILE")
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show duplicates without writing anything")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe FILE",
	Short: "Merge entries that share a DOI or arXiv ID",
	Long: `Merge every set of entries that share a DOI or arXiv ID into one entry.

Entries linked through a chain of shared identifiers are merged together.
Later entries (in key order) win on conflicting fields, and a canonical key
such as Mishra:2014xyz is kept over a non-canonical one.

Examples:
  qbib dedupe refs.jsonl --dry-run        # Show what would be merged
  qbib dedupe refs.jsonl                  # Rewrite refs.jsonl in place
  qbib dedupe refs.jsonl -o clean.jsonl   # Write the result elsewhere`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

// DedupeResult represents the result of a dedupe operation.
type DedupeResult struct {
	DryRun     bool           `json:"dry_run"`
	Input      string         `json:"input"`
	Output     string         `json:"output,omitempty"`
	Before     int            `json:"before"`
	After      int            `json:"after"`
	Duplicates bib.Duplicates `json:"duplicates"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	path := args[0]
	target := path
	if dedupeOutput != "" {
		target = dedupeOutput
	}

	if !dedupeDryRun {
		lock := mustLock(target)
		defer lock.Unlock()
	}

	c := mustLoadCollection(path)
	d := bib.FindDuplicatesWithin(c)

	merged, err := newMerger().MergeDuplicatesWithin(c)
	if err != nil {
		logAmbiguous(err)
		exitWithError(exitCodeFor(err), "%v", err)
	}

	result := DedupeResult{
		DryRun:     dedupeDryRun,
		Input:      path,
		Before:     len(c),
		After:      len(merged),
		Duplicates: d,
	}

	// With nothing to merge, FILE is left alone; an explicit output still
	// receives the (sorted) entries.
	write := !dedupeDryRun && (!d.Empty() || dedupeOutput != "")
	if write {
		if err := storage.WriteCollection(target, merged); err != nil {
			exitWithError(ExitError, "writing %s: %v", target, err)
		}
		result.Output = target
	}

	if humanOutput {
		printDuplicatesHuman(path, d)
		switch {
		case dedupeDryRun:
			fmt.Printf("Would merge %d entries into %d\n", result.Before, result.After)
		case write:
			fmt.Printf("Merged %d entries into %d, wrote %s\n", result.Before, result.After, target)
		}
	} else {
		outputJSON(result)
	}
	return nil
}
