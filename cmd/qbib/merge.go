package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge NEW FILE1 FILE2",
	Short: "Merge two bibliographies into a new file",
	Long: `Deduplicate FILE1 and FILE2, merge them, and write the result to NEW.

Entries of FILE2 that share a DOI or arXiv ID with an entry of FILE1 are
merged into it, with FILE2's fields winning. NEW is replaced if it exists.`,
	Args: cobra.ExactArgs(3),
	RunE: runMerge,
}

// MergeResult represents the result of a merge operation.
type MergeResult struct {
	Output string   `json:"output"`
	Inputs []string `json:"inputs"`
	Counts []int    `json:"counts"`
	After  int      `json:"after"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	out, pathA, pathB := args[0], args[1], args[2]

	lock := mustLock(out)
	defer lock.Unlock()

	a := mustLoadCollection(pathA)
	b := mustLoadCollection(pathB)

	merged, err := newMerger().MergeTwoCollections(a, b)
	if err != nil {
		logAmbiguous(err)
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if err := storage.WriteCollection(out, merged); err != nil {
		exitWithError(ExitError, "writing %s: %v", out, err)
	}

	result := MergeResult{
		Output: out,
		Inputs: []string{pathA, pathB},
		Counts: []int{len(a), len(b)},
		After:  len(merged),
	}
	if humanOutput {
		fmt.Printf("Merged %s (%d) and %s (%d) into %s (%d entries)\n",
			pathA, len(a), pathB, len(b), out, len(merged))
	} else {
		outputJSON(result)
	}
	return nil
}
