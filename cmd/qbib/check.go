package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check FILE [FILE2]",
	Short: "Report duplicate entries",
	Long: `Report entries that share a DOI or arXiv ID.

With one file, duplicates within it are reported. With two files, entries of
FILE2 already present in FILE are reported; both files must first be free of
duplicates of their own.

Exits with status 4 when duplicates are found.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Files      []string             `json:"files"`
	Status     string               `json:"status"`
	Duplicates *bib.Duplicates      `json:"duplicates,omitempty"`
	Shared     *bib.CrossDuplicates `json:"shared,omitempty"`
}

// Check statuses
const (
	statusClean      = "clean"
	statusDuplicates = "duplicates"
)

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return checkWithin(args[0])
	}
	return checkAcross(args[0], args[1])
}

func checkWithin(path string) error {
	c := mustLoadCollection(path)
	d := bib.FindDuplicatesWithin(c)

	result := CheckResult{Files: []string{path}, Status: statusClean, Duplicates: &d}
	if !d.Empty() {
		result.Status = statusDuplicates
	}

	if humanOutput {
		printDuplicatesHuman(path, d)
	} else {
		outputJSON(result)
	}
	if !d.Empty() {
		os.Exit(ExitDuplicates)
	}
	return nil
}

func checkAcross(pathA, pathB string) error {
	a := mustLoadCollection(pathA)
	b := mustLoadCollection(pathB)

	d, err := bib.FindDuplicatesAcross(a, b)
	if err != nil {
		if errors.Is(err, bib.ErrInternalDuplicates) {
			exitWithError(ExitDuplicates, "%v\n\nRun 'qbib dedupe' on each file first.", err)
		}
		return fmt.Errorf("comparing %s and %s: %w", pathA, pathB, err)
	}

	result := CheckResult{Files: []string{pathA, pathB}, Status: statusClean, Shared: &d}
	if !d.Empty() {
		result.Status = statusDuplicates
	}

	if humanOutput {
		printCrossHuman(pathA, pathB, d)
	} else {
		outputJSON(result)
	}
	if !d.Empty() {
		os.Exit(ExitDuplicates)
	}
	return nil
}
