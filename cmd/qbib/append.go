package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

var appendMaster string

func init() {
	appendCmd.Flags().StringVar(&appendMaster, "master", "", "Master bibliography (default from config or QBIB_MASTER)")
	rootCmd.AddCommand(appendCmd)
}

var appendCmd = &cobra.Command{
	Use:   "append FILE",
	Short: "Absorb a bibliography into the master",
	Long: `Absorb FILE into the master bibliography.

Both files must be free of duplicates of their own. When FILE shares no DOI or
arXiv ID with the master its entries are appended; otherwise the two are
merged and the master is rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runAppend,
}

// Append modes
const (
	appendModeAppend = "append"
	appendModeMerge  = "merge"
)

// AppendResult represents the result of an append operation.
type AppendResult struct {
	Master string              `json:"master"`
	Mode   string              `json:"mode"`
	Before int                 `json:"before"`
	After  int                 `json:"after"`
	Shared bib.CrossDuplicates `json:"shared"`
}

func runAppend(cmd *cobra.Command, args []string) error {
	path := args[0]
	master := mustResolveMaster(appendMaster)

	lock := mustLock(master)
	defer lock.Unlock()

	m := mustLoadCollection(master)
	c := mustLoadCollection(path)

	shared, err := bib.FindDuplicatesAcross(m, c)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v\n\nRun 'qbib dedupe' on each file first.", err)
	}

	result := AppendResult{Master: master, Before: len(m), Shared: shared}
	if shared.Empty() {
		replaced := replacedKeys(m, c)
		for _, key := range replaced {
			logger.Warn("key already present, appended entry will replace it", "key", key)
		}
		if err := storage.AppendCollection(master, c); err != nil {
			exitWithError(ExitError, "appending to %s: %v", master, err)
		}
		result.Mode = appendModeAppend
		result.After = len(m) + len(c) - len(replaced)
	} else {
		merged, err := newMerger().MergeTwoCollections(m, c)
		if err != nil {
			logAmbiguous(err)
			exitWithError(exitCodeFor(err), "%v", err)
		}
		if err := storage.WriteCollection(master, merged); err != nil {
			exitWithError(ExitError, "writing %s: %v", master, err)
		}
		result.Mode = appendModeMerge
		result.After = len(merged)
	}

	if humanOutput {
		if result.Mode == appendModeMerge {
			printCrossHuman(master, path, shared)
		}
		fmt.Printf("%s: %d entries -> %d (%s)\n", master, result.Before, result.After, result.Mode)
	} else {
		outputJSON(result)
	}
	return nil
}

// replacedKeys returns the keys of c, in sorted order, that m already holds.
// Appending c shadows those entries of m.
func replacedKeys(m, c bib.Collection) []string {
	var keys []string
	for _, key := range c.Keys() {
		if _, exists := m[key]; exists {
			keys = append(keys, key)
		}
	}
	return keys
}
