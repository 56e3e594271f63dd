package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportSkipExisting string
	exportAppendTo     string
)

func init() {
	exportCmd.Flags().StringVar(&exportSkipExisting, "skip-existing", "", "Skip entries already present in this .bib file")
	exportCmd.Flags().StringVar(&exportAppendTo, "append-to", "", "Append new entries to this .bib file instead of printing")
	exportCmd.MarkFlagsMutuallyExclusive("skip-existing", "append-to")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export entries as BibTeX",
	Long: `Export the entries of FILE as BibTeX, sorted by key.

An entry counts as already present in a .bib file when it shares a DOI,
an arXiv ID, or a citation key with an entry there.

Examples:
  qbib export refs.jsonl > refs.bib
  qbib export refs.jsonl --skip-existing refs.bib
  qbib export refs.jsonl --append-to refs.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// ExportResult is the response for export --append-to.
type ExportResult struct {
	Path     string `json:"path"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	c := mustLoadCollection(args[0])

	if exportAppendTo != "" {
		return exportAppend(c, exportAppendTo)
	}

	if exportSkipExisting != "" {
		c = mustFilterExisting(c, exportSkipExisting)
	}
	// BibTeX goes to stdout as-is so it can be redirected.
	fmt.Print(export.ToBibTeXList(c))
	return nil
}

func exportAppend(c bib.Collection, bibPath string) error {
	lock := mustLock(bibPath)
	defer lock.Unlock()

	missing := mustFilterExisting(c, bibPath)
	if len(missing) > 0 {
		if err := export.AppendToBibFile(bibPath, export.ToBibTeXList(missing)); err != nil {
			exitWithError(ExitError, "appending to %s: %v", bibPath, err)
		}
	}

	result := ExportResult{Path: bibPath, Appended: len(missing), Skipped: len(c) - len(missing)}
	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n", result.Appended, bibPath, result.Skipped)
	} else {
		outputJSON(result)
	}
	return nil
}

// mustFilterExisting drops the entries of c already present in bibPath.
func mustFilterExisting(c bib.Collection, bibPath string) bib.Collection {
	idx, err := export.ParseBibTeXFile(bibPath)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", bibPath, err)
	}
	missing := export.MissingFrom(c, idx)
	logger.Info("filtered existing entries", "bib", bibPath, "skipped", len(c)-len(missing))
	return missing
}
