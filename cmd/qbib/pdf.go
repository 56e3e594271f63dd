package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matsen/quickbib/internal/pdf"
	"github.com/spf13/cobra"
)

var pdfMaster string

func init() {
	pdfCmd.Flags().StringVar(&pdfMaster, "master", "", "Master bibliography to search (default from config or QBIB_MASTER)")
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf PDF",
	Short: "Check whether a PDF is already in the master bibliography",
	Long: `Read the DOI and arXiv ID from the first pages of a PDF and look them up
in the master bibliography.

When no master is configured only the identifiers are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

// PDFResult is the response for the pdf command.
type PDFResult struct {
	File    string          `json:"file"`
	IDs     pdf.Identifiers `json:"identifiers"`
	Master  string          `json:"master,omitempty"`
	Matches []string        `json:"matches"`
}

func runPDF(cmd *cobra.Command, args []string) error {
	path := args[0]

	ids, err := pdf.ExtractIdentifiers(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	if ids.Empty() {
		exitWithError(ExitDataError, "no DOI or arXiv ID found in %s", path)
	}
	logger.Debug("extracted identifiers", "file", path, "doi", ids.DOI, "arxiv", ids.ArxivID)

	result := PDFResult{File: path, IDs: ids, Matches: []string{}}

	master, err := globalCfg.ResolveMaster(pdfMaster)
	if err == nil {
		result.Master = master
		db := mustOpenIndex(master)
		defer db.Close()

		records, err := findInIndex(db, ids.Record())
		if err != nil {
			exitWithError(ExitError, "querying index: %v", err)
		}
		for _, r := range records {
			result.Matches = append(result.Matches, r.Key)
		}
		slices.Sort(result.Matches)
	}

	if humanOutput {
		printPDFHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printPDFHuman(r PDFResult) {
	fmt.Printf("%s\n", r.File)
	if r.IDs.DOI != "" {
		fmt.Printf("  DOI:   %s\n", r.IDs.DOI)
	}
	if r.IDs.ArxivID != "" {
		fmt.Printf("  arXiv: %s\n", r.IDs.ArxivID)
	}
	switch {
	case r.Master == "":
		return
	case len(r.Matches) == 0:
		fmt.Printf("Not in %s\n", r.Master)
	default:
		fmt.Printf("Already in %s as %s\n", r.Master, strings.Join(r.Matches, ", "))
	}
}

