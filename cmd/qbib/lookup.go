package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

var (
	lookupDOI   string
	lookupArxiv string
)

func init() {
	lookupCmd.Flags().StringVar(&lookupDOI, "doi", "", "DOI to look up (URL forms accepted)")
	lookupCmd.Flags().StringVar(&lookupArxiv, "arxiv", "", "arXiv ID to look up (arXiv: prefix accepted)")
	lookupCmd.MarkFlagsMutuallyExclusive("doi", "arxiv")
	lookupCmd.MarkFlagsOneRequired("doi", "arxiv")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup FILE (--doi DOI | --arxiv ID)",
	Short: "Find entries by DOI or arXiv ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

// LookupResult is the response for the lookup command.
type LookupResult struct {
	Query   string       `json:"query"`
	Kind    string       `json:"kind"`
	Records []bib.Record `json:"records"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	db := mustOpenIndex(args[0])
	defer db.Close()

	result := LookupResult{Records: []bib.Record{}}
	var (
		records []bib.Record
		err     error
	)
	if lookupDOI != "" {
		result.Query, result.Kind = lookupDOI, kindDOI
		records, err = db.FindByDOI(lookupDOI)
	} else {
		result.Query, result.Kind = lookupArxiv, kindArxiv
		records, err = db.FindByArxivID(lookupArxiv)
	}
	if err != nil {
		exitWithError(ExitError, "querying index: %v", err)
	}
	if records != nil {
		result.Records = records
	}

	if humanOutput {
		printRecordsHuman(result.Records)
	} else {
		outputJSON(result)
	}
	return nil
}

func printRecordsHuman(records []bib.Record) {
	if len(records) == 0 {
		fmt.Println("No matching entries.")
		return
	}
	for _, r := range records {
		title, _ := r.Field("title")
		fmt.Printf("%s  %s\n", r.Key, title)
	}
}

// findInIndex returns the records of db matching either identifier.
// Each record appears once, in key order.
func findInIndex(db *storage.DB, ids bib.Record) ([]bib.Record, error) {
	seen := make(map[string]bool)
	var out []bib.Record
	add := func(records []bib.Record) {
		for _, r := range records {
			if !seen[r.Key] {
				seen[r.Key] = true
				out = append(out, r)
			}
		}
	}

	if doi, ok := bib.ExtractDOI(ids); ok {
		records, err := db.FindByDOI(doi)
		if err != nil {
			return nil, err
		}
		add(records)
	}
	if id, ok := bib.ExtractArxivID(ids); ok {
		records, err := db.FindByArxivID(id)
		if err != nil {
			return nil, err
		}
		add(records)
	}
	return out, nil
}
