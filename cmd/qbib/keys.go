package main

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/spf13/cobra"
)

var keysNonCanonical bool

func init() {
	keysCmd.Flags().BoolVar(&keysNonCanonical, "non-canonical", false, "Only list keys not of the form Name:YYYYsuffix")
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(missingArxivCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys FILE",
	Short: "List citation keys",
	Long: `List the citation keys of FILE in sorted order.

A canonical key is a name (letters and hyphens), a colon, a four-digit year,
and a letter suffix:
  Mishra:2014xyz, Smith-Jones:2020ab`,
	Args: cobra.ExactArgs(1),
	RunE: runKeys,
}

var missingArxivCmd = &cobra.Command{
	Use:   "missing-arxiv FILE",
	Short: "List entries without an arXiv ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runMissingArxiv,
}

// KeysResult lists citation keys.
type KeysResult struct {
	File  string   `json:"file"`
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

// filterKeys returns the keys of c in sorted order, only the non-canonical
// ones when nonCanonical is set.
func filterKeys(c bib.Collection, nonCanonical bool) []string {
	keys := make([]string, 0, len(c))
	for _, key := range c.Keys() {
		if nonCanonical && bib.IsCanonicalKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func runKeys(cmd *cobra.Command, args []string) error {
	c := mustLoadCollection(args[0])
	printKeys(args[0], filterKeys(c, keysNonCanonical))
	return nil
}

func runMissingArxiv(cmd *cobra.Command, args []string) error {
	path := args[0]
	db := mustOpenIndex(path)
	defer db.Close()

	keys, err := db.ListMissingArxiv()
	if err != nil {
		exitWithError(ExitError, "querying index: %v", err)
	}
	printKeys(path, keys)
	return nil
}

func printKeys(path string, keys []string) {
	if keys == nil {
		keys = []string{}
	}
	if humanOutput {
		for _, key := range keys {
			fmt.Println(key)
		}
		return
	}
	outputJSON(KeysResult{File: path, Count: len(keys), Keys: keys})
}
