package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/matsen/quickbib/internal/bib"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Identifier kinds used in reports.
const (
	kindDOI   = "doi"
	kindArxiv = "arxiv"
)

// duplicateRows flattens within-collection duplicates into table rows,
// DOIs first, each kind sorted by value.
func duplicateRows(d bib.Duplicates) [][]string {
	var rows [][]string
	for _, v := range slices.Sorted(maps.Keys(d.ByDOI)) {
		rows = append(rows, []string{kindDOI, v, strings.Join(d.ByDOI[v], ", ")})
	}
	for _, v := range slices.Sorted(maps.Keys(d.ByArxiv)) {
		rows = append(rows, []string{kindArxiv, v, strings.Join(d.ByArxiv[v], ", ")})
	}
	return rows
}

// crossRows flattens cross-collection duplicates into table rows.
func crossRows(d bib.CrossDuplicates) [][]string {
	var rows [][]string
	for _, v := range slices.Sorted(maps.Keys(d.ByDOI)) {
		p := d.ByDOI[v]
		rows = append(rows, []string{kindDOI, v, p.A, p.B})
	}
	for _, v := range slices.Sorted(maps.Keys(d.ByArxiv)) {
		p := d.ByArxiv[v]
		rows = append(rows, []string{kindArxiv, v, p.A, p.B})
	}
	return rows
}

// printDuplicatesHuman prints within-collection duplicates as a table.
func printDuplicatesHuman(path string, d bib.Duplicates) {
	if d.Empty() {
		fmt.Printf("%s: no duplicates found\n", path)
		return
	}
	fmt.Printf("%s: %d repeated identifiers\n", path, len(d.ByDOI)+len(d.ByArxiv))
	fmt.Println(renderTable([]string{"Kind", "Identifier", "Keys"}, duplicateRows(d), nil))
}

// printCrossHuman prints cross-collection duplicates as a table.
func printCrossHuman(pathA, pathB string, d bib.CrossDuplicates) {
	if d.Empty() {
		fmt.Printf("%s and %s share no entries\n", pathA, pathB)
		return
	}
	fmt.Printf("%s and %s share %d identifiers\n", pathA, pathB, len(d.ByDOI)+len(d.ByArxiv))
	fmt.Println(renderTable([]string{"Kind", "Identifier", pathA, pathB}, crossRows(d), nil))
}
