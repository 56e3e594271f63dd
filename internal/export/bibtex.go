// Package export writes bibliography records as BibTeX.
package export

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matsen/quickbib/internal/bib"
)

// DefaultEntryType is used for records that carry no entry type.
const DefaultEntryType = "article"

// leadingFields are written first, in this order, when present.
var leadingFields = []string{"author", "title"}

// ToBibTeX converts a record to BibTeX format.
// Field values are written verbatim: they are already BibTeX text.
func ToBibTeX(r bib.Record) string {
	entryType := r.Type
	if entryType == "" {
		entryType = DefaultEntryType
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, r.Key))

	for _, name := range fieldOrder(r.Fields) {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, r.Fields[name]))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts a collection to BibTeX format, sorted by key.
func ToBibTeXList(c bib.Collection) string {
	var entries []string
	for _, r := range c.Records() {
		entries = append(entries, ToBibTeX(r))
	}
	return strings.Join(entries, "\n")
}

// fieldOrder returns author and title first, then the rest alphabetically.
func fieldOrder(fields map[string]string) []string {
	var order []string
	for _, name := range leadingFields {
		if _, ok := fields[name]; ok {
			order = append(order, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(leadingFields, name) {
			order = append(order, name)
		}
	}
	return order
}
