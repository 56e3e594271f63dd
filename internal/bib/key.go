package bib

import (
	"strings"
	"unicode"
)

// IsCanonicalKey reports whether key follows the Name:YYYYsuffix convention
// used by INSPIRE-HEP, e.g. "Mishra:2014xyz" or "Smith-Jones:2020ab".
func IsCanonicalKey(key string) bool {
	name, rest, found := strings.Cut(key, ":")
	if !found || strings.Contains(rest, ":") {
		return false
	}

	if !isAlpha(strings.ReplaceAll(name, "-", "")) {
		return false
	}

	runes := []rune(rest)
	if len(runes) < 5 {
		return false
	}
	for _, r := range runes[:4] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return isAlpha(string(runes[4:]))
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// chooseKey picks the key for the merge of two records.
func chooseKey(key1, key2 string) string {
	if !IsCanonicalKey(key1) && IsCanonicalKey(key2) {
		return key2
	}
	return key1
}
