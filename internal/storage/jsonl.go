// Package storage handles bibliography persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matsen/quickbib/internal/bib"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file in file order.
func ReadAll(path string) ([]bib.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty bibliography
		}
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	var records []bib.Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines (abstracts)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r bib.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if r.Key == "" {
			return nil, fmt.Errorf("parsing line %d: record has no key", lineNum)
		}
		if r.Fields == nil {
			r.Fields = map[string]string{}
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	return records, nil
}

// HashFile computes a SHA256 hash of a bibliography's contents.
// A missing file hashes like an empty one.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256([]byte{})
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadCollection reads a JSONL file into a collection. Keys that occur more
// than once are returned as shadowed: only the last record with such a key
// is kept.
func ReadCollection(path string) (bib.Collection, []string, error) {
	records, err := ReadAll(path)
	if err != nil {
		return nil, nil, err
	}
	c, shadowed := bib.FromRecords(records)
	return c, shadowed, nil
}

// WriteCollection writes c to path sorted by key, replacing existing content.
// The file is written to a temporary sibling and renamed into place.
func WriteCollection(path string, c bib.Collection) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // No-op after a successful rename

	if err := writeRecords(tmp, c.Records()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing bibliography: %w", err)
	}
	return nil
}

// AppendCollection adds the records of c, sorted by key, to the end of path.
func AppendCollection(path string, c bib.Collection) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening bibliography for append: %w", err)
	}
	defer f.Close()

	return writeRecords(f, c.Records())
}

func writeRecords(f *os.File, records []bib.Record) error {
	w := bufio.NewWriter(f)
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.Key, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %s: %w", r.Key, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing bibliography: %w", err)
	}
	return nil
}
