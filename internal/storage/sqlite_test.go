package storage

import (
	"path/filepath"
	"testing"

	"github.com/matsen/quickbib/internal/bib"
)

// setupTestDB creates an index over a small test bibliography.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c := bib.Collection{
		"Mishra:2014xyz": {Key: "Mishra:2014xyz", Type: "article", Fields: map[string]string{
			"eprint": "arXiv:1401.0001",
			"doi":    "https://doi.org/10.1234/mishra",
			"title":  "Gravitational Waves",
		}},
		"jones2025": {Key: "jones2025", Type: "article", Fields: map[string]string{
			"doi": "10.1234/jones",
		}},
		"notes": {Key: "notes", Type: "misc", Fields: map[string]string{
			"title": "Lecture notes",
		}},
	}

	n, err := db.RebuildFromCollection(c)
	if err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("RebuildFromCollection() = %d, want 3", n)
	}
	return db
}

func TestDB_Count(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestDB_FindByDOI(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		doi      string
		wantKeys []string
	}{
		{"10.1234/mishra", []string{"Mishra:2014xyz"}},
		{"https://doi.org/10.1234/jones", []string{"jones2025"}},
		{"10.1234/missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.doi, func(t *testing.T) {
			got, err := db.FindByDOI(tt.doi)
			if err != nil {
				t.Fatalf("FindByDOI() error = %v", err)
			}
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("FindByDOI() returned %d records, want %d", len(got), len(tt.wantKeys))
			}
			for i, key := range tt.wantKeys {
				if got[i].Key != key {
					t.Errorf("got[%d].Key = %q, want %q", i, got[i].Key, key)
				}
			}
		})
	}
}

func TestDB_FindByArxivID(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []string{"1401.0001", "arXiv:1401.0001"} {
		got, err := db.FindByArxivID(id)
		if err != nil {
			t.Fatalf("FindByArxivID(%q) error = %v", id, err)
		}
		if len(got) != 1 || got[0].Key != "Mishra:2014xyz" {
			t.Fatalf("FindByArxivID(%q) = %+v", id, got)
		}
		if got[0].Fields["title"] != "Gravitational Waves" || got[0].Type != "article" {
			t.Errorf("record = %+v", got[0])
		}
	}
}

func TestDB_ListMissingArxiv(t *testing.T) {
	db := setupTestDB(t)

	keys, err := db.ListMissingArxiv()
	if err != nil {
		t.Fatalf("ListMissingArxiv() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "jones2025" || keys[1] != "notes" {
		t.Errorf("ListMissingArxiv() = %v, want [jones2025 notes]", keys)
	}
}

func TestDB_GetByKey(t *testing.T) {
	db := setupTestDB(t)

	r, err := db.GetByKey("notes")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if r == nil || r.Type != "misc" || r.Fields["title"] != "Lecture notes" {
		t.Errorf("GetByKey() = %+v", r)
	}

	missing, err := db.GetByKey("nope")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetByKey(nope) = %+v, want nil", missing)
	}
}

func TestDB_RebuildReplacesContent(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.RebuildFromCollection(bib.Collection{
		"only": {Key: "only", Fields: map[string]string{"eprint": "9"}},
	})
	if err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}
	if n != 1 {
		t.Errorf("RebuildFromCollection() = %d, want 1", n)
	}

	count, _ := db.Count()
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after rebuild", count)
	}
}

func TestDB_Sync(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDB(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	path := filepath.Join(dir, "refs.jsonl")
	c := bib.Collection{
		"A": {Key: "A", Fields: map[string]string{"doi": "10.1/a"}},
	}
	if err := WriteCollection(path, c); err != nil {
		t.Fatal(err)
	}

	rebuilt, err := db.Sync(path)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !rebuilt {
		t.Error("first Sync() should rebuild")
	}

	rebuilt, err = db.Sync(path)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if rebuilt {
		t.Error("Sync() of an unchanged file should not rebuild")
	}

	c["B"] = bib.Record{Key: "B", Fields: map[string]string{"doi": "10.1/b"}}
	if err := WriteCollection(path, c); err != nil {
		t.Fatal(err)
	}
	rebuilt, err = db.Sync(path)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !rebuilt {
		t.Error("Sync() after a change should rebuild")
	}
	if n, _ := db.Count(); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	// A direct rebuild forgets the file hash.
	if _, err := db.RebuildFromCollection(bib.Collection{}); err != nil {
		t.Fatal(err)
	}
	if h, _ := db.StoredHash(); h != "" {
		t.Errorf("StoredHash() after rebuild = %q, want empty", h)
	}
}
