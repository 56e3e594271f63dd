package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite identifier index. The index is a cache: it is rebuilt
// from a JSONL bibliography whenever needed and never edited by hand.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			type TEXT,
			doi TEXT,
			arxiv_id TEXT,
			fields_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_records_arxiv ON records(arxiv_id) WHERE arxiv_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromCollection clears the index and fills it from c.
// Identifiers are stored in the normalized form produced by package bib.
func (d *DB) RebuildFromCollection(c bib.Collection) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // No-op after commit

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM _meta WHERE key = ?", metaSourceHash); err != nil {
		return 0, fmt.Errorf("clearing source hash: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (key, type, doi, arxiv_id, fields_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range c.Records() {
		fieldsJSON, err := json.Marshal(r.Fields)
		if err != nil {
			return 0, fmt.Errorf("marshaling fields for %s: %w", r.Key, err)
		}
		doi, hasDOI := bib.ExtractDOI(r)
		arxiv, hasArxiv := bib.ExtractArxivID(r)

		_, err = stmt.Exec(r.Key, r.Type,
			nullableString(doi, hasDOI), nullableString(arxiv, hasArxiv),
			string(fieldsJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(c), nil
}

// metaSourceHash is the _meta key holding the hash of the indexed file.
const metaSourceHash = "source_hash"

// Sync rebuilds the index from the JSONL file at path unless the file is
// unchanged since the last Sync. It reports whether a rebuild happened.
func (d *DB) Sync(path string) (bool, error) {
	hash, err := HashFile(path)
	if err != nil {
		return false, err
	}
	stored, err := d.StoredHash()
	if err != nil {
		return false, err
	}
	if stored == hash {
		return false, nil
	}

	c, _, err := ReadCollection(path)
	if err != nil {
		return false, err
	}
	if _, err := d.RebuildFromCollection(c); err != nil {
		return false, err
	}
	if err := d.SetStoredHash(hash); err != nil {
		return false, err
	}
	return true, nil
}

// StoredHash returns the hash recorded by the last Sync, or "" if none.
func (d *DB) StoredHash() (string, error) {
	var hash sql.NullString
	err := d.db.QueryRow("SELECT value FROM _meta WHERE key = ?", metaSourceHash).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading source hash: %w", err)
	}
	return hash.String, nil
}

// SetStoredHash records the hash of the indexed file.
func (d *DB) SetStoredHash(hash string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, metaSourceHash, hash)
	if err != nil {
		return fmt.Errorf("storing source hash: %w", err)
	}
	return nil
}

// GetByKey retrieves a record by its citation key. Returns nil if not found.
func (d *DB) GetByKey(key string) (*bib.Record, error) {
	row := d.db.QueryRow(`SELECT key, type, fields_json FROM records WHERE key = ?`, key)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByDOI returns records whose DOI matches doi once both are normalized.
func (d *DB) FindByDOI(doi string) ([]bib.Record, error) {
	return d.query(`SELECT key, type, fields_json FROM records WHERE doi = ? ORDER BY key`,
		bib.NormalizeDOI(doi))
}

// FindByArxivID returns records with the given arXiv ID. A prefixed ID such
// as "arXiv:1234.5678" is accepted.
func (d *DB) FindByArxivID(id string) ([]bib.Record, error) {
	normalized, _ := bib.ExtractArxivID(bib.Record{Fields: map[string]string{bib.FieldEprint: id}})
	return d.query(`SELECT key, type, fields_json FROM records WHERE arxiv_id = ? ORDER BY key`,
		normalized)
}

// ListMissingArxiv returns the keys of records that have no arXiv ID.
func (d *DB) ListMissingArxiv() ([]string, error) {
	rows, err := d.db.Query(`SELECT key FROM records WHERE arxiv_id IS NULL ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing records without arXiv ID: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Count returns the number of indexed records.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (d *DB) query(q string, args ...any) ([]bib.Record, error) {
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []bib.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (bib.Record, error) {
	var (
		r          bib.Record
		entryType  sql.NullString
		fieldsJSON string
	)
	if err := s.Scan(&r.Key, &entryType, &fieldsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning record: %w", err)
	}
	r.Type = entryType.String
	if err := json.Unmarshal([]byte(fieldsJSON), &r.Fields); err != nil {
		return r, fmt.Errorf("decoding fields for %s: %w", r.Key, err)
	}
	return r, nil
}

func nullableString(s string, ok bool) any {
	if !ok {
		return nil
	}
	return s
}
