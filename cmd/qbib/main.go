// Package main provides the qbib CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/config"
	"github.com/matsen/quickbib/internal/logging"
	"github.com/matsen/quickbib/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	logFormat   string

	globalCfg *config.GlobalConfig
	logger    = logging.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qbib",
	Short: "Find and merge duplicate bibliography entries",
	Long: `qbib keeps bibliographies free of repeated entries.

Two entries are the same work when they share a DOI or an arXiv ID.
qbib reports such duplicates, merges them, and absorbs new files into a
master bibliography without creating new ones.

Bibliographies are JSONL files, one record per line:
  {"key": "Mishra:2014xyz", "type": "article", "fields": {"doi": "10.1/x"}}

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (default from config, else console)")
	rootCmd.Version = Version
}

// setup loads .env and the global config, then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	globalCfg = cfg

	level, format := logLevel, logFormat
	if level == "" {
		level = cfg.LogLevel
	}
	if format == "" {
		format = cfg.LogFormat
	}
	l, err := logging.New(logging.Options{Level: level, Format: format})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger = l
	return nil
}

// newMerger returns a merger reporting to the command logger.
func newMerger() *bib.Merger {
	return bib.NewMerger(logger)
}

// mustLoadCollection reads a JSONL bibliography, exits on error.
// Repeated keys are not an error: the last record wins and a warning is logged.
func mustLoadCollection(path string) bib.Collection {
	c, shadowed, err := storage.ReadCollection(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	for _, key := range shadowed {
		logger.Warn("repeated key, keeping last record", "file", path, "key", key)
	}
	logger.Debug("loaded bibliography", "file", path, "records", len(c))
	return c
}

// mustResolveMaster returns the master bibliography path, exits if none is set.
func mustResolveMaster(flagValue string) string {
	path, err := globalCfg.ResolveMaster(flagValue)
	if err != nil {
		if humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return path
}

// mustLock locks path for writing, exits if another process holds it.
// The caller is responsible for calling Unlock() on the returned lock.
func mustLock(path string) *flock.Flock {
	lock, err := storage.Lock(path)
	if err != nil {
		if errors.Is(err, storage.ErrLocked) {
			exitWithError(ExitError, "%v (lock file %s)", err, storage.LockPath(path))
		}
		exitWithError(ExitError, "locking %s: %v", path, err)
	}
	return lock
}

// mustOpenIndex opens the SQLite index for path, rebuilding it if the file
// changed since it was last indexed.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenIndex(path string) *storage.DB {
	dbPath, err := config.DBPath(globalCfg.CacheDir, path)
	if err != nil {
		exitWithError(ExitConfigError, "locating index: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		exitWithError(ExitConfigError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	rebuilt, err := db.Sync(path)
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "indexing %s: %v", path, err)
	}
	logger.Debug("opened index", "path", dbPath, "rebuilt", rebuilt)
	return db
}

// exitCodeFor maps merge and duplicate errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, bib.ErrAmbiguousMerge):
		return ExitAmbiguous
	case errors.Is(err, bib.ErrInternalDuplicates):
		return ExitDuplicates
	default:
		return ExitDataError
	}
}

// logAmbiguous logs the identifiers of a refused merge.
func logAmbiguous(err error) {
	var amb *bib.AmbiguousMergeError
	if errors.As(err, &amb) {
		logger.Error("refusing to merge entries",
			slog.String("key1", amb.Key1), slog.String("key2", amb.Key2),
			slog.String("arxiv1", amb.ArxivID1), slog.String("arxiv2", amb.ArxivID2),
			slog.String("doi1", amb.DOI1), slog.String("doi2", amb.DOI2))
	}
}
