package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// CacheDirName is the directory name under the user cache directory.
	CacheDirName = "qbib"
	// dbHashLen is the number of hex digits of the master path hash kept in index names.
	dbHashLen = 16
)

// CachePath returns the cache directory: cacheDir if set, otherwise
// qbib under the user cache directory.
func CachePath(cacheDir string) (string, error) {
	if cacheDir != "" {
		return ExpandPath(cacheDir), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(base, CacheDirName), nil
}

// DBPath returns the SQLite index path for a master bibliography. Each
// master gets its own index, named by a hash of its absolute path.
func DBPath(cacheDir, masterPath string) (string, error) {
	dir, err := CachePath(cacheDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(ExpandPath(masterPath))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:])[:dbHashLen] + ".db"
	return filepath.Join(dir, name), nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
