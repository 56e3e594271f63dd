package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.jsonl")

	lock, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if _, err := Lock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock() error = %v, want ErrLocked", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	again, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock() after Unlock error = %v", err)
	}
	again.Unlock()
}

func TestLockPath(t *testing.T) {
	if got := LockPath("/a/master.jsonl"); got != "/a/master.jsonl.lock" {
		t.Errorf("LockPath() = %q", got)
	}
}
