package index

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "undisorder.db")

	l1 := NewLock(dbPath)
	if err := l1.Acquire(); err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}

	l2 := NewLock(dbPath)
	if err := l2.Acquire(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	if err := l2.Acquire(); err != nil {
		t.Fatalf("Acquire() after release error: %v", err)
	}
	l2.Release()
}
