package index

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the index lock.
var ErrLocked = errors.New("index is locked by another process")

// Lock is an advisory lock guarding the index against concurrent mutating
// runs. Per-write transactions keep individual records consistent, but two
// interleaved runs over the same source could still double-import; mutating
// commands take this lock up front and fail fast instead.
type Lock struct {
	fl *flock.Flock
}

// NewLock creates a lock beside the index database file.
func NewLock(dbPath string) *Lock {
	return &Lock{fl: flock.New(dbPath + ".lock")}
}

// Acquire takes the lock, returning ErrLocked if another process holds it.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring index lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}
