package testutil

import (
	"fmt"

	"undisorder/internal/importer"
)

// FailingFileOps delegates to the real filesystem operations but fails the
// Nth transfer (1-based, counting copies and moves together), for testing
// batch failure isolation. FailAt 0 never fails.
type FailingFileOps struct {
	FailAt int
	Calls  int

	real importer.OSFileOps
}

func (f *FailingFileOps) Copy(src, dst string) (string, error) {
	f.Calls++
	if f.FailAt > 0 && f.Calls == f.FailAt {
		return "", fmt.Errorf("injected copy failure for %s", src)
	}
	return f.real.Copy(src, dst)
}

func (f *FailingFileOps) Move(src, dst string) error {
	f.Calls++
	if f.FailAt > 0 && f.Calls == f.FailAt {
		return fmt.Errorf("injected move failure for %s", src)
	}
	return f.real.Move(src, dst)
}
