package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileOps performs the physical file transfers. Abstracted so tests can
// inject failures mid-batch.
type FileOps interface {
	// Copy copies src to dst, preserving mode and modification time, and
	// returns the hex SHA-256 digest of the bytes actually written so the
	// caller can verify the transfer before indexing it.
	Copy(src, dst string) (string, error)
	// Move moves src to dst, copying across filesystems if a rename is not
	// possible.
	Move(src, dst string) error
}

// OSFileOps is the real-filesystem implementation of FileOps.
type OSFileOps struct{}

func (OSFileOps) Copy(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	// Hash the bytes as they are written: the digest proves what landed on
	// disk, not what was read.
	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(out, h), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copying to %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("preserving times on %s: %w", dst, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (o OSFileOps) Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Cross-device moves fall back to copy and remove.
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	if _, err := o.Copy(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing %s after move: %w", src, err)
	}
	return nil
}

var _ FileOps = OSFileOps{}
