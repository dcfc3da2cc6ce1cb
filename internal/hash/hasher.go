// Package hash computes content digests and finds byte-identical files.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// File streams the file at path through SHA-256 and returns its size and
// hex-encoded digest. The file is never held in memory as a whole, so
// arbitrarily large videos are fine. An I/O error mid-read is surfaced:
// content identity must not be guessed at.
func File(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("hashing %s: %w", path, err)
	}

	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// Reader hashes everything read from r and returns the hex digest.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
