// Package identify resolves artist/album/title for audio files lacking
// tags, via a local fingerprint and a remote lookup, cached by content hash.
package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Fingerprinter computes a local audio fingerprint. No network involved.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (fingerprint string, duration float64, err error)
}

// Fpcalc fingerprints audio by shelling out to the chromaprint fpcalc tool.
type Fpcalc struct {
	// Binary overrides the fpcalc executable name. Empty means "fpcalc".
	Binary string
}

func (f Fpcalc) Fingerprint(ctx context.Context, path string) (string, float64, error) {
	binary := f.Binary
	if binary == "" {
		binary = "fpcalc"
	}
	raw, err := exec.CommandContext(ctx, binary, "-json", path).Output()
	if err != nil {
		return "", 0, fmt.Errorf("running fpcalc on %s: %w", path, err)
	}

	var payload struct {
		Duration    float64 `json:"duration"`
		Fingerprint string  `json:"fingerprint"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", 0, fmt.Errorf("parsing fpcalc output: %w", err)
	}
	if payload.Fingerprint == "" {
		return "", 0, fmt.Errorf("fpcalc produced no fingerprint for %s", path)
	}
	return payload.Fingerprint, payload.Duration, nil
}
