package testutil

import (
	"context"

	"undisorder/internal/metadata"
)

// StubFingerprinter returns a fixed fingerprint for every file.
type StubFingerprinter struct {
	FP       string
	Duration float64
	Err      error
	Calls    int
}

func (s *StubFingerprinter) Fingerprint(_ context.Context, _ string) (string, float64, error) {
	s.Calls++
	if s.Err != nil {
		return "", 0, s.Err
	}
	return s.FP, s.Duration, nil
}

// StubLookup returns a fixed recording for every fingerprint and counts
// lookups, so cache hits are observable.
type StubLookup struct {
	Rec   *metadata.AudioRecord
	ID    string
	Err   error
	Calls int
}

func (s *StubLookup) Lookup(_ context.Context, _ string, _ float64) (*metadata.AudioRecord, string, error) {
	s.Calls++
	if s.Err != nil {
		return nil, "", s.Err
	}
	return s.Rec, s.ID, nil
}
