package testutil

import (
	"context"

	"undisorder/internal/metadata"
)

// StubExtractor serves canned metadata records by source path. Paths with
// no canned record yield a record with only SourcePath set, matching the
// real extractor's behavior for files without metadata.
type StubExtractor struct {
	Records map[string]*metadata.Record
	Err     error
}

func (s *StubExtractor) ExtractBatch(_ context.Context, paths []string) (map[string]*metadata.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]*metadata.Record, len(paths))
	for _, p := range paths {
		if rec, ok := s.Records[p]; ok {
			out[p] = rec
			continue
		}
		out[p] = &metadata.Record{SourcePath: p}
	}
	return out, nil
}

// StubAudioExtractor serves canned audio tag records by source path.
type StubAudioExtractor struct {
	Records map[string]*metadata.AudioRecord
	Err     error
}

func (s *StubAudioExtractor) Extract(path string) (*metadata.AudioRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if rec, ok := s.Records[path]; ok {
		return rec, nil
	}
	return &metadata.AudioRecord{SourcePath: path}, nil
}
