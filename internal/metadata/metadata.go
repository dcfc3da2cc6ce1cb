// Package metadata defines the metadata records consumed by the import
// pipeline and the collaborators that produce them. The pipeline never
// inspects file bytes for metadata itself; a collaborator failure degrades
// the affected fields to unknown and never aborts an import.
package metadata

import (
	"context"
	"time"
)

// Record holds extracted metadata for one photo or video file.
// All fields besides SourcePath are optional.
type Record struct {
	SourcePath  string
	DateTaken   *time.Time
	Latitude    *float64
	Longitude   *float64
	Keywords    []string
	Subject     []string
	Description string
	UserComment string
}

// HasGPS reports whether both coordinates are present.
func (r *Record) HasGPS() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// AudioRecord holds extracted tag data for one audio file.
// Zero values mean the tag is absent.
type AudioRecord struct {
	SourcePath  string
	Artist      string
	Album       string
	Title       string
	Genre       string
	TrackNumber int
	DiscNumber  int
	Year        int
}

// Extractor produces metadata records for photo/video files.
type Extractor interface {
	// ExtractBatch extracts metadata for all given paths in one pass.
	// Paths that yield no metadata map to a record with only SourcePath set.
	ExtractBatch(ctx context.Context, paths []string) (map[string]*Record, error)
}

// AudioExtractor produces tag records for audio files.
type AudioExtractor interface {
	Extract(path string) (*AudioRecord, error)
}
