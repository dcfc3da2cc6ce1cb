package model

import "time"

// FileRecord describes content known to exist in a target tree.
// Keyed by the SHA-256 hash of the file's bytes: byte-identical content is
// represented once, no matter how many source copies produced it.
type FileRecord struct {
	Hash       string     // SHA-256 content hash (primary key)
	TargetDir  string     // Absolute target root (informational, not enforced)
	FileSize   int64      // Size in bytes
	FilePath   string     // Path relative to TargetDir
	DateTaken  *time.Time // Capture date from metadata, if known
	ImportDate time.Time  // When the file was indexed
	SourcePath string     // Originating source path; empty after a rebuild
}

// ImportRecord marks a source path as handled.
// Keyed by absolute source path: once a location has been imported it stays
// handled even if the bytes there later change (tag edits change the hash
// but not the path).
type ImportRecord struct {
	SourcePath string // Absolute source path (primary key)
	TargetDir  string // Target the import went to
	Hash       string // Content hash observed at import time
	FilePath   string // Resulting target-relative path; empty for shadowed duplicates
}

// IdentificationRecord caches a fingerprint-based remote lookup result for
// a content hash. Global across targets.
type IdentificationRecord struct {
	Hash        string  // Content hash (primary key)
	Fingerprint string  // Chromaprint fingerprint
	Duration    float64 // Audio duration in seconds
	RecordingID string  // External recording identifier
	Artist      string
	Album       string
	Title       string
	TrackNumber int
	DiscNumber  int
	Year        int
	LookupDate  time.Time
}

// Run records one execution of a mutating CLI command.
type Run struct {
	ID         int64
	Operation  string // CLI command name, e.g. "Import", "Rebuild"
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "success" or "error"
}
