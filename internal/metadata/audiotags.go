package metadata

import (
	"os"

	"github.com/dhowden/tag"
)

// TagReader extracts audio tags (ID3, Vorbis, MP4 atoms, FLAC) natively.
type TagReader struct{}

// Extract reads tags from the file at path. Unreadable or untagged files
// yield a record with only SourcePath set, never an import-blocking error.
func (TagReader) Extract(path string) (*AudioRecord, error) {
	rec := &AudioRecord{SourcePath: path}

	f, err := os.Open(path)
	if err != nil {
		return rec, nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return rec, nil
	}

	rec.Artist = m.Artist()
	rec.Album = m.Album()
	rec.Title = m.Title()
	rec.Genre = m.Genre()
	rec.Year = m.Year()
	rec.TrackNumber, _ = m.Track()
	rec.DiscNumber, _ = m.Disc()
	return rec, nil
}

var _ AudioExtractor = TagReader{}
