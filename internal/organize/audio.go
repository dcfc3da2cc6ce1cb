package organize

import (
	"fmt"
	"path/filepath"
	"strings"

	"undisorder/internal/metadata"
)

const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

// AudioTargetPath resolves the full target path for an audio file:
// Artist/Album/NN_Title.ext. Missing artist or album fall back to literal
// placeholders; a missing title or track number keeps the original
// filename, sanitized.
func AudioTargetPath(rec *metadata.AudioRecord, targetRoot string) string {
	artist := unknownArtist
	if rec.Artist != "" {
		artist = SanitizeComponent(rec.Artist)
	}
	album := unknownAlbum
	if rec.Album != "" {
		album = SanitizeComponent(rec.Album)
	}

	base := filepath.Base(rec.SourcePath)
	ext := filepath.Ext(base)

	var filename string
	switch {
	case rec.TrackNumber > 0 && rec.Title != "":
		filename = fmt.Sprintf("%02d_%s%s", rec.TrackNumber, SanitizeComponent(rec.Title), ext)
	case rec.Title != "":
		filename = SanitizeComponent(rec.Title) + ext
	default:
		filename = SanitizeComponent(strings.TrimSuffix(base, ext)) + ext
	}

	return filepath.Join(targetRoot, artist, album, filename)
}
